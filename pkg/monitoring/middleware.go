package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/futa-medical/clinic-booking/pkg/logger"
)

// RequestIDHeader carries the correlation id in and out of the service
const RequestIDHeader = "X-Request-ID"

// MonitoringMiddleware combines metrics, tracing, and logging
type MonitoringMiddleware struct {
	metrics *MetricsCollector
	tracing *TracingManager
	logger  *logger.Logger
}

// NewMonitoringMiddleware creates a new monitoring middleware
func NewMonitoringMiddleware(metrics *MetricsCollector, tracing *TracingManager, log *logger.Logger) *MonitoringMiddleware {
	return &MonitoringMiddleware{
		metrics: metrics,
		tracing: tracing,
		logger:  log,
	}
}

// Handler returns the gin middleware that assigns a request id, opens a server
// span, records request metrics and writes the access log line
func (mm *MonitoringMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := mm.tracing.ExtractTraceContext(c.Request.Context(), c.Request.Header)
		ctx, span := mm.tracing.StartHTTPSpan(ctx, c.Request.Method, route)
		defer span.End()

		ctx = logger.ContextWithRequestID(ctx, requestID)
		if traceID := TraceIDFromContext(ctx); traceID != "" {
			ctx = logger.ContextWithTraceID(ctx, traceID)
		}
		span.SetAttributes(
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("http.client_ip", c.ClientIP()),
			attribute.String("request.id", requestID),
		)

		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)
		mm.tracing.InjectTraceContext(ctx, c.Writer.Header())

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)

		mm.metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), duration)

		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", c.Writer.Size()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}

		// handlers may have enriched the context with the user id
		mm.logger.HTTPRequest(
			c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Request.UserAgent(),
			c.ClientIP(),
			status,
			duration.Milliseconds(),
		)
	}
}
