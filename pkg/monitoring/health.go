package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the state of a dependency or of the whole service
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck is the outcome of one checker
type HealthCheck struct {
	Status   HealthStatus           `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Duration string                 `json:"duration"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// HealthReport is served on the health path
type HealthReport struct {
	Status    HealthStatus           `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	CheckedAt time.Time              `json:"checkedAt"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthChecker reports the state of a single dependency
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
}

// HealthManager runs the registered checkers
type HealthManager struct {
	serviceName    string
	serviceVersion string
	mu             sync.RWMutex
	checkers       map[string]HealthChecker
	timeout        time.Duration
}

// NewHealthManager creates a new health manager
func NewHealthManager(serviceName, serviceVersion string) *HealthManager {
	return &HealthManager{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		checkers:       make(map[string]HealthChecker),
		timeout:        5 * time.Second,
	}
}

// RegisterChecker adds or replaces the checker stored under name
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

// SetTimeout bounds each individual check
func (hm *HealthManager) SetTimeout(timeout time.Duration) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.timeout = timeout
}

// CheckHealth runs every checker in name order. One unhealthy check makes the
// service unhealthy, otherwise one degraded check makes it degraded.
func (hm *HealthManager) CheckHealth(ctx context.Context) *HealthReport {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(hm.checkers))
	for name, c := range hm.checkers {
		checkers[name] = c
	}
	timeout := hm.timeout
	hm.mu.RUnlock()

	sort.Strings(names)

	report := &HealthReport{
		Status:    HealthStatusHealthy,
		Service:   hm.serviceName,
		Version:   hm.serviceVersion,
		CheckedAt: time.Now().UTC(),
		Checks:    make(map[string]HealthCheck, len(names)),
	}

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		check := checkers[name].Check(checkCtx)
		cancel()
		check.Duration = time.Since(start).String()
		report.Checks[name] = check

		switch check.Status {
		case HealthStatusUnhealthy:
			report.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if report.Status == HealthStatusHealthy {
				report.Status = HealthStatusDegraded
			}
		}
	}

	return report
}

// Handler serves the health report. Only an unhealthy service answers 503.
func (hm *HealthManager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := hm.CheckHealth(c.Request.Context())
		status := http.StatusOK
		if report.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}

// DBStatser is satisfied by *sql.DB
type DBStatser interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// DatabaseHealthChecker pings the pool and reports its usage
type DatabaseHealthChecker struct {
	db DBStatser
}

// NewDatabaseHealthChecker creates a new database health checker
func NewDatabaseHealthChecker(db DBStatser) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

// Check pings the database. A pool at 90% of its limit is degraded.
func (dhc *DatabaseHealthChecker) Check(ctx context.Context) HealthCheck {
	if err := dhc.db.PingContext(ctx); err != nil {
		return HealthCheck{
			Status:  HealthStatusUnhealthy,
			Message: fmt.Sprintf("Database unreachable: %v", err),
		}
	}

	stats := dhc.db.Stats()
	check := HealthCheck{
		Status:  HealthStatusHealthy,
		Message: "Database reachable",
		Details: map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"max_open":         stats.MaxOpenConnections,
		},
	}
	if stats.MaxOpenConnections > 0 && stats.OpenConnections*10 >= stats.MaxOpenConnections*9 {
		check.Status = HealthStatusDegraded
		check.Message = "Database connection pool nearly exhausted"
	}
	return check
}

// SeedHealthChecker reports whether reference data is present. Startup keeps
// serving after a failed seed, so an empty roles or departments table shows
// up here as degraded.
type SeedHealthChecker struct {
	db *sql.DB
}

// NewSeedHealthChecker creates a new seed health checker
func NewSeedHealthChecker(db *sql.DB) *SeedHealthChecker {
	return &SeedHealthChecker{db: db}
}

// Check counts roles and active departments
func (s *SeedHealthChecker) Check(ctx context.Context) HealthCheck {
	var roles, departments int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM roles),
		       (SELECT COUNT(*) FROM departments WHERE is_active = TRUE)`,
	).Scan(&roles, &departments)
	if err != nil {
		return HealthCheck{
			Status:  HealthStatusDegraded,
			Message: fmt.Sprintf("Reference data unavailable: %v", err),
		}
	}

	check := HealthCheck{
		Status:  HealthStatusHealthy,
		Message: "Reference data present",
		Details: map[string]interface{}{"roles": roles, "active_departments": departments},
	}
	if roles == 0 || departments == 0 {
		check.Status = HealthStatusDegraded
		check.Message = "Reference data missing, seeding has not completed"
	}
	return check
}
