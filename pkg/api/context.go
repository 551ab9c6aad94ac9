package api

import (
	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the gin context and its user
// id on the request context for logging
func SetPrincipal(c *gin.Context, p *types.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), p.UserID))
}

// Principal returns the authenticated caller, if any
func Principal(c *gin.Context) (*types.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*types.Principal)
	return p, ok && p != nil
}
