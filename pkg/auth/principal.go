package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/logger"
)

const (
	UserTypeStartup   = "startup"
	UserTypeIncubator = "incubator"
)

const principalKey = "raven.principal"

// Principal is the authenticated caller.
type Principal struct {
	UserID   int64
	UUID     string
	Email    string
	UserType string
}

func (p Principal) IsStartup() bool   { return p.UserType == UserTypeStartup }
func (p Principal) IsIncubator() bool { return p.UserType == UserTypeIncubator }

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set(logger.UserIDKey, p.UserID)
}

// FromContext returns the principal stored by RequireAuth.
func FromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustPrincipal is for handlers mounted behind RequireAuth.
func MustPrincipal(c *gin.Context) Principal {
	p, _ := FromContext(c)
	return p
}

func ValidUserType(t string) bool {
	return t == UserTypeStartup || t == UserTypeIncubator
}
