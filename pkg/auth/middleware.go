package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/response"
)

// TokenValidator validates a raw access token.
type TokenValidator interface {
	Validate(token string) (Principal, error)
}

// FreezeChecker reports whether a user's actions are currently frozen.
type FreezeChecker interface {
	IsActionsFrozen(ctx context.Context, userID int64) (bool, error)
}

// Option configures RequireAuth.
type Option func(*options)

type options struct {
	queryTokenRoutes map[string]struct{}
}

// QueryTokenOn also accepts a "token" query parameter on the given route
// patterns, as registered with gin (e.g. "/ws/notifications").
func QueryTokenOn(routes ...string) Option {
	return func(o *options) {
		for _, r := range routes {
			o.queryTokenRoutes[r] = struct{}{}
		}
	}
}

// RequireAuth accepts "Authorization: Bearer <token>". The "token" query
// parameter is only read on routes enabled with QueryTokenOn.
func RequireAuth(validator TokenValidator, log *zap.Logger, opts ...Option) gin.HandlerFunc {
	o := options{queryTokenRoutes: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if _, ok := o.queryTokenRoutes[c.FullPath()]; ok {
				token = c.Query("token")
			}
		}
		if token == "" {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}

		p, err := validator.Validate(token)
		if err != nil {
			log.Debug("token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			response.SendAPIResponse(c, http.StatusUnauthorized, false, err.Error(), nil)
			c.Abort()
			return
		}

		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireUnfrozen blocks mutating requests from users whose actions are
// frozen. Reads are always allowed.
func RequireUnfrozen(checker FreezeChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		p, ok := FromContext(c)
		if !ok {
			c.Next()
			return
		}

		frozen, err := checker.IsActionsFrozen(c.Request.Context(), p.UserID)
		if err != nil {
			response.SendInternalError(c, err)
			c.Abort()
			return
		}
		if frozen {
			response.SendAPIResponse(c, http.StatusForbidden, false, "Your account actions are temporarily frozen.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
