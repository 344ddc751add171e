package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

const ownerContextKey = "httpserver.owner"

// authMiddleware resolves the Bearer token into the request owner. Every
// cart route requires a token, guest tokens included; callers without one
// must first open an anonymous session.
func authMiddleware(mgr *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := bearerOwner(c, mgr)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid_token", "missing or invalid bearer token"))
			return
		}
		c.Set(ownerContextKey, owner)
		c.Next()
	}
}

func bearerOwner(c *gin.Context, mgr *auth.Manager) (domain.Owner, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return domain.Owner{}, false
	}
	owner, err := mgr.Parse(token)
	if err != nil {
		return domain.Owner{}, false
	}
	return owner, true
}

func ownerFromContext(c *gin.Context) domain.Owner {
	v, ok := c.Get(ownerContextKey)
	if !ok {
		return domain.Owner{}
	}
	owner, _ := v.(domain.Owner)
	return owner
}
