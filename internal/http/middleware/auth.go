// README: Bearer-token auth middleware backed by account sessions.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roadie/internal/modules/account"
	"roadie/internal/types"
)

const (
	ctxCallerUID   = "caller_uid"
	ctxCallerRole  = "caller_role"
	ctxCallerToken = "caller_token"
)

// TokenVerifier resolves a bearer token to the caller's identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*account.Identity, error)
}

func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxCallerUID, id.UserID)
		c.Set(ctxCallerRole, id.Role)
		c.Set(ctxCallerToken, token)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Websocket clients that cannot
// set headers may pass access_token in the query instead.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		token := c.Query("access_token")
		return token, token != ""
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// RequireRole rejects callers whose session role differs. Must run after Auth.
func RequireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires " + string(role) + " role"})
			return
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) types.ID {
	v, _ := c.Get(ctxCallerUID)
	id, _ := v.(types.ID)
	return id
}

func CallerRole(c *gin.Context) account.Role {
	v, _ := c.Get(ctxCallerRole)
	r, _ := v.(account.Role)
	return r
}

func CallerToken(c *gin.Context) string {
	return c.GetString(ctxCallerToken)
}
