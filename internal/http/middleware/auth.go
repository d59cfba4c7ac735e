package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tourbook/internal/domain/models"
)

const (
	principalKey = "principal"
	// CookieName carries the token for browser clients.
	CookieName = "jwt"
)

// Guard authenticates requests: token extraction, verification, principal
// load and the invalidation check. Verification and user loading are
// injected so the middleware stays testable without a database.
type Guard struct {
	// VerifyToken returns the subject id and issuance time for a valid
	// token, or an error for anything else.
	VerifyToken func(token string) (subject string, issuedAt time.Time, err error)
	// LoadUser resolves a subject id to a live user record.
	LoadUser func(ctx context.Context, id string) (*models.User, error)
}

// Protect rejects the request as unauthorized unless a valid principal can
// be established. On success the principal is attached to the context.
func (g Guard) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := g.authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "fail",
				"message": "you are not logged in",
			})
			return
		}
		c.Set(principalKey, user)
		c.Next()
	}
}

// IsLoggedIn runs the same checks as Protect but any failure silently
// proceeds as unauthenticated. For routes that render differently for
// guests vs. known users.
func (g Guard) IsLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := g.authenticate(c); ok {
			c.Set(principalKey, user)
		}
		c.Next()
	}
}

func (g Guard) authenticate(c *gin.Context) (*models.User, bool) {
	token := extractToken(c)
	if token == "" {
		return nil, false
	}

	subject, issuedAt, err := g.VerifyToken(token)
	if err != nil {
		return nil, false
	}

	user, err := g.LoadUser(c.Request.Context(), subject)
	if err != nil || user == nil {
		// subject no longer exists; never fall back to stale claims
		return nil, false
	}

	if user.ChangedPasswordAfter(issuedAt) {
		return nil, false
	}
	return user, true
}

// extractToken reads the credential from the Authorization header, falling
// back to the cookie. Header wins when both are present.
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// RestrictTo authorizes the already-loaded principal against an allow-list
// of roles. It must run after Protect; a missing principal here is a
// middleware-ordering defect, not a client error.
func RestrictTo(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "something went wrong",
			})
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "fail",
				"message": "you do not have permission to perform this action",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated principal, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
