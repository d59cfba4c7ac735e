package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/domain/models"
)

func testGuard(user *models.User) Guard {
	return Guard{
		VerifyToken: func(token string) (string, time.Time, error) {
			if token != "valid-token" {
				return "", time.Time{}, errors.New("bad token")
			}
			return user.ID.Hex(), time.Now(), nil
		},
		LoadUser: func(ctx context.Context, id string) (*models.User, error) {
			if user != nil && id == user.ID.Hex() {
				return user, nil
			}
			return nil, errors.New("no user")
		},
	}
}

func protectedRouter(g Guard, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{g.Protect()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"status": "success", "user": user.Email})
	})
	r.GET("/api/v1/secret", chain...)
	return r
}

func TestProtectWithBearerHeader(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: models.RoleUser}
	r := protectedRouter(testGuard(user))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@b.c")
}

func TestProtectWithCookie(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: models.RoleUser}
	r := protectedRouter(testGuard(user))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "valid-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectHeaderWinsOverCookie(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: models.RoleUser}
	r := protectedRouter(testGuard(user))

	// the header carries garbage, the cookie a valid token: header wins and
	// the request is rejected
	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "valid-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectRejectsMissingToken(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	r := protectedRouter(testGuard(user))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "you are not logged in")
}

func TestProtectRejectsDeletedSubject(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	g := testGuard(user)
	g.LoadUser = func(ctx context.Context, id string) (*models.User, error) {
		return nil, errors.New("no user")
	}
	r := protectedRouter(g)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectRejectsTokenIssuedBeforePasswordChange(t *testing.T) {
	user := &models.User{
		ID:                primitive.NewObjectID(),
		Role:              models.RoleUser,
		PasswordChangedAt: time.Now(),
	}
	g := testGuard(user)
	g.VerifyToken = func(token string) (string, time.Time, error) {
		// issued an hour before the password change
		return user.ID.Hex(), time.Now().Add(-time.Hour), nil
	}
	r := protectedRouter(g)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRestrictToAllowsListedRole(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "admin@b.c", Role: models.RoleAdmin}
	r := protectedRouter(testGuard(user), RestrictTo(models.RoleAdmin, models.RoleLeadGuide))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRestrictToForbidsOtherRoles(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	r := protectedRouter(testGuard(user), RestrictTo(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "you do not have permission")
}

func TestRestrictToWithoutPrincipalIsServerError(t *testing.T) {
	// RestrictTo mounted without Protect is a wiring defect, not a client
	// error
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/secret", RestrictTo(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/secret", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsLoggedInNeverRejects(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: models.RoleUser}
	g := testGuard(user)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/page", g.IsLoggedIn(), func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, "hello "+u.Email)
			return
		}
		c.String(http.StatusOK, "hello guest")
	})

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello guest", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "valid-token"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello a@b.c", w.Body.String())
}
