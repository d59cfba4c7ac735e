package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/http/middleware"
	"tourbook/internal/services"
)

type memUserStore struct {
	byEmail map[string]*models.User
}

func (s *memUserStore) CreateOne(ctx context.Context, doc *models.User) error {
	if _, ok := s.byEmail[doc.Email]; ok {
		return domain.ConflictError{Field: "email", Value: doc.Email}
	}
	doc.BeforeInsert()
	s.byEmail[doc.Email] = doc
	return nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.NotFoundError{Resource: "user"}
}

func (s *memUserStore) FindByResetToken(ctx context.Context, hashedToken string) (*models.User, error) {
	return nil, domain.NotFoundError{Resource: "user"}
}

func (s *memUserStore) SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	return nil
}

func (s *memUserStore) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (s *memUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return nil
}

type noopSender struct{}

func (noopSender) SendWelcome(to, name, url string) error            { return nil }
func (noopSender) SendPasswordReset(to, name, resetURL string) error { return nil }

func authRouter(store *memUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Auth{
		Service: services.AuthService{
			Users:    store,
			Mail:     noopSender{},
			Secret:   []byte("test-secret"),
			TokenTTL: time.Hour,
		},
		CookieMaxAge: 3600,
	}
	r := gin.New()
	r.POST("/api/v1/users/signup", h.Signup)
	r.POST("/api/v1/users/login", h.Login)
	r.GET("/api/v1/users/logout", h.Logout)
	return r
}

func cookieValue(res *http.Response, name string) (string, bool) {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func TestSignupCreatedWithCookie(t *testing.T) {
	store := &memUserStore{byEmail: map[string]*models.User{}}
	r := authRouter(store)

	w := doJSON(r, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Test User","email":"test@example.com","password":"pass1234","passwordConfirmation":"pass1234"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["token"])

	token, ok := cookieValue(w.Result(), middleware.CookieName)
	require.True(t, ok, "jwt cookie not set")
	assert.Equal(t, body["token"], token)

	// the hash never leaves the server
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.NotContains(t, user, "password")
}

func TestSignupRejectsIncompletePayload(t *testing.T) {
	store := &memUserStore{byEmail: map[string]*models.User{}}
	r := authRouter(store)

	w := doJSON(r, http.MethodPost, "/api/v1/users/signup", `{"email":"test@example.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginIssuesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &memUserStore{byEmail: map[string]*models.User{
		"test@example.com": {
			ID:       primitive.NewObjectID(),
			Email:    "test@example.com",
			Password: string(hash),
		},
	}}
	r := authRouter(store)

	w := doJSON(r, http.MethodPost, "/api/v1/users/login", `{"email":"test@example.com","password":"pass1234"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	w = doJSON(r, http.MethodPost, "/api/v1/users/login", `{"email":"test@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "incorrect email or password", body["message"])
}

func TestLogoutClearsCookie(t *testing.T) {
	store := &memUserStore{byEmail: map[string]*models.User{}}
	r := authRouter(store)

	w := doJSON(r, http.MethodGet, "/api/v1/users/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "jwt cookie not expired")
}
