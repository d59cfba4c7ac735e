package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/mail"
	"tourbook/internal/utils"
)

const bcryptCost = 12

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	CreateOne(ctx context.Context, doc *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, hashedToken string) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// AuthService issues and verifies bearer credentials and runs the password
// lifecycle flows.
type AuthService struct {
	Users     UserStore
	Mail      mail.Sender
	Secret    []byte
	TokenTTL  time.Duration
	RequestID string
}

type SignupInput struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required"`
}

// SignToken issues an HS256 token bound to the subject id.
func (s AuthService) SignToken(id primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return signed, nil
}

// VerifyToken checks signature and expiry and returns the subject id and
// issuance time. Any failure maps to an unauthorized error.
func (s AuthService) VerifyToken(tokenString string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "you are not logged in", Err: err}
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "you are not logged in"}
	}
	return claims.Subject, claims.IssuedAt.Time, nil
}

func (s AuthService) Signup(ctx context.Context, in SignupInput, accountURL string) (*models.User, string, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, "", domain.ValidationError{Field: "passwordConfirmation", Msg: "passwords do not match"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.Users.CreateOne(ctx, &user); err != nil {
		return nil, "", err
	}

	// welcome mail is best effort; the account is already created
	if err := s.Mail.SendWelcome(user.Email, user.Name, accountURL); err != nil {
		utils.LogEvent(s.RequestID, "auth", "signup", "welcome email failed: "+err.Error())
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", domain.ValidationError{Msg: "please provide an email and a password"}
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		// identical outcome for unknown email and wrong password
		return nil, "", domain.UnauthorizedError{Msg: "incorrect email or password"}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", domain.UnauthorizedError{Msg: "incorrect email or password"}
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword issues a reset token and emails it. If delivery fails the
// token is rolled back so no dangling credential remains.
func (s AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return domain.NotFoundError{Resource: "user", Err: err}
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return domain.InternalError{Msg: "failed to generate reset token", Err: err}
	}
	resetToken := hex.EncodeToString(raw)

	expires := time.Now().Add(10 * time.Minute)
	if err := s.Users.SetResetToken(ctx, user.ID, hashToken(resetToken), expires); err != nil {
		return err
	}

	resetURL := resetURLBase + "/" + resetToken
	if err := s.Mail.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		if clearErr := s.Users.ClearResetToken(ctx, user.ID); clearErr != nil {
			utils.LogEvent(s.RequestID, "auth", "forgot_password", "rollback failed: "+clearErr.Error())
		}
		return err
	}
	return nil
}

func (s AuthService) ResetPassword(ctx context.Context, resetToken, password, confirmation string) (*models.User, string, error) {
	if password != confirmation {
		return nil, "", domain.ValidationError{Field: "passwordConfirmation", Msg: "passwords do not match"}
	}
	if len(password) < 8 {
		return nil, "", domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	user, err := s.Users.FindByResetToken(ctx, hashToken(resetToken))
	if err != nil {
		return nil, "", domain.ValidationError{Msg: "password reset token is invalid or has expired", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	if err := s.Users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return nil, "", err
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdatePassword changes a logged-in user's password after checking the
// current one.
func (s AuthService) UpdatePassword(ctx context.Context, user *models.User, current, next, confirmation string) (string, error) {
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return "", domain.UnauthorizedError{Msg: "current password incorrect"}
	}
	if next != confirmation {
		return "", domain.ValidationError{Field: "passwordConfirmation", Msg: "passwords do not match"}
	}
	if len(next) < 8 {
		return "", domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	if err := s.Users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return "", err
	}
	return s.SignToken(user.ID)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
