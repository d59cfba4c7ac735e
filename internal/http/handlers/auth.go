package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/domain"
	"tourbook/internal/http/middleware"
	"tourbook/internal/services"
)

// Auth exposes the credential lifecycle endpoints.
type Auth struct {
	Service      services.AuthService
	CookieMaxAge int // seconds
	SecureCookie bool
}

func (h Auth) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.CookieName, token, h.CookieMaxAge, "/", "", h.SecureCookie, true)
}

// POST /api/v1/users/signup
func (h Auth) Signup(c *gin.Context) {
	var in services.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}

	user, token, err := h.Service.Signup(c.Request.Context(), in, requestBaseURL(c)+"/me")
	if err != nil {
		Error(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/users/login
func (h Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}

	user, token, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Error(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// GET /api/v1/users/logout
func (h Auth) Logout(c *gin.Context) {
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/v1/users/forgot-password
func (h Auth) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, domain.ValidationError{Msg: "please provide a valid email", Err: err})
		return
	}

	resetURLBase := requestBaseURL(c) + "/api/v1/users/reset-password"
	if err := h.Service.ForgotPassword(c.Request.Context(), req.Email, resetURLBase); err != nil {
		Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "token sent to email"})
}

type resetPasswordRequest struct {
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required"`
}

// PATCH /api/v1/users/reset-password/:token
func (h Auth) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}

	user, token, err := h.Service.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.PasswordConfirmation)
	if err != nil {
		Error(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

type updatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

// PATCH /api/v1/users/update-my-password
func (h Auth) UpdatePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Error(c, domain.InternalError{Msg: "no principal on protected route"})
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}

	token, err := h.Service.UpdatePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		Error(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}
