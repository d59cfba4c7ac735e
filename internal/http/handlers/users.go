package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/http/middleware"
	"tourbook/internal/repositories"
)

// Users bundles the self-service routes with the admin CRUD set.
type Users struct {
	CRUD      CRUD[models.User]
	Repo      *repositories.UserRepository
	UploadDir string
}

func NewUsers(repo *repositories.UserRepository, uploadDir string) Users {
	return Users{
		CRUD: CRUD[models.User]{
			Store:      repo.Repository,
			Resource:   "user",
			Filterable: repositories.UserFilterFields,
		},
		Repo:      repo,
		UploadDir: uploadDir,
	}
}

// GET /api/v1/users/me
func (h Users) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Error(c, domain.InternalError{Msg: "no principal on protected route"})
		return
	}
	Success(c, http.StatusOK, gin.H{"data": user})
}

// PATCH /api/v1/users/update-me
//
// Accepts JSON or multipart form. Only name, email and the photo are
// updatable here; password changes go through /update-my-password.
func (h Users) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Error(c, domain.InternalError{Msg: "no principal on protected route"})
		return
	}

	patch := bson.M{}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if v := strings.TrimSpace(c.PostForm("name")); v != "" {
			patch["name"] = v
		}
		if v := strings.TrimSpace(c.PostForm("email")); v != "" {
			patch["email"] = v
		}
		if file, err := c.FormFile("photo"); err == nil {
			filename := user.PhotoFilename(time.Now())
			if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
				Error(c, domain.InternalError{Msg: "failed to store photo", Err: err})
				return
			}
			patch["photo"] = filename
		}
	} else {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
			return
		}
		if _, ok := raw["password"]; ok {
			Error(c, domain.ValidationError{Msg: "this route is not for password changes, use /update-my-password"})
			return
		}
		if _, ok := raw["passwordConfirmation"]; ok {
			Error(c, domain.ValidationError{Msg: "this route is not for password changes, use /update-my-password"})
			return
		}
		// whitelist, never pass the raw body through
		for _, field := range []string{"name", "email"} {
			if v, ok := raw[field]; ok {
				patch[field] = v
			}
		}
	}

	updated, err := h.Repo.UpdateByID(c.Request.Context(), user.ID.Hex(), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"user": updated})
}

// DELETE /api/v1/users/delete-me
func (h Users) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Error(c, domain.InternalError{Msg: "no principal on protected route"})
		return
	}
	if err := h.Repo.Deactivate(c.Request.Context(), user.ID); err != nil {
		Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/users — accounts are created through signup only.
func (h Users) CreateUser(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": "please use /signup to create a user",
	})
}
