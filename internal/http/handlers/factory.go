package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tourbook/internal/domain"
	"tourbook/internal/query"
)

// Store is the document-store contract the factory operates over. The Mongo
// repositories satisfy it; tests plug in fakes.
type Store[T any] interface {
	CreateOne(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, base bson.M, spec query.Spec) ([]T, error)
	UpdateByID(ctx context.Context, id string, patch bson.M) (*T, error)
	DeleteByID(ctx context.Context, id string) error
}

// CRUD produces the uniform create/read/update/delete handlers for one
// resource type.
type CRUD[T any] struct {
	Store    Store[T]
	Resource string
	// Filterable lists the fields the query pipeline may filter on.
	Filterable []string
	// Scope narrows GetAll to a parent context, e.g. reviews of one tour.
	Scope func(c *gin.Context) (bson.M, error)
	// Prepare runs before CreateOne persists, e.g. to stamp tour/user ids.
	Prepare func(c *gin.Context, doc *T) error
	// Sanitize filters the update patch; when nil only reserved keys are
	// stripped.
	Sanitize func(c *gin.Context, patch bson.M) bson.M
	// ExpandOne resolves related documents onto a single loaded resource,
	// e.g. a tour's reviews. Nil means reads return the bare document.
	ExpandOne func(c *gin.Context, doc *T) error
	// ExpandMany does the same for list reads, batched.
	ExpandMany func(c *gin.Context, docs []T) error
	// IDParam names the route parameter carrying the identity key.
	// Defaults to "id"; tours use "tourId" so the nested review routes can
	// share the wildcard.
	IDParam string
}

func (h CRUD[T]) id(c *gin.Context) string {
	param := h.IDParam
	if param == "" {
		param = "id"
	}
	return c.Param(param)
}

// reserved keys a client may never patch directly.
var immutableKeys = []string{"_id", "id", "createdAt", "password", "passwordChangedAt", "passwordResetToken", "passwordResetExpires"}

func (h CRUD[T]) CreateOne(c *gin.Context) {
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}
	if h.Prepare != nil {
		if err := h.Prepare(c, &doc); err != nil {
			Error(c, err)
			return
		}
	}
	if err := h.Store.CreateOne(c.Request.Context(), &doc); err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"data": doc})
}

func (h CRUD[T]) GetOne(c *gin.Context) {
	doc, err := h.Store.FindByID(c.Request.Context(), h.id(c))
	if err != nil {
		Error(c, err)
		return
	}
	if h.ExpandOne != nil {
		if err := h.ExpandOne(c, doc); err != nil {
			Error(c, err)
			return
		}
	}
	Success(c, http.StatusOK, gin.H{"data": doc})
}

// GetAll never 404s: an out-of-range page or an unmatched filter yields an
// empty sequence.
func (h CRUD[T]) GetAll(c *gin.Context) {
	base := bson.M{}
	if h.Scope != nil {
		scoped, err := h.Scope(c)
		if err != nil {
			Error(c, err)
			return
		}
		base = scoped
	}

	spec, err := query.Parse(c.Request.URL.Query(), h.Filterable)
	if err != nil {
		Error(c, err)
		return
	}

	docs, err := h.Store.Find(c.Request.Context(), base, spec)
	if err != nil {
		Error(c, err)
		return
	}
	if h.ExpandMany != nil {
		if err := h.ExpandMany(c, docs); err != nil {
			Error(c, err)
			return
		}
	}
	SuccessList(c, http.StatusOK, len(docs), gin.H{"data": docs})
}

func (h CRUD[T]) UpdateOne(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		Error(c, domain.ValidationError{Msg: "invalid request payload", Err: err})
		return
	}

	patch := bson.M{}
	for k, v := range raw {
		patch[k] = v
	}
	for _, k := range immutableKeys {
		delete(patch, k)
	}
	if h.Sanitize != nil {
		patch = h.Sanitize(c, patch)
	}

	doc, err := h.Store.UpdateByID(c.Request.Context(), h.id(c), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"data": doc})
}

func (h CRUD[T]) DeleteOne(c *gin.Context) {
	if err := h.Store.DeleteByID(c.Request.Context(), h.id(c)); err != nil {
		Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
