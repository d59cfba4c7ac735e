package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/http/middleware"
	"tourbook/internal/repositories"
	"tourbook/internal/services"
)

// Reviews routes go through the ReviewService so every mutation keeps the
// tour rating aggregates in sync.
type Reviews struct {
	CRUD CRUD[models.Review]
}

func NewReviews(svc services.ReviewService, repo *repositories.ReviewRepository) Reviews {
	return Reviews{
		CRUD: CRUD[models.Review]{
			Store:      svc,
			Resource:   "review",
			Filterable: repositories.ReviewFilterFields,
			Scope:      scopeByTour,
			Prepare:    prepareReview,
			ExpandOne: func(c *gin.Context, review *models.Review) error {
				batch := []models.Review{*review}
				if err := repo.AttachAuthors(c.Request.Context(), batch); err != nil {
					return err
				}
				review.Author = batch[0].Author
				return nil
			},
			ExpandMany: func(c *gin.Context, reviews []models.Review) error {
				return repo.AttachAuthors(c.Request.Context(), reviews)
			},
		},
	}
}

// scopeByTour lists reviews in the context of a parent tour when the nested
// route is used.
func scopeByTour(c *gin.Context) (bson.M, error) {
	tourID := c.Param("tourId")
	if tourID == "" {
		return bson.M{}, nil
	}
	oid, err := primitive.ObjectIDFromHex(tourID)
	if err != nil {
		return nil, domain.ValidationError{Field: "tourId", Msg: "invalid value " + tourID, Err: err}
	}
	return bson.M{"tour": oid}, nil
}

// prepareReview fills tour and user ids: the tour from the nested route when
// present, the user always from the authenticated principal.
func prepareReview(c *gin.Context, review *models.Review) error {
	if tourID := c.Param("tourId"); tourID != "" {
		oid, err := primitive.ObjectIDFromHex(tourID)
		if err != nil {
			return domain.ValidationError{Field: "tourId", Msg: "invalid value " + tourID, Err: err}
		}
		review.Tour = oid
	}
	if review.Tour.IsZero() {
		return domain.ValidationError{Field: "tour", Msg: "a review must belong to a tour"}
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.InternalError{Msg: "no principal on protected route"}
	}
	review.User = user.ID
	return nil
}
