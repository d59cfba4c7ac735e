package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/domain/models"
	"tourbook/internal/query"
	"tourbook/internal/utils"
)

// ReviewStore is the slice of the review repository the service needs.
type ReviewStore interface {
	CreateOne(ctx context.Context, doc *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	Find(ctx context.Context, base bson.M, spec query.Spec) ([]models.Review, error)
	UpdateByID(ctx context.Context, id string, patch bson.M) (*models.Review, error)
	DeleteByID(ctx context.Context, id string) error
	RecomputeTourRatings(ctx context.Context, tourID primitive.ObjectID) error
}

// ReviewService keeps the tour rating aggregates consistent with the
// underlying reviews. Every mutation path recomputes; a failed recompute is
// logged but does not fail the write, since the review itself is persisted.
type ReviewService struct {
	Reviews   ReviewStore
	RequestID string
}

func (s ReviewService) CreateOne(ctx context.Context, review *models.Review) error {
	if err := s.Reviews.CreateOne(ctx, review); err != nil {
		return err
	}
	s.recompute(ctx, review.Tour)
	return nil
}

func (s ReviewService) FindByID(ctx context.Context, id string) (*models.Review, error) {
	return s.Reviews.FindByID(ctx, id)
}

func (s ReviewService) Find(ctx context.Context, base bson.M, spec query.Spec) ([]models.Review, error) {
	return s.Reviews.Find(ctx, base, spec)
}

func (s ReviewService) UpdateByID(ctx context.Context, id string, patch bson.M) (*models.Review, error) {
	review, err := s.Reviews.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.recompute(ctx, review.Tour)
	return review, nil
}

func (s ReviewService) DeleteByID(ctx context.Context, id string) error {
	// the tour id is needed after the delete, so load first
	review, err := s.Reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Reviews.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx, review.Tour)
	return nil
}

func (s ReviewService) recompute(ctx context.Context, tourID primitive.ObjectID) {
	if err := s.Reviews.RecomputeTourRatings(ctx, tourID); err != nil {
		utils.LogEvent(s.RequestID, "review", "recompute_ratings", "failed: "+err.Error())
	}
}
