package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourbook/internal/domain/models"
)

var ReviewFilterFields = []string{"rating"}

type ReviewRepository struct {
	*Repository[models.Review]
	tours *mongo.Collection
	users *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		Repository: NewRepository[models.Review](db.Collection("reviews"), "review"),
		tours:      db.Collection("tours"),
		users:      db.Collection("users"),
	}
}

// FindByTour returns every review of one tour, newest first.
func (r *ReviewRepository) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.Coll.Find(ctx, bson.M{"tour": tourID}, opts)
	if err != nil {
		return nil, r.wrap(err)
	}
	defer cur.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, r.wrap(err)
	}
	return reviews, nil
}

type authorDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Photo string             `bson:"photo"`
}

// AttachAuthors resolves each review's user to name and photo with one
// batched lookup. Reviews by users that no longer exist keep a nil Author.
func (r *ReviewRepository) AttachAuthors(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(reviews))
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, rev := range reviews {
		if _, ok := seen[rev.User]; !ok {
			seen[rev.User] = struct{}{}
			ids = append(ids, rev.User)
		}
	}

	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "photo", Value: 1}})
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var docs []authorDoc
	if err := cur.All(ctx, &docs); err != nil {
		return err
	}
	authors := make(map[primitive.ObjectID]models.ReviewAuthor, len(docs))
	for _, d := range docs {
		authors[d.ID] = models.ReviewAuthor{Name: d.Name, Photo: d.Photo}
	}

	for i := range reviews {
		if a, ok := authors[reviews[i].User]; ok {
			author := a
			reviews[i].Author = &author
		}
	}
	return nil
}

// ratingStats is the aggregate of all reviews for one tour.
type ratingStats struct {
	NumRatings int     `bson:"nRating"`
	AvgRating  float64 `bson:"avgRating"`
}

// RecomputeTourRatings recalculates ratingsQuantity and ratingsAverage for a
// tour from its reviews and persists the result on the tours collection.
// Every review mutation path must call this; there is no implicit hook.
func (r *ReviewRepository) RecomputeTourRatings(ctx context.Context, tourID primitive.ObjectID) error {
	pipeline := []bson.M{
		{"$match": bson.M{"tour": tourID}},
		{"$group": bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}},
	}

	cur, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var stats []ratingStats
	if err := cur.All(ctx, &stats); err != nil {
		return err
	}

	// no reviews left: fall back to the seed defaults
	update := bson.M{"ratingsQuantity": 0, "ratingsAverage": 4.5}
	if len(stats) > 0 {
		update = bson.M{
			"ratingsQuantity": stats[0].NumRatings,
			"ratingsAverage":  stats[0].AvgRating,
		}
	}

	_, err = r.tours.UpdateByID(ctx, tourID, bson.M{"$set": update})
	return err
}
