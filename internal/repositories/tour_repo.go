package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourbook/internal/domain/models"
)

// Filterable tour fields exposed to the query pipeline. Anything outside
// this list is ignored, never passed through to the database.
var TourFilterFields = []string{
	"duration", "ratingsQuantity", "ratingsAverage", "price", "maxGroupSize", "difficulty",
}

type TourRepository struct {
	*Repository[models.Tour]
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{
		Repository: NewRepository[models.Tour](db.Collection("tours"), "tour"),
	}
}

// TourStats is one per-difficulty aggregation bucket.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	MinRating  float64 `bson:"minRating" json:"minRating"`
	MaxRating  float64 `bson:"maxRating" json:"maxRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

func (r *TourRepository) Stats(ctx context.Context) ([]TourStats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}},
		{"$group": bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"minRating":  bson.M{"$min": "$ratingsAverage"},
			"maxRating":  bson.M{"$max": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}},
		{"$sort": bson.M{"avgPrice": -1}},
	}

	cur, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	stats := make([]TourStats, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthBucket is a month of the yearly trip plan.
type MonthBucket struct {
	Month    int      `bson:"month" json:"month"`
	NumTours int      `bson:"numTours" json:"numTours"`
	Tours    []string `bson:"tours" json:"tours"`
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthBucket, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := []bson.M{
		{"$unwind": "$startDates"},
		{"$match": bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}},
		{"$group": bson.M{
			"_id":      bson.M{"$month": "$startDates"},
			"numTours": bson.M{"$sum": 1},
			"tours":    bson.M{"$push": "$name"},
		}},
		{"$addFields": bson.M{"month": "$_id"}},
		{"$project": bson.M{"_id": 0}},
		{"$sort": bson.M{"numTours": -1}},
		{"$limit": 12},
	}

	cur, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	plan := make([]MonthBucket, 0)
	if err := cur.All(ctx, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Within returns tours whose start location lies inside a sphere around the
// given center. Radius is in radians (distance divided by earth radius).
func (r *TourRepository) Within(ctx context.Context, lat, lng, radius float64) ([]models.Tour, error) {
	filter := bson.M{
		"startLocation": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radius},
			},
		},
	}

	cur, err := r.Coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tours := make([]models.Tour, 0)
	if err := cur.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// TourDistance pairs a tour name with its distance from a query point.
type TourDistance struct {
	Name     string  `bson:"name" json:"name"`
	Distance float64 `bson:"distance" json:"distance"`
}

// Distances computes per-tour distance from the given point. multiplier
// converts from metres (0.001 for km, 0.000621371 for miles).
func (r *TourRepository) Distances(ctx context.Context, lat, lng, multiplier float64) ([]TourDistance, error) {
	pipeline := []bson.M{
		{"$geoNear": bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
		}},
		{"$project": bson.M{"distance": 1, "name": 1}},
	}

	cur, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("geoNear aggregation: %w", err)
	}
	defer cur.Close(ctx)

	distances := make([]TourDistance, 0)
	if err := cur.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}
