package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a GeoJSON point with tour metadata.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name" binding:"required"`
	Slug            string               `bson:"slug,omitempty" json:"slug,omitempty"`
	Duration        int                  `bson:"duration" json:"duration" binding:"required"`
	MaxGroupSize    int                  `bson:"maxGroupSize" json:"maxGroupSize" binding:"required"`
	Difficulty      string               `bson:"difficulty" json:"difficulty" binding:"required,oneof=easy medium difficult"`
	RatingsAverage  float64              `bson:"ratingsAverage" json:"ratingsAverage"`
	RatingsQuantity int                  `bson:"ratingsQuantity" json:"ratingsQuantity"`
	Price           float64              `bson:"price" json:"price" binding:"required,gt=0"`
	PriceDiscount   float64              `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty"`
	Summary         string               `bson:"summary" json:"summary" binding:"required"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string               `bson:"imageCover,omitempty" json:"imageCover,omitempty"`
	Images          []string             `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	StartDates      []time.Time          `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour      bool                 `bson:"secretTour,omitempty" json:"secretTour,omitempty"`
	StartLocation   *Location            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []Location           `bson:"locations,omitempty" json:"locations,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`

	// Reviews is resolved on single-tour reads, never persisted.
	Reviews []Review `bson:"-" json:"reviews,omitempty"`
}

func (t *Tour) BeforeInsert() {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if t.RatingsAverage == 0 {
		t.RatingsAverage = 4.5
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
}

// Slugify lowercases and hyphenates a tour name for URL use.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
