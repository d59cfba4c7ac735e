package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    float64            `bson:"rating" json:"rating" binding:"required,min=1,max=5"`
	Message   string             `bson:"message" json:"message" binding:"required"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Author is resolved on reads, never persisted.
	Author *ReviewAuthor `bson:"-" json:"author,omitempty"`
}

// ReviewAuthor is the public slice of the reviewing user.
type ReviewAuthor struct {
	Name  string `bson:"name" json:"name"`
	Photo string `bson:"photo,omitempty" json:"photo,omitempty"`
}

func (r *Review) BeforeInsert() {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}
