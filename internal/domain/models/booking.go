package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Price     float64            `bson:"price" json:"price" binding:"required,gt=0"`
	Paid      bool               `bson:"paid" json:"paid"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (b *Booking) BeforeInsert() {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
}
