package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"

	"tourbook/internal/domain/models"
)

var BookingFilterFields = []string{"price", "paid"}

type BookingRepository struct {
	*Repository[models.Booking]
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		Repository: NewRepository[models.Booking](db.Collection("bookings"), "booking"),
	}
}
