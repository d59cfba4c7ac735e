package services

import (
	"context"
	"fmt"
	"math"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/payment"
	"tourbook/internal/repositories"
	"tourbook/internal/utils"
)

// BookingService drives the payment-backed booking flow: checkout session
// creation and booking creation from verified webhook events.
type BookingService struct {
	Bookings  *repositories.BookingRepository
	Tours     *repositories.TourRepository
	Users     *repositories.UserRepository
	Provider  payment.Provider
	RequestID string
}

// CreateCheckoutSession builds a provider checkout session for one tour.
func (s BookingService) CreateCheckoutSession(ctx context.Context, tourID string, user *models.User, baseURL string) (payment.CheckoutSession, error) {
	tour, err := s.Tours.FindByID(ctx, tourID)
	if err != nil {
		return payment.CheckoutSession{}, err
	}

	params := payment.CheckoutParams{
		TourID:        tour.ID.Hex(),
		TourName:      tour.Name,
		TourSummary:   tour.Summary,
		TourImageURL:  fmt.Sprintf("%s/img/tours/%s", baseURL, tour.ImageCover),
		CustomerEmail: user.Email,
		AmountCents:   priceCents(tour.Price),
		SuccessURL:    baseURL + "/my-bookings",
		CancelURL:     baseURL + "/tour/" + tour.Slug,
	}

	sess, err := s.Provider.CreateSession(ctx, params)
	if err != nil {
		return payment.CheckoutSession{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "checkout_session", "tour="+tourID)
	return sess, nil
}

// priceCents converts a price to the smallest currency unit. Rounded, not
// truncated: 19.99 * 100 is 1998.999... in float64.
func priceCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// HandleWebhook verifies and processes a provider event. A completed
// checkout creates the booking record.
func (s BookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type != payment.EventCheckoutCompleted {
		return nil
	}

	tour, err := s.Tours.FindByID(ctx, event.TourID)
	if err != nil {
		return err
	}
	user, err := s.Users.FindByEmail(ctx, event.CustomerEmail)
	if err != nil {
		return domain.NotFoundError{Resource: "user", Err: err}
	}

	booking := models.Booking{
		Tour:  tour.ID,
		User:  user.ID,
		Price: float64(event.AmountCents) / 100,
		Paid:  true,
	}
	if err := s.Bookings.CreateOne(ctx, &booking); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "booking", "webhook_checkout", "booking="+booking.ID.Hex())
	return nil
}
