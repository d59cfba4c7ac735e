package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/http/middleware"
	"tourbook/internal/repositories"
	"tourbook/internal/services"
)

type Bookings struct {
	CRUD     CRUD[models.Booking]
	Service  services.BookingService
	Invoices services.InvoiceService
}

func NewBookings(repo *repositories.BookingRepository, svc services.BookingService, invoices services.InvoiceService) Bookings {
	return Bookings{
		CRUD: CRUD[models.Booking]{
			Store:      repo.Repository,
			Resource:   "booking",
			Filterable: repositories.BookingFilterFields,
		},
		Service:  svc,
		Invoices: invoices,
	}
}

// GET /api/v1/bookings/checkout-session/:tourId
func (h Bookings) CheckoutSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Error(c, domain.InternalError{Msg: "no principal on protected route"})
		return
	}

	sess, err := h.Service.CreateCheckoutSession(c.Request.Context(), c.Param("tourId"), user, requestBaseURL(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"session": sess})
}

// POST /webhook-checkout
//
// The payload must stay raw: the provider signature covers the exact bytes.
func (h Bookings) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		Error(c, domain.ValidationError{Msg: "unreadable webhook payload", Err: err})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.Service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /api/v1/bookings/:id/invoice
func (h Bookings) Invoice(c *gin.Context) {
	data, filename, err := h.Invoices.GenerateInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
