package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"tourbook/internal/repositories"
	"tourbook/internal/utils"
)

// InvoiceService renders booking invoices as PDF.
type InvoiceService struct {
	Bookings  *repositories.BookingRepository
	Tours     *repositories.TourRepository
	Users     *repositories.UserRepository
	RequestID string
	// Loader overrides data loading in tests.
	Loader func(ctx context.Context, bookingID string) (invoiceData, error)
}

type invoiceData struct {
	BookingRef string
	TourName   string
	Duration   int
	StartDate  string
	UserName   string
	UserEmail  string
	Price      float64
	Paid       bool
	BookedAt   time.Time
}

func (s InvoiceService) GenerateInvoice(ctx context.Context, bookingID string) ([]byte, string, error) {
	data, err := s.loadInvoiceData(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "invoice", "generate", "booking="+bookingID)
	return buildInvoicePDF(data)
}

func (s InvoiceService) loadInvoiceData(ctx context.Context, bookingID string) (invoiceData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}

	var out invoiceData
	booking, err := s.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return out, err
	}
	out.BookingRef = strings.ToUpper(booking.ID.Hex())
	out.Price = booking.Price
	out.Paid = booking.Paid
	out.BookedAt = booking.CreatedAt

	if tour, err := s.Tours.FindByID(ctx, booking.Tour.Hex()); err == nil {
		out.TourName = tour.Name
		out.Duration = tour.Duration
		if len(tour.StartDates) > 0 {
			out.StartDate = tour.StartDates[0].Format("2006-01-02")
		}
	}
	if user, err := s.Users.FindByID(ctx, booking.User.Hex()); err == nil {
		out.UserName = user.Name
		out.UserEmail = user.Email
	}
	return out, nil
}

func buildInvoicePDF(d invoiceData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	status := "UNPAID"
	if d.Paid {
		status = "PAID"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Invoice No   : INV-%s", safe(d.BookingRef, "-")),
		fmt.Sprintf("Customer     : %s", safe(d.UserName, "-")),
		fmt.Sprintf("Email        : %s", safe(d.UserEmail, "-")),
		fmt.Sprintf("Tour         : %s", safe(d.TourName, "-")),
		fmt.Sprintf("Duration     : %d days", d.Duration),
		fmt.Sprintf("Start Date   : %s", safe(d.StartDate, "-")),
		fmt.Sprintf("Booked At    : %s", d.BookedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Amount       : USD %.2f", d.Price),
		fmt.Sprintf("Status       : %s", status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Thank you for booking with Tourbook.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("invoice-%s.pdf", strings.ToLower(d.BookingRef))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
