package service

import (
	"context"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// Booker books and cancels tickets atomically.
type Booker interface {
	Book(ctx context.Context, userID, ticketID, eventID int64) (int64, error)
	Cancel(ctx context.Context, userID, bookingID int64) error
}

// BookingReader reads a user's bookings.
type BookingReader interface {
	List(ctx context.Context, userID int64, f model.EventFilter) ([]model.BookingView, error)
	Details(ctx context.Context, userID, bookingID int64) (*model.BookingView, error)
}

// BookingService validates booking requests for the engine and serves a
// user's booking history.
type BookingService struct {
	engine   Booker
	bookings BookingReader
}

// NewBookingService constructs a BookingService.
func NewBookingService(engine Booker, bookings BookingReader) *BookingService {
	return &BookingService{engine: engine, bookings: bookings}
}

// Book reserves a ticket for userID and returns the booking id.
func (s *BookingService) Book(ctx context.Context, userID int64, req model.BookRequest) (int64, error) {
	if req.TicketID <= 0 || req.EventID <= 0 {
		return 0, model.Invalid("ticketId and eventId are required")
	}
	return s.engine.Book(ctx, userID, req.TicketID, req.EventID)
}

// Cancel cancels an active booking of userID.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID int64) error {
	if bookingID <= 0 {
		return model.Invalid("bookingId is required")
	}
	return s.engine.Cancel(ctx, userID, bookingID)
}

// List returns the bookings of userID matching f.
func (s *BookingService) List(ctx context.Context, userID int64, f model.EventFilter) ([]model.BookingView, error) {
	return s.bookings.List(ctx, userID, trimFilter(f))
}

// Details returns one booking of userID.
func (s *BookingService) Details(ctx context.Context, userID, bookingID int64) (*model.BookingView, error) {
	if bookingID <= 0 {
		return nil, model.Invalid("booking id is required")
	}
	return s.bookings.Details(ctx, userID, bookingID)
}
