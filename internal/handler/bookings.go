package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
	"github.com/Shivanand-hulikatti/tickethub/internal/server"
)

// Book handles POST /api/book.
// Performs a concurrency-safe booking of one ticket.
func (h *Handler) Book(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	var body model.BookRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	id, err := h.Bookings.Book(ctx, user.ID, body)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusCreated, map[string]any{"success": true, "bookingId": id, "message": "ticket booked"})
}

// CancelBooking handles DELETE /api/book?bookingId=.
func (h *Handler) CancelBooking(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	id, err := queryID(req, "bookingId")
	if err != nil {
		return h.fail(req, err)
	}
	if err := h.Bookings.Cancel(ctx, user.ID, id); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "booking cancelled")
}

// ListBookings handles GET /api/bookings. It accepts the event filters.
func (h *Handler) ListBookings(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	bookings, err := h.Bookings.List(ctx, user.ID, eventFilter(req))
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "bookings": nonNil(bookings)})
}

// GetBooking handles GET /api/booking?id=.
func (h *Handler) GetBooking(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	id, err := queryID(req, "id")
	if err != nil {
		return h.fail(req, err)
	}
	booking, err := h.Bookings.Details(ctx, user.ID, id)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "booking": booking})
}
