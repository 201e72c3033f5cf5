package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/tickethub/internal/booking"
	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// BookingRepository stores bookings. It is the booking engine's Store.
type BookingRepository struct {
	gw *database.Gateway
}

var _ booking.Store = (*BookingRepository)(nil)

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(gw *database.Gateway) *BookingRepository {
	return &BookingRepository{gw: gw}
}

// WithinTx runs fn inside one database transaction.
func (r *BookingRepository) WithinTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return r.gw.InTx(ctx, func(tx *database.Gateway) error {
		return fn(bookingTx{gw: tx})
	})
}

// List returns the bookings of userID matching f, newest first.
func (r *BookingRepository) List(ctx context.Context, userID int64, f model.EventFilter) ([]model.BookingView, error) {
	params := append([]any{userID}, filterParams(f)...)
	rows, err := r.gw.Execute(ctx, "get_user_bookings_filtered", params...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]model.BookingView, 0, len(rows))
	for _, row := range rows {
		out = append(out, scanBookingView(row))
	}
	return out, nil
}

// Details returns one booking of userID or model.ErrNotFound.
func (r *BookingRepository) Details(ctx context.Context, userID, bookingID int64) (*model.BookingView, error) {
	rows, err := r.gw.Execute(ctx, "get_booking_details", bookingID, userID)
	row, err := one(rows, err, "booking")
	if err != nil {
		return nil, err
	}
	v := scanBookingView(row)
	v.Event.ImageURL = row.String("image_url")
	v.Event.Description = row.String("description")
	v.Event.VenueAddress = row.String("venue_address")
	return &v, nil
}

func scanBookingView(row database.Row) model.BookingView {
	return model.BookingView{
		BookingID:   row.Int64("booking_id"),
		BookingDate: row.String("booking_date"),
		Status:      model.BookingStatus(row.String("status")),
		Ticket: model.BookingTicket{
			ID:           row.Int64("ticket_id"),
			RowNumber:    row.Int("row_number"),
			SeatNumber:   row.Int("seat_number"),
			Price:        row.Float64("price"),
			CategoryName: row.String("category_name"),
		},
		Event: model.BookingEventInfo{
			ID:             row.Int64("event_id"),
			Title:          row.String("title"),
			Genre:          row.String("genre"),
			EventDate:      row.String("event_date"),
			AgeRestriction: row.String("age_restriction"),
			VenueName:      row.String("venue_name"),
			VenueCity:      row.String("venue_city"),
			LayoutType:     row.String("layout_type"),
		},
	}
}

type bookingTx struct {
	gw *database.Gateway
}

func (t bookingTx) TicketForUpdate(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	rows, err := t.gw.Execute(ctx, "get_ticket_by_id", ticketID)
	row, err := one(rows, err, "ticket")
	if err != nil {
		return nil, err
	}
	ticket := scanTicket(row)
	return &ticket, nil
}

func (t bookingTx) MarkTicketUnavailable(ctx context.Context, ticketID int64) (bool, error) {
	n, err := t.gw.Exec(ctx, "mark_ticket_unavailable", ticketID)
	return n == 1, err
}

func (t bookingTx) RestoreTicket(ctx context.Context, ticketID int64) error {
	_, err := t.gw.Exec(ctx, "restore_ticket_availability", ticketID)
	return err
}

func (t bookingTx) RecountCategory(ctx context.Context, categoryID int64) error {
	_, err := t.gw.Exec(ctx, "recount_category_available_seats", categoryID)
	return err
}

func (t bookingTx) CreateBooking(ctx context.Context, userID, ticketID, eventID int64) (int64, error) {
	rows, err := t.gw.Execute(ctx, "book_ticket", userID, ticketID, eventID)
	if isUniqueViolation(err) {
		return 0, model.ErrTicketBooked
	}
	return returnedID(rows, err, "booking")
}

func (t bookingTx) BookingForUpdate(ctx context.Context, userID, bookingID int64) (*model.Booking, error) {
	rows, err := t.gw.Execute(ctx, "get_booking_for_cancel", bookingID, userID)
	row, err := one(rows, err, "booking")
	if err != nil {
		return nil, err
	}
	return &model.Booking{
		ID:        row.Int64("id"),
		UserID:    row.Int64("user_id"),
		TicketID:  row.Int64("ticket_id"),
		EventID:   row.Int64("event_id"),
		Status:    model.BookingStatus(row.String("status")),
		CreatedAt: row.Time("booking_date"),
	}, nil
}

func (t bookingTx) MarkBookingCancelled(ctx context.Context, userID, bookingID int64) (bool, error) {
	n, err := t.gw.Exec(ctx, "cancel_booking", bookingID, userID)
	return n == 1, err
}
