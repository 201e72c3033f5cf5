// Package booking implements the ticket booking and cancellation engine.
//
// Every booking and cancellation runs under one process-wide mutex and
// inside a single store transaction. The availability flip is conditional
// and its affected-row count is checked, so two requests can never acquire
// the same seat even if the store is shared with another process.
package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// Store opens the transaction a booking operation runs in. The transaction
// commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of storage steps the engine needs.
type Tx interface {
	// TicketForUpdate loads and locks a ticket, or returns model.ErrNotFound.
	TicketForUpdate(ctx context.Context, ticketID int64) (*model.Ticket, error)
	// MarkTicketUnavailable flips an available ticket to booked and reports
	// whether it did.
	MarkTicketUnavailable(ctx context.Context, ticketID int64) (bool, error)
	// RestoreTicket flips a booked ticket back to available.
	RestoreTicket(ctx context.Context, ticketID int64) error
	// RecountCategory sets the category's available seats to the number of
	// its available tickets.
	RecountCategory(ctx context.Context, categoryID int64) error
	// CreateBooking inserts an active booking and returns its id.
	CreateBooking(ctx context.Context, userID, ticketID, eventID int64) (int64, error)
	// BookingForUpdate loads and locks a booking owned by userID, or returns
	// model.ErrNotFound.
	BookingForUpdate(ctx context.Context, userID, bookingID int64) (*model.Booking, error)
	// MarkBookingCancelled moves an active booking to cancelled and reports
	// whether it did.
	MarkBookingCancelled(ctx context.Context, userID, bookingID int64) (bool, error)
}

// Engine books and cancels tickets.
type Engine struct {
	mu    sync.Mutex
	store Store
	log   logrus.FieldLogger
}

// NewEngine constructs an Engine over store.
func NewEngine(store Store, log logrus.FieldLogger) *Engine {
	return &Engine{store: store, log: log}
}

// Book reserves ticketID for userID and returns the new booking id.
// It fails with model.ErrNotFound when the ticket does not exist or belongs
// to another event, and with model.ErrTicketBooked when it is already held.
func (e *Engine) Book(ctx context.Context, userID, ticketID, eventID int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var bookingID int64
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		ticket, err := tx.TicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.EventID != eventID {
			return model.ErrNotFound
		}
		if !ticket.Available {
			return model.ErrTicketBooked
		}

		flipped, err := tx.MarkTicketUnavailable(ctx, ticketID)
		if err != nil {
			return fmt.Errorf("mark ticket unavailable: %w", err)
		}
		if !flipped {
			return model.ErrTicketBooked
		}

		bookingID, err = tx.CreateBooking(ctx, userID, ticketID, eventID)
		if err != nil {
			return err
		}

		if err := tx.RecountCategory(ctx, ticket.CategoryID); err != nil {
			return fmt.Errorf("recount category: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
		"ticket_id":  ticketID,
		"event_id":   eventID,
	}).Info("ticket booked")
	return bookingID, nil
}

// Cancel cancels an active booking owned by userID and releases its ticket.
// A missing, foreign or already cancelled booking yields model.ErrNotFound.
func (e *Engine) Cancel(ctx context.Context, userID, bookingID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ticketID int64
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, userID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingActive {
			return model.ErrNotFound
		}
		ticketID = b.TicketID

		ticket, err := tx.TicketForUpdate(ctx, b.TicketID)
		if err != nil {
			return err
		}

		cancelled, err := tx.MarkBookingCancelled(ctx, userID, bookingID)
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		if !cancelled {
			return model.ErrNotFound
		}

		if err := tx.RestoreTicket(ctx, ticket.ID); err != nil {
			return fmt.Errorf("restore ticket: %w", err)
		}
		if err := tx.RecountCategory(ctx, ticket.CategoryID); err != nil {
			return fmt.Errorf("recount category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
		"ticket_id":  ticketID,
	}).Info("booking cancelled")
	return nil
}
