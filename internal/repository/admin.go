package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// AdminRepository performs event administration writes. Each operation runs
// in one transaction so an event is never left with half of its tickets.
type AdminRepository struct {
	gw *database.Gateway
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(gw *database.Gateway) *AdminRepository {
	return &AdminRepository{gw: gw}
}

// CreateEvent inserts an event with its categories and generates their
// tickets. Seated categories get one ticket per row and seat; others get
// TotalSeats standing tickets numbered from 1.
func (r *AdminRepository) CreateEvent(ctx context.Context, req model.CreateEventRequest, createdBy int64) (int64, error) {
	var eventID int64
	err := r.gw.InTx(ctx, func(tx *database.Gateway) error {
		rows, err := tx.Execute(ctx, "create_event",
			req.Title, req.Genre, req.VenueID, req.EventDate, req.AgeRestriction, req.Description, createdBy)
		eventID, err = returnedID(rows, err, "event")
		if err != nil {
			return err
		}

		for _, c := range req.Categories {
			rows, err := tx.Execute(ctx, "create_ticket_category",
				eventID, c.Name, c.Price, c.TotalSeats, c.RowsCount, c.SeatsPerRow)
			categoryID, err := returnedID(rows, err, "ticket category")
			if err != nil {
				return err
			}
			if err := createTickets(ctx, tx, eventID, categoryID, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return eventID, nil
}

func createTickets(ctx context.Context, tx *database.Gateway, eventID, categoryID int64, c model.CategoryInput) error {
	var err error
	if c.RowsCount > 0 && c.SeatsPerRow > 0 {
		_, err = tx.Exec(ctx, "create_seated_tickets", eventID, categoryID, c.Price, c.RowsCount, c.SeatsPerRow)
	} else if c.TotalSeats > 0 {
		_, err = tx.Exec(ctx, "create_standing_tickets", eventID, categoryID, c.Price, 1, c.TotalSeats)
	}
	if err != nil {
		return fmt.Errorf("create tickets: %w", err)
	}
	return nil
}

// EventForEdit returns an event with its categories or model.ErrNotFound.
func (r *AdminRepository) EventForEdit(ctx context.Context, id int64) (*model.EventDetails, error) {
	rows, err := r.gw.Execute(ctx, "get_event_by_id", id)
	row, err := one(rows, err, "event")
	if err != nil {
		return nil, err
	}
	categories, err := categoriesByEvent(ctx, r.gw, id)
	if err != nil {
		return nil, err
	}
	return &model.EventDetails{
		ID:             row.Int64("id"),
		Title:          row.String("title"),
		Genre:          row.String("genre"),
		EventDate:      row.String("event_date"),
		AgeRestriction: row.String("age_restriction"),
		Description:    row.String("description"),
		VenueID:        row.Int64("venue_id"),
		VenueName:      row.String("venue_name"),
		VenueCity:      row.String("venue_city"),
		Categories:     categories,
	}, nil
}

// UpdateEvent changes an event's details and resizes or reprices its
// categories. Sold tickets are never removed, so a category shrunk below
// its sold count keeps every sold ticket and has no available seats left.
func (r *AdminRepository) UpdateEvent(ctx context.Context, req model.UpdateEventRequest) error {
	return r.gw.InTx(ctx, func(tx *database.Gateway) error {
		n, err := tx.Exec(ctx, "update_event",
			req.Title, req.Genre, req.EventDate, req.AgeRestriction, req.Description, req.ID)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if n == 0 {
			return model.ErrNotFound
		}

		current, err := categoriesByEvent(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		byID := make(map[int64]model.Category, len(current))
		for _, c := range current {
			byID[c.ID] = c
		}

		for _, u := range req.Categories {
			c, ok := byID[u.ID]
			if !ok {
				return model.ErrNotFound
			}
			if err := resizeCategory(ctx, tx, req.ID, c, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func resizeCategory(ctx context.Context, tx *database.Gateway, eventID int64, c model.Category, u model.CategoryUpdate) error {
	switch diff := u.TotalSeats - c.TotalSeats; {
	case diff > 0:
		rows, err := tx.Execute(ctx, "get_max_seat_number", c.ID)
		if err != nil {
			return fmt.Errorf("get max seat: %w", err)
		}
		from := 1
		if len(rows) > 0 {
			from = rows[0].Int("max_seat") + 1
		}
		if _, err := tx.Exec(ctx, "create_standing_tickets", eventID, c.ID, u.Price, from, from+diff-1); err != nil {
			return fmt.Errorf("grow category: %w", err)
		}
	case diff < 0:
		if _, err := tx.Exec(ctx, "shrink_category_tickets", c.ID, -diff); err != nil {
			return fmt.Errorf("shrink category: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, "reprice_category_tickets", u.Price, c.ID); err != nil {
		return fmt.Errorf("reprice category: %w", err)
	}
	if _, err := tx.Exec(ctx, "update_ticket_category", u.Price, c.ID, eventID); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteEvent removes an event together with its categories, tickets and
// bookings.
func (r *AdminRepository) DeleteEvent(ctx context.Context, id int64) error {
	n, err := r.gw.Exec(ctx, "delete_event", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
