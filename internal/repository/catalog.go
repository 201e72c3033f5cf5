package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// CatalogRepository serves the read side of events, venues, categories and
// tickets.
type CatalogRepository struct {
	gw *database.Gateway
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(gw *database.Gateway) *CatalogRepository {
	return &CatalogRepository{gw: gw}
}

func filterParams(f model.EventFilter) []any {
	return []any{
		database.NullIfEmpty(f.Genre),
		database.NullIfEmpty(f.City),
		database.NullIfEmpty(f.DateFrom),
		database.NullIfEmpty(f.DateTo),
		database.NullIfEmpty(f.Venue),
		database.NullIfEmpty(f.AgeRestriction),
	}
}

// Events lists events matching f ordered by date.
func (r *CatalogRepository) Events(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	rows, err := r.gw.Execute(ctx, "get_events_filtered", filterParams(f)...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, scanEvent(row))
	}
	return events, nil
}

// EventByID returns a single event or model.ErrNotFound.
func (r *CatalogRepository) EventByID(ctx context.Context, id int64) (*model.Event, error) {
	rows, err := r.gw.Execute(ctx, "get_event_by_id", id)
	row, err := one(rows, err, "event")
	if err != nil {
		return nil, err
	}
	e := scanEvent(row)
	return &e, nil
}

func scanEvent(row database.Row) model.Event {
	e := model.Event{
		ID:             row.Int64("id"),
		Title:          row.String("title"),
		Genre:          row.String("genre"),
		EventDate:      row.String("event_date"),
		AgeRestriction: row.String("age_restriction"),
		Description:    row.String("description"),
		Venue: model.Venue{
			ID:         row.Int64("venue_id"),
			Name:       row.String("venue_name"),
			City:       row.String("venue_city"),
			Address:    row.String("venue_address"),
			LayoutType: row.String("layout_type"),
		},
		TotalTickets:     row.Int("total_tickets"),
		AvailableTickets: row.Int("available_tickets"),
	}
	e.MarkLowTickets()
	return e
}

func (r *CatalogRepository) column(ctx context.Context, query, col string) ([]string, error) {
	rows, err := r.gw.Execute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col, err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.String(col))
	}
	return out, nil
}

// Genres lists the distinct genres of all events.
func (r *CatalogRepository) Genres(ctx context.Context) ([]string, error) {
	return r.column(ctx, "get_genres", "genre")
}

// Cities lists the distinct cities of all venues.
func (r *CatalogRepository) Cities(ctx context.Context) ([]string, error) {
	return r.column(ctx, "get_cities", "city")
}

// Venues lists venues, restricted to city when it is not empty.
func (r *CatalogRepository) Venues(ctx context.Context, city string) ([]model.Venue, error) {
	var (
		rows []database.Row
		err  error
	)
	if city == "" {
		rows, err = r.gw.Execute(ctx, "get_venues")
	} else {
		rows, err = r.gw.Execute(ctx, "get_venues_by_city", city)
	}
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	venues := make([]model.Venue, 0, len(rows))
	for _, row := range rows {
		venues = append(venues, scanVenue(row))
	}
	return venues, nil
}

// VenueByID returns a venue or model.ErrNotFound.
func (r *CatalogRepository) VenueByID(ctx context.Context, id int64) (*model.Venue, error) {
	rows, err := r.gw.Execute(ctx, "get_venue_by_id", id)
	row, err := one(rows, err, "venue")
	if err != nil {
		return nil, err
	}
	v := scanVenue(row)
	return &v, nil
}

func scanVenue(row database.Row) model.Venue {
	return model.Venue{
		ID:         row.Int64("id"),
		Name:       row.String("name"),
		City:       row.String("city"),
		Address:    row.String("address"),
		Capacity:   row.Int("capacity"),
		LayoutType: row.String("layout_type"),
	}
}

// VenueCategories lists the default seating layout of a venue.
func (r *CatalogRepository) VenueCategories(ctx context.Context, venueID int64) ([]model.VenueCategory, error) {
	rows, err := r.gw.Execute(ctx, "get_venue_default_categories", venueID)
	if err != nil {
		return nil, fmt.Errorf("list venue categories: %w", err)
	}
	out := make([]model.VenueCategory, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.VenueCategory{
			ID:           row.Int64("id"),
			VenueID:      row.Int64("venue_id"),
			Name:         row.String("category_name"),
			RowsCount:    row.Int("rows_count"),
			SeatsPerRow:  row.Int("seats_per_row"),
			DefaultPrice: row.Float64("default_price"),
		})
	}
	return out, nil
}

// Categories lists the ticket categories of an event, most expensive first.
func (r *CatalogRepository) Categories(ctx context.Context, eventID int64) ([]model.Category, error) {
	return categoriesByEvent(ctx, r.gw, eventID)
}

func categoriesByEvent(ctx context.Context, gw *database.Gateway, eventID int64) ([]model.Category, error) {
	rows, err := gw.Execute(ctx, "get_ticket_categories_by_event", eventID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Category{
			ID:             row.Int64("id"),
			EventID:        row.Int64("event_id"),
			Name:           row.String("category_name"),
			Price:          row.Float64("price"),
			TotalSeats:     row.Int("total_seats"),
			AvailableSeats: row.Int("available_seats"),
			RowsCount:      row.Int("rows_count"),
			SeatsPerRow:    row.Int("seats_per_row"),
		})
	}
	return out, nil
}

// AvailableTickets lists the bookable tickets of an event. A positive
// categoryID restricts the listing to that category.
func (r *CatalogRepository) AvailableTickets(ctx context.Context, eventID, categoryID int64) ([]model.Ticket, error) {
	var (
		rows []database.Row
		err  error
	)
	if categoryID > 0 {
		rows, err = r.gw.Execute(ctx, "get_available_tickets_by_category", eventID, categoryID)
	} else {
		rows, err = r.gw.Execute(ctx, "get_available_tickets_by_event", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	out := make([]model.Ticket, 0, len(rows))
	for _, row := range rows {
		t := scanTicket(row)
		t.CategoryName = row.String("category_name")
		out = append(out, t)
	}
	return out, nil
}

func scanTicket(row database.Row) model.Ticket {
	return model.Ticket{
		ID:         row.Int64("id"),
		EventID:    row.Int64("event_id"),
		CategoryID: row.Int64("category_id"),
		RowNumber:  row.Int("row_number"),
		SeatNumber: row.Int("seat_number"),
		Price:      row.Float64("price"),
		Available:  row.Bool("is_available"),
	}
}
