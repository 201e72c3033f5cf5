package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/cache"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// AdminStore performs event administration writes.
type AdminStore interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest, createdBy int64) (int64, error)
	EventForEdit(ctx context.Context, id int64) (*model.EventDetails, error)
	UpdateEvent(ctx context.Context, req model.UpdateEventRequest) error
	DeleteEvent(ctx context.Context, id int64) error
}

// AdminService creates, edits and removes events. Callers are expected to
// have checked the admin role.
type AdminService struct {
	store   AdminStore
	catalog CatalogStore
	cache   cache.Cache
	log     logrus.FieldLogger
}

// NewAdminService constructs an AdminService. A nil cache disables
// invalidation.
func NewAdminService(store AdminStore, catalog CatalogStore, c cache.Cache, log logrus.FieldLogger) *AdminService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AdminService{store: store, catalog: catalog, cache: c, log: log}
}

// Venues lists venues, restricted to city when it is not empty.
func (s *AdminService) Venues(ctx context.Context, city string) ([]model.Venue, error) {
	return s.catalog.Venues(ctx, strings.TrimSpace(city))
}

// VenueCategories lists the default seating layout of a venue.
func (s *AdminService) VenueCategories(ctx context.Context, venueID int64) ([]model.VenueCategory, error) {
	if venueID <= 0 {
		return nil, model.Invalid("venueId is required")
	}
	return s.catalog.VenueCategories(ctx, venueID)
}

// CreateEvent validates req and creates the event with its tickets. Seated
// categories are sized rows × seats per row. The total across categories
// may not exceed the venue capacity.
func (s *AdminService) CreateEvent(ctx context.Context, admin *model.User, req model.CreateEventRequest) (int64, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Genre = strings.TrimSpace(req.Genre)
	req.AgeRestriction = strings.TrimSpace(req.AgeRestriction)
	req.Description = strings.TrimSpace(req.Description)

	if req.Title == "" || req.Genre == "" {
		return 0, model.Invalid("title and genre are required")
	}
	if req.VenueID <= 0 {
		return 0, model.Invalid("venueId is required")
	}
	date, err := normalizeEventDate(req.EventDate)
	if err != nil {
		return 0, err
	}
	req.EventDate = date
	if req.AgeRestriction == "" {
		req.AgeRestriction = "0+"
	}
	if len(req.Categories) == 0 {
		return 0, model.Invalid("at least one ticket category is required")
	}

	total := 0
	categories := make([]model.CategoryInput, len(req.Categories))
	for i, c := range req.Categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return 0, model.Invalid("categoryName is required")
		}
		if c.Price < 0 {
			return 0, model.Invalid("price cannot be negative")
		}
		if c.RowsCount < 0 || c.SeatsPerRow < 0 {
			return 0, model.Invalid("rowsCount and seatsPerRow cannot be negative")
		}
		if c.RowsCount > 0 && c.SeatsPerRow > 0 {
			c.TotalSeats = c.RowsCount * c.SeatsPerRow
		} else {
			c.RowsCount, c.SeatsPerRow = 0, 0
		}
		if c.TotalSeats <= 0 {
			return 0, model.Invalid(fmt.Sprintf("category %q must have at least one seat", c.Name))
		}
		total += c.TotalSeats
		categories[i] = c
	}
	req.Categories = categories

	venue, err := s.catalog.VenueByID(ctx, req.VenueID)
	if errors.Is(err, model.ErrNotFound) {
		return 0, model.Invalid("venue not found")
	}
	if err != nil {
		return 0, err
	}
	if venue.Capacity > 0 && total > venue.Capacity {
		return 0, model.Invalid(fmt.Sprintf("%d tickets exceed the venue capacity of %d", total, venue.Capacity))
	}

	id, err := s.store.CreateEvent(ctx, req, admin.ID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"event_id": id, "admin_id": admin.ID, "tickets": total}).Info("event created")
	return id, nil
}

// Event returns an event with its categories for editing.
func (s *AdminService) Event(ctx context.Context, id int64) (*model.EventDetails, error) {
	if id <= 0 {
		return nil, model.Invalid("event id is required")
	}
	return s.store.EventForEdit(ctx, id)
}

// UpdateEvent changes an event's details and its categories' price and
// size. A category keeps its sold tickets, so its available seats become
// the new total minus the sold count, never below zero.
func (s *AdminService) UpdateEvent(ctx context.Context, admin *model.User, req model.UpdateEventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Genre = strings.TrimSpace(req.Genre)
	req.AgeRestriction = strings.TrimSpace(req.AgeRestriction)
	req.Description = strings.TrimSpace(req.Description)

	if req.ID <= 0 {
		return model.Invalid("event id is required")
	}
	if req.Title == "" || req.Genre == "" {
		return model.Invalid("title and genre are required")
	}
	date, err := normalizeEventDate(req.EventDate)
	if err != nil {
		return err
	}
	req.EventDate = date
	if req.AgeRestriction == "" {
		req.AgeRestriction = "0+"
	}
	for _, c := range req.Categories {
		if c.ID <= 0 {
			return model.Invalid("categoryId is required")
		}
		if c.Price < 0 || c.TotalSeats < 0 {
			return model.Invalid("price and totalSeats cannot be negative")
		}
	}

	if err := s.store.UpdateEvent(ctx, req); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"event_id": req.ID, "admin_id": admin.ID}).Info("event updated")
	return nil
}

// DeleteEvent removes an event with its tickets and bookings.
func (s *AdminService) DeleteEvent(ctx context.Context, admin *model.User, id int64) error {
	if id <= 0 {
		return model.Invalid("event id is required")
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"event_id": id, "admin_id": admin.ID}).Info("event deleted")
	return nil
}

func (s *AdminService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, keyGenres); err != nil {
		s.log.WithError(err).Warn("cache invalidation failed")
	}
}
