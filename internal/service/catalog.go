package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/cache"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// Cache keys of catalog lookups.
const (
	keyGenres = "genres"
	keyCities = "cities"
	keyVenues = "venues"
)

// CatalogStore reads events, venues, categories and tickets.
type CatalogStore interface {
	Events(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	EventByID(ctx context.Context, id int64) (*model.Event, error)
	Genres(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
	Venues(ctx context.Context, city string) ([]model.Venue, error)
	VenueByID(ctx context.Context, id int64) (*model.Venue, error)
	VenueCategories(ctx context.Context, venueID int64) ([]model.VenueCategory, error)
	Categories(ctx context.Context, eventID int64) ([]model.Category, error)
	AvailableTickets(ctx context.Context, eventID, categoryID int64) ([]model.Ticket, error)
}

// CatalogService serves the public, read-only catalog.
type CatalogService struct {
	store CatalogStore
	cache cache.Cache
	log   logrus.FieldLogger
}

// NewCatalogService constructs a CatalogService. A nil cache disables
// caching.
func NewCatalogService(store CatalogStore, c cache.Cache, log logrus.FieldLogger) *CatalogService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CatalogService{store: store, cache: c, log: log}
}

func trimFilter(f model.EventFilter) model.EventFilter {
	return model.EventFilter{
		Genre:          strings.TrimSpace(f.Genre),
		City:           strings.TrimSpace(f.City),
		DateFrom:       strings.TrimSpace(f.DateFrom),
		DateTo:         strings.TrimSpace(f.DateTo),
		Venue:          strings.TrimSpace(f.Venue),
		AgeRestriction: strings.TrimSpace(f.AgeRestriction),
	}
}

// Events lists events matching f.
func (s *CatalogService) Events(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	return s.store.Events(ctx, trimFilter(f))
}

// Event returns a single event by id.
func (s *CatalogService) Event(ctx context.Context, id int64) (*model.Event, error) {
	if id <= 0 {
		return nil, model.Invalid("event id is required")
	}
	return s.store.EventByID(ctx, id)
}

func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, s.log, keyGenres, s.store.Genres)
}

func (s *CatalogService) Cities(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, s.log, keyCities, s.store.Cities)
}

func (s *CatalogService) Venues(ctx context.Context) ([]model.Venue, error) {
	return cached(ctx, s.cache, s.log, keyVenues, func(ctx context.Context) ([]model.Venue, error) {
		return s.store.Venues(ctx, "")
	})
}

// Categories lists the ticket categories of an event.
func (s *CatalogService) Categories(ctx context.Context, eventID int64) ([]model.Category, error) {
	if eventID <= 0 {
		return nil, model.Invalid("eventId is required")
	}
	return s.store.Categories(ctx, eventID)
}

// AvailableTickets lists bookable tickets of an event, optionally within
// one category.
func (s *CatalogService) AvailableTickets(ctx context.Context, eventID, categoryID int64) ([]model.Ticket, error) {
	if eventID <= 0 {
		return nil, model.Invalid("eventId is required")
	}
	return s.store.AvailableTickets(ctx, eventID, categoryID)
}
