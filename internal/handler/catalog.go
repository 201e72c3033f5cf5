package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/tickethub/internal/server"
)

// nonNil returns an empty slice rather than nil so lists encode as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(ctx context.Context, req *server.Request) *server.Response {
	events, err := h.Catalog.Events(ctx, eventFilter(req))
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "events": nonNil(events)})
}

// GetEvent handles GET /api/event?id=.
func (h *Handler) GetEvent(ctx context.Context, req *server.Request) *server.Response {
	id, err := queryID(req, "id")
	if err != nil {
		return h.fail(req, err)
	}
	event, err := h.Catalog.Event(ctx, id)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "event": event})
}

// Genres handles GET /api/genres.
func (h *Handler) Genres(ctx context.Context, req *server.Request) *server.Response {
	genres, err := h.Catalog.Genres(ctx)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "genres": nonNil(genres)})
}

// Cities handles GET /api/cities.
func (h *Handler) Cities(ctx context.Context, req *server.Request) *server.Response {
	cities, err := h.Catalog.Cities(ctx)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "cities": nonNil(cities)})
}

// Venues handles GET /api/venues.
func (h *Handler) Venues(ctx context.Context, req *server.Request) *server.Response {
	venues, err := h.Catalog.Venues(ctx)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "venues": nonNil(venues)})
}

// Categories handles GET /api/categories?eventId=.
func (h *Handler) Categories(ctx context.Context, req *server.Request) *server.Response {
	eventID, err := queryID(req, "eventId")
	if err != nil {
		return h.fail(req, err)
	}
	categories, err := h.Catalog.Categories(ctx, eventID)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "categories": nonNil(categories)})
}

// AvailableTickets handles GET /api/tickets/available?eventId=&categoryId=.
// categoryId is optional.
func (h *Handler) AvailableTickets(ctx context.Context, req *server.Request) *server.Response {
	eventID, err := queryID(req, "eventId")
	if err != nil {
		return h.fail(req, err)
	}
	var categoryID int64
	if req.QueryParam("categoryId") != "" {
		if categoryID, err = queryID(req, "categoryId"); err != nil {
			return h.fail(req, err)
		}
	}
	tickets, err := h.Catalog.AvailableTickets(ctx, eventID, categoryID)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "tickets": nonNil(tickets)})
}
