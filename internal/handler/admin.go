package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
	"github.com/Shivanand-hulikatti/tickethub/internal/server"
)

// AdminVenues handles GET /api/admin/venues?city=.
func (h *Handler) AdminVenues(ctx context.Context, req *server.Request, _ *model.User) *server.Response {
	venues, err := h.Admin.Venues(ctx, req.QueryParam("city"))
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "venues": nonNil(venues)})
}

// AdminVenueCategories handles GET /api/admin/venue-categories?venueId=.
func (h *Handler) AdminVenueCategories(ctx context.Context, req *server.Request, _ *model.User) *server.Response {
	venueID, err := queryID(req, "venueId")
	if err != nil {
		return h.fail(req, err)
	}
	categories, err := h.Admin.VenueCategories(ctx, venueID)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "categories": nonNil(categories)})
}

// AdminCreateEvent handles POST /api/admin/event.
func (h *Handler) AdminCreateEvent(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	var body model.CreateEventRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	id, err := h.Admin.CreateEvent(ctx, user, body)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusCreated, map[string]any{"success": true, "eventId": id, "message": "event created"})
}

// AdminGetEvent handles GET /api/admin/event?id=.
func (h *Handler) AdminGetEvent(ctx context.Context, req *server.Request, _ *model.User) *server.Response {
	id, err := queryID(req, "id")
	if err != nil {
		return h.fail(req, err)
	}
	event, err := h.Admin.Event(ctx, id)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "event": event})
}

// AdminUpdateEvent handles PUT /api/admin/event.
func (h *Handler) AdminUpdateEvent(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	var body model.UpdateEventRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Admin.UpdateEvent(ctx, user, body); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "event updated")
}

// AdminDeleteEvent handles DELETE /api/admin/event?id=.
func (h *Handler) AdminDeleteEvent(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	id, err := queryID(req, "id")
	if err != nil {
		return h.fail(req, err)
	}
	if err := h.Admin.DeleteEvent(ctx, user, id); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "event deleted")
}
