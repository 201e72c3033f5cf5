// Package handler translates raw server requests and responses to and from
// the service layer and registers the API route table.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
	"github.com/Shivanand-hulikatti/tickethub/internal/server"
	"github.com/Shivanand-hulikatti/tickethub/internal/service"
)

// Authenticator resolves the Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*model.User, error)
	RequireAdmin(ctx context.Context, header string) (*model.User, error)
}

// AuthAPI is the account side of the service layer.
type AuthAPI interface {
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	Register(ctx context.Context, req model.RegisterRequest) (*service.Session, error)
	Login(ctx context.Context, req model.LoginRequest) (*service.Session, error)
	RecoverPassword(ctx context.Context, req model.AccountRequest) error
	VerifyUserExists(ctx context.Context, req model.AccountRequest) error
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error
}

// CatalogAPI serves the public catalog.
type CatalogAPI interface {
	Events(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Event(ctx context.Context, id int64) (*model.Event, error)
	Genres(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
	Venues(ctx context.Context) ([]model.Venue, error)
	Categories(ctx context.Context, eventID int64) ([]model.Category, error)
	AvailableTickets(ctx context.Context, eventID, categoryID int64) ([]model.Ticket, error)
}

// AdminAPI manages events.
type AdminAPI interface {
	Venues(ctx context.Context, city string) ([]model.Venue, error)
	VenueCategories(ctx context.Context, venueID int64) ([]model.VenueCategory, error)
	CreateEvent(ctx context.Context, admin *model.User, req model.CreateEventRequest) (int64, error)
	Event(ctx context.Context, id int64) (*model.EventDetails, error)
	UpdateEvent(ctx context.Context, admin *model.User, req model.UpdateEventRequest) error
	DeleteEvent(ctx context.Context, admin *model.User, id int64) error
}

// BookingAPI books, cancels and lists a user's tickets.
type BookingAPI interface {
	Book(ctx context.Context, userID int64, req model.BookRequest) (int64, error)
	Cancel(ctx context.Context, userID, bookingID int64) error
	List(ctx context.Context, userID int64, f model.EventFilter) ([]model.BookingView, error)
	Details(ctx context.Context, userID, bookingID int64) (*model.BookingView, error)
}

// Deps are the services the API handlers call.
type Deps struct {
	Auth     Authenticator
	Accounts AuthAPI
	Catalog  CatalogAPI
	Admin    AdminAPI
	Bookings BookingAPI
	Log      logrus.FieldLogger
}

// Handler holds all API handlers.
type Handler struct {
	Deps
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

// Register adds the whole API route table to r.
func (h *Handler) Register(r *server.Router) {
	r.Post("/api/send-verification-code", h.SendVerificationCode)
	r.Post("/api/verify-code", h.VerifyCode)
	r.Post("/api/register", h.RegisterUser)
	r.Post("/api/login", h.Login)
	r.Get("/api/me", h.authed(h.Me))
	r.Post("/api/recover-password", h.RecoverPassword)
	r.Post("/api/verify-user-exists", h.VerifyUserExists)
	r.Post("/api/reset-password", h.ResetPassword)
	r.Post("/api/change-password", h.authed(h.ChangePassword))

	r.Get("/api/events", h.ListEvents)
	r.Get("/api/event", h.GetEvent)
	r.Get("/api/genres", h.Genres)
	r.Get("/api/cities", h.Cities)
	r.Get("/api/venues", h.Venues)
	r.Get("/api/categories", h.Categories)
	r.Get("/api/tickets/available", h.AvailableTickets)

	r.Post("/api/book", h.authed(h.Book))
	r.Delete("/api/book", h.authed(h.CancelBooking))
	r.Get("/api/bookings", h.authed(h.ListBookings))
	r.Get("/api/booking", h.authed(h.GetBooking))

	r.Get("/api/admin/venues", h.admin(h.AdminVenues))
	r.Get("/api/admin/venue-categories", h.admin(h.AdminVenueCategories))
	r.Post("/api/admin/event", h.admin(h.AdminCreateEvent))
	r.Get("/api/admin/event", h.admin(h.AdminGetEvent))
	r.Put("/api/admin/event", h.admin(h.AdminUpdateEvent))
	r.Delete("/api/admin/event", h.admin(h.AdminDeleteEvent))
}

// userHandler is a handler that runs after the caller was identified.
type userHandler func(ctx context.Context, req *server.Request, user *model.User) *server.Response

// authed rejects requests without a valid bearer token before next runs.
func (h *Handler) authed(next userHandler) server.HandlerFunc {
	return func(ctx context.Context, req *server.Request) *server.Response {
		user, err := h.Auth.Authenticate(ctx, req.Header("Authorization"))
		if err != nil {
			return h.fail(req, err)
		}
		return next(ctx, req, user)
	}
}

// admin additionally requires the admin role.
func (h *Handler) admin(next userHandler) server.HandlerFunc {
	return func(ctx context.Context, req *server.Request) *server.Response {
		user, err := h.Auth.RequireAdmin(ctx, req.Header("Authorization"))
		if err != nil {
			return h.fail(req, err)
		}
		return next(ctx, req, user)
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(status int, v any) *server.Response {
	return server.JSONResponse(status, v)
}

func writeError(status int, msg string) *server.Response {
	return server.ErrorResponse(status, msg)
}

// message builds a {"success":true,"message":msg} body.
func message(status int, msg string) *server.Response {
	return writeJSON(status, map[string]any{"success": true, "message": msg})
}

var errBadBody = model.Invalid("invalid request body")

func decodeJSON(req *server.Request, dst any) error {
	if len(bytes.TrimSpace(req.Body)) == 0 {
		return errBadBody
	}
	if err := json.NewDecoder(bytes.NewReader(req.Body)).Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

// queryID reads a positive integer query parameter.
func queryID(req *server.Request, key string) (int64, error) {
	raw := req.QueryParam(key)
	if raw == "" {
		return 0, model.Invalid(key + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Invalid("invalid " + key)
	}
	return id, nil
}

func eventFilter(req *server.Request) model.EventFilter {
	return model.EventFilter{
		Genre:          req.QueryParam("genre"),
		City:           req.QueryParam("city"),
		DateFrom:       req.QueryParam("dateFrom"),
		DateTo:         req.QueryParam("dateTo"),
		Venue:          req.QueryParam("venue"),
		AgeRestriction: req.QueryParam("ageRestriction"),
	}
}

// status maps a service error to its HTTP status and client message.
func status(err error) (int, string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, model.ErrUnauthenticated.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrTicketBooked):
		return http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrAlreadyExists),
		errors.Is(err, model.ErrInvalidCode),
		errors.Is(err, model.ErrMailUnavailable):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail converts err to an error response, logging internal failures.
func (h *Handler) fail(req *server.Request, err error) *server.Response {
	code, msg := status(err)
	if code == http.StatusInternalServerError {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"request_id": req.ID,
			"method":     req.Method,
			"path":       req.Path,
		}).Error("request failed")
	}
	return writeError(code, msg)
}
