// Package model defines the core domain types for the ticket sales system.
package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// User is a registered account.
type User struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	IsAdmin      bool   `json:"isAdmin"`
	IsVerified   bool   `json:"-"`
	PasswordHash string `json:"-"`
}

// Venue is a place where events happen.
type Venue struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	Address    string `json:"address"`
	Capacity   int    `json:"capacity"`
	LayoutType string `json:"layoutType"`
}

// Event is a bookable event held at a venue.
type Event struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Genre            string `json:"genre"`
	EventDate        string `json:"eventDate"`
	AgeRestriction   string `json:"ageRestriction"`
	Description      string `json:"description"`
	Venue            Venue  `json:"venue"`
	TotalTickets     int    `json:"totalTickets"`
	AvailableTickets int    `json:"availableTickets"`
	LowTickets       bool   `json:"lowTickets"`
}

// lowTicketsPercent is the share of remaining tickets below which an event
// is flagged as nearly sold out.
const lowTicketsPercent = 5

// MarkLowTickets sets LowTickets when fewer than 5% of tickets remain.
func (e *Event) MarkLowTickets() {
	if e.TotalTickets <= 0 {
		e.LowTickets = false
		return
	}
	e.LowTickets = float64(e.AvailableTickets)/float64(e.TotalTickets)*100 < lowTicketsPercent
}

// Category is a priced group of tickets within an event.
// AvailableSeats always equals the number of its tickets that are available.
type Category struct {
	ID             int64   `json:"id"`
	EventID        int64   `json:"eventId"`
	Name           string  `json:"categoryName"`
	Price          float64 `json:"price"`
	TotalSeats     int     `json:"totalSeats"`
	AvailableSeats int     `json:"availableSeats"`
	RowsCount      int     `json:"rowsCount"`
	SeatsPerRow    int     `json:"seatsPerRow"`
}

// VenueCategory is a default seating layout offered by a venue.
type VenueCategory struct {
	ID           int64   `json:"id"`
	VenueID      int64   `json:"venueId"`
	Name         string  `json:"categoryName"`
	RowsCount    int     `json:"rowsCount"`
	SeatsPerRow  int     `json:"seatsPerRow"`
	DefaultPrice float64 `json:"defaultPrice"`
}

// Ticket is a single sellable seat. Available is the only source of truth
// for whether it can be booked.
type Ticket struct {
	ID           int64   `json:"id"`
	EventID      int64   `json:"eventId"`
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName,omitempty"`
	RowNumber    int     `json:"rowNumber"`
	SeatNumber   int     `json:"seatNumber"`
	Price        float64 `json:"price"`
	Available    bool    `json:"-"`
}

// Booking links a user to a ticket.
type Booking struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userId"`
	TicketID  int64         `json:"ticketId"`
	EventID   int64         `json:"eventId"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// BookingView is a booking joined with its ticket and event for display.
type BookingView struct {
	BookingID   int64            `json:"bookingId"`
	BookingDate string           `json:"bookingDate"`
	Status      BookingStatus    `json:"status"`
	Ticket      BookingTicket    `json:"ticket"`
	Event       BookingEventInfo `json:"event"`
}

// BookingTicket is the ticket part of a BookingView.
type BookingTicket struct {
	ID           int64   `json:"id"`
	RowNumber    int     `json:"rowNumber"`
	SeatNumber   int     `json:"seatNumber"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"categoryName"`
}

// BookingEventInfo is the event part of a BookingView.
type BookingEventInfo struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	EventDate      string `json:"eventDate"`
	AgeRestriction string `json:"ageRestriction"`
	VenueName      string `json:"venueName"`
	VenueCity      string `json:"venueCity"`
	LayoutType     string `json:"layoutType,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Description    string `json:"description,omitempty"`
	VenueAddress   string `json:"venueAddress,omitempty"`
}

// EventFilter narrows event and booking listings. Empty fields do not filter.
type EventFilter struct {
	Genre          string
	City           string
	DateFrom       string
	DateTo         string
	Venue          string
	AgeRestriction string
}

// EventDetails is an event with its categories, as edited by an admin.
type EventDetails struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Genre          string     `json:"genre"`
	EventDate      string     `json:"eventDate"`
	AgeRestriction string     `json:"ageRestriction"`
	Description    string     `json:"description"`
	VenueID        int64      `json:"venueId"`
	VenueName      string     `json:"venueName"`
	VenueCity      string     `json:"venueCity"`
	Categories     []Category `json:"categories"`
}
