package model

// LoginRequest is the payload for POST /api/login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /api/register.
type RegisterRequest struct {
	Login            string `json:"login"`
	Email            string `json:"email"`
	FullName         string `json:"fullName"`
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
}

// EmailRequest carries a single email address.
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest is the payload for POST /api/verify-code.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// AccountRequest identifies an account by login and email.
type AccountRequest struct {
	Login string `json:"login"`
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload for POST /api/reset-password.
type ResetPasswordRequest struct {
	Login       string `json:"login"`
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest is the payload for POST /api/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// BookRequest is the payload for POST /api/book.
type BookRequest struct {
	TicketID int64 `json:"ticketId"`
	EventID  int64 `json:"eventId"`
}

// CategoryInput describes a ticket category when creating an event.
type CategoryInput struct {
	Name        string  `json:"categoryName"`
	Price       float64 `json:"price"`
	TotalSeats  int     `json:"totalSeats"`
	RowsCount   int     `json:"rowsCount"`
	SeatsPerRow int     `json:"seatsPerRow"`
}

// CategoryUpdate changes price and size of an existing category.
type CategoryUpdate struct {
	ID         int64   `json:"categoryId"`
	Price      float64 `json:"price"`
	TotalSeats int     `json:"totalSeats"`
}

// CreateEventRequest is the payload for POST /api/admin/event.
type CreateEventRequest struct {
	Title          string          `json:"title"`
	Genre          string          `json:"genre"`
	VenueID        int64           `json:"venueId"`
	EventDate      string          `json:"eventDate"`
	AgeRestriction string          `json:"ageRestriction"`
	Description    string          `json:"description"`
	Categories     []CategoryInput `json:"categories"`
}

// UpdateEventRequest is the payload for PUT /api/admin/event.
type UpdateEventRequest struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Genre          string           `json:"genre"`
	EventDate      string           `json:"eventDate"`
	AgeRestriction string           `json:"ageRestriction"`
	Description    string           `json:"description"`
	Categories     []CategoryUpdate `json:"categories"`
}
