package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	gw *database.Gateway
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(gw *database.Gateway) *UserRepository {
	return &UserRepository{gw: gw}
}

func (r *UserRepository) exists(ctx context.Context, query, value string) (bool, error) {
	rows, err := r.gw.Execute(ctx, query, value)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return len(rows) > 0 && rows[0].Bool("found"), nil
}

// LoginExists reports whether login is taken.
func (r *UserRepository) LoginExists(ctx context.Context, login string) (bool, error) {
	return r.exists(ctx, "check_login_exists", login)
}

// EmailExists reports whether email is taken.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "check_email_exists", email)
}

// Create inserts a verified user and returns its id. A taken login or email
// yields model.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, login, email, fullName, passwordHash string) (int64, error) {
	rows, err := r.gw.Execute(ctx, "create_verified_user", login, email, fullName, passwordHash)
	if isUniqueViolation(err) {
		return 0, model.ErrAlreadyExists
	}
	return returnedID(rows, err, "user")
}

// ByID returns a user or model.ErrNotFound.
func (r *UserRepository) ByID(ctx context.Context, id int64) (*model.User, error) {
	rows, err := r.gw.Execute(ctx, "get_user_by_id", id)
	return scanUser(rows, err)
}

// ByLogin returns a user or model.ErrNotFound.
func (r *UserRepository) ByLogin(ctx context.Context, login string) (*model.User, error) {
	rows, err := r.gw.Execute(ctx, "get_user_by_login", login)
	return scanUser(rows, err)
}

// ByLoginAndEmail returns the user matching both login and email, or
// model.ErrNotFound.
func (r *UserRepository) ByLoginAndEmail(ctx context.Context, login, email string) (*model.User, error) {
	rows, err := r.gw.Execute(ctx, "get_user_by_login_and_email", login, email)
	return scanUser(rows, err)
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	n, err := r.gw.Exec(ctx, "update_user_password", passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SetAdminPassword sets the password of the seeded admin account.
func (r *UserRepository) SetAdminPassword(ctx context.Context, passwordHash string) error {
	n, err := r.gw.Exec(ctx, "set_admin_password", passwordHash)
	if err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(rows []database.Row, err error) (*model.User, error) {
	row, err := one(rows, err, "user")
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           row.Int64("id"),
		Login:        row.String("login"),
		Email:        row.String("email"),
		FullName:     row.String("full_name"),
		PasswordHash: row.String("password_hash"),
		IsAdmin:      row.Bool("is_admin"),
		IsVerified:   row.Bool("is_verified"),
	}, nil
}

// CodeRepository handles persistence for email verification codes.
type CodeRepository struct {
	gw *database.Gateway
}

// NewCodeRepository constructs a CodeRepository.
func NewCodeRepository(gw *database.Gateway) *CodeRepository {
	return &CodeRepository{gw: gw}
}

// Create stores a code for email that is valid until expiresAt.
func (r *CodeRepository) Create(ctx context.Context, email, code string, expiresAt time.Time) error {
	rows, err := r.gw.Execute(ctx, "create_verification_code", email, code, expiresAt)
	_, err = returnedID(rows, err, "verification code")
	return err
}

// Find returns the id of the newest unused, unexpired code matching email
// and code, or model.ErrInvalidCode.
func (r *CodeRepository) Find(ctx context.Context, email, code string) (int64, error) {
	rows, err := r.gw.Execute(ctx, "get_verification_code", email, code)
	if err != nil {
		return 0, fmt.Errorf("get verification code: %w", err)
	}
	if len(rows) == 0 {
		return 0, model.ErrInvalidCode
	}
	return rows[0].Int64("id"), nil
}

// MarkUsed consumes a code so it cannot be presented again.
func (r *CodeRepository) MarkUsed(ctx context.Context, id int64) error {
	if _, err := r.gw.Exec(ctx, "mark_code_used", id); err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	return nil
}
