package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/auth"
	"github.com/Shivanand-hulikatti/tickethub/internal/mail"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// CodeTTL is how long an emailed verification code stays valid.
const CodeTTL = 10 * time.Minute

// UserStore persists user accounts.
type UserStore interface {
	LoginExists(ctx context.Context, login string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, login, email, fullName, passwordHash string) (int64, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByLogin(ctx context.Context, login string) (*model.User, error)
	ByLoginAndEmail(ctx context.Context, login, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetAdminPassword(ctx context.Context, passwordHash string) error
}

// CodeStore persists email verification codes.
type CodeStore interface {
	Create(ctx context.Context, email, code string, expiresAt time.Time) error
	Find(ctx context.Context, email, code string) (int64, error)
	MarkUsed(ctx context.Context, id int64) error
}

// Session is returned by a successful login or registration.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles registration, login and password management.
type AuthService struct {
	users  UserStore
	codes  CodeStore
	hasher *auth.PasswordHasher
	tokens *auth.TokenCodec
	mailer mail.Mailer
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewAuthService constructs an AuthService with its dependencies.
func NewAuthService(
	users UserStore,
	codes CodeStore,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenCodec,
	mailer mail.Mailer,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		users:  users,
		codes:  codes,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// SendVerificationCode emails a 6-digit code to an address that is not yet
// registered.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrAlreadyExists
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.codes.Create(ctx, email, code, s.now().Add(CodeTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello!\n\nYour tickethub verification code is %s.\nIt is valid for %d minutes.\n\nIf you did not request it, ignore this email.",
		code, int(CodeTTL/time.Minute))
	return s.send(ctx, email, "tickethub verification code", body)
}

func (s *AuthService) send(ctx context.Context, to, subject, body string) error {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.log.WithError(err).WithField("to", to).Error("send email")
		return model.ErrMailUnavailable
	}
	return nil
}

// VerifyCode checks a code without consuming it; Register consumes it.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return model.Invalid("email and code are required")
	}
	_, err := s.codes.Find(ctx, email, code)
	return err
}

// Register creates a verified account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*Session, error) {
	req.Login = strings.TrimSpace(req.Login)
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.VerificationCode = strings.TrimSpace(req.VerificationCode)

	if req.Login == "" || req.FullName == "" || req.Password == "" {
		return nil, model.Invalid("login, fullName and password are required")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.VerificationCode == "" {
		return nil, model.Invalid("verificationCode is required")
	}

	if taken, err := s.users.LoginExists(ctx, req.Login); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrAlreadyExists
	}
	if taken, err := s.users.EmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrAlreadyExists
	}

	codeID, err := s.codes.Find(ctx, req.Email, req.VerificationCode)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.users.Create(ctx, req.Login, req.Email, req.FullName, hash)
	if err != nil {
		return nil, err
	}
	if err := s.codes.MarkUsed(ctx, codeID); err != nil {
		s.log.WithError(err).WithField("code_id", codeID).Warn("verification code not marked used")
	}

	user := &model.User{ID: id, Login: req.Login, Email: req.Email, FullName: req.FullName, IsVerified: true}
	return s.session(user)
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Login)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*Session, error) {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return nil, model.Invalid("login and password are required")
	}

	user, err := s.users.ByLogin(ctx, req.Login)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *AuthService) account(ctx context.Context, req model.AccountRequest) (*model.User, error) {
	login := strings.TrimSpace(req.Login)
	email := normalizeEmail(req.Email)
	if login == "" || email == "" {
		return nil, model.Invalid("login and email are required")
	}
	return s.users.ByLoginAndEmail(ctx, login, email)
}

// VerifyUserExists confirms that login and email belong to one account.
func (s *AuthService) VerifyUserExists(ctx context.Context, req model.AccountRequest) error {
	_, err := s.account(ctx, req)
	return err
}

// RecoverPassword replaces the password of the account identified by login
// and email with a random one and emails it.
func (s *AuthService) RecoverPassword(ctx context.Context, req model.AccountRequest) error {
	user, err := s.account(ctx, req)
	if err != nil {
		return err
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, user.ID, password); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello!\n\nYour new tickethub password is: %s\n\nPlease change it after signing in.\nIf you did not request a password reset, contact support immediately.", password)
	return s.send(ctx, user.Email, "tickethub password recovery", body)
}

// ResetPassword sets a new password for the account identified by login and
// email.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if req.NewPassword == "" {
		return model.Invalid("newPassword is required")
	}
	user, err := s.account(ctx, model.AccountRequest{Login: req.Login, Email: req.Email})
	if err != nil {
		return err
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

// ChangePassword replaces the password of userID after checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return model.Invalid("oldPassword and newPassword are required")
	}
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		return model.Invalid("current password is incorrect")
	}
	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// SeedAdminPassword sets the password of the built-in admin account. An
// empty password leaves it unchanged.
func (s *AuthService) SeedAdminPassword(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.users.SetAdminPassword(ctx, hash)
}
