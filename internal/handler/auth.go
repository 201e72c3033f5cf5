package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
	"github.com/Shivanand-hulikatti/tickethub/internal/server"
)

// SendVerificationCode handles POST /api/send-verification-code.
func (h *Handler) SendVerificationCode(ctx context.Context, req *server.Request) *server.Response {
	var body model.EmailRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.SendVerificationCode(ctx, body.Email); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "verification code sent")
}

// VerifyCode handles POST /api/verify-code.
func (h *Handler) VerifyCode(ctx context.Context, req *server.Request) *server.Response {
	var body model.VerifyCodeRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.VerifyCode(ctx, body.Email, body.Code); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "code is valid")
}

// RegisterUser handles POST /api/register.
func (h *Handler) RegisterUser(ctx context.Context, req *server.Request) *server.Response {
	var body model.RegisterRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	session, err := h.Accounts.Register(ctx, body)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusCreated, map[string]any{"success": true, "token": session.Token, "user": session.User})
}

// Login handles POST /api/login.
func (h *Handler) Login(ctx context.Context, req *server.Request) *server.Response {
	var body model.LoginRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	session, err := h.Accounts.Login(ctx, body)
	if err != nil {
		return h.fail(req, err)
	}
	return writeJSON(http.StatusOK, map[string]any{"success": true, "token": session.Token, "user": session.User})
}

// Me handles GET /api/me.
func (h *Handler) Me(_ context.Context, _ *server.Request, user *model.User) *server.Response {
	return writeJSON(http.StatusOK, map[string]any{"success": true, "user": user})
}

// accountFailure reports an unknown login/email pair as a bad request.
func (h *Handler) accountFailure(req *server.Request, err error) *server.Response {
	if errors.Is(err, model.ErrNotFound) {
		return writeError(http.StatusBadRequest, "no user with this login and email")
	}
	return h.fail(req, err)
}

// RecoverPassword handles POST /api/recover-password.
func (h *Handler) RecoverPassword(ctx context.Context, req *server.Request) *server.Response {
	var body model.AccountRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.RecoverPassword(ctx, body); err != nil {
		return h.accountFailure(req, err)
	}
	return message(http.StatusOK, "a new password was sent to your email")
}

// VerifyUserExists handles POST /api/verify-user-exists.
func (h *Handler) VerifyUserExists(ctx context.Context, req *server.Request) *server.Response {
	var body model.AccountRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.VerifyUserExists(ctx, body); err != nil {
		return h.accountFailure(req, err)
	}
	return message(http.StatusOK, "user found")
}

// ResetPassword handles POST /api/reset-password.
func (h *Handler) ResetPassword(ctx context.Context, req *server.Request) *server.Response {
	var body model.ResetPasswordRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.ResetPassword(ctx, body); err != nil {
		return h.accountFailure(req, err)
	}
	return message(http.StatusOK, "password changed")
}

// ChangePassword handles POST /api/change-password.
func (h *Handler) ChangePassword(ctx context.Context, req *server.Request, user *model.User) *server.Response {
	var body model.ChangePasswordRequest
	if err := decodeJSON(req, &body); err != nil {
		return h.fail(req, err)
	}
	if err := h.Accounts.ChangePassword(ctx, user.ID, body); err != nil {
		return h.fail(req, err)
	}
	return message(http.StatusOK, "password changed")
}
