// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

type httpAuthAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPAuthAdapter constructs the REST implementation of [AuthAdapter].
// It normalises and validates the base URL from cfg.HTTPAddress.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPAuthAdapter(cfg config.ClientAdapter, logger *logger.Logger) (AuthAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpAuthAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpAuthAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpAuthAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// SignUp posts to POST /api/auth/signup and returns the server's message.
func (h *httpAuthAdapter) SignUp(ctx context.Context, req models.SignUpRequest) (string, error) {
	return h.postMessage(ctx, "/api/auth/signup", req)
}

// SignIn posts to POST /api/auth/signin. On success the returned token is
// kept for subsequent authenticated calls.
func (h *httpAuthAdapter) SignIn(ctx context.Context, req models.SignInRequest) (models.JWTResponse, error) {
	var jwtResp models.JWTResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&jwtResp).
		Post("/api/auth/signin")
	if err != nil {
		return models.JWTResponse{}, fmt.Errorf("signin request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.JWTResponse{}, err
	}

	h.SetToken(jwtResp.Token)
	return jwtResp, nil
}

func (h *httpAuthAdapter) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error) {
	return h.postMessage(ctx, "/api/auth/forgot-password", req)
}

func (h *httpAuthAdapter) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (string, error) {
	return h.postMessage(ctx, "/api/auth/verify-otp", req)
}

func (h *httpAuthAdapter) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error) {
	return h.postMessage(ctx, "/api/auth/reset-password", req)
}

// Profile gets GET /api/user/profile. Requires a token.
func (h *httpAuthAdapter) Profile(ctx context.Context) (models.UserResponse, error) {
	var profile models.UserResponse

	resp, err := h.authedRequest(ctx).SetResult(&profile).Get("/api/user/profile")
	if err != nil {
		return models.UserResponse{}, fmt.Errorf("profile request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserResponse{}, err
	}

	return profile, nil
}

func (h *httpAuthAdapter) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (string, error) {
	var msg models.MessageResponse

	resp, err := h.authedRequest(ctx).SetBody(req).SetResult(&msg).Post("/api/user/change-password")
	if err != nil {
		return "", fmt.Errorf("change password request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return msg.Message, nil
}

// PendingUsers gets GET /api/admin/pending-users. Requires an admin token.
func (h *httpAuthAdapter) PendingUsers(ctx context.Context) ([]models.UserResponse, error) {
	var users []models.UserResponse

	resp, err := h.authedRequest(ctx).SetResult(&users).Get("/api/admin/pending-users")
	if err != nil {
		return nil, fmt.Errorf("pending users request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return users, nil
}

// ApproveUser posts to POST /api/admin/approve-user/{id}. Requires an admin token.
func (h *httpAuthAdapter) ApproveUser(ctx context.Context, userID int64) (string, error) {
	var msg models.MessageResponse

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", strconv.FormatInt(userID, 10)).
		SetResult(&msg).
		Post("/api/admin/approve-user/{id}")
	if err != nil {
		return "", fmt.Errorf("approve user request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return msg.Message, nil
}

// Version gets the plain-text GET /api/version.
func (h *httpAuthAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).SetHeader("Accept", "text/plain").Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}

func (h *httpAuthAdapter) postMessage(ctx context.Context, path string, body any) (string, error) {
	var msg models.MessageResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&msg).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return msg.Message, nil
}

func (h *httpAuthAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
