package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mymd/clinic-backend/internal/auth"
	"github.com/mymd/clinic-backend/internal/middleware"
)

// AuthHandler handles the authentication endpoints.
type AuthHandler struct {
	service       *auth.Service
	sendLimiter   *middleware.RateLimiter
	verifyLimiter *middleware.RateLimiter
}

// NewAuthHandler creates an auth handler with per-IP rate limiters for the
// unauthenticated endpoints.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{
		service:       service,
		sendLimiter:   middleware.NewRateLimiter(10*time.Minute, 10),
		verifyLimiter: middleware.NewRateLimiter(10*time.Minute, 20),
	}
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type sendOTPResponse struct {
	SessionID int64     `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type verifyOTPRequest struct {
	SessionID int64  `json:"session_id"`
	Code      string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
	TokenType          string    `json:"token_type"`
}

func newTokenResponse(pair auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:        pair.AccessToken,
		AccessTokenExpiry:  pair.AccessTokenExpiry,
		RefreshToken:       pair.RefreshToken,
		RefreshTokenExpiry: pair.RefreshTokenExpiry,
		TokenType:          "bearer",
	}
}

// HandleSendOTP handles POST /api/v1/auth/send-otp.
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "phone is required")
		return
	}

	if !h.sendLimiter.Allow(middleware.ClientIP(r)) {
		respondError(w, http.StatusTooManyRequests, CodeRateLimitExceeded, "")
		return
	}

	result, err := h.service.CreateSession(r.Context(), req.Phone)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sendOTPResponse{
		SessionID: result.SessionID,
		ExpiresAt: result.ExpiresAt,
	})
}

// HandleVerifyOTP handles POST /api/v1/auth/verify-otp.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	if req.SessionID == 0 || req.Code == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "session_id and code are required")
		return
	}

	if !h.verifyLimiter.Allow(middleware.ClientIP(r)) {
		respondError(w, http.StatusTooManyRequests, CodeRateLimitExceeded, "")
		return
	}

	pair, err := h.service.VerifySession(r.Context(), req.SessionID, req.Code)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRefreshToken handles POST /api/v1/auth/refresh-token.
func (h *AuthHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// writeAuthError maps service errors onto the stable code taxonomy. Unknown
// failures become internal_error; expected conditions never leak detail.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidPhone):
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid phone number")
	case errors.Is(err, auth.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, CodeSessionNotFound, "")
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, CodeInvalidCode, "")
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		respondError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "")
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		respondError(w, http.StatusUnauthorized, CodeRefreshTokenExpired, "")
	default:
		log.Printf("auth request failed: %v", err)
		respondError(w, http.StatusInternalServerError, CodeInternalError, "")
	}
}
