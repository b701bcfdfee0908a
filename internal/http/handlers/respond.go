package handlers

import (
	"encoding/json"
	"net/http"
)

// Stable error codes returned to clients. SessionNotFound and
// InvalidRefreshToken intentionally carry no detail about why.
const (
	CodeBadRequest          = "bad_request"
	CodeSessionNotFound     = "session_not_found"
	CodeInvalidCode         = "invalid_code"
	CodeInvalidRefreshToken = "invalid_refresh_token"
	CodeRefreshTokenExpired = "refresh_token_expired"
	CodeUserNotFound        = "user_not_found"
	CodePhoneAlreadyExists  = "phone_already_exists"
	CodeInvalidPassword     = "invalid_password"
	CodeUnauthorized        = "unauthorized"
	CodeRateLimitExceeded   = "rate_limit_exceeded"
	CodeInternalError       = "internal_error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, errorResponse{Error: code, Message: message})
}
