package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mymd/clinic-backend/internal/auth"
	"github.com/mymd/clinic-backend/internal/middleware"
	"github.com/mymd/clinic-backend/internal/model"
)

// ProfileHandler handles authenticated account-management endpoints.
type ProfileHandler struct {
	profiles *auth.ProfileService
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(profiles *auth.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     string  `json:"phone"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
}

func newProfileResponse(u model.User) profileResponse {
	return profileResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    string(u.Status),
	}
}

type updateProfileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     string  `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleGetProfile handles GET /api/v1/auth/profile.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "")
		return
	}
	respondJSON(w, http.StatusOK, newProfileResponse(*user))
}

// HandleUpdateProfile handles PUT /api/v1/auth/profile.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	updated, err := h.profiles.UpdateProfile(r.Context(), user.ID, auth.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newProfileResponse(updated))
}

// HandleChangePassword handles POST /api/v1/auth/change-password.
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "new_password is required")
		return
	}

	if err := h.profiles.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// HandleDeactivate handles POST /api/v1/auth/deactivate.
func (h *ProfileHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "")
		return
	}

	if err := h.profiles.DeactivateAccount(r.Context(), user.ID); err != nil {
		h.writeProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "account deactivated"})
}

// HandleDeleteAccount handles DELETE /api/v1/auth/account.
func (h *ProfileHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "")
		return
	}

	if err := h.profiles.DeleteAccount(r.Context(), user.ID); err != nil {
		h.writeProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidPhone):
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid phone number")
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, CodeUserNotFound, "")
	case errors.Is(err, auth.ErrPhoneAlreadyExists):
		respondError(w, http.StatusConflict, CodePhoneAlreadyExists, "")
	case errors.Is(err, auth.ErrInvalidPassword):
		respondError(w, http.StatusBadRequest, CodeInvalidPassword, "")
	default:
		log.Printf("profile request failed: %v", err)
		respondError(w, http.StatusInternalServerError, CodeInternalError, "")
	}
}
