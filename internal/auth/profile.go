package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mymd/clinic-backend/internal/model"
	"github.com/mymd/clinic-backend/internal/repo"
)

// UpdateProfileParams carries the editable profile fields.
type UpdateProfileParams struct {
	FirstName string
	LastName  *string
	Email     *string
	Phone     string
}

// ProfileService covers account self-management: viewing and editing the
// profile, password changes, deactivation and soft deletion. Deleted users
// are invisible to every operation here.
type ProfileService struct {
	users repo.UserRepo
}

// NewProfileService creates a profile service.
func NewProfileService(users repo.UserRepo) *ProfileService {
	return &ProfileService{users: users}
}

// GetProfile returns the user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates profile fields. A phone change is rejected when the
// canonical number already belongs to another user.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	phone := user.Phone
	if params.Phone != "" {
		phone, err = NormalizePhone(params.Phone)
		if err != nil {
			return model.User{}, err
		}
	}
	if phone != user.Phone {
		taken, err := s.users.PhoneTaken(ctx, phone, userID)
		if err != nil {
			return model.User{}, fmt.Errorf("check phone: %w", err)
		}
		if taken {
			return model.User{}, ErrPhoneAlreadyExists
		}
	}

	firstName := user.FirstName
	if params.FirstName != "" {
		firstName = params.FirstName
	}
	lastName := user.LastName
	if params.LastName != nil {
		lastName = params.LastName
	}
	email := user.Email
	if params.Email != nil {
		email = params.Email
	}

	updated, err := s.users.UpdateProfile(ctx, userID, firstName, lastName, email, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// ChangePassword verifies the current password and stores a bcrypt hash of
// the new one. Accounts created through OTP login have no password yet and
// may set one without presenting a current password.
func (s *ProfileService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if user.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
			return ErrInvalidPassword
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeactivateAccount moves the user to Inactive. A later OTP login reactivates.
func (s *ProfileService) DeactivateAccount(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, model.StatusInactive)
}

// DeleteAccount soft-deletes the user. OTP sessions and refresh tokens keep
// their own lifecycle and are not touched here.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, model.StatusDeleted)
}

func (s *ProfileService) setStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}
