package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mymd/clinic-backend/internal/model"
)

// UserRepo defines the interface for user repository operations. All lookups
// and updates exclude soft-deleted users.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetOrCreateByPhone(ctx context.Context, phone string) (model.User, error)
	PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, firstName string, lastName, email *string, phone string) (model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetStatus(ctx context.Context, id int64, status model.UserStatus) error
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance.
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, password, role, status, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Phone,
		&u.Password,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a non-deleted user by id.
func (r *userRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND status <> 'deleted'
	`, id)
	return scanUser(row)
}

// GetOrCreateByPhone inserts a user for an unseen phone or reactivates the
// existing one. The unique constraint on phone is the authority that resolves
// concurrent creations: both callers land on the same row.
func (r *userRepo) GetOrCreateByPhone(ctx context.Context, phone string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (phone, role, status)
		VALUES ($1, 'patient', 'active')
		ON CONFLICT (phone) DO UPDATE
			SET status = 'active', updated_at = now()
		RETURNING `+userColumns+`
	`, phone)
	user, err := scanUser(row)
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

// PhoneTaken reports whether another user already holds the phone number.
func (r *userRepo) PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE phone = $1 AND id <> $2
		)
	`, phone, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check phone: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates profile fields in a single guarded statement and
// returns the updated row.
func (r *userRepo) UpdateProfile(ctx context.Context, id int64, firstName string, lastName, email *string, phone string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, phone = $5, updated_at = now()
		WHERE id = $1 AND status <> 'deleted'
		RETURNING `+userColumns+`
	`, id, firstName, lastName, email, phone)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET password = $2, updated_at = now()
		WHERE id = $1 AND status <> 'deleted'
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves a non-deleted user to the given status.
func (r *userRepo) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET status = $2, updated_at = now()
		WHERE id = $1 AND status <> 'deleted'
	`, id, status)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
