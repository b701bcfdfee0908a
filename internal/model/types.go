package model

import "time"

// UserStatus is the activation state of a user account.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusDeleted  UserStatus = "deleted"
)

// User represents an account in the auth schema. Phone is stored in canonical
// digits-only form and is globally unique.
type User struct {
	ID        int64
	FirstName string
	LastName  *string
	Email     *string
	Phone     string
	Password  string // bcrypt hash, empty until the user sets one
	Role      string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OtpSession is a single pending authentication attempt. It is deleted on
// successful verification; expiry and the attempt cap kill it otherwise.
type OtpSession struct {
	ID           int64
	UserID       int64
	Code         string
	ExpiresAt    time.Time
	AttemptCount int
	CreatedAt    time.Time
}

// RefreshToken is a long-lived opaque credential bound to a user. The token
// string is the lookup key; a rotated token row is deleted, never kept.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
