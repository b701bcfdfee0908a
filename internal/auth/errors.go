package auth

import "errors"

// Expected failure conditions returned as values from the service boundary.
// SessionNotFound deliberately covers absent, expired and already-consumed
// sessions, and InvalidRefreshToken covers forged, never-issued and
// already-rotated tokens, so an unauthenticated caller learns nothing about
// which state it hit.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidCode         = errors.New("invalid code")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrUserNotFound        = errors.New("user not found")
	ErrPhoneAlreadyExists  = errors.New("phone already exists")
	ErrInvalidPassword     = errors.New("invalid password")
)
