package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when the caller's role forbids an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input fails business validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on uniqueness or state conflicts
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrInvalidRefreshToken is returned when a refresh token is unknown or expired
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrLoginTaken is returned when registering an already used login
	ErrLoginTaken = errors.New("login already taken")

	// ErrEmptyNote is returned when a note carries neither text nor photo
	ErrEmptyNote = errors.New("note requires text or photo")

	// ErrSameAmount is returned when a lot amount update does not change the amount
	ErrSameAmount = errors.New("amount is unchanged")

	// ErrLotDeleted is returned when mutating a soft-deleted lot
	ErrLotDeleted = errors.New("lot is deleted")

	// ErrInvalidRole is returned when an unknown role value is provided
	ErrInvalidRole = errors.New("invalid role")
)
