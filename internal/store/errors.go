package store

import "errors"

// Terminal business outcomes surfaced by the stores. Handlers translate
// these into HTTP statuses; none are retryable.
var (
	// ErrInvalidCredentials covers unknown username, wrong password and
	// inactive account alike, so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned both when a resource does not exist and when
	// it belongs to another business, so ids cannot be probed across tenants.
	ErrNotFound = errors.New("not found")

	ErrDuplicateCode     = errors.New("product code already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPlanNotFound      = errors.New("plan not found")
)
