package domain

import "errors"

// Domain errors
var (
	ErrInvalidOwner     = errors.New("owner exceeds maximum length")
	ErrInvalidCategory  = errors.New("category is required and must be 255 characters or less")
	ErrInvalidAmount    = errors.New("amount must be zero or positive")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation constants
const (
	MaxOwnerLength    = 255
	MaxCategoryLength = 255
)
