package services

import (
	"errors"
	"fmt"

	"labquote/pricing"
	"labquote/repository"
	"labquote/storage"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

func validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(entity string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// translate maps storage and pricing failures onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case storage.IsNotFound(err):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case storage.IsUniqueViolation(err):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, pricing.ErrInvalid),
		errors.Is(err, repository.ErrInvalidUserCode),
		errors.Is(err, repository.ErrInvalidQuotationType),
		errors.Is(err, repository.ErrInvalidYear):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, repository.ErrSequenceExhausted):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
