package services

import (
	"errors"
	"fmt"

	"github.com/dimitrije/ingressearch-api/internal/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidName      = errors.New("invalid name")
)

// fromStore replaces store.ErrNotFound with notFound and store.ErrUnavailable
// with ErrStoreUnavailable. Other errors pass through.
func fromStore(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	default:
		return err
	}
}

func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, 255),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return nil
}
