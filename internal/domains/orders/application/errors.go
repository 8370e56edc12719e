package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrConflict signals the order is in a state that forbids the change.
	ErrConflict = errors.New("order state conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyIdentifier) ||
		errors.Is(err, domain.ErrEmptyOwner) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPayment) ||
		errors.Is(err, domain.ErrMissingAddress) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrNotPending) || errors.Is(err, ports.ErrStaleStatus) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
