package application

import (
	"errors"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
)

var (
	// ErrInvalidInput indicates the caller supplied an unusable order reference.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPayload indicates a notification without transaction id or content.
	ErrInvalidPayload = domain.ErrInvalidPayload
)
