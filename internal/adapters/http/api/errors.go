package api

import (
	"errors"
	"fmt"

	service "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBackpressure  = errors.New("backpressure")
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("service unavailable")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrUnprocessable = errors.New("action does not fit the reference library")
)

// NewKind tags kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with op and kind so both stay visible to errors.Is.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// translate tags service and domain errors with the API kind they map to.
func translate(err error) error {
	switch {
	case errors.Is(err, service.ErrBackpressure):
		return fmt.Errorf("%w: %w", ErrBackpressure, err)
	case errors.Is(err, service.ErrNotStarted):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, service.ErrJobNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, model.ErrIndexOverrun), errors.Is(err, model.ErrInvalidCoordinate):
		return fmt.Errorf("%w: %w", ErrUnprocessable, err)
	default:
		return err
	}
}
