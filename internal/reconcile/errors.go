package reconcile

import "errors"

var (
	// ErrLabelCollision is returned when two resolver inputs would map to
	// the same logical label.
	ErrLabelCollision = errors.New("resolver input label used twice")

	// ErrInvalidLabel is returned for a requirement group label that cannot
	// be used as a file name.
	ErrInvalidLabel = errors.New("invalid resolver input label")

	// ErrNoRequirements is returned when there is nothing to resolve.
	ErrNoRequirements = errors.New("no requirements to resolve")
)
