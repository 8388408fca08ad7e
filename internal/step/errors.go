package step

import "errors"

var (
	// ErrBadStep indicates a step list that cannot be decoded.
	ErrBadStep = errors.New("step: malformed step list")

	// ErrInvalidSpeed indicates speed bounds that cannot produce a delay.
	ErrInvalidSpeed = errors.New("step: invalid speed bounds")
)
