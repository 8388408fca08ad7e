package scene

import "errors"

var (
	// ErrBadData indicates initial data that does not match its kind.
	ErrBadData = errors.New("scene: malformed initial data")

	// ErrUnknownKind indicates a kind that cannot carry initial data.
	ErrUnknownKind = errors.New("scene: unknown data-structure kind")
)
