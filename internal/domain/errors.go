package domain

import "errors"

// Error taxonomy for the proxy. Handlers map these onto HTTP status codes;
// client-facing messages stay generic while the underlying cause is logged.
var (
	// ErrInvalidURL means the classifier found no match or the domain is
	// not allow-listed. Maps to 400.
	ErrInvalidURL = errors.New("not a recognized imgur URL")

	// ErrInvalidIdentifier means a path-segment identifier failed shape
	// validation. Maps to 400.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrOriginNotFound means the origin returned a non-success status for
	// the resource. Maps to 404.
	ErrOriginNotFound = errors.New("origin resource not found")

	// ErrOriginUnreachable means the outbound fetch failed at the
	// transport level. Maps to 404.
	ErrOriginUnreachable = errors.New("origin unreachable")

	// ErrOriginResponse means the origin answered with an unexpected
	// response shape. Maps to 500.
	ErrOriginResponse = errors.New("unexpected origin response")
)
