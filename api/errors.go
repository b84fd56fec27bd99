package api

import "errors"

// Error taxonomy. Errors surfaced by the managers wrap one of these (next to
// the underlying kernel error) so callers can test with errors.Is.
var (
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPermission      = errors.New("permission denied or resource exhausted")
)
