package util

import (
	"Netsim/api"
	"errors"
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Outcome is the result of a kernel request as seen by an idempotent caller.
type Outcome int

const (
	Ok Outcome = iota
	AlreadyExists
	NotFound
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case AlreadyExists:
		return "already exists"
	case NotFound:
		return "not found"
	default:
		return "fatal"
	}
}

// Classify maps the error of a netlink or namespace request to an Outcome.
// A nil error is Ok.
func Classify(err error) Outcome {
	var notFound netlink.LinkNotFoundError
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, unix.EEXIST):
		return AlreadyExists
	case errors.As(err, &notFound),
		errors.Is(err, unix.ENOENT),
		errors.Is(err, unix.ENODEV),
		errors.Is(err, unix.ESRCH):
		return NotFound
	default:
		return Fatal
	}
}

// IsPermissionOrResource reports whether err is the kernel refusing the
// request for lack of privilege or resources.
func IsPermissionOrResource(err error) bool {
	for _, errno := range []unix.Errno{
		unix.EPERM, unix.EACCES, unix.ENOMEM, unix.ENOBUFS, unix.ENOSPC, unix.EMFILE, unix.ENFILE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// Surface wraps err for the caller, tagging it with the matching api
// sentinel.
func Surface(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsPermissionOrResource(err):
		return fmt.Errorf("failed to %s: %w: %w", op, api.ErrPermission, err)
	}
	switch Classify(err) {
	case AlreadyExists:
		return fmt.Errorf("failed to %s: %w: %w", op, api.ErrAlreadyExists, err)
	case NotFound:
		return fmt.Errorf("failed to %s: %w: %w", op, api.ErrNotFound, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
