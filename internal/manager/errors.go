package manager

import (
	"errors"
	"fmt"
	"net/http"

	"wifihal/internal/hal"
)

// unsupportedTypeError signals a type no mode of any chip can host (422).
type unsupportedTypeError struct{ typ hal.IfaceType }

func (e unsupportedTypeError) Error() string {
	return fmt.Sprintf("interface type %s is not supported by any chip mode", e.typ)
}

func (e unsupportedTypeError) StatusCode() int { return http.StatusUnprocessableEntity }

// ErrUnsupportedType constructs an unsupportedTypeError.
func ErrUnsupportedType(t hal.IfaceType) error { return unsupportedTypeError{typ: t} }

// IsUnsupportedType reports whether err indicates a type no chip can ever host.
func IsUnsupportedType(err error) bool {
	var e unsupportedTypeError
	return errors.As(err, &e)
}

// notStartedError is returned by allocation calls while the manager is stopped (503).
type notStartedError struct{}

func (notStartedError) Error() string { return "wifi hal is not started" }

func (notStartedError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrNotStarted is returned while the manager is stopped.
var ErrNotStarted error = notStartedError{}

func IsNotStarted(err error) bool {
	var e notStartedError
	return errors.As(err, &e)
}

// noViableModeError means no mode of any chip can host the request given the
// eviction policy and the live interfaces (409).
type noViableModeError struct{ typ hal.IfaceType }

func (e noViableModeError) Error() string {
	return fmt.Sprintf("no chip mode can host %s without evicting a higher priority interface", e.typ)
}

func (e noViableModeError) StatusCode() int { return http.StatusConflict }

func ErrNoViableMode(t hal.IfaceType) error { return noViableModeError{typ: t} }

func IsNoViableMode(err error) bool {
	var e noViableModeError
	return errors.As(err, &e)
}

// ifaceNotFoundError is returned for unknown interface names or handles (404).
type ifaceNotFoundError struct{ name string }

func (e ifaceNotFoundError) Error() string { return "interface not found: " + e.name }

func (e ifaceNotFoundError) StatusCode() int { return http.StatusNotFound }

func ErrIfaceNotFound(name string) error { return ifaceNotFoundError{name: name} }

func IsIfaceNotFound(err error) bool {
	var e ifaceNotFoundError
	return errors.As(err, &e)
}

// halFailureError wraps a status or transport failure from the vendor HAL (502).
type halFailureError struct {
	op  string
	err error
}

func (e halFailureError) Error() string { return "hal " + e.op + ": " + e.err.Error() }

func (e halFailureError) Unwrap() error { return e.err }

func (e halFailureError) StatusCode() int { return http.StatusBadGateway }

func ErrHalFailure(op string, err error) error { return halFailureError{op: op, err: err} }

// IsHalFailure reports whether err carries a vendor HAL failure. The underlying
// *hal.StatusError or *hal.TransportError is reachable with errors.As.
func IsHalFailure(err error) bool {
	var e halFailureError
	return errors.As(err, &e)
}

// cacheMismatchError is returned when the chips disagree with the registry; the
// manager has already forced a stop by the time the caller sees it (503).
type cacheMismatchError struct{ detail string }

func (e cacheMismatchError) Error() string { return "interface cache mismatch: " + e.detail }

func (e cacheMismatchError) StatusCode() int { return http.StatusServiceUnavailable }

func IsCacheMismatch(err error) bool {
	var e cacheMismatchError
	return errors.As(err, &e)
}
