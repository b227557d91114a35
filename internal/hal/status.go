package hal

import (
	"errors"
	"fmt"
)

// StatusCode mirrors the vendor HAL status codes.
type StatusCode int

const (
	StatusSuccess StatusCode = iota
	StatusErrorWifiChipInvalid
	StatusErrorWifiIfaceInvalid
	StatusErrorWifiRttControllerInvalid
	StatusErrorNotSupported
	StatusErrorNotAvailable
	StatusErrorNotStarted
	StatusErrorInvalidArgs
	StatusErrorBusy
	StatusErrorUnknown
)

var statusNames = map[StatusCode]string{
	StatusSuccess:                       "SUCCESS",
	StatusErrorWifiChipInvalid:          "ERROR_WIFI_CHIP_INVALID",
	StatusErrorWifiIfaceInvalid:         "ERROR_WIFI_IFACE_INVALID",
	StatusErrorWifiRttControllerInvalid: "ERROR_WIFI_RTT_CONTROLLER_INVALID",
	StatusErrorNotSupported:             "ERROR_NOT_SUPPORTED",
	StatusErrorNotAvailable:             "ERROR_NOT_AVAILABLE",
	StatusErrorNotStarted:               "ERROR_NOT_STARTED",
	StatusErrorInvalidArgs:              "ERROR_INVALID_ARGS",
	StatusErrorBusy:                     "ERROR_BUSY",
	StatusErrorUnknown:                  "ERROR_UNKNOWN",
}

func (c StatusCode) String() string {
	if s, ok := statusNames[c]; ok {
		return s
	}
	return fmt.Sprintf("STATUS(%d)", int(c))
}

// Status is the result of a HAL call that completed at the transport level.
type Status struct {
	Code        StatusCode
	Description string
}

func (s Status) String() string {
	if s.Description == "" {
		return s.Code.String()
	}
	return fmt.Sprintf("%s (%s)", s.Code, s.Description)
}

// StatusError is returned when the HAL answered with a non-success status.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string { return e.Op + ": " + e.Status.String() }

// NewStatusError builds a StatusError for op.
func NewStatusError(op string, code StatusCode, desc string) error {
	return &StatusError{Op: op, Status: Status{Code: code, Description: desc}}
}

// TransportError is returned when the remote call itself failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ErrDeadObject is the transport cause reported after the service died.
var ErrDeadObject = errors.New("dead object")

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCodeOf extracts the HAL status code from err. A nil error is StatusSuccess,
// a transport failure or foreign error is StatusErrorUnknown.
func StatusCodeOf(err error) StatusCode {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status.Code
	}
	return StatusErrorUnknown
}
