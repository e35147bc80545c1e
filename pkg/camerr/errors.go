package camerr

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	ErrFormat      = errors.New("format error")
	ErrUsage       = errors.New("usage error")
	ErrRemote      = errors.New("remote error")
	ErrUnsupported = errors.New("unsupported")
)

// FormatError reports malformed metadata wire data.
type FormatError struct {
	// Offset is the byte offset at which decoding failed.
	Offset int

	// Reason describes the problem.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("metadata format error at offset %d: %s", e.Offset, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UsageError reports an operation invoked in an invalid state or order.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrUsage.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// Usage returns a UsageError for op.
func Usage(op, format string, args ...any) error {
	return &UsageError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// RemoteError reports a failed request to the remote camera service.
type RemoteError struct {
	// Op is the request that failed (e.g. "UpdateSetting").
	Op string

	// Code is the wire status code returned by the service.
	Code uint8

	// Status is the symbolic name of Code.
	Status string

	// Message is an optional human-readable detail from the service.
	Message string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: remote failure: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
}

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// Unwrap returns the underlying transport error.
func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps a transport-level failure of op as a RemoteError.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Status: "TRANSPORT", Err: err}
}

// UnsupportedError reports a capability the device does not offer.
type UnsupportedError struct {
	// What names the capability (e.g. "flash mode").
	What string

	// Value is the requested value.
	Value any
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %v", e.What, e.Value)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// Unsupported returns an UnsupportedError.
func Unsupported(what string, value any) error {
	return &UnsupportedError{What: what, Value: value}
}
