package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// StatusError returns a RemoteError reporting status for op. Service
// implementations use it to reject a request with a specific code.
func StatusError(op string, status wire.Status, format string, args ...any) error {
	return &camerr.RemoteError{
		Op:      op,
		Code:    uint8(status),
		Status:  status.String(),
		Message: fmt.Sprintf(format, args...),
	}
}

// responseError converts a failed response into a RemoteError.
func responseError(op string, resp *wire.Response) error {
	return &camerr.RemoteError{
		Op:      op,
		Code:    uint8(resp.Status),
		Status:  resp.Status.String(),
		Message: resp.ErrorMessage(),
	}
}

// StatusOf maps an error returned by a Service to the wire status reported
// to the client.
func StatusOf(err error) wire.Status {
	if err == nil {
		return wire.StatusSuccess
	}

	var re *camerr.RemoteError
	switch {
	case errors.As(err, &re) && re.Code != 0:
		return wire.Status(re.Code)
	case errors.Is(err, camerr.ErrUnsupported):
		return wire.StatusUnsupported
	case errors.Is(err, camerr.ErrUsage):
		return wire.StatusInvalidState
	case errors.Is(err, camerr.ErrFormat):
		return wire.StatusInvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		return wire.StatusTimeout
	default:
		return wire.StatusServiceFatal
	}
}

// IsStatus reports whether err is a RemoteError carrying status.
func IsStatus(err error, status wire.Status) bool {
	var re *camerr.RemoteError
	return errors.As(err, &re) && re.Code == uint8(status)
}
