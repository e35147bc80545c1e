// Package camerr defines the error taxonomy shared by the camera core.
//
// Four kinds of failure are distinguished:
//
//   - FormatError: malformed or truncated metadata wire data
//   - UsageError: an API was called out of order or in the wrong state
//   - RemoteError: the device/stream service rejected or could not complete a request
//   - UnsupportedError: a mode, format or size is absent from the device capabilities
//
// Every typed error matches its sentinel with errors.Is:
//
//	if errors.Is(err, camerr.ErrRemote) {
//	    var re *camerr.RemoteError
//	    errors.As(err, &re)
//	}
package camerr
