package drive

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for the Drive engine. Callers classify failures with
// errors.Is rather than by inspecting API error payloads.
var (
	// ErrNotFound indicates the requested file, folder or permission does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the authenticated user lacks access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidArgument indicates a caller-supplied value failed validation
	// before any API call was made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTransientIO indicates a chunk transfer failed mid-stream and the
	// result must not be treated as complete.
	ErrTransientIO = errors.New("transient i/o error")

	// ErrUnsupportedOperation indicates the operation cannot be performed in
	// the current deployment mode (e.g. local paths in a remote deployment).
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrShortcutChain indicates a shortcut pointed at another shortcut.
	// Only one level of indirection is followed.
	ErrShortcutChain = errors.New("shortcut points to another shortcut")
)

type wrapError struct {
	underlying error
	msg        string
	cause      error
}

var _ error = (*wrapError)(nil)

func (err *wrapError) Error() string {
	message := err.underlying.Error() + ": " + err.msg
	if err.cause != nil {
		message += ": " + err.cause.Error()
	}
	return message
}

func (err *wrapError) Unwrap() []error {
	if err.cause == nil {
		return []error{err.underlying}
	}
	return []error{err.underlying, err.cause}
}

func notFoundError(msg string, cause error) error {
	return &wrapError{underlying: ErrNotFound, msg: msg, cause: cause}
}

func permissionError(msg string, cause error) error {
	return &wrapError{underlying: ErrPermissionDenied, msg: msg, cause: cause}
}

func invalidArgumentError(msg string) error {
	return &wrapError{underlying: ErrInvalidArgument, msg: msg}
}

func transientIOError(msg string, cause error) error {
	return &wrapError{underlying: ErrTransientIO, msg: msg, cause: cause}
}

func unsupportedError(msg string) error {
	return &wrapError{underlying: ErrUnsupportedOperation, msg: msg}
}

// translateAPIError maps a googleapi error onto the engine's sentinel errors.
// Unknown failures pass through unchanged so their message reaches the caller.
func translateAPIError(what string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusNotFound:
		return notFoundError(what, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return permissionError(what, err)
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return transientIOError(what, err)
	}
	return err
}
