package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the request carried bad input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState indicates the operation is not legal in the document's current lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a uniqueness or concurrent-modification conflict.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing or invalid bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UserSafeMessage returns a message suitable for API clients. Wrapped
// sentinel errors keep their full chain text; anything else is masked.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthenticated):
		return err.Error()
	default:
		return "internal error"
	}
}
