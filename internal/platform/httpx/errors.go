package httpx

import (
	"errors"
	"net/http"

	"github.com/docket-th/docket/internal/shared"
)

// RespondError maps domain errors onto HTTP statuses with a {"message"} body.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Message(w, http.StatusBadRequest, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		Message(w, http.StatusUnauthorized, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		Message(w, http.StatusNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConflict):
		Message(w, http.StatusConflict, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrInvalidState):
		Message(w, http.StatusUnprocessableEntity, shared.UserSafeMessage(err))
	default:
		Message(w, http.StatusInternalServerError, "internal error")
	}
}
