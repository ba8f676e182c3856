package controller

import (
	"errors"
	"net/http"

	"github.com/watchparty/server/internal/service/auth"
	"github.com/watchparty/server/internal/service/relationship"
	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/internal/service/video"
	"github.com/watchparty/server/pkg/rest"
	"github.com/watchparty/server/pkg/validator"
)

var errStatuses = map[error]int{
	auth.ErrEmailTaken:         http.StatusBadRequest,
	auth.ErrInvalidCredentials: http.StatusUnauthorized,
	auth.ErrInvalidToken:       http.StatusUnauthorized,
	auth.ErrUserNotFound:       http.StatusNotFound,
	auth.ErrUnknownProvider:    http.StatusBadRequest,
	auth.ErrNoProviderEmail:    http.StatusBadRequest,

	session.ErrSessionNotFound:  http.StatusNotFound,
	session.ErrSessionEnded:     http.StatusBadRequest,
	session.ErrNotHost:          http.StatusForbidden,
	session.ErrNotParticipant:   http.StatusForbidden,
	session.ErrCapacityExceeded: http.StatusBadRequest,
	session.ErrBadPassword:      http.StatusForbidden,
	session.ErrHostCannotLeave:  http.StatusForbidden,
	session.ErrQueueNotFound:    http.StatusNotFound,
	session.ErrIndexOutOfRange:  http.StatusBadRequest,
	session.ErrPermissionDenied: http.StatusForbidden,

	relationship.ErrSelfRelationship:  http.StatusBadRequest,
	relationship.ErrAlreadyExists:     http.StatusBadRequest,
	relationship.ErrNotFound:          http.StatusNotFound,
	relationship.ErrNotRecipient:      http.StatusForbidden,
	relationship.ErrInvalidTransition: http.StatusBadRequest,
	relationship.ErrBlocked:           http.StatusForbidden,
	relationship.ErrUserNotFound:      http.StatusNotFound,

	video.ErrVideoNotFound:     http.StatusNotFound,
	video.ErrQuotaExceeded:     http.StatusTooManyRequests,
	video.ErrSearchUnavailable: http.StatusServiceUnavailable,
}

// writeServiceError maps known service errors onto HTTP statuses and writes
// the uniform error envelope. Unknown errors become a 500 with the message
// suppressed outside development.
func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for sentinel, status := range errStatuses {
		if errors.Is(err, sentinel) {
			rest.WriteError(w, status, sentinel.Error())
			return
		}
	}

	c.logger.ErrorContext(r.Context(), "internal error", "error", err)

	message := "internal server error"
	if c.isDev {
		message = err.Error()
	}
	rest.WriteError(w, http.StatusInternalServerError, message)
}

func (c controller) writeValidationError(w http.ResponseWriter, validationErrors []validator.ValidationError) {
	if len(validationErrors) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	rest.WriteError(w, http.StatusBadRequest, validationErrors[0].Message)
}
