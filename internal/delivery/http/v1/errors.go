package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lrcr/todoplane/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"message": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortServiceError maps service sentinels onto the wire taxonomy:
// validation 400, not-found 404, forbidden 403, everything else 500.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyTaskText),
		errors.Is(err, services.ErrInvalidRole):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		abort(c, newAPIError(http.StatusForbidden, "Forbidden: You do not have permission"))
	case errors.Is(err, services.ErrUserAlreadyExists):
		abort(c, newConflictError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
