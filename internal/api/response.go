package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/models"
)

// errorResponse maps a service error to its HTTP status and writes the
// standard {"error": ...} body. Unrecognized errors become an opaque 500 so
// store details never reach the client.
func errorResponse(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrMethodNotAllowed):
			status = http.StatusMethodNotAllowed
		}
		c.JSON(status, models.ErrorResponse{Error: appErr.Message})
		return
	}

	slog.Error("request failed",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey),
	)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}
