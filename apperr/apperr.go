// Package apperr carries an HTTP status alongside an error message and renders
// failures in the API's JSON envelope.
package apperr

import (
	"errors"
	"net/http"

	"hospitality/metrics"
	"hospitality/utils"
	"hospitality/validation"

	"github.com/rs/zerolog"
)

// AppError short-circuits a handler into an HTTP error response.
type AppError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(message string, statusCode int) *AppError {
	return &AppError{Message: message, StatusCode: statusCode}
}

func Wrap(err error, message string, statusCode int) *AppError {
	return &AppError{Message: message, StatusCode: statusCode, Err: err}
}

// NotFound reports an unresolved id, e.g. "Restaurant not found with this ID.".
func NotFound(entity string) *AppError {
	return New(entity+" not found with this ID.", http.StatusNotFound)
}

func BadRequest(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

func statusText(code int) string {
	if code >= 500 {
		return "error"
	}
	return "fail"
}

// Respond is the central error responder used by every handler.
func Respond(w http.ResponseWriter, log zerolog.Logger, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		metrics.ValidationFailures.WithLabelValues(verr.Field).Inc()
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"status":  "fail",
			"message": verr.Error(),
			"field":   verr.Field,
			"reason":  verr.Reason,
		})
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= 500 {
			log.Error().Err(err).Int("status", appErr.StatusCode).Msg("request failed")
		}
		utils.RespondWithJSON(w, appErr.StatusCode, utils.M{
			"status":  statusText(appErr.StatusCode),
			"message": appErr.Message,
		})
		return
	}

	log.Error().Err(err).Msg("unhandled error")
	utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
		"status":  "error",
		"message": err.Error(),
	})
}
