package transport

import (
	"errors"
	"net/http"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondWithServiceError maps a service error onto a status code.
// Unclassified errors are storage failures and answer 500 with fallback.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, status, fallback)
		return
	}

	message := err.Error()
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	middleware.RespondWithError(w, status, message)
}

// respondWithDecodeError answers 400 for a body that failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	logger.Debug("Request validation failed", zap.Error(err))

	if middleware.IsValidationError(err) {
		middleware.RespondWithValidationErrors(w, message, middleware.FormatValidationErrors(err))
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
}

// pathID parses the {id} URL parameter. A malformed id cannot name an entity.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
