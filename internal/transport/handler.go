package transport

import (
	"errors"
	"net/http"

	"shopapp/internal/domain"
	"shopapp/internal/middleware"

	"go.uber.org/zap"
)

// decodeBody decodes and validates a JSON body, answering the request
// itself when that fails
func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request body rejected", zap.Error(err))

		if errors.Is(err, domain.ErrValidation) {
			middleware.RespondWithDomainError(w, logger, err)
			return false
		}

		// JSON decode error
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respondBadParam(w http.ResponseWriter, err error) {
	middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
}
