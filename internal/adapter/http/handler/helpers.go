package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
)

// Error codes carried in dto.ErrorResponse.Error.
const (
	codeError              = "ERROR"
	codeBadRequest         = "BAD_REQUEST"
	codeValidation         = "VALIDATION_ERROR"
	codeInvalidRequestBody = "INVALID_REQUEST_BODY"
	codeNotFound           = "NOT_FOUND"
	codeConflict           = "CONFLICT"
	codeBadGateway         = "BAD_GATEWAY"

	messageValidationFailed = "Validation failed"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeRawJSON writes an already encoded JSON body.
func writeRawJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError maps err to a status and error body and logs it.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapDomainError(err)

	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", string(domain.KindOf(err))).Int("status", status).Msg("request failed")

	writeJSON(w, status, body)
}

// mapDomainError maps domain errors to HTTP status codes and bodies.
func mapDomainError(err error) (int, dto.ErrorResponse) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, dto.ErrorResponse{
			Error:         codeValidation,
			Message:       messageValidationFailed,
			MessageFields: verr.Fields,
		}
	}

	switch {
	case errors.Is(err, domain.ErrKeyFormat),
		errors.Is(err, domain.ErrCrypto),
		errors.Is(err, domain.ErrMalformedAmount),
		errors.Is(err, domain.ErrMalformedTimestamp):
		return http.StatusBadRequest, dto.ErrorResponse{Error: codeBadRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, dto.ErrorResponse{Error: codeConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: codeNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrRelay):
		return http.StatusBadGateway, dto.ErrorResponse{Error: codeBadGateway, Message: err.Error()}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: codeError, Message: "internal server error"}
	}
}
