package mw

import (
	"encoding/json"
	"errors"
	"net/http"

	"ADMINKA1.0/internal/models/domainErrors"
)

type customError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteError пишет единый конверт ошибки c кодом из доменной карты.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(err))

	resp := customError{}
	resp.Error.Code = domainErrors.Code(err)
	resp.Error.Message = err.Error()

	_ = json.NewEncoder(w).Encode(resp)
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrNotFound),
		errors.Is(err, domainErrors.ErrUnknownResource):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrNoChanges),
		errors.Is(err, domainErrors.ErrValidationFailed),
		errors.Is(err, domainErrors.ErrUnknownField),
		errors.Is(err, domainErrors.ErrInvalidStatus),
		errors.Is(err, domainErrors.ErrMissingDependent):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrDepUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
