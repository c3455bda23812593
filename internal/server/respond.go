package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/uschtwill/trackd/internal/service"
	"github.com/uschtwill/trackd/internal/validation"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

type errorBody struct {
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// writeError maps the service error taxonomy onto status codes:
// validation 400, unauthenticated 401, not-found 404, referential 400,
// anything else 500 with a generic message and no detail leaked.
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusBadRequest, errorBody{Errors: fieldErrs})
		return
	}
	if errors.Is(err, service.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, struct{}{})
		return
	}
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: notFound.Error()})
		return
	}
	var referential *service.ReferentialError
	if errors.As(err, &referential) {
		writeJSON(w, http.StatusBadRequest, errorBody{Errors: map[string]string{referential.Field: referential.Message}})
		return
	}
	log.WithError(err).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
