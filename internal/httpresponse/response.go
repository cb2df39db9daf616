package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errs "gofish/internal/errors"
)

type Response[T any] struct {
	Status int `json:"status"`
	Body   T   `json:"body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"error"`
}

const INTERNALERRORJSON = "{\"status\": 500,\"body\":{\"error\": \"Internal server error\"}}"

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonByte)
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	return json.Marshal(response)
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}

// StatusFromError picks the HTTP status for an error returned by a use case.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrParseFailed),
		errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrGameNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteError writes err with the status StatusFromError picks. Internal
// errors are not described to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFromError(err)
	if status == http.StatusInternalServerError {
		WriteInternalErrorResponse(w)
		return
	}
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: err.Error()})
}
