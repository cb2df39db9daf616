package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "gofish/internal/errors"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.NewParseError("SGF", "found no game"), http.StatusBadRequest},
		{fmt.Errorf("move: %w", errs.ErrIllegalMove), http.StatusBadRequest},
		{errs.ErrInvalidCoordinate, http.StatusBadRequest},
		{fmt.Errorf("%w: abc", errs.ErrGameNotFound), http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFromError(tt.err); got != tt.want {
			t.Errorf("StatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("%w: abc", errs.ErrGameNotFound))

	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
	var resp Response[ErrorResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusNotFound || resp.Body.ErrorDescription != "game not found: abc" {
		t.Errorf("body = %+v", resp)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("secret detail"))
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != INTERNALERRORJSON+"\n" {
		t.Errorf("internal error = %d %q", rec.Code, rec.Body.String())
	}
}
