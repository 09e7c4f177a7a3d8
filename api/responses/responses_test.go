package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/types"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return body
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCreated(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}
	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeValidation:        http.StatusBadRequest,
		pkgerrors.CodeNotFound:          http.StatusNotFound,
		pkgerrors.CodeOutOfStock:        http.StatusConflict,
		pkgerrors.CodeInvalidTransition: http.StatusUnprocessableEntity,
		pkgerrors.CodeUnavailable:       http.StatusServiceUnavailable,
		pkgerrors.CodeConflict:          http.StatusConflict,
	}
	for code, want := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, pkgerrors.New(code, "msg"))
		if w.Code != want {
			t.Fatalf("%s: expected %d got %d", code, want, w.Code)
		}
		if body := decodeError(t, w); body.Error.Code != string(code) {
			t.Fatalf("unexpected code %s", body.Error.Code)
		}
	}
}

func TestWriteErrorOutOfStockCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeOutOfStock, "Kienyeji chicks is out of stock").
		WithDetails(map[string]any{"available": 2})
	WriteError(context.Background(), nil, w, err)

	body := decodeError(t, w)
	if body.Error.Message != "Kienyeji chicks is out of stock" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorHidesUnavailableCause(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Unavailable(errors.New("dial tcp 10.0.0.5:5432"), "load order"))

	body := decodeError(t, w)
	if body.Error.Message != "service temporarily unavailable" {
		t.Fatalf("leaked message %q", body.Error.Message)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After on retryable error")
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	body := decodeError(t, w)
	if body.Error.Code != string(pkgerrors.CodeInternal) || body.Error.Details != nil {
		t.Fatalf("unexpected body %+v", body.Error)
	}
}
