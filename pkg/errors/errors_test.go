package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	want := map[Code]Metadata{
		CodeValidation:        {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
		CodeUnauthorized:      {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
		CodeForbidden:         {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
		CodeNotFound:          {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", DetailsAllowed: true},
		CodeConflict:          {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected", Retryable: true},
		CodeOutOfStock:        {HTTPStatus: http.StatusConflict, PublicMessage: "insufficient stock", DetailsAllowed: true},
		CodeInvalidTransition: {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "status transition not allowed", DetailsAllowed: true},
		CodeIdempotency:       {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true},
		CodeRateLimit:         {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"},
		CodeInternal:          {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error", Retryable: true},
		CodeUnavailable:       {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "service temporarily unavailable", Retryable: true},
	}
	for code, expected := range want {
		if got := MetadataFor(code); got != expected {
			t.Fatalf("code %s: expected %+v got %+v", code, expected, got)
		}
	}
	if len(codeTable) != len(want) {
		t.Fatalf("codes without expectations: table has %d, test covers %d", len(codeTable), len(want))
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	if meta := MetadataFor("SOMETHING_UNKNOWN"); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorString(t *testing.T) {
	if got := New(CodeNotFound, "order not found").Error(); got != "NOT_FOUND: order not found" {
		t.Fatalf("unexpected message %q", got)
	}
	wrapped := Wrap(CodeUnavailable, stdErrors.New("dial tcp"), "load order")
	if got := wrapped.Error(); got != "UNAVAILABLE: load order: dial tcp" {
		t.Fatalf("unexpected wrapped message %q", got)
	}
	var nilErr *Error
	if nilErr.Error() != "" || nilErr.Code() != CodeInternal {
		t.Fatalf("nil receiver should be safe")
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if !wrapped.Retryable() {
		t.Fatalf("conflicts should be retryable")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if !HasCode(err, CodeForbidden) || HasCode(err, CodeNotFound) {
		t.Fatalf("HasCode mismatch for %v", err)
	}
}

func TestUnavailableClassifiesFailures(t *testing.T) {
	if Unavailable(nil, "x") != nil {
		t.Fatalf("nil error should stay nil")
	}

	typed := New(CodeOutOfStock, "sold out")
	if got := Unavailable(typed, "placing order"); got != error(typed) {
		t.Fatalf("typed errors should pass through, got %v", got)
	}

	timeout := Unavailable(fmt.Errorf("query: %w", context.DeadlineExceeded), "loading cart")
	if !HasCode(timeout, CodeUnavailable) {
		t.Fatalf("expected timeout to be unavailable, got %v", timeout)
	}
	if !stdErrors.Is(timeout, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be preserved")
	}

	generic := Unavailable(stdErrors.New("connection reset"), "loading cart")
	if !HasCode(generic, CodeUnavailable) || !As(generic).Retryable() {
		t.Fatalf("expected retryable unavailable, got %v", generic)
	}
}

func TestDescribeCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key", TableName: "orders"}
	err := Wrap(CodeConflict, pgErr, "insert order")

	diag := Describe(err)
	if diag.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", diag.Code)
	}
	if diag.Postgres == nil {
		t.Fatal("expected postgres diagnostics")
	}
	if diag.Postgres.SQLState != "23505" || diag.Postgres.Constraint != "orders_order_number_key" || diag.Postgres.Table != "orders" {
		t.Fatalf("unexpected pg fields %+v", diag.Postgres)
	}
	if len(diag.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", diag.Chain)
	}
	if diag.Fields()["pg_sqlstate"] != "23505" {
		t.Fatalf("expected sqlstate in log fields")
	}
}

func TestDescribeUntypedErrorIsInternal(t *testing.T) {
	diag := Describe(stdErrors.New("boom"))
	if diag.Code != CodeInternal || diag.Postgres != nil {
		t.Fatalf("unexpected diagnostics %+v", diag)
	}
	if _, ok := diag.Fields()["pg_sqlstate"]; ok {
		t.Fatalf("pg fields must be omitted for non-driver errors")
	}
}
