package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	wrapped := Wrap(CodeDependency, cause, "write media")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if Wrap(CodeInternal, nil, "noop").Unwrap() != nil {
		t.Fatalf("wrapping nil should not invent a cause")
	}
}

func TestIsCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", New(CodeNotFound, "no cart"))
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND to be found through wrap")
	}
	if IsCode(err, CodeConflict) {
		t.Fatalf("unexpected CONFLICT match")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpExtractsPgDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users"}
	err := Wrap(CodeConflict, pgErr, "insert user")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected CONFLICT code, got %s", d.Code)
	}
	if d.DB == nil || d.DB.Driver != "pgx" || d.DB.Code != "23505" || d.DB.Constraint != "users_email_key" {
		t.Fatalf("pg fields not extracted: %+v", d.DB)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
	if got := d.DB.Fields()["db_table"]; got != "users" {
		t.Fatalf("expected db_table field, got %v", got)
	}
}

func TestDumpExtractsSQLiteDiagnostics(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	d := Dump(Wrap(CodeConflict, liteErr, "insert cart"))

	if d.DB == nil || d.DB.Driver != "sqlite" || d.DB.Code != "2067" {
		t.Fatalf("sqlite fields not extracted: %+v", d.DB)
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	d := Dump(New(CodeValidation, "bad page"))
	if d.DB != nil {
		t.Fatalf("expected no db diagnostics, got %+v", d.DB)
	}
	if d.DB.Fields() != nil {
		t.Fatalf("nil diag must flatten to nil")
	}
}
