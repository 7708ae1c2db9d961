package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_journal_entries_reference"})
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(err, "uq_journal_entries_reference") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(err, "uq_accounts_code") {
		t.Fatalf("expected constraint mismatch")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatalf("plain error must not match")
	}
}

func TestIsQueryCanceled(t *testing.T) {
	if !IsQueryCanceled(&pgconn.PgError{Code: "57014"}) {
		t.Fatalf("expected query canceled")
	}
	if IsQueryCanceled(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a cancel")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation")
	}
}

func TestIsExclusionViolation(t *testing.T) {
	if !IsExclusionViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23P01"})) {
		t.Fatalf("expected exclusion violation")
	}
	if IsExclusionViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation is not an exclusion violation")
	}
}
