package repository

import (
	"errors"
	"fmt"
	"testing"

	"tradequote_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestConflictFromUnique_DefaultIndexViolationIsRetryableConflict(t *testing.T) {
	err := fmt.Errorf("insert business name: %w", &pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: defaultUniqueIndex,
	})

	conflict := conflictFromUnique(err)
	if conflict == nil {
		t.Fatal("expected a conflict for the default-flag index")
	}
	if apperr.GetKind(conflict) != apperr.KindConflict {
		t.Fatalf("expected conflict kind, got %v", conflict)
	}
	if conflict.Error() == "a business name with this name already exists" {
		t.Fatal("default-flag violation must not be reported as a duplicate name")
	}
}

func TestConflictFromUnique_NameIndexViolationIsDuplicateName(t *testing.T) {
	err := &pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "idx_business_names_name",
	}

	conflict := conflictFromUnique(err)
	if conflict == nil {
		t.Fatal("expected a conflict for the name index")
	}
	if conflict.Error() != "a business name with this name already exists" {
		t.Fatalf("unexpected message: %q", conflict.Error())
	}
}

func TestConflictFromUnique_OtherErrorsPassThrough(t *testing.T) {
	if conflictFromUnique(errors.New("connection reset")) != nil {
		t.Fatal("non-unique errors must not map to a conflict")
	}
	if conflictFromUnique(&pgconn.PgError{Code: "23503"}) != nil {
		t.Fatal("foreign key violations must not map to a conflict")
	}
	if conflictFromUnique(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}
