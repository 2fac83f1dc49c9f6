// internal/entry/repository_test.go
//
// Unit-tests for the sqlx repository using sqlmock.
//
// Run: go test ./internal/entry -v

package entry

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(sqlx.NewDb(db, "sqlmock"), ""), mock
}

func TestAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, `key`, value, description FROM config_entry",
	)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "key", "value", "description"}).
			AddRow("1", "tenant.acme.limit", "45", "cap").
			AddRow("2", "feature.gate", "true", ""),
	)

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if len(got) != 2 || got[0].Key != "tenant.acme.limit" || got[1].Value != "true" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, `key`, value, description FROM config_entry WHERE `key` = ? LIMIT 1",
	)).
		WithArgs("feature.gate").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value", "description"}).
			AddRow("2", "feature.gate", "true", ""))

	got, err := repo.ByKey(context.Background(), "feature.gate")
	if err != nil {
		t.Fatalf("ByKey error: %v", err)
	}
	if got.Value != "true" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByKey_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, `key`, value, description FROM config_entry WHERE `key` = ? LIMIT 1",
	)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value", "description"}))

	_, err := repo.ByKey(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
