package templates

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-builder/resume/model"
)

func TestPGRepoGetDecodesConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tmpl := Builtins()[1]
	config, _ := json.Marshal(tmpl)

	mock.ExpectQuery("FROM templates").
		WithArgs("modern").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "is_premium", "config"}).
			AddRow("modern", "Modern", "modern", false, config))

	repo := &PGRepo{DB: db}
	got, err := repo.Get(context.Background(), "modern")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Layout.Type != string(model.LayoutTwoColumn) || len(got.Layout.Columns.Widths) != 2 {
		t.Fatalf("unexpected layout: %+v", got.Layout)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM templates").
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "is_premium", "config"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.Get(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tmpl := model.DefaultTemplate()
	mock.ExpectExec("INSERT INTO templates").
		WithArgs(tmpl.ID, tmpl.Name, tmpl.Category, tmpl.IsPremium, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Upsert(context.Background(), tmpl); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
