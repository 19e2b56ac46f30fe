package store

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := New(db)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return s, mock
}

var runColumns = []string{"id", "kind", "status", "message", "files", "started_at", "finished_at"}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveRun(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).
		WithArgs("run-1", model.RunKindProcess, "running", "", "null", started, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.SaveRun(context.Background(), model.Run{ID: "run-1", Kind: model.RunKindProcess, Status: "running", StartedAt: started})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFinishRun(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET status = ?")).
		WithArgs(model.StatusSuccess, "", `["global_trends.json"]`, s.now(), "run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.FinishRun(context.Background(), model.Run{ID: "run-1", Status: model.StatusSuccess, Files: []string{"global_trends.json"}})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET status = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = s.FinishRun(context.Background(), model.Run{ID: "ghost", Status: model.StatusError})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveRunErrorRecordsKind(t *testing.T) {
	s, mock := newMockStore(t)
	runErr := apperror.Query("daily_stats", errors.New("table not found"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO run_errors")).
		WithArgs("run-1", "query", runErr.Error(), s.now()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.SaveRunError(context.Background(), "run-1", runErr); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := s.SaveRunError(context.Background(), "run-1", nil); err != nil {
		t.Fatalf("nil error should be ignored: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRuns(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)
	rows := sqlmock.NewRows(runColumns).
		AddRow("run-2", model.RunKindDashboard, model.StatusError, "refresh dash: boom", "null", started.Add(time.Hour), nil).
		AddRow("run-1", model.RunKindProcess, model.StatusSuccess, "", `["a.json","b.json"]`, started, finished)
	mock.ExpectQuery(regexp.QuoteMeta("FROM runs ORDER BY started_at DESC LIMIT ?")).
		WithArgs(10).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].FinishedAt != nil || runs[0].Message != "refresh dash: boom" {
		t.Fatalf("unexpected first run %+v", runs[0])
	}
	if !reflect.DeepEqual(runs[1].Files, []string{"a.json", "b.json"}) || runs[1].FinishedAt == nil || !runs[1].FinishedAt.Equal(finished) {
		t.Fatalf("unexpected second run %+v", runs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetRun(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM runs WHERE id = ?")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumns).AddRow("run-1", model.RunKindProcess, "running", nil, nil, started, nil))

	run, err := s.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run.ID != "run-1" || run.Status != "running" || run.Files != nil {
		t.Fatalf("unexpected run %+v", run)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM runs WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(runColumns))
	if _, err := s.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRunErrors(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2026, 10, 18, 11, 5, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM run_errors WHERE run_id = ?")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "run_id", "error_kind", "error_message", "created_at"}).
			AddRow(int64(1), "run-1", "publish", "publish daily_stats.json: denied", created))

	errs, err := s.ListRunErrors(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("list errors: %v", err)
	}
	if len(errs) != 1 || errs[0].ErrorKind != "publish" || !errs[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected errors %+v", errs)
	}
}
