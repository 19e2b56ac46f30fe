package warehouse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

var testTable = Table{ProjectID: "demo-project", DatasetID: "covid19", TableID: "covid19_data"}

func TestCatalogEmbeddedOrderAndTable(t *testing.T) {
	catalog, err := Catalog(testTable, "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	names := make([]string, len(catalog))
	for i, spec := range catalog {
		names[i] = spec.Name
		if !strings.Contains(spec.Query, "`demo-project.covid19.covid19_data`") {
			t.Fatalf("query %s does not reference the table:\n%s", spec.Name, spec.Query)
		}
		if strings.Contains(spec.Query, "{{") {
			t.Fatalf("query %s left a template action unrendered", spec.Name)
		}
	}
	if !reflect.DeepEqual(names, model.ReportNames()) {
		t.Fatalf("expected catalog order %v, got %v", model.ReportNames(), names)
	}
}

func TestCatalogFromDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range model.ReportNames() {
		body := "SELECT '" + name + "' AS report FROM `{{.Table}}`"
		if err := os.WriteFile(filepath.Join(dir, name+".sql"), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	catalog, err := Catalog(testTable, dir)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	want := "SELECT 'daily_stats' AS report FROM `demo-project.covid19.covid19_data`"
	if catalog[2].Query != want {
		t.Fatalf("unexpected query %q", catalog[2].Query)
	}
}

func TestCatalogErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Catalog(testTable, t.TempDir())
		if !apperror.Is(err, apperror.KindConfig) {
			t.Fatalf("expected config error, got %v", err)
		}
	})

	t.Run("bad template", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range model.ReportNames() {
			if err := os.WriteFile(filepath.Join(dir, name+".sql"), []byte("SELECT {{.Table"), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
		_, err := Catalog(testTable, dir)
		if !apperror.Is(err, apperror.KindConfig) {
			t.Fatalf("expected config error, got %v", err)
		}
	})
}

func TestConvertRowNested(t *testing.T) {
	day := civil.Date{Year: 2026, Month: 10, Day: 18}
	row := map[string]bigquery.Value{
		"date":            day,
		"total_new_cases": int64(1200),
		"top_10_countries": []bigquery.Value{
			map[string]bigquery.Value{"country_name": "India", "new_confirmed": int64(700)},
			map[string]bigquery.Value{"country_name": "Brazil", "new_confirmed": int64(500)},
		},
		"missing": nil,
	}

	got := ConvertRow(row)
	want := model.GenericRecord{
		"date":            day,
		"total_new_cases": int64(1200),
		"top_10_countries": []interface{}{
			map[string]interface{}{"country_name": "India", "new_confirmed": int64(700)},
			map[string]interface{}{"country_name": "Brazil", "new_confirmed": int64(500)},
		},
		"missing": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected conversion:\n got %#v\nwant %#v", got, want)
	}
}

func TestTableString(t *testing.T) {
	if got := testTable.String(); got != "demo-project.covid19.covid19_data" {
		t.Fatalf("unexpected table name %q", got)
	}
}

type countingExecutor struct {
	calls  int
	closed bool
}

func (e *countingExecutor) Execute(_ context.Context, spec model.ReportSpec) (model.RecordSet, error) {
	e.calls++
	return model.RecordSet{{"report": spec.Name}}, nil
}

func (e *countingExecutor) Close() error {
	e.closed = true
	return nil
}

func TestLazyExecutorOpensOnce(t *testing.T) {
	inner := &countingExecutor{}
	opens := 0
	lazy := NewLazyExecutor(func(context.Context) (Executor, error) {
		opens++
		return inner, nil
	})

	if err := lazy.Close(); err != nil || opens != 0 {
		t.Fatalf("close before use must not open: opens=%d err=%v", opens, err)
	}

	spec := model.ReportSpec{Name: model.ReportDailyStats, Query: "SELECT 1"}
	for i := 0; i < 2; i++ {
		rs, err := lazy.Execute(context.Background(), spec)
		if err != nil || len(rs) != 1 {
			t.Fatalf("execute: %v %v", rs, err)
		}
	}
	if opens != 1 || inner.calls != 2 {
		t.Fatalf("expected one open and two calls, got %d and %d", opens, inner.calls)
	}

	if err := lazy.Close(); err != nil || !inner.closed {
		t.Fatalf("expected inner executor closed (%v)", err)
	}
}

func TestLazyExecutorOpenFailure(t *testing.T) {
	lazy := NewLazyExecutor(func(context.Context) (Executor, error) {
		return nil, apperror.Query("connect", errors.New("no credentials"))
	})

	_, err := lazy.Execute(context.Background(), model.ReportSpec{Name: model.ReportGlobalTrends, Query: "SELECT 1"})
	if !apperror.Is(err, apperror.KindQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
	if err := lazy.Close(); err != nil {
		t.Fatalf("close after failed open: %v", err)
	}
}
