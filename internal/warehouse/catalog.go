package warehouse

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

//go:embed sql/*.sql
var queryFS embed.FS

// Table identifies the warehouse table the report queries read from.
type Table struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func (t Table) String() string {
	return fmt.Sprintf("%s.%s.%s", t.ProjectID, t.DatasetID, t.TableID)
}

// Catalog builds the fixed report catalog in execution order. Queries come
// from the embedded defaults, or from <dir>/<report>.sql when dir is set;
// either way {{.Table}} is replaced by the fully qualified table name.
func Catalog(table Table, dir string) ([]model.ReportSpec, error) {
	names := model.ReportNames()
	catalog := make([]model.ReportSpec, 0, len(names))

	for _, name := range names {
		raw, source, err := loadQuery(name, dir)
		if err != nil {
			return nil, apperror.Config(source, err)
		}
		query, err := render(name, raw, table)
		if err != nil {
			return nil, apperror.Config(source, err)
		}
		catalog = append(catalog, model.ReportSpec{Name: name, Query: query})
	}
	return catalog, nil
}

func loadQuery(name, dir string) ([]byte, string, error) {
	file := name + ".sql"
	if dir == "" {
		raw, err := queryFS.ReadFile("sql/" + file)
		return raw, "sql/" + file, err
	}
	path := filepath.Join(dir, file)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read query: %w", err)
	}
	return raw, path, nil
}

func render(name string, raw []byte, table Table) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse query template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{"Table": table.String()}); err != nil {
		return "", fmt.Errorf("render query template: %w", err)
	}
	return buf.String(), nil
}
