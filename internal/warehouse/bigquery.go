package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

// BigQueryExecutor runs report queries as BigQuery jobs. Each call makes a
// single attempt.
type BigQueryExecutor struct {
	client *bigquery.Client
}

// NewBigQueryExecutor creates a client billed to projectID. An empty
// credentialsFile uses application default credentials.
func NewBigQueryExecutor(ctx context.Context, projectID, credentialsFile string) (*BigQueryExecutor, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, apperror.Query("connect", fmt.Errorf("create bigquery client: %w", err))
	}
	return &BigQueryExecutor{client: client}, nil
}

func (e *BigQueryExecutor) Execute(ctx context.Context, spec model.ReportSpec) (model.RecordSet, error) {
	start := time.Now()

	it, err := e.client.Query(spec.Query).Read(ctx)
	if err != nil {
		return nil, apperror.Query(spec.Name, err)
	}

	rs := make(model.RecordSet, 0)
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, apperror.Query(spec.Name, fmt.Errorf("read rows: %w", err))
		}
		rs = append(rs, ConvertRow(row))
	}

	slog.DebugContext(ctx, "query finished", "report", spec.Name, "rows", len(rs), "duration_ms", time.Since(start).Milliseconds())
	return rs, nil
}

func (e *BigQueryExecutor) Close() error {
	return e.client.Close()
}

// ConvertRow turns a BigQuery row into a GenericRecord, converting nested
// RECORD and REPEATED values into plain maps and slices.
func ConvertRow(row map[string]bigquery.Value) model.GenericRecord {
	rec := make(model.GenericRecord, len(row))
	for k, v := range row {
		rec[k] = convertValue(v)
	}
	return rec
}

func convertValue(v bigquery.Value) interface{} {
	switch val := v.(type) {
	case map[string]bigquery.Value:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = convertValue(item)
		}
		return out
	case []bigquery.Value:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	default:
		return val
	}
}
