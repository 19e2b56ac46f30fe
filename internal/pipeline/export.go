package pipeline

import (
	"context"
	"log/slog"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/blobstore"
	"go-analytics-pipeline/internal/model"
)

// Publisher serializes record sets and writes them to a blob store.
type Publisher struct {
	store blobstore.Store
}

func NewPublisher(store blobstore.Store) *Publisher {
	return &Publisher{store: store}
}

// Publish writes rs under key, replacing any previous artifact. Any failure is
// returned as a publish error and leaves the previous artifact in place.
func (p *Publisher) Publish(ctx context.Context, key string, rs model.RecordSet) (model.PublishedArtifact, error) {
	data, err := Encode(rs)
	if err != nil {
		return model.PublishedArtifact{}, apperror.Publish(key, err)
	}

	if err := p.store.Put(ctx, key, data, model.ContentTypeJSON); err != nil {
		return model.PublishedArtifact{}, apperror.Publish(key, err)
	}

	slog.DebugContext(ctx, "artifact written", "key", key, "bytes", len(data), "records", len(rs))

	return model.PublishedArtifact{
		Key:         key,
		Content:     data,
		ContentType: model.ContentTypeJSON,
		RecordCount: len(rs),
	}, nil
}
