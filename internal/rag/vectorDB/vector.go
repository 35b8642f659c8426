package vectorDB

import (
	"context"

	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
)

// SearchFilter narrows retrieval and cache lookups. The zero value matches everything.
type SearchFilter struct {
	DocumentType commonModels.DocumentType
}

func (f SearchFilter) IsEmpty() bool {
	return f.DocumentType == ""
}

type DataProcessor interface {
	Search(ctx context.Context, vectorVal []float32, filter SearchFilter) ([]string, []string, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32, filter SearchFilter) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string, filter SearchFilter) error

	// CreateCollection Ingest document call
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
}
