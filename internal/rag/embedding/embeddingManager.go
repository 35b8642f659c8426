package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/AviationCompliance/internal/config"
)

// Embedder turns text into vectors. GetEmbedding is used for questions,
// BatchEmbedding for document chunks; results keep the input order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error)
}

// CheckBatch verifies a provider answered one vector per input, each of the collection's dimension.
// A short answer would otherwise pair chunks with the wrong vectors.
func CheckBatch(inputs int, vectors [][]float32) error {
	if len(vectors) != inputs {
		return fmt.Errorf("embedding returned %d vectors for %d inputs", len(vectors), inputs)
	}
	for i, v := range vectors {
		if int32(len(v)) != config.EmbeddingOutputDimensionality {
			return fmt.Errorf("vector %d has dimension %d, collection expects %d", i, len(v), config.EmbeddingOutputDimensionality)
		}
	}
	return nil
}
