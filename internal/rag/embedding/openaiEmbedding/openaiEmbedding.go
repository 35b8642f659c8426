package openaiEmbedding

import (
	"context"
	"fmt"
	"sort"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/customHttpClient"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// maxInputsPerRequest is the OpenAI limit on inputs per embeddings call.
const maxInputsPerRequest = 2048

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

// NewOpenAIEmbedder builds an Embedder on the shared pooled transport. Extra options
// (base URL, retries) are applied after the defaults.
func NewOpenAIEmbedder(apiKey, model string, opts ...option.RequestOption) embedding.Embedder {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.NewPooledClient(0)),
		option.WithMaxRetries(3),
	}
	return &client{
		api:    openai.NewClient(append(base, opts...)...),
		model:  model,
		logger: logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding splits oversized inputs into several requests; the huge data set
// flag has no special path here.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string, _ bool) ([][]float32, error) {
	out := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += maxInputsPerRequest {
		end := min(start+maxInputsPerRequest, len(chunks))
		vectors, err := c.embed(ctx, chunks[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	log.Debug("Requesting embeddings", "inputs", len(inputs), "model", c.model)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "openai embedding failed", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding,
			fmt.Sprintf("openai returned %d embeddings for %d inputs", len(resp.Data), len(inputs)), nil)
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		vectors[i] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
