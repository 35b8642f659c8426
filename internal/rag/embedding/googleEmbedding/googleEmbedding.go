package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/adapter/utils"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/customHttpClient"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.NewPooledClient(0),
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	log.Debug("Embedding query", "length", len(query))

	result, err := c.doCall(ctx, genai.Text(query), taskTypeQuery)
	if err != nil {
		log.Error("Error getting regular Embeddings from Google", "error", err)
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google query embedding failed", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google returned no embedding", nil)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string, isLargeDataSet bool) ([][]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chunks", len(chunks))

	if !isLargeDataSet {
		res, err := c.doCall(ctx, getContent(chunks), taskTypeDocument)
		if err != nil && doRetry(err, log) {
			log.Debug("Retrying in 5 seconds")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			res, err = c.doCall(ctx, getContent(chunks), taskTypeDocument)
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch embedding failed", err)
		}

		embeddingResults := make([][]float32, 0, len(res.Embeddings))
		for _, r := range res.Embeddings {
			embeddingResults = append(embeddingResults, r.Values)
		}
		return embeddingResults, nil
	}

	src := genai.EmbeddingsBatchJobSource{InlinedRequests: getInlinedBatchRequests(chunks)}
	displayName := utils.GetNewUUID()
	log = log.With("batchJobDisplayName", displayName)

	job, err := c.genAi.Batches.CreateEmbeddings(ctx, &c.model, &src, &genai.CreateEmbeddingsBatchJobConfig{DisplayName: displayName})
	if err != nil {
		log.Error("Error creating batch Embeddings job", "error", err)
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch job creation failed", err)
	}
	if job == nil || job.Name == "" {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch job has no name", nil)
	}

	answer, err := c.pollForAnswer(ctx, job.Name, log)
	if err != nil {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch job did not finish", err)
	}
	resultVectors, err := downloadAnswerFromClient(answer, log)
	if err != nil {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch results unusable", err)
	}
	if len(resultVectors) != len(chunks) {
		return nil, complianceErrors.New(complianceErrors.KindEmbedding, "google batch returned a different number of vectors", errors.New("length mismatch"))
	}
	return resultVectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
}
