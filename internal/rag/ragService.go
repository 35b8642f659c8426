package rag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/AviationCompliance/internal/adapter/utils"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/metrics"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/internal/rag/llm"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

/*
Service is the only thing the worker sees. The private service struct holds the
vector store, LLM, embedder and ingest pipeline so they can be swapped for mocks
in tests without the worker knowing.
*/

type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Ingester turns an uploaded file into stored chunks. ingest.Pipeline implements it.
type Ingester interface {
	Process(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	ingester    Ingester
	logger      *logger_i.Logger
}

func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, ingester Ingester) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		ingester:    ingester,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("JobId", jobt.Id)

	filter := vectorDB.SearchFilter{DocumentType: commonModels.DocumentType(jobt.JobPayload.DocumentType)}
	if !filter.IsEmpty() && !filter.DocumentType.Valid() {
		return s.badRequest(jobt, fmt.Sprintf("unknown document_type %q", jobt.JobPayload.DocumentType))
	}

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, embeddingStep, filter)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, embeddingStep, filter)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// the request context ends with the job, the cache write should not
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), config.QdrantConnectionTimeout)
	go func() {
		defer saveCancel()
		if err := s.vectorDB.SaveToCache(saveCtx, utils.GetNewUUID(), embeddingStep, answer, filter); err != nil {
			inMethodLogger.Error("Failed to save to cache", "error", err)
		}
	}()

	return returnOutput(jobt, answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	j := s.ingester.Process(ctx, job)
	if j.Status != jobModel.JobStatusComplete {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("INGESTION_FAILURE", "jobId", j.Id, "code", j.Error.Code, "message", j.Error.Message)
		if j.Error.Code == 0 {
			return s.jobError(j, fmt.Errorf("ingest document failed at %s", j.CurrentStep), "INGESTION_FAILURE", true)
		}
	}
	return j
}

func (s *service) badRequest(job jobModel.Job, message string) jobModel.Job {
	job.Fail(jobModel.JobError{Code: http.StatusBadRequest, Message: message})
	return job
}
