package ingest

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB"
	"github.com/akolanti/AviationCompliance/internal/reader"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

type DocumentReader interface {
	Read(ctx context.Context, path string) (reader.Result, error)
}

type Recorder interface {
	Record(ctx context.Context, entry catalog.Entry) error
}

type Pipeline struct {
	reader         DocumentReader
	embedder       embedding.Embedder
	vectorDatabase vectorDB.DataProcessor
	recorder       Recorder
	settings       config.IngestSettings
	embeddingModel string
	logger         *logger_i.Logger
}

// NewPipeline wires the reader layer into embedding and storage. recorder may be nil.
func NewPipeline(r DocumentReader, e embedding.Embedder, v vectorDB.DataProcessor, recorder Recorder, settings config.IngestSettings, embeddingModel string) *Pipeline {
	return &Pipeline{
		reader:         r,
		embedder:       e,
		vectorDatabase: v,
		recorder:       recorder,
		settings:       settings,
		embeddingModel: embeddingModel,
		logger:         logger_i.NewLogger("Document Ingestion"),
	}
}

func (p *Pipeline) Process(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := p.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id)
	docPath := job.JobPayload.IngestURL
	defer p.removeUpload(log, docPath)

	log.Debug("Processing document", "filename", job.JobPayload.IngestFileName, "path", docPath)

	job.CurrentStep = jobModel.IngestReading
	res, err := p.reader.Read(ctx, docPath)
	if err != nil {
		return failed(log, job, err)
	}
	meta := res.Payload.Metadata

	doc := commonModels.Document{
		Id:                  job.Id,
		Name:                job.JobPayload.IngestFileName,
		LastIngestTimestamp: time.Now(),
		ContentType:         commonModels.DocType(meta.FileExtension),
		DocumentType:        meta.DocumentType,
		Metadata:            meta,
	}
	if doc.Name == "" {
		doc.Name = meta.Filename
	}

	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.String()
	}
	job.JobPayload.DocumentType = string(meta.DocumentType)
	job.JobPayload.IngestTitle = meta.Title
	job.JobPayload.IngestWarnings = warnings

	job.CurrentStep = jobModel.IngestProcessing
	if err = p.vectorDatabase.CreateCollection(ctx, config.EmbeddingDBName); err != nil {
		return failed(log, job, complianceErrors.New(complianceErrors.KindStorage, "creating collection failed", err))
	}

	chunks := PrepareChunks(res.Payload.Text, doc, p.embeddingModel, p.settings.ChunkSize, p.settings.ChunkOverlap)
	log.Debug("Processing document", "documentType", doc.DocumentType, "chunks", len(chunks))
	if len(chunks) == 0 {
		log.Warn("Document has no text to index", "filename", doc.Name)
	}

	if err = BatchIngest(ctx, chunks, p.vectorDatabase, p.embedder, p.settings.EmbeddingBatchSize); err != nil {
		return failed(log, job, err)
	}
	job.JobPayload.IngestChunks = len(chunks)

	if p.recorder != nil {
		job.CurrentStep = jobModel.IngestCatalog
		if err = p.recorder.Record(ctx, catalog.Entry{Document: doc, ChunkCount: len(chunks), Warnings: warnings}); err != nil {
			// the vectors are already stored; a missing catalog row is not worth failing the job
			log.Error("Error recording document in catalog", "error", err)
		}
	}

	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	log.Info("Document ingested", "filename", doc.Name, "documentType", doc.DocumentType, "chunks", len(chunks))
	return job
}

// removeUpload deletes the uploaded file and its per-job directory under the upload dir.
func (p *Pipeline) removeUpload(log *logger_i.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("Error removing file", "error", err)
	}
	dir := filepath.Dir(path)
	if p.settings.UploadDir != "" && filepath.Clean(dir) != filepath.Clean(p.settings.UploadDir) {
		_ = os.Remove(dir)
	}
}

func failed(log *logger_i.Logger, job jobModel.Job, err error) jobModel.Job {
	log.Error("Error processing document", "step", job.CurrentStep, "error", err)
	job.Fail(JobErrorFor(err))
	return job
}

// JobErrorFor maps a pipeline failure onto the status code and retry hint a client sees.
func JobErrorFor(err error) jobModel.JobError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return jobModel.JobError{Code: http.StatusGatewayTimeout, Message: "ingestion timed out", Retry: true}
	case errors.Is(err, complianceErrors.ErrFileNotFound):
		return jobModel.JobError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, complianceErrors.ErrUnsupportedFormat):
		return jobModel.JobError{Code: http.StatusUnsupportedMediaType, Message: err.Error()}
	case errors.Is(err, complianceErrors.ErrFileTooLarge):
		return jobModel.JobError{Code: http.StatusRequestEntityTooLarge, Message: err.Error()}
	case errors.Is(err, complianceErrors.ErrParse):
		return jobModel.JobError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	default:
		return jobModel.JobError{Code: http.StatusInternalServerError, Message: "Internal Server Error", Retry: true}
	}
}
