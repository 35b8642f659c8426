package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	RedisCall        InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestReading    InternalStatus = "IngestReading"
	IngestProcessing InternalStatus = "IngestProcessing"
	IngestCatalog    InternalStatus = "IngestCatalog"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []string `json:"sources,omitempty"`

	// DocumentType restricts retrieval on queries and reports the classification on ingests.
	DocumentType string `json:"document_type,omitempty"`

	IngestFileName string   `json:"ingest_file_name,omitempty"`
	IngestURL      string   `json:"ingest_url,omitempty"`
	IngestTitle    string   `json:"ingest_title,omitempty"`
	IngestChunks   int      `json:"ingest_chunks,omitempty"`
	IngestWarnings []string `json:"ingest_warnings,omitempty"`
}

// Fail marks the job as failed at its current step.
func (j *Job) Fail(jobErr JobError) {
	j.Error = jobErr
	j.Status = JobStatusError
	j.CurrentStep = Error
}

func (j Job) Failed() bool {
	return j.Status == JobStatusError
}

// IsIngest reports whether the job carries an uploaded document rather than a question.
func (j Job) IsIngest() bool {
	return j.JobType == JobTypeIngest
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, JobPayload JobPayload) error
	InitNewChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) (error, []string)
}
