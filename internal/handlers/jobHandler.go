package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/api"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/commonModels"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/job"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}
		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

// CreateNewJob starts a chat when needed and queues the job. It fails only when ctx ends
// while the queue is full.
func CreateNewJob(ctx context.Context, newJob newJobData) error {
	log := logJH.With("traceId", newJob.traceId, "jobId", newJob.id)
	log.Info("Creating new job", "ingest", newJob.isDocumentIngest)
	if newJob.isNewChat {
		log.Debug("Create new chat", "chatId", newJob.chatId)
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
	return handlerInstance.service.Enqueue(ctx, newJob.toJob())
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// ValidateChatRequest checks the message, the optional document type filter and,
// for follow-ups, that the chat exists.
func ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) (bool, string) {
	if handlerInstance == nil {
		return false, "Service unavailable"
	}
	if chatReq.Message == "" {
		return false, "message is required"
	}
	if chatReq.DocumentType != "" && !commonModels.DocumentType(chatReq.DocumentType).Valid() {
		return false, "unknown document_type"
	}
	if chatReq.ChatID == "" {
		return true, ""
	}
	logJH.Debug("Validating chat id", "chatId", chatReq.ChatID)
	if !handlerInstance.service.MessageStore.ValidateChatId(ctx, chatReq.ChatID) {
		return false, "unknown chat id"
	}
	return true, ""
}

// private methods
func (newJob newJobData) toJob() jobModel.Job {
	_job := jobModel.Job{
		Id:          newJob.id,
		CreatedTime: time.Now(),
		TraceId:     newJob.traceId,
		Status:      jobModel.JobStatusQueued,
	}

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.ChatId = newJob.chatId
		_job.JobPayload.Question = newJob.message
		_job.JobPayload.DocumentType = newJob.documentType
		_job.CurrentStep = jobModel.UserQueryInit
	}
	return _job
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if err := h.service.MessageStore.InitNewChat(ctxC, chatId); err != nil {
		logJH.Error("Error initiating new chat", "chatId", chatId, "err", err)
	}
}
