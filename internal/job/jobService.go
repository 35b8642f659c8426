package job

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/metrics"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

var logger = logger_i.NewLogger("JobService")

// Service is shared by the HTTP handlers that produce jobs and the workers that consume them.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
	}
}

// Enqueue records the job as queued, so its status can be polled before a worker picks it up,
// and hands it to the workers. The send blocks while the buffer is full, which is the backpressure
// on producers; ctx bounds that wait.
func (s *Service) Enqueue(ctx context.Context, job jobModel.Job) error {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id, "jobType", job.JobType)

	job.Status = jobModel.JobStatusQueued
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to save queued job", "err", err)
	}

	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		log.Warn("Gave up queueing job", "err", ctx.Err())
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), job.Id)
		return ctx.Err()
	}
	metrics.IncrementJobsInQueue()
	log.Debug("Queued job")

	// a new worker every RequestsPerNewWorkerCount requests, and one per ingestion since
	// those hold a worker for the whole embedding run; idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.IsIngest() {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
			log.Debug("Signalled dispatcher", "requestCount", count)
		case <-ctx.Done():
		}
	}
	return nil
}
