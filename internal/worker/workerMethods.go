package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	jobmodel "github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/metrics"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

func timeoutFor(job jobmodel.Job) time.Duration {
	if job.IsIngest() {
		return config.IngestJobTimeout
	}
	return config.QueryJobTimeout
}

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, timeoutFor(job))
	defer cancel()
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	saveJobState(ctx, log, job, jobmodel.JobStatusRunning)

	if job.IsIngest() {
		job.CurrentStep = jobmodel.IngestInit
		job = ingestDocument(ctx, job)
	} else {
		job.CurrentStep = jobmodel.RedisCall
		job = processQuery(ctx, log, job)
		if !job.Failed() {
			if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
				log.Error("Failed to save chat history", "err", err)
			}
		}
	}

	job.EndTime = time.Now()
	final := jobmodel.JobStatusComplete
	if job.Failed() {
		final = jobmodel.JobStatusError
	}

	// the job context may already be spent, the final state still has to land
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer saveCancel()
	saveJobState(saveCtx, log, job, final)
	log.Info("Job finished", "status", final, "elapsed", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	count := atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()
}

func ingestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	return _ragService.IngestDocument(ctx, job)
}

func processQuery(ctx context.Context, log *logger_i.Logger, job jobmodel.Job) jobmodel.Job {
	err, messageHistory := _jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		log.Error("Failed to get message history", "err", err)
	}
	return _ragService.ProcessRequest(ctx, job, messageHistory)
}

func saveJobState(ctx context.Context, log *logger_i.Logger, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job state", "status", jobStatus, "err", err)
	}
}
