package store

import (
	"context"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

// InMemoryJobStore stands in for redis when it is offline. Jobs expire like their redis keys
// and the oldest are evicted past InMemoryMaxJobs.
type InMemoryJobStore struct {
	jobs *expirable.LRU[string, jobModel.Job]
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return newInMemoryJobStore(config.InMemoryMaxJobs, config.RedisJobStoreTTL)
}

func newInMemoryJobStore(size int, ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{jobs: expirable.NewLRU[string, jobModel.Job](size, nil, ttl)}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	store.jobs.Add(jobToStore.Id, jobToStore)
	inMemLogger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return store.jobs.Get(jobId)
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobs.Remove(jobID)
}
