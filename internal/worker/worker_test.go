package worker

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/job"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnIngest       func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.JobPayload.Answer = "answer"
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, j)
	}
	return j
}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job

	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

// MockMessageStore handles chat history
type MockMessageStore struct {
	OnGetHistory func(ctx context.Context, chatId string) (error, []string)
	OnSaveChat   func(ctx context.Context, chatId string, payload jobModel.JobPayload) error
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool {
	return true
}

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error {
	return nil
}

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) (error, []string) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id)
	}
	return nil, []string{}
}
func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	if m.OnSaveChat != nil {
		return m.OnSaveChat(ctx, id, p)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		MessageStore:      &MockMessageStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	atomic.StoreInt64(&currentWorkerCount, 0)
	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		time.Sleep(50 * time.Millisecond)

		if count := atomic.LoadInt64(&currentWorkerCount); count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		time.Sleep(50 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.ProcessedCount); processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
		stored, ok := jobSvc.JobStore.GetJob(context.Background(), "test-1")
		if !ok || stored.Status != jobModel.JobStatusComplete || stored.JobPayload.Answer != "answer" {
			t.Errorf("final job state not stored: %+v", stored)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_KeepsErrorStatus(t *testing.T) {
	store := &MockJobStore{}
	InitServices(&job.Service{JobStore: store, MessageStore: &MockMessageStore{}}, &MockRagService{
		OnIngest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("ingest jobs should run with a deadline")
			}
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: http.StatusUnsupportedMediaType, Message: "unsupported"}
			return j
		},
	})

	executeJob(jobModel.Job{Id: "ingest-1", JobType: jobModel.JobTypeIngest, TraceId: "trace"})

	stored, ok := store.GetJob(context.Background(), "ingest-1")
	if !ok {
		t.Fatal("job was never saved")
	}
	if stored.Status != jobModel.JobStatusError || stored.Error.Code != http.StatusUnsupportedMediaType {
		t.Errorf("error outcome overwritten: %+v", stored)
	}
	if stored.EndTime.IsZero() {
		t.Error("end time not set")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	oldTimeout, oldMin := idleWorkerTimeout, atomic.LoadInt64(&minWorkerCount)
	idleWorkerTimeout = 20 * time.Millisecond
	defer func() {
		idleWorkerTimeout = oldTimeout
		atomic.StoreInt64(&minWorkerCount, oldMin)
	}()

	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	InitServices(&job.Service{JobChannel: make(chan jobModel.Job)}, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// two workers over a floor of one: exactly one retires
	createWorker()
	createWorker()
	time.Sleep(200 * time.Millisecond)

	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("Expected the pool to shrink to the floor of 1, got %d", count)
	}

	close(stopChan)
	wg.Wait()
}
