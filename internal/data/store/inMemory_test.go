package store

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
)

func TestInMemoryJobStoreExpiresAndEvicts(t *testing.T) {
	ctx := context.Background()
	s := newInMemoryJobStore(2, 50*time.Millisecond)

	for _, id := range []string{"a", "b", "c"} {
		_ = s.SaveJob(ctx, jobModel.Job{Id: id})
	}
	if _, ok := s.GetJob(ctx, "a"); ok {
		t.Error("oldest job should be evicted past the size limit")
	}
	if _, ok := s.GetJob(ctx, "c"); !ok {
		t.Fatal("newest job missing")
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := s.GetJob(ctx, "c"); ok {
		t.Error("job should expire after the TTL")
	}
}

func TestInMemoryMessageStoreKeepsWindow(t *testing.T) {
	ctx := context.Background()
	s := newInMemoryMessageStore(10, time.Hour)
	if err := s.InitNewChat(ctx, "chat"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3*historyWindow; i++ {
		if err := s.TrySaveChat(ctx, "chat", jobModel.JobPayload{Question: "q", Answer: "a"}); err != nil {
			t.Fatal(err)
		}
	}
	stored, _ := s.chats.Get("chat")
	if len(stored) != historyWindow {
		t.Errorf("stored %d exchanges; want %d", len(stored), historyWindow)
	}

	// empty exchanges are stored but never shown
	_ = s.TrySaveChat(ctx, "chat", jobModel.JobPayload{})
	_, history := s.GetMessageHistory(ctx, "chat")
	if len(history) != historyWindow-1 {
		t.Errorf("history has %d entries; want %d", len(history), historyWindow-1)
	}

	_, history = s.GetMessageHistory(ctx, "unknown")
	if history == nil || len(history) != 0 {
		t.Errorf("unknown chat history = %#v; want empty", history)
	}
}
