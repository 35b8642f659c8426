package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// InMemoryMessageStore keeps chat exchanges per chat id. Chats expire like their redis lists.
type InMemoryMessageStore struct {
	chatLock sync.Mutex
	chats    *expirable.LRU[string, []jobModel.JobPayload]
}

func InitMessageStore() *InMemoryMessageStore {
	return newInMemoryMessageStore(config.InMemoryMaxChats, config.RedisMessageStoreTTL)
}

func newInMemoryMessageStore(size int, ttl time.Duration) *InMemoryMessageStore {
	return &InMemoryMessageStore{chats: expirable.NewLRU[string, []jobModel.JobPayload](size, nil, ttl)}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	return store.chats.Contains(chatId)
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	exchanges, ok := store.chats.Get(id)
	if !ok {
		return errors.New("invalid chat id")
	}
	// only the last historyWindow exchanges are ever read back
	exchanges = append(exchanges, conversation)
	if len(exchanges) > historyWindow {
		exchanges = append([]jobModel.JobPayload(nil), exchanges[len(exchanges)-historyWindow:]...)
	}
	store.chats.Add(id, exchanges)
	inMemLogger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Saved exchange to chat", "chatId", id)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chats.Add(id, []jobModel.JobPayload{})
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	payloads, ok := store.chats.Get(chatId)
	if !ok {
		return nil, []string{}
	}
	return nil, formatHistory(payloads)
}
