package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/data/redisStore"
	"github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if s == nil {
		return nil
	}
	return TestMessageStore(s)
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	isFound, err := s.store.Exists(ctx, chatId)
	if err != nil {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Failed to check if chatId exists", "chatId", chatId, "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	if !s.ValidateChatId(ctx, id) {
		err := errors.New("invalid chat id")
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Failed Validation before saving", "chatId", id, "err", err)
		return err
	}
	return s.saveChatId(ctx, id, conversation)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", id)
	data, err := json.Marshal(conversation)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, id, data, config.RedisMessageStoreTTL); err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

// InitNewChat resets the list and leaves an empty exchange behind so the chat id exists.
func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Initializing new chat", "chatId", id)
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		return err
	}
	return s.saveChatId(ctx, id, jobModel.JobPayload{})
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chatId", chatId)

	raw, err := s.store.ListGetRecent(ctx, chatId)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return err, nil
	}

	payloads := make([]jobModel.JobPayload, 0, len(raw))
	for _, r := range raw {
		var p jobModel.JobPayload
		if err := json.Unmarshal([]byte(r), &p); err != nil {
			log.Warn("Skipping unreadable history entry", "error", err)
			continue
		}
		payloads = append(payloads, p)
	}
	return nil, formatHistory(payloads)
}
