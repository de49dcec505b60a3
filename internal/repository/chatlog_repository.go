package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	chatLogKeyPrefix = "classroom:chatlog:"
	chatLogTTL       = 24 * time.Hour
	chatLogCap       = 500 // per-session in-memory ring
)

// ChatLogRepository mirrors every AI side-channel exchange for admin
// visibility. Entries always land in the in-memory ring; when redis is
// configured they are additionally pushed there so back-office processes can
// read along.
type ChatLogRepository struct {
	mu   sync.RWMutex
	logs map[string][]model.ChatMessage
	rdb  *redis.Client
}

func NewChatLogRepository(rdb *redis.Client) *ChatLogRepository {
	return &ChatLogRepository{
		logs: make(map[string][]model.ChatMessage),
		rdb:  rdb,
	}
}

func (r *ChatLogRepository) Append(ctx context.Context, msg model.ChatMessage) {
	r.mu.Lock()
	entries := append(r.logs[msg.SessionID], msg)
	if len(entries) > chatLogCap {
		entries = entries[len(entries)-chatLogCap:]
	}
	r.logs[msg.SessionID] = entries
	r.mu.Unlock()

	if r.rdb == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	key := chatLogKeyPrefix + msg.SessionID
	pipe := r.rdb.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, chatLogTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// The mirror is best effort; the in-memory log stays authoritative.
		logger.Log.Warn("chat log redis mirror failed", zap.Error(err))
	}
}

func (r *ChatLogRepository) History(sessionID string) []model.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ChatMessage(nil), r.logs[sessionID]...)
}

// Drop discards a session's transcript, including the redis mirror key when
// one is configured.
func (r *ChatLogRepository) Drop(ctx context.Context, sessionID string) {
	r.mu.Lock()
	delete(r.logs, sessionID)
	r.mu.Unlock()

	if r.rdb == nil {
		return
	}
	if err := r.rdb.Del(ctx, chatLogKeyPrefix+sessionID).Err(); err != nil {
		logger.Log.Warn("chat log redis drop failed", zap.Error(err))
	}
}
