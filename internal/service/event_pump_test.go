package service

import (
	"context"
	"testing"

	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventPumpSessionEndedReleasesChatState(t *testing.T) {
	chatLog := repository.NewChatLogRepository(nil)
	chat := NewChatService(&stubResponder{reply: "ok"}, chatLog, session.NewQueue(16, zap.NewNop()), 60, 10)

	_, err := chat.Send(context.Background(), "sess-1", "stu-1", "What is BAC?", nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, chatLog.History("sess-1"))

	pump := NewEventPump(session.NewQueue(16, zap.NewNop()), repository.NewRosterRepository(), nil, chat, chatLog, nil, zap.NewNop())
	pump.handle(session.Event{Type: session.EventSessionEnded, SessionID: "sess-1"})

	assert.Empty(t, chatLog.History("sess-1"))
	chat.mu.Lock()
	_, hasHistory := chat.histories["sess-1"]
	_, hasLimiter := chat.limiters["sess-1"]
	chat.mu.Unlock()
	assert.False(t, hasHistory, "chat history must be released")
	assert.False(t, hasLimiter, "rate limiter must be released")
}
