package service

import (
	"context"
	"errors"
	"testing"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResponder struct {
	reply   string
	err     error
	history []AIChatMessage
	lang    string
	course  string
}

func (s *stubResponder) Respond(_ context.Context, question, courseName, language string, history []AIChatMessage) (string, error) {
	s.history = append([]AIChatMessage(nil), history...)
	s.lang = language
	s.course = courseName
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestChatService(responder *stubResponder, perMinute, burst int) *ChatService {
	events := session.NewQueue(64, zap.NewNop())
	return NewChatService(responder, repository.NewChatLogRepository(nil), events, perMinute, burst)
}

func TestChatSendAppendsExchange(t *testing.T) {
	responder := &stubResponder{reply: "The legal limit is 0.08% BAC."}
	svc := newTestChatService(responder, 60, 10)
	course := &model.Course{ID: "course-dwi", Name: "DWI Education Program"}

	answer, err := svc.Send(context.Background(), "sess-1", "stu-1", "What is the legal limit?", course, "")
	require.NoError(t, err)
	assert.Equal(t, model.SenderAssistant, answer.Sender)
	assert.Equal(t, responder.reply, answer.Text)
	assert.Equal(t, "DWI Education Program", responder.course)

	history := svc.History("sess-1")
	require.Len(t, history, 2)
	assert.Equal(t, model.SenderStudent, history[0].Sender)
	assert.Equal(t, "What is the legal limit?", history[0].Text)
	assert.Equal(t, model.SenderAssistant, history[1].Sender)
}

func TestChatSendCarriesHistoryForward(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	svc := newTestChatService(responder, 60, 10)

	_, err := svc.Send(context.Background(), "sess-1", "stu-1", "first", nil, "")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "sess-1", "stu-1", "second", nil, "")
	require.NoError(t, err)

	// The second call sees the first exchange as prior context.
	require.Len(t, responder.history, 2)
	assert.Equal(t, "first", responder.history[0].Content)
	assert.Equal(t, "assistant", responder.history[1].Role)
}

func TestChatLanguageFallsBackToCourseDefault(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	svc := newTestChatService(responder, 60, 10)
	course := &model.Course{Name: "DWI Education Program", DefaultLanguage: "Spanish"}

	_, err := svc.Send(context.Background(), "sess-1", "stu-1", "hola", course, "")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", responder.lang)

	_, err = svc.Send(context.Background(), "sess-1", "stu-1", "bonjour", course, "French")
	require.NoError(t, err)
	assert.Equal(t, "French", responder.lang)
}

func TestChatRateLimit(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	svc := newTestChatService(responder, 1, 1)

	_, err := svc.Send(context.Background(), "sess-1", "stu-1", "first", nil, "")
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), "sess-1", "stu-1", "second", nil, "")
	assert.ErrorIs(t, err, util.ErrChatRateLimited)

	// Limits are per session; another session is unaffected.
	_, err = svc.Send(context.Background(), "sess-2", "stu-2", "hello", nil, "")
	assert.NoError(t, err)
}

func TestChatResponderErrorReleasesSendingState(t *testing.T) {
	responder := &stubResponder{err: errors.New("upstream timeout")}
	svc := newTestChatService(responder, 60, 10)

	_, err := svc.Send(context.Background(), "sess-1", "stu-1", "question", nil, "")
	require.Error(t, err)

	// The failed exchange leaves no assistant turn in the history, and a
	// retry goes through.
	history := svc.History("sess-1")
	require.Len(t, history, 1)
	assert.Equal(t, model.SenderStudent, history[0].Sender)

	responder.err = nil
	responder.reply = "recovered"
	answer, err := svc.Send(context.Background(), "sess-1", "stu-1", "question", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer.Text)
}

func TestChatEndSessionDropsState(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	svc := newTestChatService(responder, 1, 1)

	_, err := svc.Send(context.Background(), "sess-1", "stu-1", "first", nil, "")
	require.NoError(t, err)

	svc.EndSession("sess-1")

	// A fresh limiter applies after the session ended.
	_, err = svc.Send(context.Background(), "sess-1", "stu-1", "again", nil, "")
	assert.NoError(t, err)
}
