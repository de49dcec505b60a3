package service

import (
	"context"
	"sync"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"
	"virtual_classroom_backend/pkg/monitoring"

	"golang.org/x/time/rate"
)

// Responder is the opaque generation call the chat service awaits. Satisfied
// by AIService; tests inject a stub.
type Responder interface {
	Respond(ctx context.Context, question, courseName, language string, history []AIChatMessage) (string, error)
}

// ChatService runs the classroom AI side-channel. It is independent of the
// timeline: sending stays possible during quizzes, breaks, breakouts and
// camera warnings. Every exchange is mirrored to the chat log for admin
// visibility.
type ChatService struct {
	mu        sync.Mutex
	responder Responder
	chatLog   *repository.ChatLogRepository
	events    *session.Queue
	histories map[string][]AIChatMessage
	limiters  map[string]*rate.Limiter
	perMinute int
	burst     int
}

func NewChatService(responder Responder, chatLog *repository.ChatLogRepository, events *session.Queue, perMinute, burst int) *ChatService {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 3
	}
	return &ChatService{
		responder: responder,
		chatLog:   chatLog,
		events:    events,
		histories: make(map[string][]AIChatMessage),
		limiters:  make(map[string]*rate.Limiter),
		perMinute: perMinute,
		burst:     burst,
	}
}

func (s *ChatService) limiter(sessionID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[sessionID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(s.perMinute)/60), s.burst)
		s.limiters[sessionID] = l
	}
	return l
}

// Send appends the student message, awaits the generation call, appends the
// response, and mirrors both. The "in progress" state is released on every
// path: the error return carries both failure and rate-limit outcomes so the
// caller can surface them instead of leaving the UI stuck on sending.
func (s *ChatService) Send(ctx context.Context, sessionID, studentID, question string, course *model.Course, language string) (model.ChatMessage, error) {
	if !s.limiter(sessionID).Allow() {
		return model.ChatMessage{}, util.ErrChatRateLimited
	}

	userMsg := model.NewChatMessage(sessionID, studentID, model.SenderStudent, question)
	s.chatLog.Append(ctx, userMsg)
	monitoring.ChatMessages.WithLabelValues(string(model.SenderStudent)).Inc()

	s.mu.Lock()
	history := append([]AIChatMessage(nil), s.histories[sessionID]...)
	s.mu.Unlock()

	courseName := ""
	if course != nil {
		courseName = course.Name
		if language == "" {
			language = course.DefaultLanguage
		}
	}

	text, err := s.responder.Respond(ctx, question, courseName, language, history)
	if err != nil {
		return model.ChatMessage{}, err
	}

	answer := model.NewChatMessage(sessionID, studentID, model.SenderAssistant, text)
	s.chatLog.Append(ctx, answer)
	monitoring.ChatMessages.WithLabelValues(string(model.SenderAssistant)).Inc()

	s.mu.Lock()
	s.histories[sessionID] = append(s.histories[sessionID],
		AIChatMessage{Role: "user", Content: question},
		AIChatMessage{Role: "assistant", Content: text},
	)
	s.mu.Unlock()

	s.events.Emit(session.Event{
		Type:      session.EventChatExchange,
		SessionID: sessionID,
		StudentID: studentID,
		Payload:   session.ChatExchangePayload{Question: userMsg, Answer: answer},
	})

	return answer, nil
}

func (s *ChatService) History(sessionID string) []model.ChatMessage {
	return s.chatLog.History(sessionID)
}

// EndSession drops per-session chat state once the student leaves.
func (s *ChatService) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.histories, sessionID)
	delete(s.limiters, sessionID)
	s.mu.Unlock()
}
