package service

import (
	"context"
	"sync"
	"time"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OnboardingService hosts one identity flow per connecting student: it owns
// the flow registry, persists verification artifacts, and mints the classroom
// entry token when the terms are accepted.
type OnboardingService struct {
	mu         sync.Mutex
	flows      map[string]*session.Onboarding
	roster     *repository.RosterRepository
	media      *MediaService
	classrooms *ClassroomService
	events     *session.Queue
	policy     session.Policy
	jwtCfg     config.JWTConfig
	log        *zap.Logger
}

func NewOnboardingService(roster *repository.RosterRepository, media *MediaService, classrooms *ClassroomService, events *session.Queue, policy session.Policy, jwtCfg config.JWTConfig, log *zap.Logger) *OnboardingService {
	return &OnboardingService{
		flows:      make(map[string]*session.Onboarding),
		roster:     roster,
		media:      media,
		classrooms: classrooms,
		events:     events,
		policy:     policy,
		jwtCfg:     jwtCfg,
		log:        log,
	}
}

// Begin opens a fresh flow on the code step and returns its id.
func (s *OnboardingService) Begin() string {
	id := uuid.New().String()
	flow := session.NewOnboarding(id, s.roster, s.policy, session.NewScheduler(), s.events, s.log)
	s.mu.Lock()
	s.flows[id] = flow
	s.mu.Unlock()
	return id
}

func (s *OnboardingService) Flow(id string) (*session.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return flow, nil
}

// SubmitSelfie persists the captured frame before handing it to the state
// machine. A storage failure surfaces as an inline device error; the step
// stays enterable.
func (s *OnboardingService) SubmitSelfie(ctx context.Context, flowID, dataURL string) error {
	flow, err := s.Flow(flowID)
	if err != nil {
		return err
	}
	student := flow.Student()
	if student == nil {
		return util.ErrInvalidStep
	}
	url, err := s.media.StoreSelfie(ctx, student.ID, dataURL)
	if err != nil {
		return err
	}
	return flow.SubmitSelfie(url)
}

// SubmitVoiceClip persists the recording and feeds its artifact URL into the
// voice verification step.
func (s *OnboardingService) SubmitVoiceClip(ctx context.Context, flowID string, clip []byte) error {
	flow, err := s.Flow(flowID)
	if err != nil {
		return err
	}
	student := flow.Student()
	if student == nil {
		return util.ErrInvalidStep
	}
	url, err := s.media.StoreVoiceClip(ctx, student.ID, clip)
	if err != nil {
		return err
	}
	return flow.SubmitVoiceRecording(url)
}

// EntryResult is what terms acceptance hands back: the running classroom
// session plus its signed entry pass.
type EntryResult struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// Enter finishes onboarding, starts the classroom session, and mints the
// entry token. The flow is discarded afterwards.
func (s *OnboardingService) Enter(flowID string) (*EntryResult, error) {
	flow, err := s.Flow(flowID)
	if err != nil {
		return nil, err
	}
	student, err := flow.EnterClassroom()
	if err != nil {
		return nil, err
	}
	course, err := s.roster.GetCourse(student.CourseID)
	if err != nil {
		return nil, err
	}

	room := s.classrooms.Start(student, course, session.RoleStudent)

	expire := s.jwtCfg.ExpireTime
	if expire <= 0 {
		expire = 12 * time.Hour
	}
	token, err := util.GenerateEntryToken(util.EntryClaims{
		SessionID: room.ID(),
		StudentID: student.ID,
		CourseID:  student.CourseID,
		Cohort:    student.Cohort,
		Role:      string(session.RoleStudent),
	}, s.jwtCfg.Secret, expire)
	if err != nil {
		s.classrooms.Leave(room.ID())
		return nil, err
	}

	s.mu.Lock()
	delete(s.flows, flowID)
	s.mu.Unlock()

	return &EntryResult{SessionID: room.ID(), Token: token}, nil
}

// EnterAsObserver starts an instructor/admin observer session directly; the
// identity flow only applies to students.
func (s *OnboardingService) EnterAsObserver(courseID, cohort string, role session.Role) (*EntryResult, error) {
	course, err := s.roster.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	observer := &model.Student{
		ID:       "observer-" + uuid.New().String(),
		Name:     "Observer",
		Cohort:   cohort,
		CourseID: courseID,
		Status:   model.StatusInProgress,
	}
	room := s.classrooms.Start(observer, course, role)

	expire := s.jwtCfg.ExpireTime
	if expire <= 0 {
		expire = 12 * time.Hour
	}
	token, err := util.GenerateEntryToken(util.EntryClaims{
		SessionID: room.ID(),
		StudentID: observer.ID,
		CourseID:  courseID,
		Cohort:    cohort,
		Role:      string(role),
	}, s.jwtCfg.Secret, expire)
	if err != nil {
		s.classrooms.Leave(room.ID())
		return nil, err
	}
	return &EntryResult{SessionID: room.ID(), Token: token}, nil
}

// Abandon drops a flow that never reached entry, cancelling its timers.
func (s *OnboardingService) Abandon(flowID string) {
	s.mu.Lock()
	flow, ok := s.flows[flowID]
	if ok {
		delete(s.flows, flowID)
	}
	s.mu.Unlock()
	if ok {
		flow.Reset()
	}
}
