package util

import "errors"

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidStep         = errors.New("action not valid in current step")
	ErrVerificationPending = errors.New("verification already in progress")
	ErrNoFrameCaptured     = errors.New("no camera frame captured")
	ErrNoRecording         = errors.New("no audio recording provided")
	ErrVideoNotWatched     = errors.New("instructional video not watched to completion")
	ErrTermsNotAccepted    = errors.New("all three agreements are required")
	ErrNoQuizOutstanding   = errors.New("no quiz outstanding")
	ErrCameraLocked        = errors.New("session locked until camera is restored")
	ErrObserverOnly        = errors.New("instructor or admin role required")
	ErrUnknownParticipant  = errors.New("unknown participant")
	ErrChatRateLimited     = errors.New("chat rate limit reached")
)
