package controller

import (
	"errors"
	"net/http"

	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassroomController struct {
	Classrooms *service.ClassroomService
}

func NewClassroomController(classrooms *service.ClassroomService) *ClassroomController {
	return &ClassroomController{Classrooms: classrooms}
}

// room resolves the path session against the caller's entry token. A token is
// scoped to exactly one session.
func (c *ClassroomController) room(ctx *gin.Context) (*session.Classroom, bool) {
	claims := util.GetEntryFromContext(ctx)
	if claims == nil || claims.SessionID != ctx.Param("id") {
		util.Forbidden(ctx)
		return nil, false
	}
	room, err := c.Classrooms.Get(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return nil, false
	}
	return room, true
}

// Snapshot godoc
// @Summary Fetch the render-ready session state
// @Tags classroom
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id} [get]
func (c *ClassroomController) Snapshot(ctx *gin.Context) {
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	util.Success(ctx, room.Snapshot())
}

type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
	Forced  bool              `json:"forced"`
}

// SubmitQuiz godoc
// @Summary Submit answers for the current quiz item
// @Tags classroom
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body SubmitQuizRequest true "Selected option per question"
// @Success 200 {object} util.Response{data=model.QuizResult}
// @Failure 409 {object} util.Response
// @Security BearerAuth
// @Router /api/session/{id}/quiz [post]
func (c *ClassroomController) SubmitQuiz(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	result, err := room.SubmitQuiz(req.Answers, req.Forced)
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// CloseResults godoc
// @Summary Dismiss the quiz results screen and resume the timeline
// @Tags classroom
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Failure 423 {object} util.Response "Camera locked"
// @Security BearerAuth
// @Router /api/session/{id}/quiz/close [post]
func (c *ClassroomController) CloseResults(ctx *gin.Context) {
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	if err := room.CloseResults(); err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, room.Snapshot())
}

type CameraRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetCamera godoc
// @Summary Report a camera on/off transition
// @Tags classroom
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body CameraRequest true "Camera state"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/camera [post]
func (c *ClassroomController) SetCamera(ctx *gin.Context) {
	var req CameraRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	room.SetCameraEnabled(*req.Enabled)
	util.Success(ctx, room.Snapshot())
}

type MuteRequest struct {
	Muted *bool `json:"muted" binding:"required"`
}

// SetMute godoc
// @Summary Toggle the caller's own microphone
// @Tags classroom
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body MuteRequest true "Mute state"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/mute [post]
func (c *ClassroomController) SetMute(ctx *gin.Context) {
	var req MuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	room.SetMuted(*req.Muted)
	util.Success(ctx, room.Snapshot())
}

// ToggleScreenShare godoc
// @Summary Toggle screen sharing (instructor only)
// @Tags classroom
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/screen-share [post]
func (c *ClassroomController) ToggleScreenShare(ctx *gin.Context) {
	room, ok := c.room(ctx)
	if !ok {
		return
	}
	if _, err := room.ToggleScreenShare(); err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, room.Snapshot())
}

// Leave godoc
// @Summary End the session and release its resources
// @Tags classroom
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response
// @Security BearerAuth
// @Router /api/session/{id}/leave [post]
func (c *ClassroomController) Leave(ctx *gin.Context) {
	if _, ok := c.room(ctx); !ok {
		return
	}
	if err := c.Classrooms.Leave(ctx.Param("id")); err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *ClassroomController) sessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrCameraLocked):
		util.Error(ctx, http.StatusLocked, err.Error())
	case errors.Is(err, util.ErrNoQuizOutstanding):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrObserverOnly):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrUnknownParticipant):
		util.NotFound(ctx)
	default:
		util.Error(ctx, http.StatusInternalServerError, err.Error())
	}
}
