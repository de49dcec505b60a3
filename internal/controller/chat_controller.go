package controller

import (
	"errors"
	"net/http"

	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Chat   *service.ChatService
	Roster *repository.RosterRepository
}

func NewChatController(chat *service.ChatService, roster *repository.RosterRepository) *ChatController {
	return &ChatController{Chat: chat, Roster: roster}
}

type ChatSendRequest struct {
	Question string `json:"question" binding:"required"`
	Language string `json:"language"`
}

// Send godoc
// @Summary Ask the classroom assistant a question
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body ChatSendRequest true "Question"
// @Success 200 {object} util.Response{data=model.ChatMessage}
// @Failure 429 {object} util.Response "Rate limited"
// @Security BearerAuth
// @Router /api/session/{id}/chat [post]
func (c *ChatController) Send(ctx *gin.Context) {
	var req ChatSendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetEntryFromContext(ctx)
	if claims == nil || claims.SessionID != ctx.Param("id") {
		util.Forbidden(ctx)
		return
	}
	course, err := c.Roster.GetCourse(claims.CourseID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	reply, err := c.Chat.Send(ctx.Request.Context(), claims.SessionID, claims.StudentID, req.Question, course, req.Language)
	if err != nil {
		if errors.Is(err, util.ErrChatRateLimited) {
			util.Error(ctx, http.StatusTooManyRequests, err.Error())
			return
		}
		util.Error(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	util.Success(ctx, reply)
}

// History godoc
// @Summary Fetch the session's chat transcript
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Security BearerAuth
// @Router /api/session/{id}/chat [get]
func (c *ChatController) History(ctx *gin.Context) {
	claims := util.GetEntryFromContext(ctx)
	if claims == nil || claims.SessionID != ctx.Param("id") {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, c.Chat.History(claims.SessionID))
}
