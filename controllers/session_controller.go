package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// SessionController exposes group study sessions.
type SessionController struct {
	sessions *services.SessionService
}

// NewSessionController creates a SessionController.
func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// ListSessions returns sessions filtered by status, subject or host.
func (s *SessionController) ListSessions(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	f := store.SessionFilter{
		Status:  models.SessionStatus(strings.TrimSpace(ctx.Query("status"))),
		Subject: strings.TrimSpace(ctx.Query("subject")),
		HostID:  strings.TrimSpace(ctx.Query("host")),
		Page:    page,
	}
	items, total, err := s.sessions.List(ctx.Request.Context(), f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, paginated(items, page, total))
}

// GetSession returns one session.
func (s *SessionController) GetSession(ctx *gin.Context) {
	session, err := s.sessions.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"session": session})
}

// CreateSession schedules a session hosted by the caller.
func (s *SessionController) CreateSession(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.SessionInput
	if !bindJSON(ctx, &req) {
		return
	}
	session, err := s.sessions.Create(ctx.Request.Context(), p, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"session": session})
}

type sessionOp func(context.Context, services.Principal, string) (*models.StudySession, error)

// transition adapts Join, Leave, Start and End to a handler.
func (s *SessionController) transition(op sessionOp) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, ok := mustPrincipal(ctx)
		if !ok {
			return
		}
		session, err := op(ctx.Request.Context(), p, ctx.Param("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		utils.Success(ctx, gin.H{"session": session})
	}
}

// JoinSession adds the caller to the participant list.
func (s *SessionController) JoinSession(ctx *gin.Context) { s.transition(s.sessions.Join)(ctx) }

// LeaveSession removes the caller from the participant list.
func (s *SessionController) LeaveSession(ctx *gin.Context) { s.transition(s.sessions.Leave)(ctx) }

// StartSession moves a scheduled session live. Host only.
func (s *SessionController) StartSession(ctx *gin.Context) { s.transition(s.sessions.Start)(ctx) }

// EndSession ends the session. Host or admin.
func (s *SessionController) EndSession(ctx *gin.Context) { s.transition(s.sessions.End)(ctx) }
