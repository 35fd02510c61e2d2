package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/utils"
)

// ChatController talks to the AI study assistant.
type ChatController struct {
	tutor *services.TutorService
}

// NewChatController creates a ChatController.
func NewChatController(tutor *services.TutorService) *ChatController {
	return &ChatController{tutor: tutor}
}

// Ask sends a message to the tutor and returns the stored exchange.
func (c *ChatController) Ask(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.AskInput
	if !bindJSON(ctx, &req) {
		return
	}
	exchange, err := c.tutor.Ask(ctx.Request.Context(), p, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, exchange)
}

// History returns the caller's most recent messages, oldest first.
func (c *ChatController) History(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	limit := 0
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	items, err := c.tutor.History(ctx.Request.Context(), p, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// ClearHistory deletes the caller's conversation.
func (c *ChatController) ClearHistory(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	if err := c.tutor.Clear(ctx.Request.Context(), p); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "chat history cleared"})
}
