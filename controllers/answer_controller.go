package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/utils"
)

// AnswerController exposes answers, votes, acceptance and verification.
type AnswerController struct {
	answers *services.AnswerService
}

// NewAnswerController creates an AnswerController.
func NewAnswerController(answers *services.AnswerService) *AnswerController {
	return &AnswerController{answers: answers}
}

// ListAnswers returns the answers of a question, accepted first then by score.
func (a *AnswerController) ListAnswers(ctx *gin.Context) {
	items, err := a.answers.List(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// CreateAnswer posts an answer to the question in the path.
func (a *AnswerController) CreateAnswer(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.AnswerInput
	if !bindJSON(ctx, &req) {
		return
	}
	answer, err := a.answers.Create(ctx.Request.Context(), p, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"answer": answer})
}

// UpdateAnswer edits an answer. Author only.
func (a *AnswerController) UpdateAnswer(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.AnswerInput
	if !bindJSON(ctx, &req) {
		return
	}
	answer, err := a.answers.Update(ctx.Request.Context(), p, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}

// DeleteAnswer removes an answer. Author or admin.
func (a *AnswerController) DeleteAnswer(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	if err := a.answers.Delete(ctx.Request.Context(), p, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "answer deleted"})
}

// Vote toggles an upvote or downvote.
func (a *AnswerController) Vote(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	type request struct {
		VoteType models.VoteKind `json:"voteType"`
	}
	var req request
	if !bindJSON(ctx, &req) {
		return
	}
	answer, err := a.answers.Vote(ctx.Request.Context(), p, ctx.Param("id"), req.VoteType)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"answer":   answer,
		"score":    answer.Score(),
		"yourVote": answer.VoteOf(p.ID),
	})
}

// Accept marks the answer as accepted. Question author only.
func (a *AnswerController) Accept(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	answer, err := a.answers.Accept(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}

// Verify approves the answer as correct. Teachers and admins.
func (a *AnswerController) Verify(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	answer, err := a.answers.Verify(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}

// Reject marks a pending answer rejected. Admin only.
func (a *AnswerController) Reject(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	answer, err := a.answers.Reject(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}
