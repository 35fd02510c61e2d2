package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

const questionListTTL = 5 * time.Minute

// QuestionController exposes the question lifecycle.
type QuestionController struct {
	questions *services.QuestionService
}

// NewQuestionController creates a QuestionController.
func NewQuestionController(questions *services.QuestionService) *QuestionController {
	return &QuestionController{questions: questions}
}

// ListQuestions returns paginated questions filtered by subject, level, status, author or search text.
func (q *QuestionController) ListQuestions(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	f := store.QuestionFilter{
		Subject:        strings.TrimSpace(ctx.Query("subject")),
		EducationLevel: strings.TrimSpace(ctx.Query("educationLevel")),
		Status:         models.QuestionStatus(strings.TrimSpace(ctx.Query("status"))),
		AuthorID:       strings.TrimSpace(ctx.Query("author")),
		Search:         strings.TrimSpace(ctx.Query("search")),
		Sort:           store.QuestionSort(strings.TrimSpace(ctx.Query("sort"))),
		Page:           page,
	}
	if f.Status != "" && !f.Status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid status filter")
		return
	}

	// Free-text and per-author listings bypass the cache.
	cacheKey := ""
	if f.Search == "" && f.AuthorID == "" {
		cacheKey = fmt.Sprintf("%ssubject=%s:level=%s:status=%s:sort=%s:page=%d:size=%d",
			utils.CacheQuestionList, f.Subject, f.EducationLevel, f.Status, f.Sort, page.Page, page.PageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	items, total, err := q.questions.List(ctx.Request.Context(), f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	payload := paginated(items, page, total)
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, cached(payload), questionListTTL)
	}
	utils.Success(ctx, payload)
}

// GetQuestion returns one question and counts the view.
func (q *QuestionController) GetQuestion(ctx *gin.Context) {
	question, err := q.questions.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}

// CreateQuestion posts a new question after rate limiting and moderation.
func (q *QuestionController) CreateQuestion(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.QuestionInput
	if !bindJSON(ctx, &req) {
		return
	}
	question, err := q.questions.Create(ctx.Request.Context(), p, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"question": question})
}

// UpdateQuestion edits a question. Author only.
func (q *QuestionController) UpdateQuestion(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.QuestionInput
	if !bindJSON(ctx, &req) {
		return
	}
	question, err := q.questions.Update(ctx.Request.Context(), p, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}

// DeleteQuestion removes a question and its answers. Author or admin.
func (q *QuestionController) DeleteQuestion(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	if err := q.questions.Delete(ctx.Request.Context(), p, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "question deleted"})
}

// ToggleUpvote adds or retracts the caller's upvote.
func (q *QuestionController) ToggleUpvote(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	question, err := q.questions.ToggleUpvote(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"question": question,
		"upvoted":  containsID(question.Upvotes, p.ID),
	})
}

// CloseQuestion stops a question from being treated as open. Author or admin.
func (q *QuestionController) CloseQuestion(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	question, err := q.questions.Close(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
