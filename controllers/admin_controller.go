package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// AdminController holds the account management endpoints.
type AdminController struct {
	users *services.UserService
}

// NewAdminController creates an AdminController.
func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{users: users}
}

// ListUsers returns paginated accounts filtered by role, status or search text.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	page := pageFromQuery(ctx)
	f := store.UserFilter{
		Role:   models.Role(strings.TrimSpace(ctx.Query("role"))),
		Status: models.UserStatus(strings.TrimSpace(ctx.Query("status"))),
		Search: strings.TrimSpace(ctx.Query("search")),
		Page:   page,
	}
	items, total, err := a.users.List(ctx.Request.Context(), p, f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, paginated(items, page, total))
}

// SetUserStatus suspends, bans or reinstates an account.
func (a *AdminController) SetUserStatus(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	type request struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	var req request
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := a.users.SetStatus(ctx.Request.Context(), p, ctx.Param("id"), req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.CacheLeaderboard)
	utils.Success(ctx, gin.H{"user": user})
}

// VerifyTeacher marks a teacher's credentials as checked.
func (a *AdminController) VerifyTeacher(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	user, err := a.users.VerifyTeacher(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.CacheLeaderboard)
	utils.Success(ctx, gin.H{"user": user})
}
