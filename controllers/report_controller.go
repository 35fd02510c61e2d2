package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// ReportController files reports and serves the admin review queue.
type ReportController struct {
	reports *services.ReportService
}

// NewReportController creates a ReportController.
func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// CreateReport files a report about content or a user.
func (r *ReportController) CreateReport(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.ReportInput
	if !bindJSON(ctx, &req) {
		return
	}
	report, err := r.reports.Create(ctx.Request.Context(), p, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"report": report})
}

// ListMyReports returns the reports filed by the caller.
func (r *ReportController) ListMyReports(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	page := pageFromQuery(ctx)
	items, total, err := r.reports.ListMine(ctx.Request.Context(), p, page)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, paginated(items, page, total))
}

// ListReports is the admin review queue filtered by status, priority and type.
func (r *ReportController) ListReports(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	page := pageFromQuery(ctx)
	f := store.ReportFilter{
		Status:   models.ReportStatus(strings.TrimSpace(ctx.Query("status"))),
		Priority: models.ReportPriority(strings.TrimSpace(ctx.Query("priority"))),
		Type:     models.ReportType(strings.TrimSpace(ctx.Query("type"))),
		Page:     page,
	}
	items, total, err := r.reports.List(ctx.Request.Context(), p, f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, paginated(items, page, total))
}

// GetReport returns one report to an admin or its reporter.
func (r *ReportController) GetReport(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	report, err := r.reports.Get(ctx.Request.Context(), p, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"report": report})
}

// UpdateReport records an admin review and applies its action.
func (r *ReportController) UpdateReport(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.ReportUpdate
	if !bindJSON(ctx, &req) {
		return
	}
	report, err := r.reports.Update(ctx.Request.Context(), p, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"report": report})
}
