package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/middleware"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/storage"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// cacheWrapper mirrors utils.JSONResponse so cached bodies can be replayed verbatim.
type cacheWrapper struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func cached(data interface{}) cacheWrapper {
	return cacheWrapper{Code: 0, Message: "success", Data: data}
}

// principal reads the identity placed in the context by middleware.AuthRequired.
func principal(ctx *gin.Context) (services.Principal, bool) {
	id := ctx.GetString(middleware.ContextUserIDKey)
	if id == "" {
		return services.Principal{}, false
	}
	return services.Principal{ID: id, Role: models.Role(ctx.GetString(middleware.ContextRoleKey))}, true
}

// mustPrincipal writes a 401 and returns false when the request is anonymous.
func mustPrincipal(ctx *gin.Context) (services.Principal, bool) {
	p, ok := principal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return p, ok
}

// bindJSON decodes the body into dst, answering 400 on malformed payloads.
func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return false
	}
	return true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, size := 1, 10
	if v := strings.TrimSpace(pageStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(sizeStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}
	return page, size
}

func pageFromQuery(ctx *gin.Context) store.Page {
	page, size := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	return store.Page{Page: page, PageSize: size}
}

func paginated(items interface{}, p store.Page, total int64) gin.H {
	return gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        p.Page,
			"page_size":   p.PageSize,
			"total":       total,
			"total_pages": int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
		},
	}
}

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Respond(ctx, http.StatusBadRequest, 40000, "validation failed", gin.H{"fields": verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, services.ErrAccountSuspended):
		utils.Error(ctx, http.StatusForbidden, 40310, "account suspended")
	case errors.Is(err, services.ErrAccountBanned):
		utils.Error(ctx, http.StatusForbidden, 40311, "account banned")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, "forbidden")
	case errors.Is(err, services.ErrContentRejected):
		utils.Error(ctx, http.StatusUnprocessableEntity, 42200, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		utils.Error(ctx, http.StatusTooManyRequests, 42900, "too many requests, slow down")
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40900, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40100, "invalid credentials")
	case errors.Is(err, storage.ErrTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
	default:
		if utils.Logger != nil {
			utils.Logger.Error("request failed",
				zap.String("method", ctx.Request.Method),
				zap.String("path", ctx.FullPath()),
				zap.Error(err))
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
