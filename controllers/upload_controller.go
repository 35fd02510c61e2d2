package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/storage"
	"github.com/edulink-ug/edulink/utils"
)

// UploadController stores attachments for questions and answers.
type UploadController struct {
	files    storage.FileStore
	maxFiles int
	maxBytes int64
}

// NewUploadController creates an UploadController accepting up to maxFiles files of maxMB each.
func NewUploadController(files storage.FileStore, maxFiles, maxMB int) *UploadController {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	if maxMB <= 0 {
		maxMB = 10
	}
	return &UploadController{files: files, maxFiles: maxFiles, maxBytes: int64(maxMB) << 20}
}

// Upload accepts multipart field "files" and returns the stored references.
func (u *UploadController) Upload(ctx *gin.Context) {
	if _, ok := mustPrincipal(ctx); !ok {
		return
	}

	// Allow the multipart envelope a little room over the file payloads.
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, int64(u.maxFiles)*u.maxBytes+1<<20)
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "no file uploaded")
		return
	}
	if len(headers) > u.maxFiles {
		utils.Error(ctx, http.StatusBadRequest, 40033, fmt.Sprintf("at most %d files per upload", u.maxFiles))
		return
	}
	for _, h := range headers {
		if h.Size > u.maxBytes {
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, fmt.Sprintf("%s exceeds %dMB", h.Filename, u.maxBytes>>20))
			return
		}
	}

	out := make([]models.Attachment, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40032, "failed to read upload")
			return
		}
		att, err := u.files.Save(ctx.Request.Context(), h.Filename, h.Header.Get("Content-Type"), h.Size, f)
		_ = f.Close()
		if err != nil {
			respondError(ctx, err)
			return
		}
		out = append(out, att)
	}
	utils.Created(ctx, gin.H{"files": out})
}
