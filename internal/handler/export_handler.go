package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/service"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type exportDownloader interface {
	Download(token string) (*service.ExportFile, error)
}

// ExportHandler serves signed export downloads. It sits outside JWT auth; the token is the credential.
type ExportHandler struct {
	exports exportDownloader
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportDownloader) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download export
// @Tags Assignments
// @Produce text/csv
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.exports.Download(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close()
	response.Attachment(c, file.Name, file.ContentType, file.File)
}
