package handler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/service"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/response"
)

type fileService interface {
	List(ctx context.Context, subjectID string) ([]models.StudyFile, error)
	ListForSubject(ctx context.Context, subjectID string) ([]models.StudyFile, error)
	Create(ctx context.Context, req service.CreateFileRequest) (*models.StudyFile, error)
	Upload(ctx context.Context, req service.UploadFileRequest, filename string, body io.Reader) (*models.StudyFile, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*models.FileWithLink, error)
	OpenContent(ctx context.Context, id, token string) (*os.File, *models.StudyFile, error)
	Rate(ctx context.Context, id string, req service.RateFileRequest) (*models.StudyFile, error)
}

var fileTypeMIME = map[models.FileType]string{
	models.FileTypePDF:   "application/pdf",
	models.FileTypeDoc:   "application/msword",
	models.FileTypePPT:   "application/vnd.ms-powerpoint",
	models.FileTypeZip:   "application/zip",
	models.FileTypeVideo: "video/mp4",
}

// FileHandler serves study file endpoints.
type FileHandler struct {
	service fileService
}

// NewFileHandler constructs a file handler.
func NewFileHandler(svc fileService) *FileHandler {
	return &FileHandler{service: svc}
}

// List godoc
// @Summary List study files
// @Tags Files
// @Produce json
// @Param subjectId query string false "Filter by subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size (all items when omitted)"
// @Success 200 {object} response.Envelope
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context(), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination, err := paginate(c, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, pagination)
}

// ListBySubject godoc
// @Summary List files of a subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size (all items when omitted)"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/files [get]
func (h *FileHandler) ListBySubject(c *gin.Context) {
	files, err := h.service.ListForSubject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination, err := paginate(c, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, pagination)
}

// Create godoc
// @Summary Register a link-only study file
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateFileRequest true "File payload"
// @Success 201 {object} response.Envelope
// @Router /admin/files [post]
func (h *FileHandler) Create(c *gin.Context) {
	var req service.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	file, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Upload godoc
// @Summary Upload a study file body
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param subjectId formData string true "Subject ID"
// @Param title formData string true "Title"
// @Param type formData string true "pdf, doc, ppt, zip or video"
// @Param file formData file true "File body"
// @Success 201 {object} response.Envelope
// @Router /admin/files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	var req service.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	file, err := h.service.Upload(c.Request.Context(), req, fileHeader.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Delete godoc
// @Summary Delete a study file
// @Tags Admin
// @Produce json
// @Param id path string true "File ID"
// @Success 204
// @Router /admin/files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Count a download and return the file link
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/download [post]
func (h *FileHandler) Download(c *gin.Context) {
	result, err := h.service.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Content godoc
// @Summary Stream an uploaded file body via signed token
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /files/{id}/content [get]
func (h *FileHandler) Content(c *gin.Context) {
	handle, file, err := h.service.OpenContent(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer handle.Close() //nolint:errcheck

	info, err := handle.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file content"))
		return
	}
	name := filepath.Base(file.BlobPath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", strings.ReplaceAll(name, "\"", "")))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType(name, file.Type), handle, nil)
}

// Rate godoc
// @Summary Rate a study file
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param payload body service.RateFileRequest true "Rating"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/rate [post]
func (h *FileHandler) Rate(c *gin.Context) {
	var req service.RateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	file, err := h.service.Rate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file, nil, map[string]interface{}{"averageRating": file.AverageRating()})
}

func contentType(name string, fileType models.FileType) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	if byType, ok := fileTypeMIME[fileType]; ok {
		return byType
	}
	return "application/octet-stream"
}
