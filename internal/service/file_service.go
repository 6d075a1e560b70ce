package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/idgen"
	"github.com/noah-isme/it-hub-api/pkg/storage"
)

type fileStore interface {
	ListFiles(ctx context.Context, subjectID string) ([]models.StudyFile, error)
	FindFile(ctx context.Context, id string) (*models.StudyFile, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	AddFile(ctx context.Context, file models.StudyFile) error
	DeleteFile(ctx context.Context, id string) (models.Outcome, *models.StudyFile, error)
	IncrementDownload(ctx context.Context, id string) (models.Outcome, *models.StudyFile, error)
	RateFile(ctx context.Context, id string, rating int) (models.Outcome, *models.StudyFile, error)
}

type blobStorage interface {
	SaveStream(filename string, r io.Reader, limit int64) (int64, error)
	Open(filename string) (*os.File, error)
}

type contentSigner interface {
	Generate(fileID, relPath string) (string, time.Time, error)
	Parse(token string) (fileID, relPath string, err error)
}

type fileActivityRecorder interface {
	RecordDownload()
	RecordRating(stars int)
	RecordUpload(bytes int64)
}

// FileServiceConfig tunes upload handling and link generation.
type FileServiceConfig struct {
	APIPrefix      string
	MaxUploadBytes int64
}

// CreateFileRequest registers a file that lives at an external URL.
type CreateFileRequest struct {
	SubjectID string          `json:"subjectId" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Type      models.FileType `json:"type" validate:"required,oneof=pdf doc ppt zip video"`
	URL       string          `json:"url" validate:"required"`
}

// UploadFileRequest carries the metadata sent alongside an uploaded body.
type UploadFileRequest struct {
	SubjectID string          `form:"subjectId" validate:"required"`
	Title     string          `form:"title" validate:"required"`
	Type      models.FileType `form:"type" validate:"required,oneof=pdf doc ppt zip video"`
}

// RateFileRequest carries a one to five star rating.
type RateFileRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// FileService manages study files, their uploaded bodies and download links.
type FileService struct {
	store     fileStore
	blobs     blobStorage
	signer    contentSigner
	releaser  blobReleaser
	ids       idgen.Generator
	metrics   fileActivityRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       FileServiceConfig
	now       func() time.Time
}

// NewFileService constructs a FileService.
func NewFileService(store fileStore, blobs blobStorage, signer contentSigner, releaser blobReleaser, ids idgen.Generator, metrics fileActivityRecorder, validate *validator.Validate, logger *zap.Logger, cfg FileServiceConfig) *FileService {
	if ids == nil {
		ids = idgen.NewTimestampGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	return &FileService{
		store:     store,
		blobs:     blobs,
		signer:    signer,
		releaser:  releaser,
		ids:       ids,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns all files, or those of one subject when subjectID is set.
func (s *FileService) List(ctx context.Context, subjectID string) ([]models.StudyFile, error) {
	files, err := s.store.ListFiles(ctx, strings.TrimSpace(subjectID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, nil
}

// ListForSubject returns a subject's files, failing when the subject does not exist.
func (s *FileService) ListForSubject(ctx context.Context, subjectID string) ([]models.StudyFile, error) {
	if err := s.requireSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.List(ctx, subjectID)
}

// Create registers a link-only file under an existing subject.
func (s *FileService) Create(ctx context.Context, req CreateFileRequest) (*models.StudyFile, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid file payload")
	}
	if err := s.requireSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	file := models.StudyFile{
		ID:         s.ids.NewID(),
		SubjectID:  req.SubjectID,
		Title:      req.Title,
		Type:       req.Type,
		URL:        req.URL,
		UploadedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.store.AddFile(ctx, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create file")
	}
	s.logger.Info("file created", zap.String("file_id", file.ID), zap.String("subject_id", file.SubjectID))
	return &file, nil
}

// Upload stores body under <id>/<filename> and registers a file whose URL is the content endpoint.
func (s *FileService) Upload(ctx context.Context, req UploadFileRequest, filename string, body io.Reader) (*models.StudyFile, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}
	name := sanitizeFilename(filename)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}
	if err := s.requireSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	id := s.ids.NewID()
	relPath := path.Join(id, name)
	written, err := s.blobs.SaveStream(relPath, body, s.cfg.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	file := models.StudyFile{
		ID:         id,
		SubjectID:  req.SubjectID,
		Title:      req.Title,
		Type:       req.Type,
		URL:        s.contentPath(id),
		UploadedAt: s.now().UTC().Format(time.RFC3339Nano),
		BlobPath:   relPath,
	}
	if err := s.store.AddFile(ctx, file); err != nil {
		if s.releaser != nil {
			s.releaser.Release(file)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create file")
	}
	if s.metrics != nil {
		s.metrics.RecordUpload(written)
	}
	s.logger.Info("file uploaded", zap.String("file_id", id), zap.Int64("bytes", written))
	return &file, nil
}

// Delete removes one file and schedules removal of its uploaded body.
func (s *FileService) Delete(ctx context.Context, id string) error {
	outcome, removed, err := s.store.DeleteFile(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file")
	}
	if outcome == models.OutcomeNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	if removed != nil && s.releaser != nil {
		s.releaser.Release(*removed)
	}
	return nil
}

// Download counts a download and returns the link the client should follow.
func (s *FileService) Download(ctx context.Context, id string) (*models.FileWithLink, error) {
	outcome, file, err := s.store.IncrementDownload(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record download")
	}
	if outcome == models.OutcomeNotFound {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	if s.metrics != nil {
		s.metrics.RecordDownload()
	}

	result := &models.FileWithLink{File: *file, Link: file.URL}
	if file.BlobPath == "" {
		return result, nil
	}
	token, expiresAt, err := s.signer.Generate(file.ID, file.BlobPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign content link")
	}
	result.Link = s.contentPath(file.ID) + "?token=" + url.QueryEscape(token)
	result.ExpiresAt = &expiresAt
	return result, nil
}

// OpenContent verifies a signed token and opens the uploaded body of file id.
func (s *FileService) OpenContent(ctx context.Context, id, token string) (*os.File, *models.StudyFile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "content token required")
	}
	tokenFileID, relPath, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid content token")
	}
	if tokenFileID != id {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match file")
	}
	file, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if file.BlobPath == "" || file.BlobPath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match file")
	}
	handle, err := s.blobs.Open(relPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file content not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file content")
	}
	return handle, file, nil
}

// Rate adds a rating to the file's running totals.
func (s *FileService) Rate(ctx context.Context, id string, req RateFileRequest) (*models.StudyFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}
	outcome, file, err := s.store.RateFile(ctx, id, req.Rating)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rate file")
	}
	if outcome == models.OutcomeNotFound {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	if s.metrics != nil {
		s.metrics.RecordRating(req.Rating)
	}
	return file, nil
}

func (s *FileService) load(ctx context.Context, id string) (*models.StudyFile, error) {
	file, err := s.store.FindFile(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return file, nil
}

func (s *FileService) requireSubject(ctx context.Context, subjectID string) error {
	subject, err := s.store.FindSubject(ctx, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

func (s *FileService) contentPath(id string) string {
	return fmt.Sprintf("%s/files/%s/content", s.cfg.APIPrefix, url.PathEscape(id))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
