package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/idgen"
)

type subjectStore interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	AddSubject(ctx context.Context, subject models.Subject) error
	DeleteSubject(ctx context.Context, id string) (models.Outcome, []models.StudyFile, error)
}

// blobReleaser schedules removal of uploaded bodies that no longer have a file record.
type blobReleaser interface {
	Release(files ...models.StudyFile)
}

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	NameEn        string `json:"nameEn" validate:"required"`
	NameAr        string `json:"nameAr" validate:"required"`
	DescriptionEn string `json:"descriptionEn"`
	DescriptionAr string `json:"descriptionAr"`
	Icon          string `json:"icon"`
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	store     subjectStore
	ids       idgen.Generator
	blobs     blobReleaser
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(store subjectStore, ids idgen.Generator, blobs blobReleaser, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if ids == nil {
		ids = idgen.NewTimestampGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{store: store, ids: ids, blobs: blobs, validator: validate, logger: logger}
}

// List returns every subject in insertion order.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.store.FindSubject(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return subject, nil
}

// Create adds a new subject with a generated id.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	req.NameEn = strings.TrimSpace(req.NameEn)
	req.NameAr = strings.TrimSpace(req.NameAr)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	icon := strings.TrimSpace(req.Icon)
	if !models.IsKnownIcon(icon) {
		icon = models.IconBook
	}

	subject := models.Subject{
		ID:            s.ids.NewID(),
		NameEn:        req.NameEn,
		NameAr:        req.NameAr,
		DescriptionEn: strings.TrimSpace(req.DescriptionEn),
		DescriptionAr: strings.TrimSpace(req.DescriptionAr),
		Icon:          icon,
	}
	if err := s.store.AddSubject(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.logger.Info("subject created", zap.String("subject_id", subject.ID))
	return &subject, nil
}

// Delete removes a subject together with all of its files.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	outcome, removed, err := s.store.DeleteSubject(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	if len(removed) > 0 && s.blobs != nil {
		s.blobs.Release(removed...)
	}
	if outcome == models.OutcomeNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	s.logger.Info("subject deleted", zap.String("subject_id", id), zap.Int("files_removed", len(removed)))
	return nil
}
