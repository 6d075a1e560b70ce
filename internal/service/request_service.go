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

type requestStore interface {
	AddRequest(ctx context.Context, request models.SummaryRequest) error
	ListRequests(ctx context.Context) ([]models.SummaryRequest, error)
}

// SubmitRequest is the student form asking for a subject summary.
type SubmitRequest struct {
	StudentName string `json:"studentName" validate:"required"`
	SubjectID   string `json:"subjectId" validate:"required"`
	Comments    string `json:"comments"`
}

// RequestService records and lists summary requests.
type RequestService struct {
	store     requestStore
	ids       idgen.Generator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs a RequestService.
func NewRequestService(store requestStore, ids idgen.Generator, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if ids == nil {
		ids = idgen.NewTimestampGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{store: store, ids: ids, validator: validate, logger: logger}
}

// Submit stores a new pending request. The subject id is not checked.
func (s *RequestService) Submit(ctx context.Context, req SubmitRequest) (*models.SummaryRequest, error) {
	req.StudentName = strings.TrimSpace(req.StudentName)
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	request := models.SummaryRequest{
		ID:          s.ids.NewID(),
		StudentName: req.StudentName,
		SubjectID:   req.SubjectID,
		Comments:    strings.TrimSpace(req.Comments),
		Status:      models.RequestPending,
	}
	if err := s.store.AddRequest(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}
	s.logger.Info("summary request submitted", zap.String("request_id", request.ID), zap.String("subject_id", request.SubjectID))
	return &request, nil
}

// List returns requests oldest first, or newest first when asked.
func (s *RequestService) List(ctx context.Context, newestFirst bool) ([]models.SummaryRequest, error) {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if newestFirst {
		reverseRequests(requests)
	}
	return requests, nil
}

func reverseRequests(items []models.SummaryRequest) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
