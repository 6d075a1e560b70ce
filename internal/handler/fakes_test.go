package handler

import (
	"context"
	"io"
	"os"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/service"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

var (
	errNotFound     = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	errUnauthorized = appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
)

type fakeSubjectService struct {
	subjects  []models.Subject
	created   service.CreateSubjectRequest
	deletedID string
	err       error
}

func (f *fakeSubjectService) List(context.Context) ([]models.Subject, error) {
	return f.subjects, f.err
}

func (f *fakeSubjectService) Get(_ context.Context, id string) (*models.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.subjects {
		if f.subjects[i].ID == id {
			return &f.subjects[i], nil
		}
	}
	return nil, errNotFound
}

func (f *fakeSubjectService) Create(_ context.Context, req service.CreateSubjectRequest) (*models.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &models.Subject{ID: "new", NameEn: req.NameEn, NameAr: req.NameAr, Icon: models.IconBook}, nil
}

func (f *fakeSubjectService) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeFileService struct {
	files    []models.StudyFile
	listedBy string
	rated    service.RateFileRequest
	link     *models.FileWithLink
	blob     *os.File
	token    string
	err      error
}

func (f *fakeFileService) List(_ context.Context, subjectID string) ([]models.StudyFile, error) {
	f.listedBy = subjectID
	return f.files, f.err
}

func (f *fakeFileService) ListForSubject(_ context.Context, subjectID string) ([]models.StudyFile, error) {
	f.listedBy = subjectID
	return f.files, f.err
}

func (f *fakeFileService) Create(_ context.Context, req service.CreateFileRequest) (*models.StudyFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.StudyFile{ID: "f-new", SubjectID: req.SubjectID, Title: req.Title, Type: req.Type, URL: req.URL}, nil
}

func (f *fakeFileService) Upload(_ context.Context, req service.UploadFileRequest, filename string, body io.Reader) (*models.StudyFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	return &models.StudyFile{ID: "f-up", SubjectID: req.SubjectID, Title: req.Title, Type: req.Type, BlobPath: "f-up/" + filename}, nil
}

func (f *fakeFileService) Delete(context.Context, string) error {
	return f.err
}

func (f *fakeFileService) Download(context.Context, string) (*models.FileWithLink, error) {
	return f.link, f.err
}

func (f *fakeFileService) OpenContent(_ context.Context, id, token string) (*os.File, *models.StudyFile, error) {
	f.token = token
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.blob, &models.StudyFile{ID: id, Type: models.FileTypePDF, BlobPath: id + "/notes.pdf"}, nil
}

func (f *fakeFileService) Rate(_ context.Context, id string, req service.RateFileRequest) (*models.StudyFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rated = req
	return &models.StudyFile{ID: id, RatingSum: req.Rating, RatingCount: 1}, nil
}

type fakeUserService struct {
	users   []models.User
	updated service.UpdateUserRequest
	err     error
}

func (f *fakeUserService) List(context.Context) ([]models.User, error) {
	return f.users, f.err
}

func (f *fakeUserService) Create(_ context.Context, req service.CreateUserRequest) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u-new", Username: req.Username, Role: req.Role}, nil
}

func (f *fakeUserService) Update(_ context.Context, id string, req service.UpdateUserRequest) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = req
	user := &models.User{ID: id}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	return user, nil
}

func (f *fakeUserService) Delete(context.Context, string) error {
	return f.err
}

type fakeAuthService struct {
	current   *models.User
	loggedOut bool
	changed   service.ChangePasswordRequest
	err       error
}

func (f *fakeAuthService) Login(_ context.Context, req service.LoginRequest) (*models.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.current = &models.User{ID: "1", Username: req.Username, Role: models.RoleSuperAdmin}
	return &models.LoginResponse{AccessToken: "token-1", TokenType: "Bearer", User: *f.current}, nil
}

func (f *fakeAuthService) Logout(context.Context) error {
	f.loggedOut = true
	return f.err
}

func (f *fakeAuthService) Current(context.Context) (*models.User, error) {
	if f.current == nil {
		return nil, errUnauthorized
	}
	return f.current, nil
}

func (f *fakeAuthService) ChangePassword(_ context.Context, req service.ChangePasswordRequest) error {
	f.changed = req
	return f.err
}

type fakeRequestService struct {
	requests    []models.SummaryRequest
	newestFirst bool
	err         error
}

func (f *fakeRequestService) Submit(_ context.Context, req service.SubmitRequest) (*models.SummaryRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SummaryRequest{ID: "r1", StudentName: req.StudentName, SubjectID: req.SubjectID, Status: models.RequestPending}, nil
}

func (f *fakeRequestService) List(_ context.Context, newestFirst bool) ([]models.SummaryRequest, error) {
	f.newestFirst = newestFirst
	return f.requests, f.err
}

type fakeDashboardService struct {
	summary *models.DashboardSummary
	format  string
	err     error
}

func (f *fakeDashboardService) Summary(context.Context) (*models.DashboardSummary, error) {
	return f.summary, f.err
}

func (f *fakeDashboardService) Export(_ context.Context, format string) (*service.ExportResult, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportResult{Filename: "it-hub-files.csv", ContentType: "text/csv", Body: []byte("Title\n")}, nil
}

type fakeAssistantService struct {
	prompt string
	ready  bool
	sent   string
}

func (f *fakeAssistantService) Initialize(_ context.Context, systemPrompt string) {
	f.prompt = systemPrompt
	f.ready = true
}

func (f *fakeAssistantService) Ready() bool {
	return f.ready
}

func (f *fakeAssistantService) SendMessage(_ context.Context, text string) string {
	f.sent = text
	return "echo: " + text
}
