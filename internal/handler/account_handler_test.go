package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/middleware"
	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/service"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

func TestUserHandlerListAndCreate(t *testing.T) {
	svc := &fakeUserService{users: []models.User{{ID: "1", Username: "Ahmed@Ali"}}}
	h := NewUserHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/api/v1/admin/users", nil)
	h.List(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 1, TotalCount: 1}, decodeEnvelope(t, rec).Pagination)

	c, rec = newTestContext(http.MethodPost, "/api/v1/admin/users", map[string]string{"username": "editor", "password": "pw", "role": "editor"})
	h.Create(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &user))
	assert.Equal(t, models.RoleEditor, user.Role)
}

func TestUserHandlerUpdatePartial(t *testing.T) {
	svc := &fakeUserService{}
	h := NewUserHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/api/v1/admin/users/7", map[string]string{"fullName": "Sara"})
	withParam(c, "id", "7")
	h.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated.FullName)
	assert.Equal(t, "Sara", *svc.updated.FullName)
	assert.Nil(t, svc.updated.Role)
}

func TestUserHandlerDeleteLastUserConflict(t *testing.T) {
	h := NewUserHandler(&fakeUserService{err: appErrors.Clone(appErrors.ErrLastUser, "")})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/admin/users/1", nil)
	withParam(c, "id", "1")
	h.Delete(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot delete the last user", decodeEnvelope(t, rec).Error.Message)
}

func TestAuthHandlerLoginAndMe(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/api/v1/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "Ahmed@Ali", "password": "Ahmed@Ali"})
	h.Login(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"token-1"`)

	c, rec = newTestContext(http.MethodGet, "/api/v1/auth/me", nil)
	h.Me(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["isStaff"])
}

func TestAuthHandlerLoginInvalid(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{err: appErrors.ErrInvalidCredentials})

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "x", "password": "y"})
	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/logout", nil)
	h.Logout(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.True(t, svc.loggedOut)
}

func TestAuthHandlerChangePasswordRequiresSession(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc)
	body := map[string]string{"currentPassword": "old", "newPassword": "fresh", "confirmPassword": "fresh"}

	c, rec := newTestContext(http.MethodPut, "/api/v1/admin/profile/password", body)
	h.ChangePassword(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, _ = newTestContext(http.MethodPut, "/api/v1/admin/profile/password", body)
	c.Set(middleware.ContextUserKey, &models.User{ID: "1", Role: models.RoleAdmin})
	h.ChangePassword(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "fresh", svc.changed.NewPassword)
}

func TestDashboardHandlerSummary(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardService{summary: &models.DashboardSummary{TotalFiles: 4, AverageRating: 3.5}})

	c, rec := newTestContext(http.MethodGet, "/api/v1/admin/dashboard", nil)
	h.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &summary))
	assert.Equal(t, 4, summary.TotalFiles)
	assert.Equal(t, 3.5, summary.AverageRating)
}

func TestDashboardHandlerExport(t *testing.T) {
	svc := &fakeDashboardService{}
	h := NewDashboardHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/api/v1/admin/dashboard/export", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, svc.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "it-hub-files.csv")
	assert.Equal(t, "Title\n", rec.Body.String())
}

func TestAssistantHandlerStartAndMessage(t *testing.T) {
	svc := &fakeAssistantService{}
	h := NewAssistantHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/api/v1/assistant/session", StartAssistantRequest{SystemPrompt: "Be brief."})
	h.Start(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Be brief.", svc.prompt)
	assert.JSONEq(t, `{"ready":true}`, string(decodeEnvelope(t, rec).Data))

	c, rec = newTestContext(http.MethodPost, "/api/v1/assistant/messages", AssistantMessageRequest{Message: "What is TCP?"})
	h.Message(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"echo: What is TCP?"}`, string(decodeEnvelope(t, rec).Data))

	c, rec = newTestContext(http.MethodPost, "/api/v1/assistant/messages", map[string]string{})
	h.Message(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsHandlerReadiness(t *testing.T) {
	failing := NewMetricsHandler(nil, func(context.Context) error { return errors.New("backend down") })
	c, rec := newTestContext(http.MethodGet, "/ready", nil)
	failing.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	healthy := NewMetricsHandler(service.NewMetricsService(), func(context.Context) error { return nil })
	c, rec = newTestContext(http.MethodGet, "/ready", nil)
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/api/v1/admin/metrics", nil)
	healthy.System(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &snapshot))
	assert.Greater(t, snapshot.Goroutines, 0)
}
