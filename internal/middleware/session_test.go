package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

type fakeSessions struct {
	token string
	user  *models.User
	err   error
}

func (f fakeSessions) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != f.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return f.user, nil
}

func newGuardedRouter(sessions sessionAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Session(sessions), RequireStaff(), func(c *gin.Context) {
		c.String(http.StatusOK, UserFromContext(c).ID)
	})
	return r
}

func TestStaffGuard(t *testing.T) {
	cases := []struct {
		name     string
		sessions fakeSessions
		header   string
		status   int
	}{
		{"no header", fakeSessions{token: "t", user: &models.User{ID: "1", Role: models.RoleAdmin}}, "", http.StatusUnauthorized},
		{"malformed header", fakeSessions{token: "t", user: &models.User{ID: "1", Role: models.RoleAdmin}}, "Token t", http.StatusUnauthorized},
		{"foreign token", fakeSessions{token: "t", user: &models.User{ID: "1", Role: models.RoleAdmin}}, "Bearer other", http.StatusUnauthorized},
		{"student", fakeSessions{token: "t", user: &models.User{ID: "s", Role: models.RoleStudent}}, "Bearer t", http.StatusForbidden},
		{"editor", fakeSessions{token: "t", user: &models.User{ID: "e", Role: models.RoleEditor}}, "Bearer t", http.StatusOK},
		{"super admin", fakeSessions{token: "t", user: &models.User{ID: "1", Role: models.RoleSuperAdmin}}, "bearer t", http.StatusOK},
		{"backend failure", fakeSessions{err: appErrors.Wrap(errors.New("redis down"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")}, "Bearer t", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			newGuardedRouter(tc.sessions).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.sessions.user.ID, rec.Body.String())
			}
		})
	}
}

func TestRBACWithoutSessionIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireStaff(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
