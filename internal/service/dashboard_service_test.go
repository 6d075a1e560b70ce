package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

func seedDashboard(t *testing.T) *repository.CatalogStore {
	t.Helper()
	catalog := newSeededCatalog(t)
	ctx := context.Background()
	require.NoError(t, catalog.AddFile(ctx, models.StudyFile{ID: "f1", SubjectID: "databases", Title: "ERD", Type: models.FileTypePDF, Downloads: 5, RatingSum: 8, RatingCount: 2}))
	require.NoError(t, catalog.AddFile(ctx, models.StudyFile{ID: "f2", SubjectID: "databases", Title: "SQL video", Type: models.FileTypeVideo, Downloads: 3}))
	require.NoError(t, catalog.AddFile(ctx, models.StudyFile{ID: "f3", SubjectID: "networking", Title: "OSI", Type: models.FileTypeZip, Downloads: 1, RatingSum: 5, RatingCount: 1}))
	require.NoError(t, catalog.AddRequest(ctx, models.SummaryRequest{ID: "r1", StudentName: "Lina", SubjectID: "databases"}))
	require.NoError(t, catalog.AddRequest(ctx, models.SummaryRequest{ID: "r2", StudentName: "Omar", SubjectID: "networking"}))
	return catalog
}

func TestDashboardServiceSummary(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nil, nil, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(repository.InitialSubjects()), summary.TotalSubjects)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 9, summary.TotalDownloads)
	assert.Equal(t, 1, summary.TotalUsers)
	assert.Equal(t, 2, summary.TotalRequests)
	// (4 + 0 + 5) / 3
	assert.InDelta(t, 3.0, summary.AverageRating, 0.0001)
	require.Len(t, summary.LatestRequests, 2)
	assert.Equal(t, "r2", summary.LatestRequests[0].ID)
	assert.Equal(t, []models.LabelCount{{Label: "PDF", Count: 1}, {Label: "Video", Count: 1}, {Label: "Other", Count: 1}}, summary.FilesByType)

	counts := map[string]int{}
	for _, c := range summary.FilesBySubject {
		counts[c.SubjectID] = c.Count
	}
	assert.Equal(t, 2, counts["databases"])
	assert.Equal(t, 1, counts["networking"])
	assert.Equal(t, 0, counts["info-security"])
}

func TestDashboardServiceSummaryEmptyCatalog(t *testing.T) {
	svc := NewDashboardService(newSeededCatalog(t), nil, nil, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalDownloads)
	assert.Empty(t, summary.LatestRequests)
}

func TestDashboardServiceExportCSV(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nil, nil, nil)

	result, err := svc.Export(context.Background(), "CSV")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.Contains(t, result.ContentType, "text/csv")
	body := string(result.Body)
	assert.Contains(t, body, "Title,Subject,Type,Downloads,Rating,Ratings,Uploaded At")
	assert.Contains(t, body, "ERD,Introduction to Databases,PDF,5,4.0,2,")
	assert.True(t, strings.HasSuffix(body, "Total (3 files),,,9,3.0,3,\n"))
}

func TestDashboardServiceExportPDF(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nil, nil, nil)

	result, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
}

func TestDashboardServiceExportUnknownFormat(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nil, nil, nil)

	_, err := svc.Export(context.Background(), "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
