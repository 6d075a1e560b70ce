package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/export"
)

type snapshotReader interface {
	Snapshot(ctx context.Context) (repository.Snapshot, error)
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// Export formats accepted by DashboardService.Export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var fileExportHeaders = []string{"Title", "Subject", "Type", "Downloads", "Rating", "Ratings", "Uploaded At"}

// ExportResult is a rendered catalog report ready to send.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DashboardService composes admin dashboard statistics and reports.
type DashboardService struct {
	store  snapshotReader
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs a DashboardService. Nil renderers fall back to the package exporters.
func NewDashboardService(store snapshotReader, csv, pdf datasetRenderer, logger *zap.Logger) *DashboardService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Summary returns catalog totals. The average rating is the mean of per-file
// averages, with unrated files counting as zero.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard data")
	}

	summary := &models.DashboardSummary{
		TotalSubjects: len(snap.Subjects),
		TotalFiles:    len(snap.Files),
		TotalUsers:    len(snap.Users),
		TotalRequests: len(snap.Requests),
		GeneratedAt:   s.now().UTC(),
	}

	var pdfCount, videoCount int
	perSubject := make(map[string]int, len(snap.Subjects))
	for _, f := range snap.Files {
		summary.TotalDownloads += f.Downloads
		switch f.Type {
		case models.FileTypePDF:
			pdfCount++
		case models.FileTypeVideo:
			videoCount++
		}
		perSubject[f.SubjectID]++
	}
	summary.AverageRating = meanRating(snap.Files)
	summary.FilesByType = []models.LabelCount{
		{Label: "PDF", Count: pdfCount},
		{Label: "Video", Count: videoCount},
		{Label: "Other", Count: len(snap.Files) - pdfCount - videoCount},
	}

	summary.FilesBySubject = make([]models.SubjectCount, 0, len(snap.Subjects))
	for _, sub := range snap.Subjects {
		summary.FilesBySubject = append(summary.FilesBySubject, models.SubjectCount{
			SubjectID: sub.ID,
			NameEn:    sub.NameEn,
			NameAr:    sub.NameAr,
			Count:     perSubject[sub.ID],
		})
	}

	latest := make([]models.SummaryRequest, len(snap.Requests))
	copy(latest, snap.Requests)
	reverseRequests(latest)
	summary.LatestRequests = latest

	return summary, nil
}

// Export renders the file catalog as CSV or PDF.
func (s *DashboardService) Export(ctx context.Context, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	var renderer datasetRenderer
	switch format {
	case ExportFormatCSV:
		renderer = s.csv
	case ExportFormatPDF:
		renderer = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	body, err := renderer.Render(buildFileDataset(snap), "IT Hub Study Files")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("catalog exported", zap.String("format", format), zap.Int("files", len(snap.Files)))

	return &ExportResult{
		Filename:    fmt.Sprintf("it-hub-files-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func buildFileDataset(snap repository.Snapshot) export.Dataset {
	names := make(map[string]string, len(snap.Subjects))
	for _, sub := range snap.Subjects {
		names[sub.ID] = sub.NameEn
	}
	rows := make([]map[string]string, 0, len(snap.Files))
	var downloads, ratings int
	for _, f := range snap.Files {
		downloads += f.Downloads
		ratings += f.RatingCount
		subject := names[f.SubjectID]
		if subject == "" {
			subject = f.SubjectID
		}
		rows = append(rows, map[string]string{
			"Title":       f.Title,
			"Subject":     subject,
			"Type":        strings.ToUpper(string(f.Type)),
			"Downloads":   strconv.Itoa(f.Downloads),
			"Rating":      strconv.FormatFloat(f.AverageRating(), 'f', 1, 64),
			"Ratings":     strconv.Itoa(f.RatingCount),
			"Uploaded At": f.UploadedAt,
		})
	}
	footer := map[string]string{
		"Title":     fmt.Sprintf("Total (%d files)", len(snap.Files)),
		"Downloads": strconv.Itoa(downloads),
		"Rating":    strconv.FormatFloat(meanRating(snap.Files), 'f', 1, 64),
		"Ratings":   strconv.Itoa(ratings),
	}
	return export.Dataset{Headers: fileExportHeaders, Rows: rows, Footer: footer}
}

// meanRating averages per-file averages; unrated files count as zero.
func meanRating(files []models.StudyFile) float64 {
	if len(files) == 0 {
		return 0
	}
	var total float64
	for _, f := range files {
		total += f.AverageRating()
	}
	return total / float64(len(files))
}
