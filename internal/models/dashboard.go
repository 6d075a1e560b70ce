package models

import "time"

// DashboardSummary aggregates catalog totals for the admin dashboard.
type DashboardSummary struct {
	TotalSubjects  int              `json:"totalSubjects"`
	TotalFiles     int              `json:"totalFiles"`
	TotalDownloads int              `json:"totalDownloads"`
	TotalUsers     int              `json:"totalUsers"`
	TotalRequests  int              `json:"totalRequests"`
	AverageRating  float64          `json:"averageRating"`
	LatestRequests []SummaryRequest `json:"latestRequests"`
	FilesByType    []LabelCount     `json:"filesByType"`
	FilesBySubject []SubjectCount   `json:"filesBySubject"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// LabelCount is one bucket of a categorical breakdown.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SubjectCount is the number of files filed under one subject.
type SubjectCount struct {
	SubjectID string `json:"subjectId"`
	NameEn    string `json:"nameEn"`
	NameAr    string `json:"nameAr"`
	Count     int    `json:"count"`
}

// FileWithLink pairs a file with the link a client should follow to fetch it.
type FileWithLink struct {
	File      StudyFile  `json:"file"`
	Link      string     `json:"link"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// SystemMetrics is a process-level snapshot of request and storage activity.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreWrites              uint64    `json:"storeWrites"`
	AverageStoreWriteMs      float64   `json:"averageStoreWriteMs"`
	DownloadsServed          uint64    `json:"downloadsServed"`
	RatingsReceived          uint64    `json:"ratingsReceived"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
