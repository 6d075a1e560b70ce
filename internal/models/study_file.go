package models

// FileType enumerates the kinds of study material.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeDoc   FileType = "doc"
	FileTypePPT   FileType = "ppt"
	FileTypeZip   FileType = "zip"
	FileTypeVideo FileType = "video"
)

// StudyFile is a downloadable or streamable item attached to a subject.
type StudyFile struct {
	ID          string   `json:"id"`
	SubjectID   string   `json:"subjectId"`
	Title       string   `json:"title"`
	Type        FileType `json:"type"`
	URL         string   `json:"url"`
	Downloads   int      `json:"downloads"`
	RatingSum   int      `json:"ratingSum"`
	RatingCount int      `json:"ratingCount"`
	UploadedAt  string   `json:"uploadedAt"`
	// BlobPath is the storage-relative path of an uploaded body; empty for link-only files.
	BlobPath string `json:"blobPath,omitempty"`
}

// AverageRating returns RatingSum / RatingCount, or 0 when unrated.
func (f StudyFile) AverageRating() float64 {
	if f.RatingCount <= 0 {
		return 0
	}
	return float64(f.RatingSum) / float64(f.RatingCount)
}
