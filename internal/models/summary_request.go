package models

// RequestStatus tracks summary request progress.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestCompleted RequestStatus = "completed"
)

// SummaryRequest is a student's ask for a summary of a subject.
type SummaryRequest struct {
	ID          string        `json:"id"`
	StudentName string        `json:"studentName"`
	SubjectID   string        `json:"subjectId"`
	Comments    string        `json:"comments"`
	Status      RequestStatus `json:"status"`
}
