package dto

import (
	"time"

	"github.com/noah-isme/paperdrop-api/internal/models"
)

// SubmissionResponse is returned to staff when viewing submissions.
type SubmissionResponse struct {
	ID                 uint           `json:"id"`
	AssignmentID       uint           `json:"assignment_id"`
	StudentID          uint           `json:"student_id"`
	Filename           string         `json:"filename"`
	EmailMessageID     *string        `json:"email_message_id"`
	NotificationStatus string         `json:"notification_status"`
	SharedLink         string         `json:"shared_link"`
	DirectLink         string         `json:"direct_link"`
	UploadedAt         time.Time      `json:"uploaded_at"`
	Assignment         AssignmentLite `json:"assignment"`
	Student            UserLite       `json:"student"`
}

// SubmitResult is returned to a student after a successful upload.
type SubmitResult struct {
	ID                 uint      `json:"id"`
	AssignmentID       uint      `json:"assignment_id"`
	Filename           string    `json:"filename"`
	UploadedAt         time.Time `json:"uploaded_at"`
	SharedLink         string    `json:"shared_link"`
	DirectLink         string    `json:"direct_link"`
	NotificationStatus string    `json:"notification_status"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                 model.ID,
		AssignmentID:       model.AssignmentID,
		StudentID:          model.StudentID,
		Filename:           model.Filename,
		EmailMessageID:     model.EmailMessageID,
		NotificationStatus: model.NotificationStatus,
		SharedLink:         model.SharedLink,
		DirectLink:         model.DirectLink,
		UploadedAt:         model.UploadedAt,
		Assignment: AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			Deadline: model.Assignment.Deadline,
		},
		Student: newUserLite(model.Student),
	}
}

// NewSubmissionResponseSlice converts a list of submissions.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}

// NewSubmitResult converts a freshly stored submission.
func NewSubmitResult(model models.Submission) SubmitResult {
	return SubmitResult{
		ID:                 model.ID,
		AssignmentID:       model.AssignmentID,
		Filename:           model.Filename,
		UploadedAt:         model.UploadedAt,
		SharedLink:         model.SharedLink,
		DirectLink:         model.DirectLink,
		NotificationStatus: model.NotificationStatus,
	}
}
