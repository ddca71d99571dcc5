package dto

import (
	"time"

	"github.com/noah-isme/paperdrop-api/internal/models"
)

// AssignmentRequest is used for both creation and full replacement of an assignment.
type AssignmentRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=10"`
	Deadline    string `json:"deadline" validate:"required,iso8601"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Deadline       time.Time  `json:"deadline"`
	CreatedBy      UserLite   `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	HasSubmitted   *bool      `json:"has_submitted,omitempty"`
	SubmissionDate *time.Time `json:"submission_date,omitempty"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Deadline:    model.Deadline,
		CreatedBy:   newUserLite(model.CreatedBy),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// WithSubmissionStatus annotates the response for a student caller.
func (r AssignmentResponse) WithSubmissionStatus(submittedAt *time.Time) AssignmentResponse {
	submitted := submittedAt != nil
	r.HasSubmitted = &submitted
	r.SubmissionDate = submittedAt
	return r
}

// UploadPolicyResponse publishes the filename rule enforced on submissions.
type UploadPolicyResponse struct {
	Policy       string   `json:"policy"`
	Pattern      string   `json:"pattern"`
	ContentTypes []string `json:"content_types"`
	MaxBytes     int64    `json:"max_bytes"`
	Description  string   `json:"description"`
}
