package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is the single PDF a student handed in for an assignment.
type Submission struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	AssignmentID       uint              `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID          uint              `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	Filename           string            `gorm:"size:255;not null" json:"filename"`
	EmailMessageID     *string           `gorm:"size:255" json:"email_message_id"`
	NotificationStatus string            `gorm:"size:16;not null" json:"notification_status"`
	NotificationError  string            `gorm:"type:text" json:"notification_error,omitempty"`
	SharedLink         string            `gorm:"size:1024" json:"shared_link"`
	DirectLink         string            `gorm:"size:1024" json:"direct_link"`
	StorageMetadata    datatypes.JSONMap `gorm:"type:json" json:"-"`
	UploadedAt         time.Time         `gorm:"not null;index" json:"uploaded_at"`
	Assignment         Assignment        `gorm:"foreignKey:AssignmentID" json:"assignment"`
	Student            User              `gorm:"foreignKey:StudentID" json:"student"`
}

const (
	// NotificationSent means the notification email was accepted by the mail provider.
	NotificationSent = "sent"
	// NotificationFailed means the mail provider rejected or could not be reached.
	NotificationFailed = "failed"
	// NotificationSkipped means no recipient was configured.
	NotificationSkipped = "skipped"
)
