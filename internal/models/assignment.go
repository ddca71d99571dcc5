package models

import "time"

// Assignment is a task published by a monitor or admin that students answer with one PDF.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Deadline    time.Time `gorm:"not null;index" json:"deadline"`
	CreatedByID uint      `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return DeadlinePassed(reference, a.Deadline)
}

// IsOwnedBy reports whether the given user created the assignment.
func (a Assignment) IsOwnedBy(userID uint) bool {
	return userID != 0 && a.CreatedByID == userID
}

// DeadlinePassed reports whether now is strictly after deadline.
func DeadlinePassed(now, deadline time.Time) bool {
	return now.After(deadline)
}
