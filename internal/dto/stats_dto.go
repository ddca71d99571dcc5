package dto

import "time"

// AdminStatsResponse summarizes the whole installation.
type AdminStatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	PendingApprovals int64 `json:"pending_approvals"`
	TotalAssignments int64 `json:"total_assignments"`
	TotalSubmissions int64 `json:"total_submissions"`
}

// MonitorStatsResponse is the staff dashboard overview.
type MonitorStatsResponse struct {
	AssignmentsCreated int64 `json:"assignments_created"`
	TotalSubmissions   int64 `json:"total_submissions"`
	UpcomingDeadlines  int   `json:"upcoming_deadlines"`
}

// StudentStatsResponse is the student dashboard overview.
type StudentStatsResponse struct {
	AssignmentsAvailable int64      `json:"assignments_available"`
	Submitted            int64      `json:"submitted"`
	Pending              int64      `json:"pending"`
	NextDeadline         *time.Time `json:"next_deadline"`
}
