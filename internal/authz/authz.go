// Package authz holds the role matrix. Roles do not inherit from one another;
// every role allowed to perform an action is listed explicitly.
package authz

import "github.com/noah-isme/paperdrop-api/internal/models"

// Action is something a caller may attempt through the API.
type Action string

const (
	ListAssignments  Action = "assignments.list"
	ViewAssignment   Action = "assignments.view"
	CreateAssignment Action = "assignments.create"
	UpdateAssignment Action = "assignments.update"
	DeleteAssignment Action = "assignments.delete"
	SubmitAssignment Action = "assignments.submit"
	ViewSubmissions  Action = "submissions.view"
	ManageUsers      Action = "users.manage"
	AdminStats       Action = "stats.admin"
	MonitorStats     Action = "stats.monitor"
	StudentStats     Action = "stats.student"
)

var (
	everyone = []models.Role{models.RoleStudent, models.RoleMonitor, models.RoleAdmin}
	staff    = []models.Role{models.RoleMonitor, models.RoleAdmin}
)

var matrix = map[Action][]models.Role{
	ListAssignments:  everyone,
	ViewAssignment:   everyone,
	CreateAssignment: staff,
	UpdateAssignment: staff,
	DeleteAssignment: staff,
	SubmitAssignment: {models.RoleStudent},
	ViewSubmissions:  staff,
	ManageUsers:      {models.RoleAdmin},
	AdminStats:       {models.RoleAdmin},
	MonitorStats:     staff,
	StudentStats:     {models.RoleStudent},
}

// Actions lists every action known to the matrix.
func Actions() []Action {
	actions := make([]Action, 0, len(matrix))
	for action := range matrix {
		actions = append(actions, action)
	}
	return actions
}

// RolesFor returns the roles permitted to perform action. Unknown actions permit nobody.
func RolesFor(action Action) []models.Role {
	roles := matrix[action]
	out := make([]models.Role, len(roles))
	copy(out, roles)
	return out
}

// Allowed reports whether role may perform action.
func Allowed(role models.Role, action Action) bool {
	for _, candidate := range matrix[action] {
		if candidate == role {
			return true
		}
	}
	return false
}

// CanManageAssignment decides update and delete on a specific assignment.
// Admins manage every assignment; monitors only those they created.
func CanManageAssignment(user models.User, assignment models.Assignment) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleMonitor:
		return assignment.IsOwnedBy(user.ID)
	default:
		return false
	}
}
