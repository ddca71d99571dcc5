package dto

// UpdateRoleRequest changes the role of an account.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student monitor admin"`
}
