package service

import "errors"

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrDeadlinePassed rejects submissions after the assignment deadline.
	ErrDeadlinePassed = errors.New("submission deadline has passed")
	// ErrAlreadySubmitted rejects a second submission for the same assignment and student.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrDeadlineNotInFuture rejects new assignments whose deadline is not ahead of now.
	ErrDeadlineNotInFuture = errors.New("deadline must be in the future")
	// ErrNotAssignmentOwner denies changes to assignments created by someone else.
	ErrNotAssignmentOwner = errors.New("not authorized to modify this assignment")

	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval denies login to accounts an admin has not approved yet.
	ErrPendingApproval = errors.New("account pending admin approval")
	// ErrEmailTaken rejects registration with an email that already has an account.
	ErrEmailTaken = errors.New("user already exists")
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole rejects role names outside student, monitor and admin.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfDelete stops an admin from removing their own account.
	ErrSelfDelete = errors.New("you cannot delete your own account")
)
