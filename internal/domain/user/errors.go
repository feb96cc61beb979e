package user

import "errors"

var (
	ErrMissingClaims           = errors.New("token claims are missing or invalid")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBaseAccessDenied        = errors.New("no access to this base")
	ErrWorkerIdentityRequired  = errors.New("worker identity required")
)
