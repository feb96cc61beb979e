package worker

import "errors"

var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrPhoneExists    = errors.New("phone number already registered")
	ErrIDNumberExists = errors.New("id number already registered")
)
