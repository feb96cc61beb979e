package base

import "errors"

var (
	ErrBaseNotFound = errors.New("base not found")
	ErrJobNotFound  = errors.New("job not found")
	ErrJobClosed    = errors.New("job is closed")
)
