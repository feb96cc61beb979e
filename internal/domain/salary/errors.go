package salary

import "errors"

var (
	// ErrUnknownPayType is a configuration fault, not a caller mistake
	ErrUnknownPayType = errors.New("unknown pay type")

	ErrSalaryNotFound     = errors.New("salary draft not found")
	ErrSignupNotCheckedIn = errors.New("salary can only be drafted for a checked-in record")
	ErrSalaryLocked       = errors.New("salary draft is already confirmed or paid")
	ErrSalaryNotPending   = errors.New("only pending salary drafts can be confirmed")
	ErrSalaryNotConfirmed = errors.New("salary draft must be confirmed before payment")

	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentExists       = errors.New("a payment already exists for this salary draft")
	ErrPaymentNotPending   = errors.New("only pending payments can be confirmed")
	ErrPaymentNotConfirmed = errors.New("only confirmed payments can be completed")
)
