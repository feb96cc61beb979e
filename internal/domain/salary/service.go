package salary

import "context"

type SalaryService interface {
	// CalculateAndDraft computes and upserts the PENDING draft for a checked-in record
	CalculateAndDraft(ctx context.Context, req DraftSalaryRequest) (SalaryResponse, error)

	GetSalary(ctx context.Context, id string) (SalaryResponse, error)

	// ConfirmSalary moves a PENDING draft to CONFIRMED
	ConfirmSalary(ctx context.Context, id string) (SalaryResponse, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (PaymentResponse, error)

	// ConfirmPayment stores the worker's signature and moves PENDING to CONFIRMED
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (PaymentResponse, error)

	// CompletePayment stores the voucher and marks payment and draft PAID
	CompletePayment(ctx context.Context, req CompletePaymentRequest) (PaymentResponse, error)
}
