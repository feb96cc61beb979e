package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/utils"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/harvestlink/harvest-backend-go/internal/service/file"
)

type PaymentServiceImpl struct {
	salary.PaymentRepository
	salary.SalaryRepository
	fileService file.FileService
	oplog       oplog.Logger
	now         func() time.Time
}

// CreatePayment implements salary.PaymentService.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req salary.CreatePaymentRequest) (salary.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.PaymentResponse{}, err
	}

	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return salary.PaymentResponse{}, err
	}

	draft, err := s.SalaryRepository.GetByID(ctx, req.SalaryID)
	if err != nil {
		if errors.Is(err, salary.ErrSalaryNotFound) {
			return salary.PaymentResponse{}, err
		}
		return salary.PaymentResponse{}, fmt.Errorf("failed to get salary draft: %w", err)
	}
	if draft.Status != salary.SalaryStatusConfirmed {
		return salary.PaymentResponse{}, salary.ErrSalaryNotConfirmed
	}

	payment, err := s.PaymentRepository.Create(ctx, salary.Payment{
		SalaryID:   draft.ID,
		Amount:     draft.TotalAmount,
		PayoutType: draft.PayoutType,
		Status:     salary.PaymentStatusPending,
		CreatedBy:  identity.UserID,
	})
	if err != nil {
		if errors.Is(err, salary.ErrPaymentExists) {
			return salary.PaymentResponse{}, err
		}
		return salary.PaymentResponse{}, fmt.Errorf("failed to create payment: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpPaymentCreate,
		ResourceType: "payment",
		ResourceID:   &payment.ID,
		Description:  fmt.Sprintf("payment of %s created for salary %s", payment.Amount.StringFixed(2), draft.ID),
		After:        mapPaymentToResponse(payment),
	})

	return mapPaymentToResponse(payment), nil
}

// ConfirmPayment implements salary.PaymentService.
func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, req salary.ConfirmPaymentRequest) (salary.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.PaymentResponse{}, err
	}

	payment, err := s.getPayment(ctx, req.ID)
	if err != nil {
		return salary.PaymentResponse{}, err
	}
	if payment.Status != salary.PaymentStatusPending {
		return salary.PaymentResponse{}, salary.ErrPaymentNotPending
	}

	url, err := s.fileService.UploadSignature(ctx, payment.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return salary.PaymentResponse{}, fmt.Errorf("failed to store signature: %w", err)
	}

	updated, err := s.PaymentRepository.MarkConfirmed(ctx, payment.ID, url)
	if err != nil {
		s.discardUpload(ctx, url)
		if errors.Is(err, salary.ErrPaymentNotPending) {
			return salary.PaymentResponse{}, err
		}
		return salary.PaymentResponse{}, fmt.Errorf("failed to confirm payment: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpPaymentConfirm,
		ResourceType: "payment",
		ResourceID:   &updated.ID,
		Description:  "payment signed by worker",
		Before:       mapPaymentToResponse(payment),
		After:        mapPaymentToResponse(updated),
	})

	return mapPaymentToResponse(updated), nil
}

// CompletePayment implements salary.PaymentService.
func (s *PaymentServiceImpl) CompletePayment(ctx context.Context, req salary.CompletePaymentRequest) (salary.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.PaymentResponse{}, err
	}

	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return salary.PaymentResponse{}, err
	}

	payment, err := s.getPayment(ctx, req.ID)
	if err != nil {
		return salary.PaymentResponse{}, err
	}
	if payment.Status != salary.PaymentStatusConfirmed {
		return salary.PaymentResponse{}, salary.ErrPaymentNotConfirmed
	}

	url, err := s.fileService.UploadVoucher(ctx, payment.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return salary.PaymentResponse{}, fmt.Errorf("failed to store voucher: %w", err)
	}

	updated, err := s.PaymentRepository.Complete(ctx, payment.ID, url, identity.UserID, s.now().UTC())
	if err != nil {
		s.discardUpload(ctx, url)
		if errors.Is(err, salary.ErrPaymentNotConfirmed) {
			return salary.PaymentResponse{}, err
		}
		return salary.PaymentResponse{}, fmt.Errorf("failed to complete payment: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpPaymentComplete,
		ResourceType: "payment",
		ResourceID:   &updated.ID,
		Description:  fmt.Sprintf("payment completed, salary %s marked paid", updated.SalaryID),
		Before:       mapPaymentToResponse(payment),
		After:        mapPaymentToResponse(updated),
	})

	return mapPaymentToResponse(updated), nil
}

// discardUpload removes a stored image whose payment transition was refused.
func (s *PaymentServiceImpl) discardUpload(ctx context.Context, url string) {
	if err := s.fileService.DeleteFile(ctx, url); err != nil {
		slog.Warn("failed to delete orphaned upload", "url", url, "error", err)
	}
}

func (s *PaymentServiceImpl) getPayment(ctx context.Context, id string) (salary.Payment, error) {
	if !validator.IsValidUUID(id) {
		return salary.Payment{}, salary.ErrPaymentNotFound
	}

	payment, err := s.PaymentRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, salary.ErrPaymentNotFound) {
			return salary.Payment{}, err
		}
		return salary.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func mapPaymentToResponse(p salary.Payment) salary.PaymentResponse {
	return salary.PaymentResponse{
		ID:           p.ID,
		SalaryID:     p.SalaryID,
		Amount:       p.Amount.StringFixed(2),
		PayoutType:   string(p.PayoutType),
		Status:       string(p.Status),
		SignatureURL: p.SignatureURL,
		VoucherURL:   p.VoucherURL,
		PaidAt:       utils.TimePtrToString(p.PaidAt),
		PaidBy:       p.PaidBy,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func NewPaymentService(
	paymentRepo salary.PaymentRepository,
	salaryRepo salary.SalaryRepository,
	fileService file.FileService,
	logger oplog.Logger,
) salary.PaymentService {
	return &PaymentServiceImpl{
		PaymentRepository: paymentRepo,
		SalaryRepository:  salaryRepo,
		fileService:       fileService,
		oplog:             logger,
		now:               time.Now,
	}
}
