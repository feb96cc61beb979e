package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const salaryColumns = `
	id, signup_id, work_duration, piece_count, unit_price_snapshot, pay_type,
	total_amount, status, payout_type, admin_id, created_at, updated_at`

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

func scanDraft(row pgx.Row) (salary.SalaryDraft, error) {
	var d salary.SalaryDraft
	err := row.Scan(
		&d.ID, &d.SignupID, &d.WorkDuration, &d.PieceCount, &d.UnitPriceSnapshot, &d.PayType,
		&d.TotalAmount, &d.Status, &d.PayoutType, &d.AdminID, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// GetByID implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (salary.SalaryDraft, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDraft(q.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salary_drafts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalaryDraft{}, salary.ErrSalaryNotFound
		}
		return salary.SalaryDraft{}, fmt.Errorf("failed to get salary draft: %w", err)
	}
	return d, nil
}

// GetBySignupID implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetBySignupID(ctx context.Context, signupID string) (*salary.SalaryDraft, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDraft(q.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salary_drafts WHERE signup_id = $1`, signupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get salary draft by signup: %w", err)
	}
	return &d, nil
}

// Upsert implements salary.SalaryRepository.
// Only a PENDING row is replaced; a locked row makes the statement return no rows.
func (r *salaryRepositoryImpl) Upsert(ctx context.Context, draft salary.SalaryDraft) (salary.SalaryDraft, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_drafts (
			signup_id, work_duration, piece_count, unit_price_snapshot, pay_type,
			total_amount, status, payout_type, admin_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (signup_id) DO UPDATE SET
			work_duration       = EXCLUDED.work_duration,
			piece_count         = EXCLUDED.piece_count,
			unit_price_snapshot = EXCLUDED.unit_price_snapshot,
			pay_type            = EXCLUDED.pay_type,
			total_amount        = EXCLUDED.total_amount,
			status              = EXCLUDED.status,
			payout_type         = EXCLUDED.payout_type,
			admin_id            = EXCLUDED.admin_id,
			updated_at          = NOW()
		WHERE salary_drafts.status = 'PENDING'
		RETURNING ` + salaryColumns

	saved, err := scanDraft(q.QueryRow(ctx, query,
		draft.SignupID,
		draft.WorkDuration,
		draft.PieceCount,
		draft.UnitPriceSnapshot,
		draft.PayType,
		draft.TotalAmount,
		draft.Status,
		draft.PayoutType,
		draft.AdminID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalaryDraft{}, salary.ErrSalaryLocked
		}
		return salary.SalaryDraft{}, fmt.Errorf("failed to upsert salary draft: %w", err)
	}
	return saved, nil
}

// UpdateStatus implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) UpdateStatus(ctx context.Context, id string, status salary.SalaryStatus) (salary.SalaryDraft, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDraft(q.QueryRow(ctx, `
		UPDATE salary_drafts SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+salaryColumns, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalaryDraft{}, salary.ErrSalaryNotFound
		}
		return salary.SalaryDraft{}, fmt.Errorf("failed to update salary status: %w", err)
	}
	return d, nil
}

const paymentColumns = `
	id, salary_id, amount, payout_type, status, signature_url, voucher_url,
	paid_at, paid_by, created_by, created_at, updated_at`

type paymentRepositoryImpl struct {
	db         *database.DB
	salaryRepo salary.SalaryRepository
}

func NewPaymentRepository(db *database.DB, salaryRepo salary.SalaryRepository) salary.PaymentRepository {
	return &paymentRepositoryImpl{db: db, salaryRepo: salaryRepo}
}

func scanPayment(row pgx.Row) (salary.Payment, error) {
	var p salary.Payment
	err := row.Scan(
		&p.ID, &p.SalaryID, &p.Amount, &p.PayoutType, &p.Status, &p.SignatureURL, &p.VoucherURL,
		&p.PaidAt, &p.PaidBy, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements salary.PaymentRepository.
func (r *paymentRepositoryImpl) Create(ctx context.Context, payment salary.Payment) (salary.Payment, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanPayment(q.QueryRow(ctx, `
		INSERT INTO payments (salary_id, amount, payout_type, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+paymentColumns,
		payment.SalaryID, payment.Amount, payment.PayoutType, payment.Status, payment.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err, "payments_salary_id_key") {
			return salary.Payment{}, salary.ErrPaymentExists
		}
		return salary.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}
	return created, nil
}

// GetByID implements salary.PaymentRepository.
func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (salary.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Payment{}, salary.ErrPaymentNotFound
		}
		return salary.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// MarkConfirmed implements salary.PaymentRepository.
func (r *paymentRepositoryImpl) MarkConfirmed(ctx context.Context, id string, signatureURL string) (salary.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, `
		UPDATE payments SET status = 'CONFIRMED', signature_url = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'PENDING'
		RETURNING `+paymentColumns, signatureURL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Payment{}, salary.ErrPaymentNotPending
		}
		return salary.Payment{}, fmt.Errorf("failed to confirm payment: %w", err)
	}
	return p, nil
}

// Complete implements salary.PaymentRepository.
func (r *paymentRepositoryImpl) Complete(ctx context.Context, id string, voucherURL string, paidBy string, paidAt time.Time) (salary.Payment, error) {
	var completed salary.Payment

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		p, err := scanPayment(q.QueryRow(ctx, `
			UPDATE payments
			SET status = 'PAID', voucher_url = $1, paid_by = $2, paid_at = $3, updated_at = NOW()
			WHERE id = $4 AND status = 'CONFIRMED'
			RETURNING `+paymentColumns, voucherURL, paidBy, paidAt, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return salary.ErrPaymentNotConfirmed
			}
			return fmt.Errorf("failed to complete payment: %w", err)
		}

		if _, err := r.salaryRepo.UpdateStatus(ctx, p.SalaryID, salary.SalaryStatusPaid); err != nil {
			return err
		}

		completed = p
		return nil
	})
	if err != nil {
		return salary.Payment{}, err
	}
	return completed, nil
}
