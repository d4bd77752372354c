package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
)

// ========== RECEIPTS ==========

const receiptColumns = `
	rcpt.id, rcpt.payroll_record_id, rcpt.period_id, rcpt.collaborator_id,
	rcpt.collaborator_name, rcpt.tax_id, rcpt.payment_method,
	rcpt.gross_total, rcpt.total_deductions, rcpt.net_total,
	rcpt.verification_code, rcpt.status, rcpt.issued_at, rcpt.sent_at, rcpt.paid_at, rcpt.created_at`

func (r *payrollRepository) CreateReceipt(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
	q := GetQuerier(ctx, r.db)

	// The two unique constraints are the idempotency guards: one receipt per
	// record, globally unique verification codes. Violations come back as
	// domain errors instead of being pre-checked in a separate round trip.
	query := `
		INSERT INTO payment_receipts (
			payroll_record_id, period_id, collaborator_id, collaborator_name,
			tax_id, payment_method, gross_total, total_deductions, net_total,
			verification_code, status, issued_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, payroll_record_id, period_id, collaborator_id,
			collaborator_name, tax_id, payment_method,
			gross_total, total_deductions, net_total,
			verification_code, status, issued_at, sent_at, paid_at, created_at
	`

	var rcpt payroll.PaymentReceipt
	err := q.QueryRow(ctx, query,
		receipt.PayrollRecordID, receipt.PeriodID, receipt.CollaboratorID, receipt.CollaboratorName,
		receipt.TaxID, receipt.PaymentMethod, receipt.GrossTotal, receipt.TotalDeductions, receipt.NetTotal,
		receipt.VerificationCode, receipt.Status, receipt.IssuedAt,
	).Scan(
		&rcpt.ID, &rcpt.PayrollRecordID, &rcpt.PeriodID, &rcpt.CollaboratorID,
		&rcpt.CollaboratorName, &rcpt.TaxID, &rcpt.PaymentMethod,
		&rcpt.GrossTotal, &rcpt.TotalDeductions, &rcpt.NetTotal,
		&rcpt.VerificationCode, &rcpt.Status, &rcpt.IssuedAt, &rcpt.SentAt, &rcpt.PaidAt, &rcpt.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_receipt_record") {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptAlreadyExists
		}
		if strings.Contains(err.Error(), "uk_receipt_verification_code") {
			return payroll.PaymentReceipt{}, payroll.ErrConflict
		}
		return payroll.PaymentReceipt{}, fmt.Errorf("failed to create payment receipt: %w", err)
	}

	return rcpt, nil
}

func (r *payrollRepository) GetReceiptByID(ctx context.Context, id string, organizationID string) (payroll.PaymentReceipt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + receiptColumns + `, pp.name as period_name
		FROM payment_receipts rcpt
		JOIN payroll_periods pp ON rcpt.period_id = pp.id
		WHERE rcpt.id = $1 AND pp.organization_id = $2
	`

	var rcpt payroll.PaymentReceipt
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&rcpt.ID, &rcpt.PayrollRecordID, &rcpt.PeriodID, &rcpt.CollaboratorID,
		&rcpt.CollaboratorName, &rcpt.TaxID, &rcpt.PaymentMethod,
		&rcpt.GrossTotal, &rcpt.TotalDeductions, &rcpt.NetTotal,
		&rcpt.VerificationCode, &rcpt.Status, &rcpt.IssuedAt, &rcpt.SentAt, &rcpt.PaidAt, &rcpt.CreatedAt,
		&rcpt.PeriodName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptNotFound
		}
		return payroll.PaymentReceipt{}, fmt.Errorf("failed to get payment receipt: %w", err)
	}

	return rcpt, nil
}

func (r *payrollRepository) GetReceiptByRecordID(ctx context.Context, recordID string, organizationID string) (payroll.PaymentReceipt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + receiptColumns + `, pp.name as period_name
		FROM payment_receipts rcpt
		JOIN payroll_periods pp ON rcpt.period_id = pp.id
		WHERE rcpt.payroll_record_id = $1 AND pp.organization_id = $2
	`

	var rcpt payroll.PaymentReceipt
	err := q.QueryRow(ctx, query, recordID, organizationID).Scan(
		&rcpt.ID, &rcpt.PayrollRecordID, &rcpt.PeriodID, &rcpt.CollaboratorID,
		&rcpt.CollaboratorName, &rcpt.TaxID, &rcpt.PaymentMethod,
		&rcpt.GrossTotal, &rcpt.TotalDeductions, &rcpt.NetTotal,
		&rcpt.VerificationCode, &rcpt.Status, &rcpt.IssuedAt, &rcpt.SentAt, &rcpt.PaidAt, &rcpt.CreatedAt,
		&rcpt.PeriodName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptNotFound
		}
		return payroll.PaymentReceipt{}, fmt.Errorf("failed to get payment receipt by record: %w", err)
	}

	return rcpt, nil
}

func (r *payrollRepository) GetReceiptByVerificationCode(ctx context.Context, code string) (payroll.PaymentReceipt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + receiptColumns + `, pp.name as period_name
		FROM payment_receipts rcpt
		JOIN payroll_periods pp ON rcpt.period_id = pp.id
		WHERE rcpt.verification_code = $1
	`

	var rcpt payroll.PaymentReceipt
	err := q.QueryRow(ctx, query, code).Scan(
		&rcpt.ID, &rcpt.PayrollRecordID, &rcpt.PeriodID, &rcpt.CollaboratorID,
		&rcpt.CollaboratorName, &rcpt.TaxID, &rcpt.PaymentMethod,
		&rcpt.GrossTotal, &rcpt.TotalDeductions, &rcpt.NetTotal,
		&rcpt.VerificationCode, &rcpt.Status, &rcpt.IssuedAt, &rcpt.SentAt, &rcpt.PaidAt, &rcpt.CreatedAt,
		&rcpt.PeriodName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptNotFound
		}
		return payroll.PaymentReceipt{}, fmt.Errorf("failed to look up receipt by verification code: %w", err)
	}

	return rcpt, nil
}

func (r *payrollRepository) ListReceipts(ctx context.Context, periodID string, organizationID string) ([]payroll.PaymentReceipt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + receiptColumns + `, pp.name as period_name
		FROM payment_receipts rcpt
		JOIN payroll_periods pp ON rcpt.period_id = pp.id
		WHERE rcpt.period_id = $1 AND pp.organization_id = $2
		ORDER BY rcpt.collaborator_name
	`

	rows, err := q.Query(ctx, query, periodID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment receipts: %w", err)
	}
	defer rows.Close()

	var receipts []payroll.PaymentReceipt
	for rows.Next() {
		var rcpt payroll.PaymentReceipt
		if err := rows.Scan(
			&rcpt.ID, &rcpt.PayrollRecordID, &rcpt.PeriodID, &rcpt.CollaboratorID,
			&rcpt.CollaboratorName, &rcpt.TaxID, &rcpt.PaymentMethod,
			&rcpt.GrossTotal, &rcpt.TotalDeductions, &rcpt.NetTotal,
			&rcpt.VerificationCode, &rcpt.Status, &rcpt.IssuedAt, &rcpt.SentAt, &rcpt.PaidAt, &rcpt.CreatedAt,
			&rcpt.PeriodName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment receipt: %w", err)
		}
		receipts = append(receipts, rcpt)
	}

	return receipts, nil
}

func (r *payrollRepository) UpdateReceiptStatus(ctx context.Context, id string, organizationID string, from, to payroll.ReceiptStatus, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	stampColumn := ""
	switch to {
	case payroll.ReceiptStatusSent:
		stampColumn = ", sent_at = $5"
	case payroll.ReceiptStatusPaid:
		stampColumn = ", paid_at = $5"
	}

	query := fmt.Sprintf(`
		UPDATE payment_receipts rcpt
		SET status = $4%s
		FROM payroll_periods pp
		WHERE rcpt.id = $1 AND rcpt.period_id = pp.id AND pp.organization_id = $2 AND rcpt.status = $3
		RETURNING rcpt.id
	`, stampColumn)

	args := []interface{}{id, organizationID, from, to}
	if stampColumn != "" {
		args = append(args, at)
	}

	var updatedID string
	err := q.QueryRow(ctx, query, args...).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetReceiptByID(ctx, id, organizationID); getErr != nil {
				return getErr
			}
			return payroll.ErrInvalidReceiptTransition
		}
		return fmt.Errorf("failed to update receipt status: %w", err)
	}

	return nil
}
