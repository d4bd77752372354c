package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/assignment"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/collaborator"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	payrollRepo      payroll.PayrollRepository
	collaboratorRepo collaborator.CollaboratorRepository
	assignmentRepo   assignment.AssignmentRepository
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	collaboratorRepo collaborator.CollaboratorRepository,
	assignmentRepo assignment.AssignmentRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo:      payrollRepo,
		collaboratorRepo: collaboratorRepo,
		assignmentRepo:   assignmentRepo,
	}
}

// ========== PERIOD STORE ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, organizationID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)
	if endDate.Before(startDate) {
		return payroll.PeriodResponse{}, payroll.ErrInvalidPeriodRange
	}

	period := payroll.PayrollPeriod{
		OrganizationID: organizationID,
		Name:           req.Name,
		StartDate:      startDate,
		EndDate:        endDate,
		State:          payroll.PeriodStateOpen,
	}

	created, err := s.payrollRepo.CreatePeriod(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return mapToPeriodResponse(created, payroll.PeriodTotals{}), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, organizationID string, id string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id, organizationID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	totals, err := s.payrollRepo.GetPeriodTotals(ctx, id, organizationID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return mapToPeriodResponse(period, totals), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, organizationID string, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	periods, totalCount, err := s.payrollRepo.ListPeriods(ctx, organizationID, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	data := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, mapToPeriodResponse(p.PayrollPeriod, p.Totals))
	}

	return payroll.ListPeriodResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, organizationID string, id string) error {
	return s.payrollRepo.DeletePeriod(ctx, id, organizationID)
}

// ========== RECORD COMPUTER ==========

// ComputePeriod derives one record per collaborator from the directory and
// the assignment ledger. Each (period, collaborator) upsert is one atomic
// statement and independent of the others, so an interrupted run leaves
// already-written records in place and is safe to re-run; manual adjustment
// fields are never overwritten.
func (s *PayrollServiceImpl) ComputePeriod(ctx context.Context, organizationID string, periodID string, req payroll.ComputePayrollRequest) (payroll.ComputeResult, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID)
	if err != nil {
		return payroll.ComputeResult{}, err
	}

	// Hard precondition: once a period leaves open, its records are frozen
	// against recomputation.
	if period.State != payroll.PeriodStateOpen {
		return payroll.ComputeResult{}, payroll.ErrInvalidTransition
	}

	collaborators, err := s.collaboratorRepo.ListByOrganization(ctx, organizationID, !req.IncludeInactive)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list collaborators: %w", err)
	}

	summaries, err := s.assignmentRepo.SummarizeByCollaborator(ctx, organizationID, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to summarize assignments: %w", err)
	}
	summaryMap := make(map[string]assignment.AssignmentSummary)
	for _, sum := range summaries {
		summaryMap[sum.CollaboratorID] = sum
	}

	var result payroll.ComputeResult
	for _, c := range collaborators {
		baseSalary := decimal.Zero
		if c.IsSalaried() {
			baseSalary = c.BaseSalary
		}

		sum := summaryMap[c.ID]

		record := payroll.PayrollRecord{
			PeriodID:       period.ID,
			CollaboratorID: c.ID,
			BaseSalary:     baseSalary,
			DaysWorked:     sum.DaysWorked,
			ServiceCount:   sum.ServiceCount,
			ExtrasTotal:    sum.ExtrasTotal,
		}

		inserted, err := s.payrollRepo.UpsertComputedRecord(ctx, record)
		if err != nil {
			return result, fmt.Errorf("failed to compute payroll record for collaborator %s: %w", c.ID, err)
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, organizationID string, id string) (payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, id, organizationID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, organizationID string, periodID string, filter payroll.RecordFilter) (payroll.ListRecordResponse, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID); err != nil {
		return payroll.ListRecordResponse{}, err
	}

	records, totalCount, err := s.payrollRepo.ListRecords(ctx, periodID, organizationID, filter)
	if err != nil {
		return payroll.ListRecordResponse{}, err
	}

	data := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, mapToRecordResponse(r))
	}

	return payroll.ListRecordResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) UpdateRecordAdjustments(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	if err := s.payrollRepo.UpdateRecordAdjustments(ctx, organizationID, req); err != nil {
		return payroll.RecordResponse{}, err
	}

	return s.GetRecord(ctx, organizationID, req.ID)
}

// ========== APPROVAL GATE ==========

func (s *PayrollServiceImpl) ApproveRecord(ctx context.Context, organizationID string, recordID string, actorID string) (payroll.RecordResponse, error) {
	// Re-approving is a no-op: the conditional update leaves the original
	// approved_at/approved_by stamp intact.
	if _, err := s.payrollRepo.ApproveRecord(ctx, recordID, organizationID, actorID, time.Now().UTC()); err != nil {
		return payroll.RecordResponse{}, err
	}

	return s.GetRecord(ctx, organizationID, recordID)
}

func (s *PayrollServiceImpl) ApproveAllRecords(ctx context.Context, organizationID string, periodID string, actorID string) (payroll.ApproveAllResult, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID); err != nil {
		return payroll.ApproveAllResult{}, err
	}

	approved, err := s.payrollRepo.ApproveAllRecords(ctx, periodID, organizationID, actorID, time.Now().UTC())
	if err != nil {
		return payroll.ApproveAllResult{}, err
	}

	return payroll.ApproveAllResult{Approved: approved}, nil
}

// ========== RECEIPT GENERATOR ==========

func (s *PayrollServiceImpl) GenerateReceipt(ctx context.Context, organizationID string, recordID string) (payroll.ReceiptResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, recordID, organizationID)
	if err != nil {
		return payroll.ReceiptResponse{}, err
	}
	if !record.Approved {
		return payroll.ReceiptResponse{}, payroll.ErrRecordNotApproved
	}

	receipt, err := s.issueReceipt(ctx, organizationID, record)
	if err != nil {
		return payroll.ReceiptResponse{}, err
	}

	return mapToReceiptResponse(receipt), nil
}

func (s *PayrollServiceImpl) GenerateAllReceipts(ctx context.Context, organizationID string, periodID string) (payroll.GenerateAllResult, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID); err != nil {
		return payroll.GenerateAllResult{}, err
	}

	totals, err := s.payrollRepo.GetPeriodTotals(ctx, periodID, organizationID)
	if err != nil {
		return payroll.GenerateAllResult{}, err
	}

	targets, err := s.payrollRepo.ListApprovedRecordsWithoutReceipt(ctx, periodID, organizationID)
	if err != nil {
		return payroll.GenerateAllResult{}, err
	}

	var result payroll.GenerateAllResult
	for _, record := range targets {
		if _, err := s.issueReceipt(ctx, organizationID, record); err != nil {
			// A receipt that appeared since the target list was read is a
			// skip, not a failure; bulk generation stays re-runnable.
			if errors.Is(err, payroll.ErrReceiptAlreadyExists) {
				continue
			}
			return result, fmt.Errorf("failed to generate receipt for record %s: %w", record.ID, err)
		}
		result.Generated++
	}

	// Skipped counts receipts that already existed when the run started.
	// Approvals landing mid-run can push generated past the snapshot count,
	// so the difference is clamped at zero.
	if skipped := totals.ApprovedCount - result.Generated; skipped > 0 {
		result.Skipped = skipped
	}
	return result, nil
}

// issueReceipt snapshots the record's financial fields and the collaborator's
// display fields into a new receipt. A verification-code collision is retried
// once with a fresh code before surfacing as a conflict.
func (s *PayrollServiceImpl) issueReceipt(ctx context.Context, organizationID string, record payroll.PayrollRecord) (payroll.PaymentReceipt, error) {
	c, err := s.collaboratorRepo.GetByID(ctx, record.CollaboratorID, organizationID)
	if err != nil {
		return payroll.PaymentReceipt{}, fmt.Errorf("failed to load collaborator for receipt: %w", err)
	}

	now := time.Now().UTC()
	receipt := payroll.PaymentReceipt{
		PayrollRecordID:  record.ID,
		PeriodID:         record.PeriodID,
		CollaboratorID:   record.CollaboratorID,
		CollaboratorName: c.FullName,
		TaxID:            c.TaxID,
		PaymentMethod:    string(c.PaymentMethod),
		GrossTotal:       record.GrossTotal,
		TotalDeductions:  record.TotalDeductions,
		NetTotal:         record.NetTotal,
		VerificationCode: newVerificationCode(now),
		Status:           payroll.ReceiptStatusIssued,
		IssuedAt:         now,
	}

	created, err := s.payrollRepo.CreateReceipt(ctx, receipt)
	if errors.Is(err, payroll.ErrConflict) {
		receipt.VerificationCode = newVerificationCode(time.Now().UTC())
		created, err = s.payrollRepo.CreateReceipt(ctx, receipt)
	}
	if err != nil {
		return payroll.PaymentReceipt{}, err
	}

	return created, nil
}

func (s *PayrollServiceImpl) GetReceipt(ctx context.Context, organizationID string, id string) (payroll.ReceiptResponse, error) {
	receipt, err := s.payrollRepo.GetReceiptByID(ctx, id, organizationID)
	if err != nil {
		return payroll.ReceiptResponse{}, err
	}

	return mapToReceiptResponse(receipt), nil
}

func (s *PayrollServiceImpl) GetReceiptByRecord(ctx context.Context, organizationID string, recordID string) (payroll.ReceiptResponse, error) {
	receipt, err := s.payrollRepo.GetReceiptByRecordID(ctx, recordID, organizationID)
	if err != nil {
		return payroll.ReceiptResponse{}, err
	}

	return mapToReceiptResponse(receipt), nil
}

func (s *PayrollServiceImpl) GetReceiptByVerificationCode(ctx context.Context, code string) (payroll.ReceiptResponse, error) {
	receipt, err := s.payrollRepo.GetReceiptByVerificationCode(ctx, code)
	if err != nil {
		return payroll.ReceiptResponse{}, err
	}

	return mapToReceiptResponse(receipt), nil
}

func (s *PayrollServiceImpl) ListReceipts(ctx context.Context, organizationID string, periodID string) ([]payroll.ReceiptResponse, error) {
	receipts, err := s.payrollRepo.ListReceipts(ctx, periodID, organizationID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		result = append(result, mapToReceiptResponse(r))
	}

	return result, nil
}

func (s *PayrollServiceImpl) UpdateReceiptStatus(ctx context.Context, organizationID string, req payroll.UpdateReceiptStatusRequest) (payroll.ReceiptResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ReceiptResponse{}, err
	}

	to := payroll.ReceiptStatus(req.Status)
	var from payroll.ReceiptStatus
	switch to {
	case payroll.ReceiptStatusSent:
		from = payroll.ReceiptStatusIssued
	case payroll.ReceiptStatusPaid:
		from = payroll.ReceiptStatusSent
	}

	if err := s.payrollRepo.UpdateReceiptStatus(ctx, req.ID, organizationID, from, to, time.Now().UTC()); err != nil {
		return payroll.ReceiptResponse{}, err
	}

	return s.GetReceipt(ctx, organizationID, req.ID)
}

// ========== PERIOD CLOSER ==========

func (s *PayrollServiceImpl) ClosePeriod(ctx context.Context, organizationID string, periodID string, actorID string, req payroll.ClosePeriodRequest) (payroll.PeriodResponse, error) {
	closed, err := s.payrollRepo.ClosePeriod(ctx, periodID, organizationID, actorID, req.Notes)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	totals, err := s.payrollRepo.GetPeriodTotals(ctx, periodID, organizationID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return mapToPeriodResponse(closed, totals), nil
}

func (s *PayrollServiceImpl) MarkPeriodProcessed(ctx context.Context, organizationID string, periodID string) error {
	return s.payrollRepo.UpdatePeriodState(ctx, periodID, organizationID, payroll.PeriodStateClosed, payroll.PeriodStateProcessed)
}

func (s *PayrollServiceImpl) MarkPeriodPaid(ctx context.Context, organizationID string, periodID string) error {
	return s.payrollRepo.UpdatePeriodState(ctx, periodID, organizationID, payroll.PeriodStateProcessed, payroll.PeriodStatePaid)
}

// ========== HELPERS ==========

// newVerificationCode builds "RCP-<UTC timestamp>-<8 hex chars>". The random
// suffix comes from a v4 uuid; the unique index on the column catches the
// rare collision.
func newVerificationCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102150405"), suffix)
}

func mapToPeriodResponse(p payroll.PayrollPeriod, totals payroll.PeriodTotals) payroll.PeriodResponse {
	var closedAtStr *string
	if p.ClosedAt != nil {
		str := p.ClosedAt.Format(time.RFC3339)
		closedAtStr = &str
	}

	return payroll.PeriodResponse{
		ID:                p.ID,
		OrganizationID:    p.OrganizationID,
		Name:              p.Name,
		StartDate:         p.StartDate.Format("2006-01-02"),
		EndDate:           p.EndDate.Format("2006-01-02"),
		State:             string(p.State),
		TotalGross:        totals.TotalGross,
		TotalDeductions:   totals.TotalDeductions,
		TotalNet:          totals.TotalNet,
		CollaboratorCount: totals.CollaboratorCount,
		ApprovedCount:     totals.ApprovedCount,
		ClosedAt:          closedAtStr,
		ClosedBy:          p.ClosedBy,
		Notes:             p.Notes,
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.RecordResponse {
	var approvedAtStr *string
	if r.ApprovedAt != nil {
		str := r.ApprovedAt.Format(time.RFC3339)
		approvedAtStr = &str
	}

	collaboratorName := ""
	if r.CollaboratorName != nil {
		collaboratorName = *r.CollaboratorName
	}
	employmentType := ""
	if r.EmploymentType != nil {
		employmentType = *r.EmploymentType
	}

	return payroll.RecordResponse{
		ID:               r.ID,
		PeriodID:         r.PeriodID,
		CollaboratorID:   r.CollaboratorID,
		CollaboratorName: collaboratorName,
		EmploymentType:   employmentType,
		BaseSalary:       r.BaseSalary,
		DaysWorked:       r.DaysWorked,
		ServiceCount:     r.ServiceCount,
		ExtrasTotal:      r.ExtrasTotal,
		Bonuses:          r.Bonuses,
		Commissions:      r.Commissions,
		Deductions:       r.Deductions,
		Advances:         r.Advances,
		GrossTotal:       r.GrossTotal,
		TotalDeductions:  r.TotalDeductions,
		NetTotal:         r.NetTotal,
		Approved:         r.Approved,
		ApprovedAt:       approvedAtStr,
		ApprovedBy:       r.ApprovedBy,
	}
}

func mapToReceiptResponse(r payroll.PaymentReceipt) payroll.ReceiptResponse {
	var sentAtStr, paidAtStr *string
	if r.SentAt != nil {
		str := r.SentAt.Format(time.RFC3339)
		sentAtStr = &str
	}
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAtStr = &str
	}

	return payroll.ReceiptResponse{
		ID:               r.ID,
		PayrollRecordID:  r.PayrollRecordID,
		PeriodID:         r.PeriodID,
		PeriodName:       r.PeriodName,
		CollaboratorID:   r.CollaboratorID,
		CollaboratorName: r.CollaboratorName,
		TaxID:            r.TaxID,
		PaymentMethod:    r.PaymentMethod,
		GrossTotal:       r.GrossTotal,
		TotalDeductions:  r.TotalDeductions,
		NetTotal:         r.NetTotal,
		VerificationCode: r.VerificationCode,
		Status:           string(r.Status),
		IssuedAt:         r.IssuedAt.Format(time.RFC3339),
		SentAt:           sentAtStr,
		PaidAt:           paidAtStr,
	}
}
