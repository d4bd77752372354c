package payroll

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/assignment"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/collaborator"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
)

// ========== FAKES ==========

type fakePayrollRepository struct {
	createPeriodFn      func(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error)
	getPeriodByIDFn     func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error)
	listPeriodsFn       func(ctx context.Context, organizationID string, filter payroll.PeriodFilter) ([]payroll.PeriodWithTotals, int64, error)
	getPeriodTotalsFn   func(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error)
	closePeriodFn       func(ctx context.Context, id, organizationID, closedBy string, notes *string) (payroll.PayrollPeriod, error)
	updatePeriodStateFn func(ctx context.Context, id, organizationID string, from, to payroll.PeriodState) error
	deletePeriodFn      func(ctx context.Context, id, organizationID string) error

	upsertComputedRecordFn              func(ctx context.Context, record payroll.PayrollRecord) (bool, error)
	getRecordByIDFn                     func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error)
	listRecordsFn                       func(ctx context.Context, periodID, organizationID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error)
	updateRecordAdjustmentsFn           func(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) error
	approveRecordFn                     func(ctx context.Context, id, organizationID, approvedBy string, approvedAt time.Time) (bool, error)
	approveAllRecordsFn                 func(ctx context.Context, periodID, organizationID, approvedBy string, approvedAt time.Time) (int, error)
	listApprovedRecordsWithoutReceiptFn func(ctx context.Context, periodID, organizationID string) ([]payroll.PayrollRecord, error)

	createReceiptFn                func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error)
	getReceiptByIDFn               func(ctx context.Context, id, organizationID string) (payroll.PaymentReceipt, error)
	getReceiptByRecordIDFn         func(ctx context.Context, recordID, organizationID string) (payroll.PaymentReceipt, error)
	getReceiptByVerificationCodeFn func(ctx context.Context, code string) (payroll.PaymentReceipt, error)
	listReceiptsFn                 func(ctx context.Context, periodID, organizationID string) ([]payroll.PaymentReceipt, error)
	updateReceiptStatusFn          func(ctx context.Context, id, organizationID string, from, to payroll.ReceiptStatus, at time.Time) error
}

func (f *fakePayrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	return f.createPeriodFn(ctx, period)
}

func (f *fakePayrollRepository) GetPeriodByID(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
	return f.getPeriodByIDFn(ctx, id, organizationID)
}

func (f *fakePayrollRepository) ListPeriods(ctx context.Context, organizationID string, filter payroll.PeriodFilter) ([]payroll.PeriodWithTotals, int64, error) {
	return f.listPeriodsFn(ctx, organizationID, filter)
}

func (f *fakePayrollRepository) GetPeriodTotals(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error) {
	return f.getPeriodTotalsFn(ctx, periodID, organizationID)
}

func (f *fakePayrollRepository) ClosePeriod(ctx context.Context, id, organizationID, closedBy string, notes *string) (payroll.PayrollPeriod, error) {
	return f.closePeriodFn(ctx, id, organizationID, closedBy, notes)
}

func (f *fakePayrollRepository) UpdatePeriodState(ctx context.Context, id, organizationID string, from, to payroll.PeriodState) error {
	return f.updatePeriodStateFn(ctx, id, organizationID, from, to)
}

func (f *fakePayrollRepository) DeletePeriod(ctx context.Context, id, organizationID string) error {
	return f.deletePeriodFn(ctx, id, organizationID)
}

func (f *fakePayrollRepository) UpsertComputedRecord(ctx context.Context, record payroll.PayrollRecord) (bool, error) {
	return f.upsertComputedRecordFn(ctx, record)
}

func (f *fakePayrollRepository) GetRecordByID(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
	return f.getRecordByIDFn(ctx, id, organizationID)
}

func (f *fakePayrollRepository) ListRecords(ctx context.Context, periodID, organizationID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	return f.listRecordsFn(ctx, periodID, organizationID, filter)
}

func (f *fakePayrollRepository) UpdateRecordAdjustments(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) error {
	return f.updateRecordAdjustmentsFn(ctx, organizationID, req)
}

func (f *fakePayrollRepository) ApproveRecord(ctx context.Context, id, organizationID, approvedBy string, approvedAt time.Time) (bool, error) {
	return f.approveRecordFn(ctx, id, organizationID, approvedBy, approvedAt)
}

func (f *fakePayrollRepository) ApproveAllRecords(ctx context.Context, periodID, organizationID, approvedBy string, approvedAt time.Time) (int, error) {
	return f.approveAllRecordsFn(ctx, periodID, organizationID, approvedBy, approvedAt)
}

func (f *fakePayrollRepository) ListApprovedRecordsWithoutReceipt(ctx context.Context, periodID, organizationID string) ([]payroll.PayrollRecord, error) {
	return f.listApprovedRecordsWithoutReceiptFn(ctx, periodID, organizationID)
}

func (f *fakePayrollRepository) CreateReceipt(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
	return f.createReceiptFn(ctx, receipt)
}

func (f *fakePayrollRepository) GetReceiptByID(ctx context.Context, id, organizationID string) (payroll.PaymentReceipt, error) {
	return f.getReceiptByIDFn(ctx, id, organizationID)
}

func (f *fakePayrollRepository) GetReceiptByRecordID(ctx context.Context, recordID, organizationID string) (payroll.PaymentReceipt, error) {
	return f.getReceiptByRecordIDFn(ctx, recordID, organizationID)
}

func (f *fakePayrollRepository) GetReceiptByVerificationCode(ctx context.Context, code string) (payroll.PaymentReceipt, error) {
	return f.getReceiptByVerificationCodeFn(ctx, code)
}

func (f *fakePayrollRepository) ListReceipts(ctx context.Context, periodID, organizationID string) ([]payroll.PaymentReceipt, error) {
	return f.listReceiptsFn(ctx, periodID, organizationID)
}

func (f *fakePayrollRepository) UpdateReceiptStatus(ctx context.Context, id, organizationID string, from, to payroll.ReceiptStatus, at time.Time) error {
	return f.updateReceiptStatusFn(ctx, id, organizationID, from, to, at)
}

type fakeCollaboratorRepository struct {
	getByIDFn            func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error)
	listByOrganizationFn func(ctx context.Context, organizationID string, activeOnly bool) ([]collaborator.Collaborator, error)
}

func (f *fakeCollaboratorRepository) GetByID(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
	return f.getByIDFn(ctx, id, organizationID)
}

func (f *fakeCollaboratorRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]collaborator.Collaborator, error) {
	return f.listByOrganizationFn(ctx, organizationID, activeOnly)
}

type fakeAssignmentRepository struct {
	summarizeByCollaboratorFn func(ctx context.Context, organizationID string, from, to time.Time) ([]assignment.AssignmentSummary, error)
	listByCollaboratorFn      func(ctx context.Context, organizationID, collaboratorID string, from, to time.Time) ([]assignment.ServiceAssignment, error)
}

func (f *fakeAssignmentRepository) SummarizeByCollaborator(ctx context.Context, organizationID string, from, to time.Time) ([]assignment.AssignmentSummary, error) {
	return f.summarizeByCollaboratorFn(ctx, organizationID, from, to)
}

func (f *fakeAssignmentRepository) ListByCollaborator(ctx context.Context, organizationID, collaboratorID string, from, to time.Time) ([]assignment.ServiceAssignment, error) {
	return f.listByCollaboratorFn(ctx, organizationID, collaboratorID, from, to)
}

// ========== HELPERS ==========

const (
	testOrgID    = "org-1"
	testActorID  = "user-1"
	testPeriodID = "period-1"
)

func openPeriod() payroll.PayrollPeriod {
	return payroll.PayrollPeriod{
		ID:             testPeriodID,
		OrganizationID: testOrgID,
		Name:           "March 2025",
		StartDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		State:          payroll.PeriodStateOpen,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ========== PERIOD STORE ==========

func TestCreatePeriod(t *testing.T) {
	tests := []struct {
		name    string
		req     payroll.CreatePeriodRequest
		wantErr error
	}{
		{
			name: "valid range",
			req:  payroll.CreatePeriodRequest{Name: "March 2025", StartDate: "2025-03-01", EndDate: "2025-03-31"},
		},
		{
			name: "single day period",
			req:  payroll.CreatePeriodRequest{Name: "One day", StartDate: "2025-03-15", EndDate: "2025-03-15"},
		},
		{
			name:    "end before start",
			req:     payroll.CreatePeriodRequest{Name: "Backwards", StartDate: "2025-03-31", EndDate: "2025-03-01"},
			wantErr: payroll.ErrInvalidPeriodRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePayrollRepository{
				createPeriodFn: func(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
					assert.Equal(t, testOrgID, period.OrganizationID)
					assert.Equal(t, payroll.PeriodStateOpen, period.State)
					period.ID = testPeriodID
					return period, nil
				},
			}
			svc := NewPayrollService(repo, nil, nil)

			resp, err := svc.CreatePeriod(context.Background(), testOrgID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Name, resp.Name)
			assert.Equal(t, "open", resp.State)
			assert.True(t, resp.TotalNet.IsZero())
		})
	}
}

func TestCreatePeriod_Validation(t *testing.T) {
	svc := NewPayrollService(&fakePayrollRepository{}, nil, nil)

	_, err := svc.CreatePeriod(context.Background(), testOrgID, payroll.CreatePeriodRequest{
		Name:      "",
		StartDate: "03/01/2025",
		EndDate:   "2025-03-31",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, payroll.ErrInvalidPeriodRange)
}

// ========== RECORD COMPUTER ==========

func TestComputePeriod(t *testing.T) {
	collaborators := []collaborator.Collaborator{
		{
			ID:             "col-salaried",
			OrganizationID: testOrgID,
			FullName:       "Elena Rossi",
			EmploymentType: collaborator.EmploymentTypeEmployee,
			BaseSalary:     dec("1800.00"),
			Active:         true,
		},
		{
			ID:             "col-fee",
			OrganizationID: testOrgID,
			FullName:       "Marco Bianchi",
			EmploymentType: collaborator.EmploymentTypeFeeForService,
			BaseSalary:     dec("1500.00"), // directory value must be ignored
			Active:         true,
		},
		{
			ID:             "col-idle",
			OrganizationID: testOrgID,
			FullName:       "Lucia Verdi",
			EmploymentType: collaborator.EmploymentTypeEmployee,
			BaseSalary:     dec("1600.00"),
			Active:         true,
		},
	}
	summaries := []assignment.AssignmentSummary{
		{CollaboratorID: "col-salaried", ServiceCount: 4, ExtrasTotal: dec("200.00"), DaysWorked: 3},
		{CollaboratorID: "col-fee", ServiceCount: 6, ExtrasTotal: dec("900.00"), DaysWorked: 5},
	}

	upserted := map[string]payroll.PayrollRecord{}
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		upsertComputedRecordFn: func(ctx context.Context, record payroll.PayrollRecord) (bool, error) {
			_, seen := upserted[record.CollaboratorID]
			upserted[record.CollaboratorID] = record
			return !seen, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		listByOrganizationFn: func(ctx context.Context, organizationID string, activeOnly bool) ([]collaborator.Collaborator, error) {
			assert.True(t, activeOnly)
			return collaborators, nil
		},
	}
	assignRepo := &fakeAssignmentRepository{
		summarizeByCollaboratorFn: func(ctx context.Context, organizationID string, from, to time.Time) ([]assignment.AssignmentSummary, error) {
			assert.Equal(t, openPeriod().StartDate, from)
			assert.Equal(t, openPeriod().EndDate, to)
			return summaries, nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, assignRepo)

	result, err := svc.ComputePeriod(context.Background(), testOrgID, testPeriodID, payroll.ComputePayrollRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)

	salaried := upserted["col-salaried"]
	assert.True(t, salaried.BaseSalary.Equal(dec("1800.00")))
	assert.Equal(t, 4, salaried.ServiceCount)
	assert.Equal(t, 3, salaried.DaysWorked)
	assert.True(t, salaried.ExtrasTotal.Equal(dec("200.00")))

	// Fee-for-service collaborators never carry a base salary into the record.
	fee := upserted["col-fee"]
	assert.True(t, fee.BaseSalary.IsZero())
	assert.True(t, fee.ExtrasTotal.Equal(dec("900.00")))

	// A collaborator with no assignments still gets a record with zero tallies.
	idle := upserted["col-idle"]
	assert.True(t, idle.BaseSalary.Equal(dec("1600.00")))
	assert.Equal(t, 0, idle.ServiceCount)
	assert.True(t, idle.ExtrasTotal.IsZero())

	// Second run against unchanged inputs refreshes in place.
	result, err = svc.ComputePeriod(context.Background(), testOrgID, testPeriodID, payroll.ComputePayrollRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Updated)
}

func TestComputePeriod_NotOpen(t *testing.T) {
	for _, state := range []payroll.PeriodState{payroll.PeriodStateClosed, payroll.PeriodStateProcessed, payroll.PeriodStatePaid} {
		t.Run(string(state), func(t *testing.T) {
			repo := &fakePayrollRepository{
				getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
					p := openPeriod()
					p.State = state
					return p, nil
				},
			}
			svc := NewPayrollService(repo, nil, nil)

			_, err := svc.ComputePeriod(context.Background(), testOrgID, testPeriodID, payroll.ComputePayrollRequest{})
			assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
		})
	}
}

func TestComputePeriod_PeriodNotFound(t *testing.T) {
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	_, err := svc.ComputePeriod(context.Background(), testOrgID, "missing", payroll.ComputePayrollRequest{})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestComputePeriod_PartialFailureKeepsWrittenRecords(t *testing.T) {
	collaborators := []collaborator.Collaborator{
		{ID: "col-1", EmploymentType: collaborator.EmploymentTypeEmployee, BaseSalary: dec("1000")},
		{ID: "col-2", EmploymentType: collaborator.EmploymentTypeEmployee, BaseSalary: dec("1000")},
	}

	var calls int
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		upsertComputedRecordFn: func(ctx context.Context, record payroll.PayrollRecord) (bool, error) {
			calls++
			if record.CollaboratorID == "col-2" {
				return false, errors.New("connection reset")
			}
			return true, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		listByOrganizationFn: func(ctx context.Context, organizationID string, activeOnly bool) ([]collaborator.Collaborator, error) {
			return collaborators, nil
		},
	}
	assignRepo := &fakeAssignmentRepository{
		summarizeByCollaboratorFn: func(ctx context.Context, organizationID string, from, to time.Time) ([]assignment.AssignmentSummary, error) {
			return nil, nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, assignRepo)

	result, err := svc.ComputePeriod(context.Background(), testOrgID, testPeriodID, payroll.ComputePayrollRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "col-2")
	assert.Equal(t, 2, calls)
	// The first record stays counted; the run is resumable via re-compute.
	assert.Equal(t, 1, result.Created)
}

func TestUpdateRecordAdjustments(t *testing.T) {
	bonuses := dec("150.00")

	repo := &fakePayrollRepository{
		updateRecordAdjustmentsFn: func(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) error {
			assert.Equal(t, "rec-1", req.ID)
			require.NotNil(t, req.Bonuses)
			assert.True(t, req.Bonuses.Equal(bonuses))
			return nil
		},
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return payroll.PayrollRecord{ID: id, PeriodID: testPeriodID, Bonuses: bonuses}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	resp, err := svc.UpdateRecordAdjustments(context.Background(), testOrgID, payroll.UpdateAdjustmentsRequest{
		ID:      "rec-1",
		Bonuses: &bonuses,
	})
	require.NoError(t, err)
	assert.True(t, resp.Bonuses.Equal(bonuses))
}

func TestUpdateRecordAdjustments_Validation(t *testing.T) {
	svc := NewPayrollService(&fakePayrollRepository{}, nil, nil)

	// No fields set.
	_, err := svc.UpdateRecordAdjustments(context.Background(), testOrgID, payroll.UpdateAdjustmentsRequest{ID: "rec-1"})
	require.Error(t, err)

	// Negative amount.
	negative := dec("-5")
	_, err = svc.UpdateRecordAdjustments(context.Background(), testOrgID, payroll.UpdateAdjustmentsRequest{ID: "rec-1", Deductions: &negative})
	require.Error(t, err)
}

func TestUpdateRecordAdjustments_ApprovedRecord(t *testing.T) {
	bonuses := dec("10")
	repo := &fakePayrollRepository{
		updateRecordAdjustmentsFn: func(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) error {
			return payroll.ErrRecordApproved
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	_, err := svc.UpdateRecordAdjustments(context.Background(), testOrgID, payroll.UpdateAdjustmentsRequest{ID: "rec-1", Bonuses: &bonuses})
	assert.ErrorIs(t, err, payroll.ErrRecordApproved)
}

// ========== APPROVAL GATE ==========

func TestApproveRecord(t *testing.T) {
	approvedAt := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	repo := &fakePayrollRepository{
		approveRecordFn: func(ctx context.Context, id, organizationID, approvedBy string, at time.Time) (bool, error) {
			assert.Equal(t, testActorID, approvedBy)
			return true, nil
		},
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			by := testActorID
			return payroll.PayrollRecord{ID: id, Approved: true, ApprovedAt: &approvedAt, ApprovedBy: &by}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	resp, err := svc.ApproveRecord(context.Background(), testOrgID, "rec-1", testActorID)
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	require.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, approvedAt.Format(time.RFC3339), *resp.ApprovedAt)
}

func TestApproveRecord_AlreadyApproved(t *testing.T) {
	originalAt := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	originalBy := "user-original"

	repo := &fakePayrollRepository{
		approveRecordFn: func(ctx context.Context, id, organizationID, approvedBy string, at time.Time) (bool, error) {
			return false, nil // conditional update matched no rows
		},
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return payroll.PayrollRecord{ID: id, Approved: true, ApprovedAt: &originalAt, ApprovedBy: &originalBy}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	resp, err := svc.ApproveRecord(context.Background(), testOrgID, "rec-1", "user-second")
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, originalBy, *resp.ApprovedBy)
}

func TestApproveAllRecords(t *testing.T) {
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		approveAllRecordsFn: func(ctx context.Context, periodID, organizationID, approvedBy string, at time.Time) (int, error) {
			return 7, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	result, err := svc.ApproveAllRecords(context.Background(), testOrgID, testPeriodID, testActorID)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Approved)
}

// ========== RECEIPT GENERATOR ==========

var verificationCodePattern = regexp.MustCompile(`^RCP-\d{14}-[0-9A-F]{8}$`)

func approvedRecord(id, collaboratorID string) payroll.PayrollRecord {
	at := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	by := testActorID
	return payroll.PayrollRecord{
		ID:              id,
		PeriodID:        testPeriodID,
		CollaboratorID:  collaboratorID,
		BaseSalary:      dec("1800.00"),
		ExtrasTotal:     dec("200.00"),
		GrossTotal:      dec("2000.00"),
		TotalDeductions: dec("300.00"),
		NetTotal:        dec("1700.00"),
		Approved:        true,
		ApprovedAt:      &at,
		ApprovedBy:      &by,
	}
}

func receiptCollaborator(id string) collaborator.Collaborator {
	return collaborator.Collaborator{
		ID:             id,
		OrganizationID: testOrgID,
		FullName:       "Elena Rossi",
		TaxID:          "RSSLNE80A41H501X",
		EmploymentType: collaborator.EmploymentTypeEmployee,
		PaymentMethod:  collaborator.PaymentMethodBankTransfer,
	}
}

func TestGenerateReceipt(t *testing.T) {
	repo := &fakePayrollRepository{
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return approvedRecord(id, "col-1"), nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			receipt.ID = "rcpt-1"
			return receipt, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	resp, err := svc.GenerateReceipt(context.Background(), testOrgID, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", resp.PayrollRecordID)
	assert.Equal(t, "Elena Rossi", resp.CollaboratorName)
	assert.Equal(t, "RSSLNE80A41H501X", resp.TaxID)
	assert.Equal(t, "bank_transfer", resp.PaymentMethod)
	assert.True(t, resp.GrossTotal.Equal(dec("2000.00")))
	assert.True(t, resp.NetTotal.Equal(dec("1700.00")))
	assert.Equal(t, "issued", resp.Status)
	assert.Regexp(t, verificationCodePattern, resp.VerificationCode)
}

func TestGenerateReceipt_NotApproved(t *testing.T) {
	repo := &fakePayrollRepository{
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return payroll.PayrollRecord{ID: id, Approved: false}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	_, err := svc.GenerateReceipt(context.Background(), testOrgID, "rec-1")
	assert.ErrorIs(t, err, payroll.ErrRecordNotApproved)
}

func TestGenerateReceipt_AlreadyExists(t *testing.T) {
	repo := &fakePayrollRepository{
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return approvedRecord(id, "col-1"), nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptAlreadyExists
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	_, err := svc.GenerateReceipt(context.Background(), testOrgID, "rec-1")
	assert.ErrorIs(t, err, payroll.ErrReceiptAlreadyExists)
}

func TestGenerateReceipt_CodeCollisionRetriesOnce(t *testing.T) {
	var codes []string
	repo := &fakePayrollRepository{
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return approvedRecord(id, "col-1"), nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			codes = append(codes, receipt.VerificationCode)
			if len(codes) == 1 {
				return payroll.PaymentReceipt{}, payroll.ErrConflict
			}
			receipt.ID = "rcpt-1"
			return receipt, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	resp, err := svc.GenerateReceipt(context.Background(), testOrgID, "rec-1")
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.NotEqual(t, codes[0], codes[1])
	assert.Equal(t, codes[1], resp.VerificationCode)
}

func TestGenerateReceipt_CodeCollisionTwiceFails(t *testing.T) {
	var attempts int
	repo := &fakePayrollRepository{
		getRecordByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollRecord, error) {
			return approvedRecord(id, "col-1"), nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			attempts++
			return payroll.PaymentReceipt{}, payroll.ErrConflict
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	_, err := svc.GenerateReceipt(context.Background(), testOrgID, "rec-1")
	assert.ErrorIs(t, err, payroll.ErrConflict)
	assert.Equal(t, 2, attempts)
}

func TestGenerateAllReceipts(t *testing.T) {
	targets := []payroll.PayrollRecord{
		approvedRecord("rec-1", "col-1"),
		approvedRecord("rec-2", "col-2"),
	}

	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		getPeriodTotalsFn: func(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error) {
			return payroll.PeriodTotals{ApprovedCount: 3}, nil
		},
		listApprovedRecordsWithoutReceiptFn: func(ctx context.Context, periodID, organizationID string) ([]payroll.PayrollRecord, error) {
			return targets, nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			receipt.ID = "rcpt-" + receipt.PayrollRecordID
			return receipt, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	// One of the three approved records already has a receipt.
	result, err := svc.GenerateAllReceipts(context.Background(), testOrgID, testPeriodID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Skipped)

	// Second run: nothing left to generate.
	targets = nil
	result, err = svc.GenerateAllReceipts(context.Background(), testOrgID, testPeriodID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 3, result.Skipped)
}

func TestGenerateAllReceipts_RaceTreatedAsSkip(t *testing.T) {
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		getPeriodTotalsFn: func(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error) {
			return payroll.PeriodTotals{ApprovedCount: 2}, nil
		},
		listApprovedRecordsWithoutReceiptFn: func(ctx context.Context, periodID, organizationID string) ([]payroll.PayrollRecord, error) {
			return []payroll.PayrollRecord{
				approvedRecord("rec-1", "col-1"),
				approvedRecord("rec-2", "col-2"),
			}, nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			if receipt.PayrollRecordID == "rec-1" {
				// Someone generated this one between the list and the insert.
				return payroll.PaymentReceipt{}, payroll.ErrReceiptAlreadyExists
			}
			receipt.ID = "rcpt-2"
			return receipt, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	result, err := svc.GenerateAllReceipts(context.Background(), testOrgID, testPeriodID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Skipped)
}

func TestGenerateAllReceipts_MidRunApprovalsClampSkipped(t *testing.T) {
	repo := &fakePayrollRepository{
		getPeriodByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PayrollPeriod, error) {
			return openPeriod(), nil
		},
		getPeriodTotalsFn: func(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error) {
			// Stale snapshot: two more records were approved after this read
			// but before the target list was taken.
			return payroll.PeriodTotals{ApprovedCount: 1}, nil
		},
		listApprovedRecordsWithoutReceiptFn: func(ctx context.Context, periodID, organizationID string) ([]payroll.PayrollRecord, error) {
			return []payroll.PayrollRecord{
				approvedRecord("rec-1", "col-1"),
				approvedRecord("rec-2", "col-2"),
				approvedRecord("rec-3", "col-3"),
			}, nil
		},
		createReceiptFn: func(ctx context.Context, receipt payroll.PaymentReceipt) (payroll.PaymentReceipt, error) {
			receipt.ID = "rcpt-" + receipt.PayrollRecordID
			return receipt, nil
		},
	}
	collabRepo := &fakeCollaboratorRepository{
		getByIDFn: func(ctx context.Context, id, organizationID string) (collaborator.Collaborator, error) {
			return receiptCollaborator(id), nil
		},
	}
	svc := NewPayrollService(repo, collabRepo, nil)

	result, err := svc.GenerateAllReceipts(context.Background(), testOrgID, testPeriodID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Generated)
	assert.Equal(t, 0, result.Skipped)
}

func TestGetReceiptByRecord(t *testing.T) {
	repo := &fakePayrollRepository{
		getReceiptByRecordIDFn: func(ctx context.Context, recordID, organizationID string) (payroll.PaymentReceipt, error) {
			assert.Equal(t, testOrgID, organizationID)
			return payroll.PaymentReceipt{
				ID:               "rcpt-1",
				PayrollRecordID:  recordID,
				PeriodID:         testPeriodID,
				CollaboratorID:   "col-1",
				CollaboratorName: "Elena Rossi",
				VerificationCode: "RCP-20250401090000-AB12CD34",
				Status:           payroll.ReceiptStatusIssued,
				IssuedAt:         time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	resp, err := svc.GetReceiptByRecord(context.Background(), testOrgID, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rcpt-1", resp.ID)
	assert.Equal(t, "rec-1", resp.PayrollRecordID)
	assert.Equal(t, "issued", resp.Status)
}

func TestGetReceiptByRecord_NotFound(t *testing.T) {
	repo := &fakePayrollRepository{
		getReceiptByRecordIDFn: func(ctx context.Context, recordID, organizationID string) (payroll.PaymentReceipt, error) {
			return payroll.PaymentReceipt{}, payroll.ErrReceiptNotFound
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	_, err := svc.GetReceiptByRecord(context.Background(), testOrgID, "rec-1")
	assert.ErrorIs(t, err, payroll.ErrReceiptNotFound)
}

func TestUpdateReceiptStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantFrom payroll.ReceiptStatus
		wantTo   payroll.ReceiptStatus
	}{
		{name: "mark sent", status: "sent", wantFrom: payroll.ReceiptStatusIssued, wantTo: payroll.ReceiptStatusSent},
		{name: "mark paid", status: "paid", wantFrom: payroll.ReceiptStatusSent, wantTo: payroll.ReceiptStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePayrollRepository{
				updateReceiptStatusFn: func(ctx context.Context, id, organizationID string, from, to payroll.ReceiptStatus, at time.Time) error {
					assert.Equal(t, tt.wantFrom, from)
					assert.Equal(t, tt.wantTo, to)
					return nil
				},
				getReceiptByIDFn: func(ctx context.Context, id, organizationID string) (payroll.PaymentReceipt, error) {
					return payroll.PaymentReceipt{ID: id, Status: tt.wantTo, IssuedAt: time.Now().UTC()}, nil
				},
			}
			svc := NewPayrollService(repo, nil, nil)

			resp, err := svc.UpdateReceiptStatus(context.Background(), testOrgID, payroll.UpdateReceiptStatusRequest{ID: "rcpt-1", Status: tt.status})
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantTo), resp.Status)
		})
	}
}

func TestUpdateReceiptStatus_InvalidStatus(t *testing.T) {
	svc := NewPayrollService(&fakePayrollRepository{}, nil, nil)

	for _, status := range []string{"", "issued", "pending", "cancelled"} {
		_, err := svc.UpdateReceiptStatus(context.Background(), testOrgID, payroll.UpdateReceiptStatusRequest{ID: "rcpt-1", Status: status})
		assert.Error(t, err, "status %q", status)
	}
}

// ========== PERIOD CLOSER ==========

func TestClosePeriod(t *testing.T) {
	closedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakePayrollRepository{
		closePeriodFn: func(ctx context.Context, id, organizationID, closedBy string, notes *string) (payroll.PayrollPeriod, error) {
			assert.Equal(t, testActorID, closedBy)
			p := openPeriod()
			p.State = payroll.PeriodStateClosed
			p.ClosedAt = &closedAt
			p.ClosedBy = &closedBy
			p.Notes = notes
			return p, nil
		},
		getPeriodTotalsFn: func(ctx context.Context, periodID, organizationID string) (payroll.PeriodTotals, error) {
			return payroll.PeriodTotals{
				TotalGross:        dec("5000.00"),
				TotalDeductions:   dec("800.00"),
				TotalNet:          dec("4200.00"),
				CollaboratorCount: 3,
				ApprovedCount:     3,
			}, nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	notes := "March settlement"
	resp, err := svc.ClosePeriod(context.Background(), testOrgID, testPeriodID, testActorID, payroll.ClosePeriodRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "closed", resp.State)
	require.NotNil(t, resp.ClosedAt)
	assert.Equal(t, closedAt.Format(time.RFC3339), *resp.ClosedAt)
	assert.True(t, resp.TotalNet.Equal(dec("4200.00")))
	// Totals identity holds on the closed snapshot.
	assert.True(t, resp.TotalGross.Sub(resp.TotalDeductions).Equal(resp.TotalNet))
}

func TestClosePeriod_AlreadyClosed(t *testing.T) {
	repo := &fakePayrollRepository{
		closePeriodFn: func(ctx context.Context, id, organizationID, closedBy string, notes *string) (payroll.PayrollPeriod, error) {
			return payroll.PayrollPeriod{}, payroll.ErrInvalidTransition
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	_, err := svc.ClosePeriod(context.Background(), testOrgID, testPeriodID, testActorID, payroll.ClosePeriodRequest{})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestMarkPeriodProcessedAndPaid(t *testing.T) {
	var gotFrom, gotTo payroll.PeriodState
	repo := &fakePayrollRepository{
		updatePeriodStateFn: func(ctx context.Context, id, organizationID string, from, to payroll.PeriodState) error {
			gotFrom, gotTo = from, to
			return nil
		},
	}
	svc := NewPayrollService(repo, nil, nil)

	require.NoError(t, svc.MarkPeriodProcessed(context.Background(), testOrgID, testPeriodID))
	assert.Equal(t, payroll.PeriodStateClosed, gotFrom)
	assert.Equal(t, payroll.PeriodStateProcessed, gotTo)

	require.NoError(t, svc.MarkPeriodPaid(context.Background(), testOrgID, testPeriodID))
	assert.Equal(t, payroll.PeriodStateProcessed, gotFrom)
	assert.Equal(t, payroll.PeriodStatePaid, gotTo)
}

// ========== STATE MACHINES ==========

func TestPeriodStateTransitions(t *testing.T) {
	assert.True(t, payroll.PeriodStateOpen.CanTransitionTo(payroll.PeriodStateClosed))
	assert.True(t, payroll.PeriodStateClosed.CanTransitionTo(payroll.PeriodStateProcessed))
	assert.True(t, payroll.PeriodStateProcessed.CanTransitionTo(payroll.PeriodStatePaid))

	assert.False(t, payroll.PeriodStateClosed.CanTransitionTo(payroll.PeriodStateOpen))
	assert.False(t, payroll.PeriodStateOpen.CanTransitionTo(payroll.PeriodStateProcessed))
	assert.False(t, payroll.PeriodStatePaid.CanTransitionTo(payroll.PeriodStateProcessed))
}

func TestReceiptStatusTransitions(t *testing.T) {
	assert.True(t, payroll.ReceiptStatusIssued.CanTransitionTo(payroll.ReceiptStatusSent))
	assert.True(t, payroll.ReceiptStatusSent.CanTransitionTo(payroll.ReceiptStatusPaid))

	assert.False(t, payroll.ReceiptStatusIssued.CanTransitionTo(payroll.ReceiptStatusPaid))
	assert.False(t, payroll.ReceiptStatusPaid.CanTransitionTo(payroll.ReceiptStatusSent))
}
