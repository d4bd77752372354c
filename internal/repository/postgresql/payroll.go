package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (organization_id, name, start_date, end_date, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, organization_id, name, start_date, end_date, state,
			closed_at, closed_by, notes, created_at, updated_at
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query,
		period.OrganizationID, period.Name, period.StartDate, period.EndDate, period.State,
	).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.StartDate, &p.EndDate, &p.State,
		&p.ClosedAt, &p.ClosedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "ck_period_range") {
			return payroll.PayrollPeriod{}, payroll.ErrInvalidPeriodRange
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string, organizationID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, start_date, end_date, state,
			   closed_at, closed_by, notes, created_at, updated_at
		FROM payroll_periods
		WHERE id = $1 AND organization_id = $2
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.StartDate, &p.EndDate, &p.State,
		&p.ClosedAt, &p.ClosedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, organizationID string, filter payroll.PeriodFilter) ([]payroll.PeriodWithTotals, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_periods pp
		WHERE pp.organization_id = $1
	`
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.State != nil {
		baseQuery += fmt.Sprintf(" AND pp.state = $%d", argIdx)
		args = append(args, *filter.State)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND EXTRACT(YEAR FROM pp.start_date) = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	sortColumn := "pp.start_date"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"start_date": "pp.start_date",
			"name":       "pp.name",
			"created_at": "pp.created_at",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	// Aggregates are derived from child records on every read; the period row
	// never stores them.
	selectQuery := fmt.Sprintf(`
		SELECT pp.id, pp.organization_id, pp.name, pp.start_date, pp.end_date, pp.state,
			   pp.closed_at, pp.closed_by, pp.notes, pp.created_at, pp.updated_at,
			   COALESCE(agg.total_gross, 0), COALESCE(agg.total_deductions, 0), COALESCE(agg.total_net, 0),
			   COALESCE(agg.collaborator_count, 0), COALESCE(agg.approved_count, 0)
		%s
		LEFT JOIN (
			SELECT period_id,
				   SUM(gross_total) as total_gross,
				   SUM(total_deductions) as total_deductions,
				   SUM(net_total) as total_net,
				   COUNT(*) as collaborator_count,
				   COUNT(*) FILTER (WHERE approved) as approved_count
			FROM payroll_records
			GROUP BY period_id
		) agg ON agg.period_id = pp.id
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PeriodWithTotals
	for rows.Next() {
		var p payroll.PeriodWithTotals
		if err := rows.Scan(
			&p.ID, &p.OrganizationID, &p.Name, &p.StartDate, &p.EndDate, &p.State,
			&p.ClosedAt, &p.ClosedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
			&p.Totals.TotalGross, &p.Totals.TotalDeductions, &p.Totals.TotalNet,
			&p.Totals.CollaboratorCount, &p.Totals.ApprovedCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}

	return periods, totalCount, nil
}

func (r *payrollRepository) GetPeriodTotals(ctx context.Context, periodID string, organizationID string) (payroll.PeriodTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(pr.gross_total), 0),
			COALESCE(SUM(pr.total_deductions), 0),
			COALESCE(SUM(pr.net_total), 0),
			COUNT(pr.id),
			COUNT(pr.id) FILTER (WHERE pr.approved)
		FROM payroll_periods pp
		LEFT JOIN payroll_records pr ON pr.period_id = pp.id
		WHERE pp.id = $1 AND pp.organization_id = $2
		GROUP BY pp.id
	`

	var t payroll.PeriodTotals
	err := q.QueryRow(ctx, query, periodID, organizationID).Scan(
		&t.TotalGross, &t.TotalDeductions, &t.TotalNet, &t.CollaboratorCount, &t.ApprovedCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PeriodTotals{}, payroll.ErrPeriodNotFound
		}
		return payroll.PeriodTotals{}, fmt.Errorf("failed to get period totals: %w", err)
	}

	return t, nil
}

func (r *payrollRepository) ClosePeriod(ctx context.Context, id string, organizationID string, closedBy string, notes *string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	// Single conditional update: the state guard and the stamp are one
	// statement, so two concurrent closes cannot both succeed.
	query := `
		UPDATE payroll_periods
		SET state = 'closed', closed_at = NOW(), closed_by = $3, notes = COALESCE($4, notes), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND state = 'open'
		RETURNING id, organization_id, name, start_date, end_date, state,
			closed_at, closed_by, notes, created_at, updated_at
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, id, organizationID, closedBy, notes).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.StartDate, &p.EndDate, &p.State,
		&p.ClosedAt, &p.ClosedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPeriodByID(ctx, id, organizationID); getErr != nil {
				return payroll.PayrollPeriod{}, getErr
			}
			return payroll.PayrollPeriod{}, payroll.ErrInvalidTransition
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to close payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) UpdatePeriodState(ctx context.Context, id string, organizationID string, from, to payroll.PeriodState) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET state = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND state = $3
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, organizationID, from, to).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPeriodByID(ctx, id, organizationID); getErr != nil {
				return getErr
			}
			return payroll.ErrInvalidTransition
		}
		return fmt.Errorf("failed to update period state: %w", err)
	}

	return nil
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, id string, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM payroll_periods
		WHERE id = $1 AND organization_id = $2 AND state = 'open'
			AND NOT EXISTS (SELECT 1 FROM payroll_records WHERE period_id = $1)
		RETURNING id
	`

	var deletedID string
	err := q.QueryRow(ctx, query, id, organizationID).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			p, getErr := r.GetPeriodByID(ctx, id, organizationID)
			if getErr != nil {
				return getErr
			}
			if p.State != payroll.PeriodStateOpen {
				return payroll.ErrInvalidTransition
			}
			return payroll.ErrPeriodHasRecords
		}
		return fmt.Errorf("failed to delete payroll period: %w", err)
	}

	return nil
}

// ========== RECORDS ==========

const recordColumns = `
	pr.id, pr.period_id, pr.collaborator_id, pr.base_salary, pr.days_worked,
	pr.service_count, pr.extras_total, pr.bonuses, pr.commissions, pr.deductions,
	pr.advances, pr.gross_total, pr.total_deductions, pr.net_total,
	pr.approved, pr.approved_at, pr.approved_by, pr.created_at, pr.updated_at`

func (r *payrollRepository) UpsertComputedRecord(ctx context.Context, record payroll.PayrollRecord) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// Atomic conditional write keyed on uk_record_period_collaborator: the
	// update path refreshes only the computed inputs, so manually entered
	// bonuses/commissions/deductions/advances survive recomputation. The
	// gross/net totals are generated columns and follow automatically.
	query := `
		INSERT INTO payroll_records (period_id, collaborator_id, base_salary, days_worked, service_count, extras_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (period_id, collaborator_id) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			days_worked = EXCLUDED.days_worked,
			service_count = EXCLUDED.service_count,
			extras_total = EXCLUDED.extras_total,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := q.QueryRow(ctx, query,
		record.PeriodID, record.CollaboratorID, record.BaseSalary,
		record.DaysWorked, record.ServiceCount, record.ExtrasTotal,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return inserted, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string, organizationID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `,
			   c.full_name as collaborator_name, c.employment_type
		FROM payroll_records pr
		JOIN payroll_periods pp ON pr.period_id = pp.id
		JOIN collaborators c ON pr.collaborator_id = c.id
		WHERE pr.id = $1 AND pp.organization_id = $2
	`

	var rec payroll.PayrollRecord
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&rec.ID, &rec.PeriodID, &rec.CollaboratorID, &rec.BaseSalary, &rec.DaysWorked,
		&rec.ServiceCount, &rec.ExtrasTotal, &rec.Bonuses, &rec.Commissions, &rec.Deductions,
		&rec.Advances, &rec.GrossTotal, &rec.TotalDeductions, &rec.NetTotal,
		&rec.Approved, &rec.ApprovedAt, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.CollaboratorName, &rec.EmploymentType,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) ListRecords(ctx context.Context, periodID string, organizationID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN payroll_periods pp ON pr.period_id = pp.id
		JOIN collaborators c ON pr.collaborator_id = c.id
		WHERE pr.period_id = $1 AND pp.organization_id = $2
	`
	args := []interface{}{periodID, organizationID}
	argIdx := 3

	if filter.Approved != nil {
		baseQuery += fmt.Sprintf(" AND pr.approved = $%d", argIdx)
		args = append(args, *filter.Approved)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, c.full_name as collaborator_name, c.employment_type
		%s
		ORDER BY c.full_name
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := rows.Scan(
			&rec.ID, &rec.PeriodID, &rec.CollaboratorID, &rec.BaseSalary, &rec.DaysWorked,
			&rec.ServiceCount, &rec.ExtrasTotal, &rec.Bonuses, &rec.Commissions, &rec.Deductions,
			&rec.Advances, &rec.GrossTotal, &rec.TotalDeductions, &rec.NetTotal,
			&rec.Approved, &rec.ApprovedAt, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.CollaboratorName, &rec.EmploymentType,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) UpdateRecordAdjustments(ctx context.Context, organizationID string, req payroll.UpdateAdjustmentsRequest) error {
	// Check and update run in one transaction so an approval landing in
	// between surfaces as ErrRecordApproved, not a silent no-op.
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		// Approved records are frozen for manual edits.
		var approved bool
		err := q.QueryRow(txCtx, `
			SELECT pr.approved
			FROM payroll_records pr
			JOIN payroll_periods pp ON pr.period_id = pp.id
			WHERE pr.id = $1 AND pp.organization_id = $2
			FOR UPDATE OF pr
		`, req.ID, organizationID).Scan(&approved)
		if err != nil {
			if err == pgx.ErrNoRows {
				return payroll.ErrRecordNotFound
			}
			return fmt.Errorf("failed to check payroll record approval: %w", err)
		}
		if approved {
			return payroll.ErrRecordApproved
		}

		setParts := []string{"updated_at = NOW()"}
		args := []interface{}{req.ID, organizationID}
		argIdx := 3

		if req.Bonuses != nil {
			setParts = append(setParts, fmt.Sprintf("bonuses = $%d", argIdx))
			args = append(args, *req.Bonuses)
			argIdx++
		}
		if req.Commissions != nil {
			setParts = append(setParts, fmt.Sprintf("commissions = $%d", argIdx))
			args = append(args, *req.Commissions)
			argIdx++
		}
		if req.Deductions != nil {
			setParts = append(setParts, fmt.Sprintf("deductions = $%d", argIdx))
			args = append(args, *req.Deductions)
			argIdx++
		}
		if req.Advances != nil {
			setParts = append(setParts, fmt.Sprintf("advances = $%d", argIdx))
			args = append(args, *req.Advances)
			argIdx++
		}

		query := fmt.Sprintf(`
			UPDATE payroll_records pr
			SET %s
			FROM payroll_periods pp
			WHERE pr.id = $1 AND pr.period_id = pp.id AND pp.organization_id = $2 AND pr.approved = false
			RETURNING pr.id
		`, strings.Join(setParts, ", "))

		var updatedID string
		err = q.QueryRow(txCtx, query, args...).Scan(&updatedID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return payroll.ErrRecordNotFound
			}
			return fmt.Errorf("failed to update payroll record adjustments: %w", err)
		}

		return nil
	})
}

func (r *payrollRepository) ApproveRecord(ctx context.Context, id string, organizationID string, approvedBy string, approvedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// The approved = false guard makes re-approval a no-op that never
	// re-stamps approved_at.
	query := `
		UPDATE payroll_records pr
		SET approved = true, approved_at = $3, approved_by = $4, updated_at = NOW()
		FROM payroll_periods pp
		WHERE pr.id = $1 AND pr.period_id = pp.id AND pp.organization_id = $2 AND pr.approved = false
		RETURNING pr.id
	`

	var approvedID string
	err := q.QueryRow(ctx, query, id, organizationID, approvedAt, approvedBy).Scan(&approvedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetRecordByID(ctx, id, organizationID); getErr != nil {
				return false, getErr
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to approve payroll record: %w", err)
	}

	return true, nil
}

func (r *payrollRepository) ApproveAllRecords(ctx context.Context, periodID string, organizationID string, approvedBy string, approvedAt time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records pr
		SET approved = true, approved_at = $3, approved_by = $4, updated_at = NOW()
		FROM payroll_periods pp
		WHERE pr.period_id = $1 AND pr.period_id = pp.id AND pp.organization_id = $2 AND pr.approved = false
	`

	tag, err := q.Exec(ctx, query, periodID, organizationID, approvedAt, approvedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to approve payroll records: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *payrollRepository) ListApprovedRecordsWithoutReceipt(ctx context.Context, periodID string, organizationID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `,
			   c.full_name as collaborator_name, c.employment_type
		FROM payroll_records pr
		JOIN payroll_periods pp ON pr.period_id = pp.id
		JOIN collaborators c ON pr.collaborator_id = c.id
		LEFT JOIN payment_receipts rcpt ON rcpt.payroll_record_id = pr.id
		WHERE pr.period_id = $1 AND pp.organization_id = $2
			AND pr.approved = true AND rcpt.id IS NULL
		ORDER BY c.full_name
	`

	rows, err := q.Query(ctx, query, periodID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved records without receipt: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := rows.Scan(
			&rec.ID, &rec.PeriodID, &rec.CollaboratorID, &rec.BaseSalary, &rec.DaysWorked,
			&rec.ServiceCount, &rec.ExtrasTotal, &rec.Bonuses, &rec.Commissions, &rec.Deductions,
			&rec.Advances, &rec.GrossTotal, &rec.TotalDeductions, &rec.NetTotal,
			&rec.Approved, &rec.ApprovedAt, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.CollaboratorName, &rec.EmploymentType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}
