package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/assignment"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
)

type assignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) assignment.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) SummarizeByCollaborator(ctx context.Context, organizationID string, from, to time.Time) ([]assignment.AssignmentSummary, error) {
	q := GetQuerier(ctx, r.db)

	// The range is inclusive of the whole end day, so the upper bound is the
	// start of the following day.
	query := `
		SELECT
			collaborator_id,
			COUNT(*) as service_count,
			COALESCE(SUM(extra_amount), 0) as extras_total,
			COUNT(DISTINCT assigned_at::date) as days_worked
		FROM service_assignments
		WHERE organization_id = $1
			AND assigned_at >= $2
			AND assigned_at < $3
		GROUP BY collaborator_id
	`

	rows, err := q.Query(ctx, query, organizationID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize assignments: %w", err)
	}
	defer rows.Close()

	var summaries []assignment.AssignmentSummary
	for rows.Next() {
		var s assignment.AssignmentSummary
		if err := rows.Scan(&s.CollaboratorID, &s.ServiceCount, &s.ExtrasTotal, &s.DaysWorked); err != nil {
			return nil, fmt.Errorf("failed to scan assignment summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *assignmentRepository) ListByCollaborator(ctx context.Context, organizationID string, collaboratorID string, from, to time.Time) ([]assignment.ServiceAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, collaborator_id, service_id, extra_amount, assigned_at, created_at
		FROM service_assignments
		WHERE organization_id = $1 AND collaborator_id = $2
			AND assigned_at >= $3 AND assigned_at < $4
		ORDER BY assigned_at
	`

	rows, err := q.Query(ctx, query, organizationID, collaboratorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []assignment.ServiceAssignment
	for rows.Next() {
		var a assignment.ServiceAssignment
		if err := rows.Scan(
			&a.ID, &a.OrganizationID, &a.CollaboratorID, &a.ServiceID, &a.ExtraAmount, &a.AssignedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
