package assignment

import (
	"context"
	"time"
)

// AssignmentRepository reads the service-assignment ledger.
type AssignmentRepository interface {
	// SummarizeByCollaborator aggregates assignments whose timestamp falls in
	// [from, to], inclusive of the whole end day.
	SummarizeByCollaborator(ctx context.Context, organizationID string, from, to time.Time) ([]AssignmentSummary, error)

	// ListByCollaborator returns the individual assignments backing a summary,
	// for operator drill-down.
	ListByCollaborator(ctx context.Context, organizationID string, collaboratorID string, from, to time.Time) ([]ServiceAssignment, error)
}
