package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/collaborator"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
)

type collaboratorRepository struct {
	db *database.DB
}

func NewCollaboratorRepository(db *database.DB) collaborator.CollaboratorRepository {
	return &collaboratorRepository{db: db}
}

func (r *collaboratorRepository) GetByID(ctx context.Context, id string, organizationID string) (collaborator.Collaborator, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, full_name, tax_id, employment_type, payment_method,
			   base_salary, active, created_at, updated_at
		FROM collaborators
		WHERE id = $1 AND organization_id = $2
	`

	var c collaborator.Collaborator
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&c.ID, &c.OrganizationID, &c.FullName, &c.TaxID, &c.EmploymentType, &c.PaymentMethod,
		&c.BaseSalary, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return collaborator.Collaborator{}, collaborator.ErrCollaboratorNotFound
		}
		return collaborator.Collaborator{}, fmt.Errorf("failed to get collaborator: %w", err)
	}

	return c, nil
}

func (r *collaboratorRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]collaborator.Collaborator, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, full_name, tax_id, employment_type, payment_method,
			   base_salary, active, created_at, updated_at
		FROM collaborators
		WHERE organization_id = $1
	`
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY full_name"

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var collaborators []collaborator.Collaborator
	for rows.Next() {
		var c collaborator.Collaborator
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.FullName, &c.TaxID, &c.EmploymentType, &c.PaymentMethod,
			&c.BaseSalary, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collaborators = append(collaborators, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return collaborators, nil
}
