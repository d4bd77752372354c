package collaborator

import "context"

// CollaboratorRepository reads the collaborator directory. All methods take
// an organizationID parameter to prevent cross-organization data access.
type CollaboratorRepository interface {
	GetByID(ctx context.Context, id string, organizationID string) (Collaborator, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]Collaborator, error)
}
