package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/assignment"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/collaborator"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/middleware"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/response"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type CollaboratorHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListAssignments(w http.ResponseWriter, r *http.Request)
}

type collaboratorHandlerImpl struct {
	collaboratorRepo collaborator.CollaboratorRepository
	assignmentRepo   assignment.AssignmentRepository
}

func NewCollaboratorHandler(collaboratorRepo collaborator.CollaboratorRepository, assignmentRepo assignment.AssignmentRepository) CollaboratorHandler {
	return &collaboratorHandlerImpl{
		collaboratorRepo: collaboratorRepo,
		assignmentRepo:   assignmentRepo,
	}
}

func (h *collaboratorHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Collaborator ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.collaboratorRepo.GetByID(r.Context(), id, orgID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, mapToCollaboratorResponse(result))
}

func (h *collaboratorHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	orgID, _ := middleware.Identity(r)
	result, err := h.collaboratorRepo.ListByOrganization(r.Context(), orgID, activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]collaborator.CollaboratorResponse, 0, len(result))
	for _, c := range result {
		items = append(items, mapToCollaboratorResponse(c))
	}
	response.Success(w, items)
}

// ListAssignments is the drill-down behind a payroll record's service count:
// the individual assignments for one collaborator in a date range.
func (h *collaboratorHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Collaborator ID must be a valid UUID", nil)
		return
	}

	from, fromOK := validator.IsValidDate(r.URL.Query().Get("from"))
	to, toOK := validator.IsValidDate(r.URL.Query().Get("to"))
	if !fromOK || !toOK {
		response.BadRequest(w, "Query parameters 'from' and 'to' must be dates (YYYY-MM-DD)", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.assignmentRepo.ListByCollaborator(r.Context(), orgID, id, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]assignment.AssignmentResponse, 0, len(result))
	for _, a := range result {
		items = append(items, mapToAssignmentResponse(a))
	}
	response.Success(w, items)
}

func mapToCollaboratorResponse(c collaborator.Collaborator) collaborator.CollaboratorResponse {
	return collaborator.CollaboratorResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		FullName:       c.FullName,
		TaxID:          c.TaxID,
		EmploymentType: string(c.EmploymentType),
		PaymentMethod:  string(c.PaymentMethod),
		BaseSalary:     c.BaseSalary,
		Active:         c.Active,
	}
}

func mapToAssignmentResponse(a assignment.ServiceAssignment) assignment.AssignmentResponse {
	return assignment.AssignmentResponse{
		ID:             a.ID,
		CollaboratorID: a.CollaboratorID,
		ServiceID:      a.ServiceID,
		ExtraAmount:    a.ExtraAmount,
		AssignedAt:     a.AssignedAt.Format(time.RFC3339),
	}
}
