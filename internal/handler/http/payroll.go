package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/middleware"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/response"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)
	ClosePeriod(w http.ResponseWriter, r *http.Request)
	MarkPeriodProcessed(w http.ResponseWriter, r *http.Request)
	MarkPeriodPaid(w http.ResponseWriter, r *http.Request)

	// Records
	ComputePeriod(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	UpdateRecordAdjustments(w http.ResponseWriter, r *http.Request)
	ApproveRecord(w http.ResponseWriter, r *http.Request)
	ApproveAllRecords(w http.ResponseWriter, r *http.Request)

	// Receipts
	GenerateReceipt(w http.ResponseWriter, r *http.Request)
	GenerateAllReceipts(w http.ResponseWriter, r *http.Request)
	GetReceipt(w http.ResponseWriter, r *http.Request)
	GetRecordReceipt(w http.ResponseWriter, r *http.Request)
	ListReceipts(w http.ResponseWriter, r *http.Request)
	UpdateReceiptStatus(w http.ResponseWriter, r *http.Request)
	VerifyReceipt(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.CreatePeriod(r.Context(), orgID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GetPeriod(r.Context(), orgID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	filter := payroll.PeriodFilter{
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	if state := r.URL.Query().Get("state"); state != "" {
		filter.State = &state
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.Year = &year
		}
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.ListPeriods(r.Context(), orgID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages(result.TotalCount, result.Limit),
	})
}

func (h *payrollHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	if err := h.payrollService.DeletePeriod(r.Context(), orgID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period deleted", nil)
}

func (h *payrollHandlerImpl) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	var req payroll.ClosePeriodRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	orgID, userID := middleware.Identity(r)
	result, err := h.payrollService.ClosePeriod(r.Context(), orgID, id, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period closed", result)
}

func (h *payrollHandlerImpl) MarkPeriodProcessed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	if err := h.payrollService.MarkPeriodProcessed(r.Context(), orgID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period marked processed", nil)
}

func (h *payrollHandlerImpl) MarkPeriodPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	if err := h.payrollService.MarkPeriodPaid(r.Context(), orgID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period marked paid", nil)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) ComputePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	var req payroll.ComputePayrollRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.ComputePeriod(r.Context(), orgID, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll records computed", result)
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Record ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GetRecord(r.Context(), orgID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(periodID) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	filter := payroll.RecordFilter{
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", 50),
	}
	if approvedStr := r.URL.Query().Get("approved"); approvedStr != "" {
		approved := approvedStr == "true"
		filter.Approved = &approved
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.ListRecords(r.Context(), orgID, periodID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages(result.TotalCount, result.Limit),
	})
}

func (h *payrollHandlerImpl) UpdateRecordAdjustments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Record ID must be a valid UUID", nil)
		return
	}

	var req payroll.UpdateAdjustmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.UpdateRecordAdjustments(r.Context(), orgID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Record ID must be a valid UUID", nil)
		return
	}

	orgID, userID := middleware.Identity(r)
	result, err := h.payrollService.ApproveRecord(r.Context(), orgID, id, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll record approved", result)
}

func (h *payrollHandlerImpl) ApproveAllRecords(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(periodID) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, userID := middleware.Identity(r)
	result, err := h.payrollService.ApproveAllRecords(r.Context(), orgID, periodID, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll records approved", result)
}

// ========== RECEIPTS ==========

func (h *payrollHandlerImpl) GenerateReceipt(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(recordID) {
		response.BadRequest(w, "Record ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GenerateReceipt(r.Context(), orgID, recordID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment receipt generated", result)
}

// GetRecordReceipt returns the receipt issued for a payroll record, if any.
func (h *payrollHandlerImpl) GetRecordReceipt(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(recordID) {
		response.BadRequest(w, "Record ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GetReceiptByRecord(r.Context(), orgID, recordID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GenerateAllReceipts(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(periodID) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GenerateAllReceipts(r.Context(), orgID, periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment receipts generated", result)
}

func (h *payrollHandlerImpl) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Receipt ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.GetReceipt(r.Context(), orgID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListReceipts(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(periodID) {
		response.BadRequest(w, "Period ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.ListReceipts(r.Context(), orgID, periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateReceiptStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Receipt ID must be a valid UUID", nil)
		return
	}

	var req payroll.UpdateReceiptStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	orgID, _ := middleware.Identity(r)
	result, err := h.payrollService.UpdateReceiptStatus(r.Context(), orgID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// VerifyReceipt is the public lookup used by a collaborator holding a
// verification code from a printed receipt. No authentication required.
func (h *payrollHandlerImpl) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !validator.IsValidVerificationCode(code) {
		response.NotFound(w, "Payment receipt not found")
		return
	}

	result, err := h.payrollService.GetReceiptByVerificationCode(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== HELPERS ==========

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func totalPages(totalItems int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((totalItems + int64(limit) - 1) / int64(limit))
}
