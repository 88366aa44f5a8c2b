package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// List godoc
// @Summary List quotations
// @Description Get paginated quotation summaries with optional filters
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by customer ID"
// @Param status query string false "Filter by status" Enums(draft, sent, expired)
// @Param search query string false "Search by title or number"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuotationSummaryDTO}
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
			return
		}
		customerID = &id
	}

	var status *domain.QuotationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.QuotationStatus(raw)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = &s
	}

	quotations, total, err := h.quotationService.List(r.Context(), page, pageSize, customerID, status, search)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(quotations, total, page, pageSize))
}

// Create godoc
// @Summary Create quotation
// @Description Create a quotation from an authored tree. A unique number is allocated atomically and all derived figures are computed server-side.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param quotation body domain.SaveQuotationRequest true "Quotation tree"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quotation", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, quotation)
}

// Get godoc
// @Summary Get quotation
// @Description Get the fully materialized quotation tree with all derived figures
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	quotation, err := h.quotationService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Update godoc
// @Summary Update quotation
// @Description Replace the quotation tree. The number, status and validity window are kept; every derived figure is recomputed before the transactional save.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param quotation body domain.SaveQuotationRequest true "Quotation tree"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	var req domain.SaveQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update quotation", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Delete godoc
// @Summary Delete quotation
// @Description Delete a quotation and its tree. The allocated number is never reused.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// UpdateStatus godoc
// @Summary Update quotation status
// @Description Move a quotation through its lifecycle (draft, sent, expired)
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param status body domain.UpdateQuotationStatusRequest true "New status"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id}/status [put]
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	var req domain.UpdateQuotationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update quotation status", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Duplicate godoc
// @Summary Duplicate quotation
// @Description Create an independent copy with a freshly allocated number and draft status
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 201 {object} domain.QuotationDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id}/duplicate [post]
func (h *QuotationHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	quotation, err := h.quotationService.Duplicate(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to duplicate quotation", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, quotation)
}

// Recalculate godoc
// @Summary Recalculate quotation
// @Description Reprice every line from its snapshot and refold all totals. Idempotent on an unchanged tree.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotations/{id}/recalculate [post]
func (h *QuotationHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	quotation, err := h.quotationService.Recalculate(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to recalculate quotation", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}
