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

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Get paginated list of customers with optional search
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or city"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CustomerDTO}
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	customers, total, err := h.customerService.List(r.Context(), page, pageSize, search)
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(customers, total, page, pageSize))
}

// Create godoc
// @Summary Create customer
// @Description Create a new customer. The 4-digit customer code is allocated on the customer's first quotation, not here.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer body domain.CreateCustomerRequest true "Customer"
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	customer, err := h.customerService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create customer", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, customer)
}

// Get godoc
// @Summary Get customer
// @Description Get a customer by ID
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.CustomerDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}
