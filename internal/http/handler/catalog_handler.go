package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/service"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// List godoc
// @Summary List catalog entries
// @Description Get paginated list of catalog entries with optional search
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or size"
// @Param includeArchived query bool false "Include archived entries" default(false)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CatalogEntryDTO}
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("includeArchived"))

	entries, total, err := h.catalogService.ListEntries(r.Context(), page, pageSize, search, includeArchived)
	if err != nil {
		h.logger.Error("failed to list catalog entries", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paginated(entries, total, page, pageSize))
}

// Create godoc
// @Summary Create catalog entry
// @Description Create a new catalog entry. Missing numeric attributes default to zero.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param entry body domain.CreateCatalogEntryRequest true "Catalog entry"
// @Success 201 {object} domain.CatalogEntryDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCatalogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.catalogService.CreateEntry(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create catalog entry", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// Archive godoc
// @Summary Archive catalog entry
// @Description Hide an entry from the selection cascade. Existing quotations keep their snapshots.
// @Tags Catalog
// @Produce json
// @Param id path string true "Catalog entry ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/{id}/archive [post]
func (h *CatalogHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid catalog entry ID")
		return
	}

	if err := h.catalogService.ArchiveEntry(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Names godoc
// @Summary Search product names
// @Description First cascade stage: distinct active product names matching the search text
// @Tags Catalog
// @Produce json
// @Param search query string false "Search text"
// @Param limit query int false "Maximum results" default(20)
// @Success 200 {array} domain.NameOption
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/names [get]
func (h *CatalogHandler) Names(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 20
	}

	names, err := h.catalogService.Names(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		h.logger.Error("failed to search names", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, names)
}

// Sizes godoc
// @Summary List sizes for a product name
// @Description Second cascade stage: distinct sizes available under a product name
// @Tags Catalog
// @Produce json
// @Param name query string true "Product name"
// @Success 200 {array} domain.SizeOption
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/sizes [get]
func (h *CatalogHandler) Sizes(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	sizes, err := h.catalogService.Sizes(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to list sizes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sizes)
}

// Surfaces godoc
// @Summary List surfaces for a name and size
// @Description Third cascade stage: distinct surfaces, with null/blank grouped under Standard
// @Tags Catalog
// @Produce json
// @Param name query string true "Product name"
// @Param size query string true "Size"
// @Success 200 {array} domain.SurfaceOption
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/surfaces [get]
func (h *CatalogHandler) Surfaces(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	size := r.URL.Query().Get("size")
	if name == "" || size == "" {
		respondWithError(w, http.StatusBadRequest, "name and size are required")
		return
	}

	surfaces, err := h.catalogService.Surfaces(r.Context(), name, size)
	if err != nil {
		h.logger.Error("failed to list surfaces", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, surfaces)
}

// Entries godoc
// @Summary List entries for a full filter
// @Description Final cascade stage: concrete entries under name, size and surface
// @Tags Catalog
// @Produce json
// @Param name query string true "Product name"
// @Param size query string true "Size"
// @Param surface query string true "Surface (use Standard for blank surfaces)"
// @Success 200 {array} domain.CatalogEntryDTO
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/entries [get]
func (h *CatalogHandler) Entries(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	size := r.URL.Query().Get("size")
	surface := r.URL.Query().Get("surface")
	if name == "" || size == "" || surface == "" {
		respondWithError(w, http.StatusBadRequest, "name, size and surface are required")
		return
	}

	entries, err := h.catalogService.Entries(r.Context(), name, size, surface)
	if err != nil {
		h.logger.Error("failed to list entries", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Resolve godoc
// @Summary Resolve the selection cascade
// @Description Walk the cascade with auto-advance through single-option stages. Returns the stage where a choice is needed, the resolved entry, or an empty outcome.
// @Tags Catalog
// @Produce json
// @Param name query string true "Product name"
// @Param size query string false "Size (skip to get size options)"
// @Param surface query string false "Surface (skip to get surface options)"
// @Success 200 {object} domain.ResolutionDTO
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /catalog/resolve [get]
func (h *CatalogHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	res, err := h.catalogService.Resolve(r.Context(), name, r.URL.Query().Get("size"), r.URL.Query().Get("surface"))
	if err != nil {
		h.logger.Error("failed to resolve catalog selection", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}
