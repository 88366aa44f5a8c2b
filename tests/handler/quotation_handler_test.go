package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/http/handler"
	"go.uber.org/zap"
)

// The validation and parsing paths reject bad input before any service
// call, so a nil service is safe here.
func newQuotationRouter() chi.Router {
	h := handler.NewQuotationHandler(nil, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestQuotationHandler_Create_InvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader("{not json"))

	newQuotationRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestQuotationHandler_Create_ValidationErrors(t *testing.T) {
	body := `{"title":"","customerId":"00000000-0000-0000-0000-000000000000","rooms":[]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(body))

	newQuotationRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, "Validation Error", apiErr.Title)
	assert.Contains(t, apiErr.Errors, "title")
	assert.Contains(t, apiErr.Errors, "customerID")
	assert.Contains(t, apiErr.Errors, "rooms")
}

func TestQuotationHandler_Create_RejectsBadDiscount(t *testing.T) {
	body := `{
		"title": "Ground floor",
		"customerId": "a2e1f1f0-9d77-4b8e-9a9f-0f8a8f6a1d01",
		"rooms": [
			{"name": "Hall", "items": [
				{"catalogEntryId": "b3f2e2e1-8c66-4a7d-8b8e-1e9b9e7b2d02", "discountPercent": 130}
			]}
		]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(body))

	newQuotationRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "discountPercent")
}

func TestQuotationHandler_InvalidIDs(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/quotations/not-a-uuid"},
		{http.MethodPut, "/quotations/not-a-uuid"},
		{http.MethodDelete, "/quotations/not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)

			newQuotationRouter().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid quotation ID")
		})
	}
}

func TestQuotationHandler_List_BadFilters(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"bad customer id", "/quotations?customerId=xyz", "Invalid customer ID"},
		{"bad status", "/quotations?status=approved", "Invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			newQuotationRouter().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
