package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/mapper"
	"github.com/tilemart/quotation-api/internal/pricing"
)

func TestToCustomerDTO(t *testing.T) {
	code := "0101"
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	customer := &domain.Customer{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		Name:      "Acme Flooring",
		Code:      &code,
		Email:     "sales@acme.example",
		City:      "Pune",
	}

	dto := mapper.ToCustomerDTO(customer)

	assert.Equal(t, customer.ID, dto.ID)
	assert.Equal(t, "0101", dto.Code)
	assert.Equal(t, "2026-03-14T09:30:00Z", dto.CreatedAt)

	customer.Code = nil
	assert.Empty(t, mapper.ToCustomerDTO(customer).Code)
}

func TestToCatalogEntryDTO_SurfaceLabel(t *testing.T) {
	matt := "Matt"
	entry := &domain.CatalogEntry{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Glazed Tile",
		Size:      "600x600",
		Surface:   &matt,
	}

	assert.Equal(t, "Matt", mapper.ToCatalogEntryDTO(entry).Surface)

	entry.Surface = nil
	assert.Equal(t, domain.SurfaceStandard, mapper.ToCatalogEntryDTO(entry).Surface)

	blank := ""
	entry.Surface = &blank
	assert.Equal(t, domain.SurfaceStandard, mapper.ToCatalogEntryDTO(entry).Surface)
}

func TestToLineItemDTO_WeightScalesWithQuantity(t *testing.T) {
	item := &domain.LineItem{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		SKU: domain.SKUSnapshot{
			CatalogEntryID: uuid.New(),
			Name:           "Glazed Tile",
			Weight:         28.5,
		},
		Quantity:  3,
		AreaBasis: pricing.BasisActual,
	}

	dto := mapper.ToLineItemDTO(item)

	assert.Equal(t, item.SKU.CatalogEntryID, dto.CatalogEntryID)
	assert.InDelta(t, 85.5, dto.Weight, 1e-9)
}

func TestToQuotationDTO(t *testing.T) {
	validUntil := time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)
	quotation := &domain.Quotation{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		Number:     "#QT0101A",
		Title:      "Ground floor",
		CustomerID: uuid.New(),
		Customer:   &domain.Customer{Name: "Acme Flooring"},
		Status:     domain.QuotationStatusDraft,
		AreaBasis:  pricing.BasisBilled,
		ValidUntil: &validUntil,
		Rooms: []domain.Room{
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Hall", Total: 1800},
		},
		TotalAmount: 1800,
	}

	dto := mapper.ToQuotationDTO(quotation)

	assert.Equal(t, "#QT0101A", dto.Number)
	assert.Equal(t, "Acme Flooring", dto.CustomerName)
	require.NotNil(t, dto.ValidUntil)
	assert.Equal(t, "2026-04-13", *dto.ValidUntil)
	require.Len(t, dto.Rooms, 1)
	assert.Equal(t, 1800.0, dto.Rooms[0].Total)

	// Without a preloaded customer the name is simply absent.
	quotation.Customer = nil
	quotation.ValidUntil = nil
	dto = mapper.ToQuotationDTO(quotation)
	assert.Empty(t, dto.CustomerName)
	assert.Nil(t, dto.ValidUntil)
}

func TestToQuotationSummaryDTO(t *testing.T) {
	quotation := &domain.Quotation{
		BaseModel:        domain.BaseModel{ID: uuid.New()},
		Number:           "#QT0101B",
		Title:            "First floor",
		Status:           domain.QuotationStatusSent,
		TotalAmount:      2500,
		TotalMarginPct:   12.5,
		DistinctProducts: 2,
		Rooms: []domain.Room{
			{Name: "Hall"},
		},
	}

	dto := mapper.ToQuotationSummaryDTO(quotation)

	assert.Equal(t, "#QT0101B", dto.Number)
	assert.Equal(t, domain.QuotationStatusSent, dto.Status)
	assert.Equal(t, 2500.0, dto.TotalAmount)
	assert.Empty(t, dto.CustomerName)
}
