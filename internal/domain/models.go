package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tilemart/quotation-api/internal/pricing"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// SurfaceStandard is the sentinel label shown for catalog entries whose
// surface is null or blank. Selecting it in the resolver filters on
// "surface is null or empty", never on the literal text.
const SurfaceStandard = "Standard"

// CatalogEntry is one concrete purchasable product variant (SKU).
// Entries are immutable after creation; the catalog management flow
// archives and recreates rather than editing in place.
type CatalogEntry struct {
	BaseModel
	Name                   string  `gorm:"type:varchar(200);not null;index"`
	Size                   string  `gorm:"type:varchar(50);not null;index"`
	Surface                *string `gorm:"type:varchar(100)"`
	ExFactoryPrice         float64 `gorm:"type:decimal(15,4);not null;default:0;column:ex_factory_price"`
	MRPPerArea             float64 `gorm:"type:decimal(15,4);not null;default:0;column:mrp_per_area"`
	MRPPerContainer        float64 `gorm:"type:decimal(15,4);not null;default:0;column:mrp_per_container"`
	GSTPercent             float64 `gorm:"type:decimal(5,2);not null;default:0;column:gst_percent"`
	InsurancePercent       float64 `gorm:"type:decimal(5,2);not null;default:0;column:insurance_percent"`
	ActualAreaPerContainer float64 `gorm:"type:decimal(10,4);not null;default:0;column:actual_area_per_container"`
	BilledAreaPerContainer float64 `gorm:"type:decimal(10,4);not null;default:0;column:billed_area_per_container"`
	Weight                 float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Freight                float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Archived               bool    `gorm:"not null;default:false;index"`
}

// SurfaceLabel returns the display label for the entry's surface,
// mapping null/blank to the Standard sentinel.
func (e *CatalogEntry) SurfaceLabel() string {
	if e.Surface == nil || *e.Surface == "" {
		return SurfaceStandard
	}
	return *e.Surface
}

// PricingSKU returns the pricing view of the entry's numeric attributes.
func (e *CatalogEntry) PricingSKU() pricing.SKU {
	return pricing.SKU{
		MRPPerArea:             e.MRPPerArea,
		ExFactoryPrice:         e.ExFactoryPrice,
		InsurancePercent:       e.InsurancePercent,
		GSTPercent:             e.GSTPercent,
		ActualAreaPerContainer: e.ActualAreaPerContainer,
		BilledAreaPerContainer: e.BilledAreaPerContainer,
		Weight:                 e.Weight,
	}
}

// SKUSnapshot is the copy of a catalog entry's attributes taken at
// selection time. Line items price against the snapshot, not a live
// catalog lookup, so later catalog edits never change an authored
// quotation.
type SKUSnapshot struct {
	CatalogEntryID         uuid.UUID `gorm:"type:uuid;column:catalog_entry_id"`
	Name                   string    `gorm:"type:varchar(200)"`
	Size                   string    `gorm:"type:varchar(50)"`
	Surface                string    `gorm:"type:varchar(100)"`
	ExFactoryPrice         float64   `gorm:"type:decimal(15,4);column:ex_factory_price"`
	MRPPerArea             float64   `gorm:"type:decimal(15,4);column:mrp_per_area"`
	MRPPerContainer        float64   `gorm:"type:decimal(15,4);column:mrp_per_container"`
	GSTPercent             float64   `gorm:"type:decimal(5,2);column:gst_percent"`
	InsurancePercent       float64   `gorm:"type:decimal(5,2);column:insurance_percent"`
	ActualAreaPerContainer float64   `gorm:"type:decimal(10,4);column:actual_area_per_container"`
	BilledAreaPerContainer float64   `gorm:"type:decimal(10,4);column:billed_area_per_container"`
	Weight                 float64   `gorm:"type:decimal(10,2)"`
	Freight                float64   `gorm:"type:decimal(10,2)"`
}

// SnapshotOf copies the pricing-relevant attributes of a catalog entry.
func SnapshotOf(e *CatalogEntry) SKUSnapshot {
	return SKUSnapshot{
		CatalogEntryID:         e.ID,
		Name:                   e.Name,
		Size:                   e.Size,
		Surface:                e.SurfaceLabel(),
		ExFactoryPrice:         e.ExFactoryPrice,
		MRPPerArea:             e.MRPPerArea,
		MRPPerContainer:        e.MRPPerContainer,
		GSTPercent:             e.GSTPercent,
		InsurancePercent:       e.InsurancePercent,
		ActualAreaPerContainer: e.ActualAreaPerContainer,
		BilledAreaPerContainer: e.BilledAreaPerContainer,
		Weight:                 e.Weight,
		Freight:                e.Freight,
	}
}

// IsZero reports whether the snapshot is missing, i.e. the line has no
// catalog reference to price against.
func (s SKUSnapshot) IsZero() bool {
	return s.CatalogEntryID == uuid.Nil
}

// PricingSKU returns the pricing view of the snapshot.
func (s SKUSnapshot) PricingSKU() pricing.SKU {
	return pricing.SKU{
		MRPPerArea:             s.MRPPerArea,
		ExFactoryPrice:         s.ExFactoryPrice,
		InsurancePercent:       s.InsurancePercent,
		GSTPercent:             s.GSTPercent,
		ActualAreaPerContainer: s.ActualAreaPerContainer,
		BilledAreaPerContainer: s.BilledAreaPerContainer,
		Weight:                 s.Weight,
	}
}

// LineItem is one priced row of a quotation. Quantity, discount and
// area-needed are user editable; every other numeric field is derived
// from them plus the SKU snapshot and is rewritten on each recompute.
type LineItem struct {
	BaseModel
	RoomID          uuid.UUID   `gorm:"type:uuid;not null;index;column:room_id"`
	SortOrder       int         `gorm:"not null;default:0;column:sort_order"`
	SKU             SKUSnapshot `gorm:"embedded;embeddedPrefix:sku_"`
	Quantity        int         `gorm:"not null;default:1"`
	DiscountPercent float64     `gorm:"type:decimal(5,2);not null;default:0;column:discount_percent"`
	AreaNeeded      *float64    `gorm:"type:decimal(12,4);column:area_needed"`
	// AreaBasis records which basis was active when this line was last
	// priced. A later change of the quotation-level basis does not
	// reprice existing lines.
	AreaBasis pricing.AreaBasis `gorm:"type:varchar(10);not null;default:'actual';column:area_basis"`

	// Derived fields, never hand-edited.
	RatePerArea       float64 `gorm:"type:decimal(15,6);not null;default:0;column:rate_per_area"`
	PricePerContainer float64 `gorm:"type:decimal(15,6);not null;default:0;column:price_per_container"`
	Amount            float64 `gorm:"type:decimal(15,6);not null;default:0"`
	CostPerContainer  float64 `gorm:"type:decimal(15,6);not null;default:0;column:cost_per_container"`
	TotalCost         float64 `gorm:"type:decimal(15,6);not null;default:0;column:total_cost"`
	MarginAmount      float64 `gorm:"type:decimal(15,6);not null;default:0;column:margin_amount"`
	MarginPercent     float64 `gorm:"type:decimal(8,4);not null;default:0;column:margin_percent"`
}

// Room is a named grouping of line items within a quotation.
type Room struct {
	BaseModel
	QuotationID uuid.UUID  `gorm:"type:uuid;not null;index;column:quotation_id"`
	Name        string     `gorm:"type:varchar(200);not null"`
	SortOrder   int        `gorm:"not null;default:0;column:sort_order"`
	Total       float64    `gorm:"type:decimal(15,6);not null;default:0"`
	Items       []LineItem `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft   QuotationStatus = "draft"
	QuotationStatusSent    QuotationStatus = "sent"
	QuotationStatusExpired QuotationStatus = "expired"
)

// IsValid checks if the QuotationStatus is a valid enum value
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusExpired:
		return true
	}
	return false
}

// Quotation is the root of the priced tree. All Total* fields are
// derived by a full fold over the current rooms and items.
type Quotation struct {
	BaseModel
	Number         string            `gorm:"type:varchar(20);unique;index"`
	Title          string            `gorm:"type:varchar(200);not null"`
	CustomerID     uuid.UUID         `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer         `gorm:"foreignKey:CustomerID"`
	Status         QuotationStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	AreaBasis      pricing.AreaBasis `gorm:"type:varchar(10);not null;default:'actual';column:area_basis"`
	VisibleColumns pq.StringArray    `gorm:"type:text[];column:visible_columns"`
	ValidUntil     *time.Time        `gorm:"type:date;column:valid_until"`

	TotalAmount       float64 `gorm:"type:decimal(15,6);not null;default:0;column:total_amount"`
	TotalMarginAmount float64 `gorm:"type:decimal(15,6);not null;default:0;column:total_margin_amount"`
	TotalMarginPct    float64 `gorm:"type:decimal(8,4);not null;default:0;column:total_margin_percent"`
	TotalContainers   int     `gorm:"not null;default:0;column:total_containers"`
	TotalWeight       float64 `gorm:"type:decimal(15,4);not null;default:0;column:total_weight"`
	DistinctProducts  int     `gorm:"not null;default:0;column:distinct_products"`

	Rooms []Room `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// Customer is the quotation recipient. Code is the stable 4-digit
// identifier allocated lazily on the customer's first quotation.
type Customer struct {
	BaseModel
	Name    string  `gorm:"type:varchar(200);not null;index"`
	Code    *string `gorm:"type:varchar(8);unique"`
	Email   string  `gorm:"type:varchar(255)"`
	Phone   string  `gorm:"type:varchar(50)"`
	Address string  `gorm:"type:varchar(500)"`
	City    string  `gorm:"type:varchar(100)"`
}

// CounterSequence is a named monotonic counter updated under row lock.
// The customer-code allocator uses the "customer_code" row.
type CounterSequence struct {
	Name      string    `gorm:"type:varchar(50);primaryKey"`
	LastValue int       `gorm:"not null;default:0;column:last_value"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// QuotationSequence tracks the per-customer suffix counter. Incremented
// atomically; never derived by counting existing quotation rows.
type QuotationSequence struct {
	CustomerID   uuid.UUID `gorm:"type:uuid;primaryKey;column:customer_id"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
