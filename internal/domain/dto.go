package domain

import (
	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/pricing"
)

// DTOs for API responses. Quotation DTOs carry every derived field so
// consumers (list views, PDF/HTML templates) render read-only without
// re-deriving totals.

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type CatalogEntryDTO struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	Size                   string    `json:"size"`
	Surface                string    `json:"surface"`
	ExFactoryPrice         float64   `json:"exFactoryPrice"`
	MRPPerArea             float64   `json:"mrpPerArea"`
	MRPPerContainer        float64   `json:"mrpPerContainer"`
	GSTPercent             float64   `json:"gstPercent"`
	InsurancePercent       float64   `json:"insurancePercent"`
	ActualAreaPerContainer float64   `json:"actualAreaPerContainer"`
	BilledAreaPerContainer float64   `json:"billedAreaPerContainer"`
	Weight                 float64   `json:"weight"`
	Freight                float64   `json:"freight"`
	Archived               bool      `json:"archived"`
	CreatedAt              string    `json:"createdAt"`
}

// NameOption is one distinct product name at the first cascade stage.
type NameOption struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SizeOption is one distinct size at the second cascade stage.
type SizeOption struct {
	Size  string `json:"size"`
	Count int    `json:"count"`
}

// SurfaceOption is one distinct surface at the third cascade stage.
// Null/blank surfaces appear under the Standard sentinel label.
type SurfaceOption struct {
	Surface string `json:"surface"`
	Count   int    `json:"count"`
}

// ResolutionStage identifies where the cascade stopped waiting for a
// user choice.
type ResolutionStage string

const (
	StageSize     ResolutionStage = "size"
	StageSurface  ResolutionStage = "surface"
	StageEntry    ResolutionStage = "entry"
	StageResolved ResolutionStage = "resolved"
	StageEmpty    ResolutionStage = "empty"
)

// ResolutionDTO is the outcome of running the cascade with
// auto-advance. Exactly one of the option slices or Entry is relevant
// for the reported stage; an empty stage means the filters matched
// nothing, which is a valid terminal state, not an error.
type ResolutionDTO struct {
	Stage    ResolutionStage   `json:"stage"`
	Name     string            `json:"name"`
	Size     string            `json:"size,omitempty"`
	Surface  string            `json:"surface,omitempty"`
	Sizes    []SizeOption      `json:"sizes,omitempty"`
	Surfaces []SurfaceOption   `json:"surfaces,omitempty"`
	Entries  []CatalogEntryDTO `json:"entries,omitempty"`
	Entry    *CatalogEntryDTO  `json:"entry,omitempty"`
}

type LineItemDTO struct {
	ID                uuid.UUID         `json:"id"`
	CatalogEntryID    uuid.UUID         `json:"catalogEntryId"`
	Name              string            `json:"name"`
	Size              string            `json:"size"`
	Surface           string            `json:"surface"`
	SortOrder         int               `json:"sortOrder"`
	Quantity          int               `json:"quantity"`
	DiscountPercent   float64           `json:"discountPercent"`
	AreaNeeded        *float64          `json:"areaNeeded,omitempty"`
	AreaBasis         pricing.AreaBasis `json:"areaBasis"`
	RatePerArea       float64           `json:"ratePerArea"`
	PricePerContainer float64           `json:"pricePerContainer"`
	Amount            float64           `json:"amount"`
	MarginAmount      float64           `json:"marginAmount"`
	MarginPercent     float64           `json:"marginPercent"`
	Weight            float64           `json:"weight"`
}

type RoomDTO struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sortOrder"`
	Total     float64       `json:"total"`
	Items     []LineItemDTO `json:"items"`
}

type QuotationDTO struct {
	ID                uuid.UUID         `json:"id"`
	Number            string            `json:"number,omitempty"`
	Title             string            `json:"title"`
	CustomerID        uuid.UUID         `json:"customerId"`
	CustomerName      string            `json:"customerName,omitempty"`
	Status            QuotationStatus   `json:"status"`
	AreaBasis         pricing.AreaBasis `json:"areaBasis"`
	VisibleColumns    []string          `json:"visibleColumns,omitempty"`
	ValidUntil        *string           `json:"validUntil,omitempty"`
	TotalAmount       float64           `json:"totalAmount"`
	TotalMarginAmount float64           `json:"totalMarginAmount"`
	TotalMarginPct    float64           `json:"totalMarginPercent"`
	TotalContainers   int               `json:"totalContainers"`
	TotalWeight       float64           `json:"totalWeight"`
	DistinctProducts  int               `json:"distinctProducts"`
	Rooms             []RoomDTO         `json:"rooms"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
}

// QuotationSummaryDTO is the list-view projection without the tree.
type QuotationSummaryDTO struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number,omitempty"`
	Title            string          `json:"title"`
	CustomerID       uuid.UUID       `json:"customerId"`
	CustomerName     string          `json:"customerName,omitempty"`
	Status           QuotationStatus `json:"status"`
	TotalAmount      float64         `json:"totalAmount"`
	TotalMarginPct   float64         `json:"totalMarginPercent"`
	DistinctProducts int             `json:"distinctProducts"`
	CreatedAt        string          `json:"createdAt"`
}

// Request payloads

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
	City    string `json:"city" validate:"max=100"`
}

type CreateCatalogEntryRequest struct {
	Name                   string   `json:"name" validate:"required,max=200"`
	Size                   string   `json:"size" validate:"required,max=50"`
	Surface                *string  `json:"surface" validate:"omitempty,max=100"`
	ExFactoryPrice         *float64 `json:"exFactoryPrice" validate:"omitempty,gte=0"`
	MRPPerArea             *float64 `json:"mrpPerArea" validate:"omitempty,gte=0"`
	MRPPerContainer        *float64 `json:"mrpPerContainer" validate:"omitempty,gte=0"`
	GSTPercent             *float64 `json:"gstPercent" validate:"omitempty,gte=0,lte=100"`
	InsurancePercent       *float64 `json:"insurancePercent" validate:"omitempty,gte=0,lte=100"`
	ActualAreaPerContainer *float64 `json:"actualAreaPerContainer" validate:"omitempty,gte=0"`
	BilledAreaPerContainer *float64 `json:"billedAreaPerContainer" validate:"omitempty,gte=0"`
	Weight                 *float64 `json:"weight" validate:"omitempty,gte=0"`
	Freight                *float64 `json:"freight" validate:"omitempty,gte=0"`
}

// LineItemInput is one authored line arriving from the client. Only
// editable fields and the catalog reference are trusted; every derived
// field is recomputed server-side before persisting.
type LineItemInput struct {
	CatalogEntryID  uuid.UUID         `json:"catalogEntryId" validate:"required"`
	Quantity        int               `json:"quantity" validate:"gte=0"`
	DiscountPercent float64           `json:"discountPercent" validate:"gte=0,lte=100"`
	AreaNeeded      *float64          `json:"areaNeeded" validate:"omitempty,gt=0"`
	AreaBasis       pricing.AreaBasis `json:"areaBasis" validate:"omitempty,oneof=actual billed"`
}

type RoomInput struct {
	Name  string          `json:"name" validate:"required,max=200"`
	Items []LineItemInput `json:"items" validate:"dive"`
}

type SaveQuotationRequest struct {
	Title          string            `json:"title" validate:"required,max=200"`
	CustomerID     uuid.UUID         `json:"customerId" validate:"required"`
	AreaBasis      pricing.AreaBasis `json:"areaBasis" validate:"omitempty,oneof=actual billed"`
	VisibleColumns []string          `json:"visibleColumns"`
	Rooms          []RoomInput       `json:"rooms" validate:"min=1,dive"`
}

type UpdateQuotationStatusRequest struct {
	Status QuotationStatus `json:"status" validate:"required,oneof=draft sent expired"`
}

// PaginatedResponse wraps list results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
