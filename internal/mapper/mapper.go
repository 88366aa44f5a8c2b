package mapper

import (
	"github.com/tilemart/quotation-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	dto := domain.CustomerDTO{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Address:   customer.Address,
		City:      customer.City,
		CreatedAt: customer.CreatedAt.Format(timeFormat),
		UpdatedAt: customer.UpdatedAt.Format(timeFormat),
	}
	if customer.Code != nil {
		dto.Code = *customer.Code
	}
	return dto
}

// ToCatalogEntryDTO converts CatalogEntry to CatalogEntryDTO. The
// surface is always materialized to its display label.
func ToCatalogEntryDTO(entry *domain.CatalogEntry) domain.CatalogEntryDTO {
	return domain.CatalogEntryDTO{
		ID:                     entry.ID,
		Name:                   entry.Name,
		Size:                   entry.Size,
		Surface:                entry.SurfaceLabel(),
		ExFactoryPrice:         entry.ExFactoryPrice,
		MRPPerArea:             entry.MRPPerArea,
		MRPPerContainer:        entry.MRPPerContainer,
		GSTPercent:             entry.GSTPercent,
		InsurancePercent:       entry.InsurancePercent,
		ActualAreaPerContainer: entry.ActualAreaPerContainer,
		BilledAreaPerContainer: entry.BilledAreaPerContainer,
		Weight:                 entry.Weight,
		Freight:                entry.Freight,
		Archived:               entry.Archived,
		CreatedAt:              entry.CreatedAt.Format(timeFormat),
	}
}

// ToLineItemDTO converts LineItem to LineItemDTO
func ToLineItemDTO(item *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:                item.ID,
		CatalogEntryID:    item.SKU.CatalogEntryID,
		Name:              item.SKU.Name,
		Size:              item.SKU.Size,
		Surface:           item.SKU.Surface,
		SortOrder:         item.SortOrder,
		Quantity:          item.Quantity,
		DiscountPercent:   item.DiscountPercent,
		AreaNeeded:        item.AreaNeeded,
		AreaBasis:         item.AreaBasis,
		RatePerArea:       item.RatePerArea,
		PricePerContainer: item.PricePerContainer,
		Amount:            item.Amount,
		MarginAmount:      item.MarginAmount,
		MarginPercent:     item.MarginPercent,
		Weight:            item.SKU.Weight * float64(item.Quantity),
	}
}

// ToRoomDTO converts Room to RoomDTO
func ToRoomDTO(room *domain.Room) domain.RoomDTO {
	dto := domain.RoomDTO{
		ID:        room.ID,
		Name:      room.Name,
		SortOrder: room.SortOrder,
		Total:     room.Total,
		Items:     make([]domain.LineItemDTO, 0, len(room.Items)),
	}
	for i := range room.Items {
		dto.Items = append(dto.Items, ToLineItemDTO(&room.Items[i]))
	}
	return dto
}

// ToQuotationDTO converts a Quotation and its tree into the fully
// materialized outbound shape. Every derived figure is included so
// read-only consumers never recompute anything.
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:                quotation.ID,
		Number:            quotation.Number,
		Title:             quotation.Title,
		CustomerID:        quotation.CustomerID,
		Status:            quotation.Status,
		AreaBasis:         quotation.AreaBasis,
		VisibleColumns:    quotation.VisibleColumns,
		TotalAmount:       quotation.TotalAmount,
		TotalMarginAmount: quotation.TotalMarginAmount,
		TotalMarginPct:    quotation.TotalMarginPct,
		TotalContainers:   quotation.TotalContainers,
		TotalWeight:       quotation.TotalWeight,
		DistinctProducts:  quotation.DistinctProducts,
		Rooms:             make([]domain.RoomDTO, 0, len(quotation.Rooms)),
		CreatedAt:         quotation.CreatedAt.Format(timeFormat),
		UpdatedAt:         quotation.UpdatedAt.Format(timeFormat),
	}
	if quotation.Customer != nil {
		dto.CustomerName = quotation.Customer.Name
	}
	if quotation.ValidUntil != nil {
		validUntil := quotation.ValidUntil.Format("2006-01-02")
		dto.ValidUntil = &validUntil
	}
	for i := range quotation.Rooms {
		dto.Rooms = append(dto.Rooms, ToRoomDTO(&quotation.Rooms[i]))
	}
	return dto
}

// ToQuotationSummaryDTO converts a Quotation into the list-view
// projection without the room tree.
func ToQuotationSummaryDTO(quotation *domain.Quotation) domain.QuotationSummaryDTO {
	dto := domain.QuotationSummaryDTO{
		ID:               quotation.ID,
		Number:           quotation.Number,
		Title:            quotation.Title,
		CustomerID:       quotation.CustomerID,
		Status:           quotation.Status,
		TotalAmount:      quotation.TotalAmount,
		TotalMarginPct:   quotation.TotalMarginPct,
		DistinctProducts: quotation.DistinctProducts,
		CreatedAt:        quotation.CreatedAt.Format(timeFormat),
	}
	if quotation.Customer != nil {
		dto.CustomerName = quotation.Customer.Name
	}
	return dto
}
