package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tilemart/quotation-api/internal/pricing"
)

// Tree mutation errors
var (
	// ErrRoomNotFound is returned when a room id is not part of the quotation
	ErrRoomNotFound = errors.New("room not found in quotation")

	// ErrItemNotFound is returned when a line item id is not part of the quotation
	ErrItemNotFound = errors.New("line item not found in quotation")

	// ErrLastRoom is returned when removing the only remaining room
	ErrLastRoom = errors.New("cannot remove the last remaining room")
)

// MoveDirection indicates which adjacent sibling an item swaps with.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// The methods below own every mutation of the Quotation -> Room ->
// LineItem tree. Each one finishes with Recalculate, a full bottom-up
// fold over the current leaves; parent sums are never patched
// incrementally, so no edit path can leave totals drifting.

// AddItem appends a new line item priced from a catalog entry snapshot
// with quantity 1 at the end of the given room.
func (q *Quotation) AddItem(roomID uuid.UUID, entry *CatalogEntry, defaultDiscount float64, cfg pricing.Settings) (*LineItem, error) {
	room := q.findRoom(roomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	item := LineItem{
		BaseModel:       BaseModel{ID: uuid.New()},
		RoomID:          room.ID,
		SortOrder:       len(room.Items),
		SKU:             SnapshotOf(entry),
		Quantity:        1,
		DiscountPercent: clampPercent(defaultDiscount),
		AreaBasis:       q.AreaBasis,
	}
	priceItem(&item, cfg)
	room.Items = append(room.Items, item)

	q.Recalculate()
	return &room.Items[len(room.Items)-1], nil
}

// SetQuantity sets a whole container count, clamped to >= 1, and
// reprices the line under the currently active area basis. A direct
// quantity edit clears any stale area-needed input.
func (q *Quotation) SetQuantity(itemID uuid.UUID, qty int, cfg pricing.Settings) error {
	item := q.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.SKU.IsZero() {
		// Nothing to price without a catalog reference.
		return nil
	}
	if qty < 1 {
		qty = 1
	}
	item.Quantity = qty
	item.AreaNeeded = nil
	item.AreaBasis = q.AreaBasis
	priceItem(item, cfg)

	q.Recalculate()
	return nil
}

// SetAreaNeeded derives the container count from a desired coverage
// area using the ceiling rule, then proceeds as a quantity edit.
func (q *Quotation) SetAreaNeeded(itemID uuid.UUID, area float64, cfg pricing.Settings) error {
	item := q.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.SKU.IsZero() {
		return nil
	}

	qty := pricing.QuantityFromArea(area, item.SKU.PricingSKU().AreaPerContainer(q.AreaBasis))
	if qty < 1 {
		qty = 1
	}
	item.Quantity = qty
	item.AreaNeeded = &area
	item.AreaBasis = q.AreaBasis
	priceItem(item, cfg)

	q.Recalculate()
	return nil
}

// SetDiscount sets the customer-facing discount percent (clamped to
// 0-100) and reprices the line.
func (q *Quotation) SetDiscount(itemID uuid.UUID, pct float64, cfg pricing.Settings) error {
	item := q.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.SKU.IsZero() {
		return nil
	}
	item.DiscountPercent = clampPercent(pct)
	item.AreaBasis = q.AreaBasis
	priceItem(item, cfg)

	q.Recalculate()
	return nil
}

// RemoveItem deletes a line item and closes the sort-order gap.
func (q *Quotation) RemoveItem(itemID uuid.UUID) error {
	for r := range q.Rooms {
		room := &q.Rooms[r]
		for i := range room.Items {
			if room.Items[i].ID == itemID {
				room.Items = append(room.Items[:i], room.Items[i+1:]...)
				resequenceItems(room)
				q.Recalculate()
				return nil
			}
		}
	}
	return ErrItemNotFound
}

// AddRoom appends an empty named room.
func (q *Quotation) AddRoom(name string) *Room {
	room := Room{
		BaseModel:   BaseModel{ID: uuid.New()},
		QuotationID: q.ID,
		Name:        name,
		SortOrder:   len(q.Rooms),
	}
	q.Rooms = append(q.Rooms, room)
	q.Recalculate()
	return &q.Rooms[len(q.Rooms)-1]
}

// RemoveRoom deletes a room and its items. The last remaining room
// cannot be removed.
func (q *Quotation) RemoveRoom(roomID uuid.UUID) error {
	if len(q.Rooms) <= 1 {
		return ErrLastRoom
	}
	for i := range q.Rooms {
		if q.Rooms[i].ID == roomID {
			q.Rooms = append(q.Rooms[:i], q.Rooms[i+1:]...)
			for j := range q.Rooms {
				q.Rooms[j].SortOrder = j
			}
			q.Recalculate()
			return nil
		}
	}
	return ErrRoomNotFound
}

// RenameRoom changes a room's display name.
func (q *Quotation) RenameRoom(roomID uuid.UUID, name string) error {
	room := q.findRoom(roomID)
	if room == nil {
		return ErrRoomNotFound
	}
	room.Name = name
	return nil
}

// MoveItem swaps a line item with its adjacent sibling. Order-only:
// totals are untouched.
func (q *Quotation) MoveItem(itemID uuid.UUID, dir MoveDirection) error {
	for r := range q.Rooms {
		room := &q.Rooms[r]
		for i := range room.Items {
			if room.Items[i].ID != itemID {
				continue
			}
			j := i + 1
			if dir == MoveUp {
				j = i - 1
			}
			if j < 0 || j >= len(room.Items) {
				// Already at the edge, nothing to swap with.
				return nil
			}
			room.Items[i], room.Items[j] = room.Items[j], room.Items[i]
			resequenceItems(room)
			return nil
		}
	}
	return ErrItemNotFound
}

// MoveItemToRoom relocates a line item to the end of another room and
// re-derives both rooms' totals. Moving an item to the room it already
// occupies is a no-op.
func (q *Quotation) MoveItemToRoom(itemID, toRoomID uuid.UUID) error {
	target := q.findRoom(toRoomID)
	if target == nil {
		return ErrRoomNotFound
	}
	for r := range q.Rooms {
		room := &q.Rooms[r]
		for i := range room.Items {
			if room.Items[i].ID != itemID {
				continue
			}
			if room.ID == toRoomID {
				return nil
			}
			item := room.Items[i]
			room.Items = append(room.Items[:i], room.Items[i+1:]...)
			resequenceItems(room)

			// The slice header may have changed; re-resolve the target.
			target = q.findRoom(toRoomID)
			item.RoomID = target.ID
			item.SortOrder = len(target.Items)
			target.Items = append(target.Items, item)

			q.Recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// SetAreaBasis changes which area figure subsequent edits and new
// selections use. Existing lines keep the amounts they were priced
// with; the switch is deliberately not retroactive.
func (q *Quotation) SetAreaBasis(basis pricing.AreaBasis) {
	q.AreaBasis = basis
}

// Recalculate re-derives every total by folding over the current
// leaves. Idempotent: running it twice on an unchanged tree yields
// bit-identical results.
func (q *Quotation) Recalculate() {
	var amount, margin, weight float64
	var containers int
	products := make(map[uuid.UUID]struct{})

	for r := range q.Rooms {
		room := &q.Rooms[r]
		var roomTotal float64
		for i := range room.Items {
			item := &room.Items[i]
			roomTotal += item.Amount
			margin += item.MarginAmount
			containers += item.Quantity
			weight += item.SKU.Weight * float64(item.Quantity)
			if !item.SKU.IsZero() {
				products[item.SKU.CatalogEntryID] = struct{}{}
			}
		}
		room.Total = roomTotal
		amount += roomTotal
	}

	q.TotalAmount = amount
	q.TotalMarginAmount = margin
	q.TotalMarginPct = pricing.MarginPercent(margin, amount)
	q.TotalContainers = containers
	q.TotalWeight = weight
	q.DistinctProducts = len(products)
}

// RepriceAll recomputes every line's derived fields from its editable
// fields and snapshot, each under its own recorded area basis, then
// refolds the totals. Used when a full tree arrives from a client so
// persisted derived values can never disagree with the leaf inputs.
func (q *Quotation) RepriceAll(cfg pricing.Settings) {
	for r := range q.Rooms {
		for i := range q.Rooms[r].Items {
			priceItem(&q.Rooms[r].Items[i], cfg)
		}
	}
	q.Recalculate()
}

// Duplicate returns a detached copy: no persisted ids, no quotation
// number, draft status. Quantities are re-derived from area-needed
// inputs where present and all lines are repriced.
func (q *Quotation) Duplicate(cfg pricing.Settings) *Quotation {
	copied := &Quotation{
		Title:          q.Title,
		CustomerID:     q.CustomerID,
		Status:         QuotationStatusDraft,
		AreaBasis:      q.AreaBasis,
		VisibleColumns: append(pq.StringArray(nil), q.VisibleColumns...),
	}

	for _, room := range q.Rooms {
		newRoom := Room{
			BaseModel: BaseModel{ID: uuid.New()},
			Name:      room.Name,
			SortOrder: room.SortOrder,
		}
		for _, item := range room.Items {
			newItem := LineItem{
				BaseModel:       BaseModel{ID: uuid.New()},
				RoomID:          newRoom.ID,
				SortOrder:       item.SortOrder,
				SKU:             item.SKU,
				Quantity:        item.Quantity,
				DiscountPercent: item.DiscountPercent,
				AreaBasis:       item.AreaBasis,
			}
			if item.AreaNeeded != nil {
				area := *item.AreaNeeded
				newItem.AreaNeeded = &area
				qty := pricing.QuantityFromArea(area, item.SKU.PricingSKU().AreaPerContainer(item.AreaBasis))
				if qty < 1 {
					qty = 1
				}
				newItem.Quantity = qty
			}
			newRoom.Items = append(newRoom.Items, newItem)
		}
		copied.Rooms = append(copied.Rooms, newRoom)
	}

	copied.RepriceAll(cfg)
	return copied
}

func (q *Quotation) findRoom(roomID uuid.UUID) *Room {
	for i := range q.Rooms {
		if q.Rooms[i].ID == roomID {
			return &q.Rooms[i]
		}
	}
	return nil
}

func (q *Quotation) findItem(itemID uuid.UUID) *LineItem {
	for r := range q.Rooms {
		for i := range q.Rooms[r].Items {
			if q.Rooms[r].Items[i].ID == itemID {
				return &q.Rooms[r].Items[i]
			}
		}
	}
	return nil
}

// priceItem rewrites a line's derived fields. Lines without a snapshot
// keep zeros: there is nothing to price.
func priceItem(item *LineItem, cfg pricing.Settings) {
	if item.SKU.IsZero() {
		return
	}
	c := pricing.ComputeLine(item.SKU.PricingSKU(), item.Quantity, item.DiscountPercent, item.AreaBasis, cfg)
	item.RatePerArea = c.RatePerArea
	item.PricePerContainer = c.PricePerContainer
	item.Amount = c.Amount
	item.CostPerContainer = c.CostPerContainer
	item.TotalCost = c.TotalCost
	item.MarginAmount = c.MarginAmount
	item.MarginPercent = c.MarginPercent
}

func resequenceItems(room *Room) {
	for i := range room.Items {
		room.Items[i].SortOrder = i
	}
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
