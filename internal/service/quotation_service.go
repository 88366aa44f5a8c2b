package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/mapper"
	"github.com/tilemart/quotation-api/internal/pricing"
	"github.com/tilemart/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// numberAllocationRetries bounds the create loop when an allocated
// number collides with a concurrently inserted quotation.
const numberAllocationRetries = 5

// QuotationService is the write surface for quotations. Inbound trees
// carry only editable fields; every derived figure is recomputed here
// before anything is persisted, so stored totals can never disagree
// with the leaves.
type QuotationService struct {
	quotations *repository.QuotationRepository
	customers  *repository.CustomerRepository
	catalog    *CatalogService
	sequences  *SequenceService
	pricingCfg *config.PricingConfig
	logger     *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotations *repository.QuotationRepository,
	customers *repository.CustomerRepository,
	catalog *CatalogService,
	sequences *SequenceService,
	pricingCfg *config.PricingConfig,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotations: quotations,
		customers:  customers,
		catalog:    catalog,
		sequences:  sequences,
		pricingCfg: pricingCfg,
		logger:     logger,
	}
}

// Create numbers and persists a new quotation. The number is allocated
// from the customer's sequence inside the create attempt; if the insert
// hits the unique constraint on number, the whole attempt retries with
// a freshly allocated number.
func (s *QuotationService) Create(ctx context.Context, req *domain.SaveQuotationRequest) (*domain.QuotationDTO, error) {
	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	quotation, err := s.buildQuotation(ctx, req)
	if err != nil {
		return nil, err
	}
	quotation.Status = domain.QuotationStatusDraft
	validUntil := time.Now().UTC().AddDate(0, 0, s.pricingCfg.ValidityDays)
	quotation.ValidUntil = &validUntil

	backoff := retry.WithMaxRetries(numberAllocationRetries, retry.NewFibonacci(20*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		number, err := s.sequences.NextNumber(ctx, customer)
		if err != nil {
			return err
		}
		quotation.Number = number

		if err := s.quotations.Create(ctx, quotation); err != nil {
			if isDuplicateKey(err) {
				s.logger.Warn("quotation number collision, retrying",
					zap.String("number", number))
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %v", ErrNumberExhausted, err)
		}
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logger.Info("created quotation",
		zap.String("quotationID", quotation.ID.String()),
		zap.String("number", quotation.Number),
		zap.String("customerID", customer.ID.String()))

	return s.Get(ctx, quotation.ID)
}

// Get returns the fully materialized quotation tree.
func (s *QuotationService) Get(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// List returns a paginated quotation listing without trees.
func (s *QuotationService) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status *domain.QuotationStatus, search string) ([]domain.QuotationSummaryDTO, int64, error) {
	quotations, total, err := s.quotations.List(ctx, page, pageSize, customerID, status, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}

	dtos := make([]domain.QuotationSummaryDTO, 0, len(quotations))
	for i := range quotations {
		dtos = append(dtos, mapper.ToQuotationSummaryDTO(&quotations[i]))
	}
	return dtos, total, nil
}

// Update replaces the persisted tree with the authored one. The number,
// status and validity window survive; all derived fields are recomputed
// from the incoming editable fields before the single-transaction save.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.SaveQuotationRequest) (*domain.QuotationDTO, error) {
	existing, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	if req.CustomerID != existing.CustomerID {
		if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
			if isNotFound(err) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
	}

	quotation, err := s.buildQuotation(ctx, req)
	if err != nil {
		return nil, err
	}
	quotation.ID = existing.ID
	quotation.CreatedAt = existing.CreatedAt
	quotation.Number = existing.Number
	quotation.Status = existing.Status
	quotation.ValidUntil = existing.ValidUntil
	for i := range quotation.Rooms {
		quotation.Rooms[i].QuotationID = existing.ID
	}

	if err := s.quotations.SaveTree(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a quotation and its tree. The allocated number is
// never reused.
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quotations.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrQuotationNotFound
		}
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	s.logger.Info("deleted quotation", zap.String("quotationID", id.String()))
	return nil
}

// Duplicate creates an independent copy of a quotation under a freshly
// allocated number with draft status.
func (s *QuotationService) Duplicate(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	source, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	customer, err := s.customers.GetByID(ctx, source.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	copied := source.Duplicate(s.pricingCfg.Settings())
	validUntil := time.Now().UTC().AddDate(0, 0, s.pricingCfg.ValidityDays)
	copied.ValidUntil = &validUntil

	backoff := retry.WithMaxRetries(numberAllocationRetries, retry.NewFibonacci(20*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		number, err := s.sequences.NextNumber(ctx, customer)
		if err != nil {
			return err
		}
		copied.Number = number

		if err := s.quotations.Create(ctx, copied); err != nil {
			if isDuplicateKey(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate quotation: %w", err)
	}

	s.logger.Info("duplicated quotation",
		zap.String("sourceID", id.String()),
		zap.String("quotationID", copied.ID.String()),
		zap.String("number", copied.Number))

	return s.Get(ctx, copied.ID)
}

// Recalculate reprices every line from its snapshot and editable fields
// and persists the refolded totals. Running it on an unchanged tree is
// a no-op by value.
func (s *QuotationService) Recalculate(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	quotation.RepriceAll(s.pricingCfg.Settings())

	if err := s.quotations.SaveTree(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}

	return s.Get(ctx, id)
}

// SetStatus moves a quotation through its lifecycle. Any transition
// between the known states is allowed; expiry by sweep is just a status
// flip too, so a manual correction can always undo it.
func (s *QuotationService) SetStatus(ctx context.Context, id uuid.UUID, status domain.QuotationStatus) (*domain.QuotationDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	if err := s.quotations.SetStatus(ctx, id, status); err != nil {
		if isNotFound(err) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("updated quotation status",
		zap.String("quotationID", id.String()),
		zap.String("status", string(status)))

	return s.Get(ctx, id)
}

// ExpireOverdue marks every quotation past its validity date expired.
func (s *QuotationService) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.quotations.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotations: %w", err)
	}
	if expired > 0 {
		s.logger.Info("expired quotations", zap.Int64("count", expired))
	}
	return expired, nil
}

// buildQuotation assembles a priced tree from an authored request.
// Every line is re-snapshotted from the current catalog and every
// derived field recomputed; nothing numeric from the client survives.
func (s *QuotationService) buildQuotation(ctx context.Context, req *domain.SaveQuotationRequest) (*domain.Quotation, error) {
	basis := req.AreaBasis
	if basis == "" {
		basis = pricing.AreaBasis(s.pricingCfg.DefaultAreaBasis)
	}
	if !basis.IsValid() {
		return nil, fmt.Errorf("%w: unknown area basis %q", ErrInvalidInput, basis)
	}

	quotation := &domain.Quotation{
		Title:          req.Title,
		CustomerID:     req.CustomerID,
		AreaBasis:      basis,
		VisibleColumns: req.VisibleColumns,
	}

	for roomIdx, roomInput := range req.Rooms {
		room := domain.Room{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			Name:      roomInput.Name,
			SortOrder: roomIdx,
		}
		for itemIdx, itemInput := range roomInput.Items {
			entry, err := s.catalog.GetEntry(ctx, itemInput.CatalogEntryID)
			if err != nil {
				return nil, err
			}

			itemBasis := itemInput.AreaBasis
			if itemBasis == "" {
				itemBasis = basis
			}

			item := domain.LineItem{
				BaseModel:       domain.BaseModel{ID: uuid.New()},
				RoomID:          room.ID,
				SortOrder:       itemIdx,
				SKU:             domain.SnapshotOf(entry),
				Quantity:        itemInput.Quantity,
				DiscountPercent: itemInput.DiscountPercent,
				AreaBasis:       itemBasis,
			}
			if itemInput.AreaNeeded != nil {
				area := *itemInput.AreaNeeded
				item.AreaNeeded = &area
				item.Quantity = pricing.QuantityFromArea(area, item.SKU.PricingSKU().AreaPerContainer(itemBasis))
			}
			if item.Quantity < 1 {
				item.Quantity = 1
			}
			room.Items = append(room.Items, item)
		}
		quotation.Rooms = append(quotation.Rooms, room)
	}

	quotation.RepriceAll(s.pricingCfg.Settings())
	return quotation, nil
}

// isDuplicateKey reports whether an insert failed on a unique
// constraint. Matched textually as well since the postgres and sqlite
// drivers surface it differently.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
