package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/mapper"
	"github.com/tilemart/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService owns catalog management and the three-stage selection
// cascade (name -> size -> surface -> entry). A filter combination that
// matches nothing is a valid empty outcome; only a store failure is an
// error, and it surfaces as ErrCatalogUnavailable so callers can retry
// instead of treating the catalog as empty.
type CatalogService struct {
	catalog *repository.CatalogRepository
	logger  *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(catalog *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
	}
}

// CreateEntry creates a new catalog entry. Missing numeric attributes
// default to zero; the pricing engine treats zero attributes as
// zero-valued results, never as errors.
func (s *CatalogService) CreateEntry(ctx context.Context, req *domain.CreateCatalogEntryRequest) (*domain.CatalogEntryDTO, error) {
	surface := req.Surface
	if surface != nil && *surface == "" {
		surface = nil
	}

	entry := &domain.CatalogEntry{
		Name:                   req.Name,
		Size:                   req.Size,
		Surface:                surface,
		ExFactoryPrice:         deref(req.ExFactoryPrice),
		MRPPerArea:             deref(req.MRPPerArea),
		MRPPerContainer:        deref(req.MRPPerContainer),
		GSTPercent:             deref(req.GSTPercent),
		InsurancePercent:       deref(req.InsurancePercent),
		ActualAreaPerContainer: deref(req.ActualAreaPerContainer),
		BilledAreaPerContainer: deref(req.BilledAreaPerContainer),
		Weight:                 deref(req.Weight),
		Freight:                deref(req.Freight),
	}

	if err := s.catalog.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create catalog entry", zap.Error(err))
		return nil, fmt.Errorf("failed to create catalog entry: %w", err)
	}

	dto := mapper.ToCatalogEntryDTO(entry)
	return &dto, nil
}

// GetEntry returns a single catalog entry by id.
func (s *CatalogService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.CatalogEntry, error) {
	entry, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return entry, nil
}

// ArchiveEntry hides an entry from the cascade without touching the
// quotations that snapshot it.
func (s *CatalogService) ArchiveEntry(ctx context.Context, id uuid.UUID) error {
	if err := s.catalog.Archive(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCatalogEntryNotFound
		}
		return fmt.Errorf("failed to archive catalog entry: %w", err)
	}
	s.logger.Info("archived catalog entry", zap.String("entryID", id.String()))
	return nil
}

// ListEntries returns a paginated catalog listing.
func (s *CatalogService) ListEntries(ctx context.Context, page, pageSize int, search string, includeArchived bool) ([]domain.CatalogEntryDTO, int64, error) {
	entries, total, err := s.catalog.List(ctx, page, pageSize, search, includeArchived)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	dtos := make([]domain.CatalogEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToCatalogEntryDTO(&entries[i]))
	}
	return dtos, total, nil
}

// Names returns distinct active product names matching the search
// text. This is the entry point of the cascade.
func (s *CatalogService) Names(ctx context.Context, search string, limit int) ([]domain.NameOption, error) {
	names, err := s.catalog.SearchNames(ctx, search, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return names, nil
}

// Sizes returns the distinct sizes for a product name.
func (s *CatalogService) Sizes(ctx context.Context, name string) ([]domain.SizeOption, error) {
	sizes, err := s.catalog.ListSizes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return sizes, nil
}

// Surfaces returns the distinct surfaces for a name and size, with
// null/blank surfaces grouped under the Standard label.
func (s *CatalogService) Surfaces(ctx context.Context, name, size string) ([]domain.SurfaceOption, error) {
	surfaces, err := s.catalog.ListSurfaces(ctx, name, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return surfaces, nil
}

// Entries returns the concrete entries under a full filter.
func (s *CatalogService) Entries(ctx context.Context, name, size, surface string) ([]domain.CatalogEntryDTO, error) {
	entries, err := s.catalog.ListEntries(ctx, name, size, surface)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	dtos := make([]domain.CatalogEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToCatalogEntryDTO(&entries[i]))
	}
	return dtos, nil
}

// Resolve walks the cascade for the given filters, auto-advancing
// through every stage that offers exactly one option. It stops at the
// first stage needing a choice, at a resolved single entry, or at an
// empty result set.
func (s *CatalogService) Resolve(ctx context.Context, name, size, surface string) (*domain.ResolutionDTO, error) {
	res := &domain.ResolutionDTO{Name: name}

	sizes, err := s.Sizes(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		res.Stage = domain.StageEmpty
		return res, nil
	}
	if size == "" {
		if len(sizes) > 1 {
			res.Stage = domain.StageSize
			res.Sizes = sizes
			return res, nil
		}
		size = sizes[0].Size
	}
	res.Size = size

	surfaces, err := s.Surfaces(ctx, name, size)
	if err != nil {
		return nil, err
	}
	if len(surfaces) == 0 {
		res.Stage = domain.StageEmpty
		return res, nil
	}
	if surface == "" {
		if len(surfaces) > 1 {
			res.Stage = domain.StageSurface
			res.Surfaces = surfaces
			return res, nil
		}
		surface = surfaces[0].Surface
	}
	res.Surface = surface

	entries, err := s.Entries(ctx, name, size, surface)
	if err != nil {
		return nil, err
	}
	switch len(entries) {
	case 0:
		res.Stage = domain.StageEmpty
	case 1:
		res.Stage = domain.StageResolved
		res.Entry = &entries[0]
	default:
		res.Stage = domain.StageEntry
		res.Entries = entries
	}
	return res, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
