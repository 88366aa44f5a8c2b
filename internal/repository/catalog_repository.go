package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(ctx context.Context, entry *domain.CatalogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CatalogRepository) Archive(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&domain.CatalogEntry{}).
		Where("id = ?", id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CatalogRepository) List(ctx context.Context, page, pageSize int, search string, includeArchived bool) ([]domain.CatalogEntry, int64, error) {
	var entries []domain.CatalogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.CatalogEntry{})

	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(size) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC, size ASC").Find(&entries).Error

	return entries, total, err
}

// SearchNames returns distinct active product names matching the search
// text, with the number of entries under each.
func (r *CatalogRepository) SearchNames(ctx context.Context, search string, limit int) ([]domain.NameOption, error) {
	var names []domain.NameOption
	query := r.db.WithContext(ctx).Model(&domain.CatalogEntry{}).
		Select("name, COUNT(*) AS count").
		Where("archived = ?", false)
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := query.Group("name").Order("name ASC").Limit(limit).Scan(&names).Error
	return names, err
}

// ListSizes returns the distinct sizes available for a product name.
func (r *CatalogRepository) ListSizes(ctx context.Context, name string) ([]domain.SizeOption, error) {
	var sizes []domain.SizeOption
	err := r.db.WithContext(ctx).Model(&domain.CatalogEntry{}).
		Select("size, COUNT(*) AS count").
		Where("archived = ? AND name = ?", false, name).
		Group("size").
		Order("size ASC").
		Scan(&sizes).Error
	return sizes, err
}

// ListSurfaces returns the distinct surfaces for a name and size. Rows
// with a null or blank surface are grouped under the Standard label.
func (r *CatalogRepository) ListSurfaces(ctx context.Context, name, size string) ([]domain.SurfaceOption, error) {
	var surfaces []domain.SurfaceOption
	err := r.db.WithContext(ctx).Model(&domain.CatalogEntry{}).
		Select("COALESCE(NULLIF(surface, ''), ?) AS surface, COUNT(*) AS count", domain.SurfaceStandard).
		Where("archived = ? AND name = ? AND size = ?", false, name, size).
		Group("COALESCE(NULLIF(surface, ''), '" + domain.SurfaceStandard + "')").
		Order("surface ASC").
		Scan(&surfaces).Error
	return surfaces, err
}

// ListEntries returns the concrete entries for a fully specified filter.
// The Standard surface label selects rows whose surface is null or
// blank; it is never matched as literal text.
func (r *CatalogRepository) ListEntries(ctx context.Context, name, size, surface string) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	query := r.db.WithContext(ctx).
		Where("archived = ? AND name = ? AND size = ?", false, name, size)
	if surface == domain.SurfaceStandard {
		query = query.Where("surface IS NULL OR surface = ''")
	} else {
		query = query.Where("surface = ?", surface)
	}
	err := query.Order("created_at ASC").Find(&entries).Error
	return entries, err
}
