package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/repository"
	"github.com/tilemart/quotation-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// catalogTable mirrors the catalog schema without postgres-only column
// defaults so the cascade can run against in-memory sqlite.
type catalogTable struct {
	ID                     uuid.UUID `gorm:"type:text;primaryKey"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Name                   string  `gorm:"not null;index"`
	Size                   string  `gorm:"not null;index"`
	Surface                *string
	ExFactoryPrice         float64 `gorm:"not null;default:0;column:ex_factory_price"`
	MRPPerArea             float64 `gorm:"not null;default:0;column:mrp_per_area"`
	MRPPerContainer        float64 `gorm:"not null;default:0;column:mrp_per_container"`
	GSTPercent             float64 `gorm:"not null;default:0;column:gst_percent"`
	InsurancePercent       float64 `gorm:"not null;default:0;column:insurance_percent"`
	ActualAreaPerContainer float64 `gorm:"not null;default:0;column:actual_area_per_container"`
	BilledAreaPerContainer float64 `gorm:"not null;default:0;column:billed_area_per_container"`
	Weight                 float64 `gorm:"not null;default:0"`
	Freight                float64 `gorm:"not null;default:0"`
	Archived               bool    `gorm:"not null;default:false;index"`
}

func (catalogTable) TableName() string {
	return "catalog_entries"
}

func newCatalogService(t *testing.T) (*service.CatalogService, *gorm.DB) {
	// A named in-memory database per test keeps the pool's connections
	// on the same store without sharing data across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogTable{}))

	return service.NewCatalogService(repository.NewCatalogRepository(db), zap.NewNop()), db
}

func seedEntry(t *testing.T, db *gorm.DB, name, size, surface string, archived bool) *domain.CatalogEntry {
	entry := &domain.CatalogEntry{
		BaseModel:              domain.BaseModel{ID: uuid.New()},
		Name:                   name,
		Size:                   size,
		MRPPerArea:             100,
		ExFactoryPrice:         60,
		GSTPercent:             18,
		ActualAreaPerContainer: 9.7,
		BilledAreaPerContainer: 10,
		Weight:                 30,
		Archived:               archived,
	}
	if surface != "" {
		entry.Surface = &surface
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestCatalogService_Names(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "800x800", "Gloss", false)
	seedEntry(t, db, "Wooden Plank", "200x1200", "", false)
	seedEntry(t, db, "Archived Tile", "600x600", "", true)

	names, err := svc.Names(ctx, "", 20)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "Glazed Tile", names[0].Name)
	assert.Equal(t, 2, names[0].Count)
	assert.Equal(t, "Wooden Plank", names[1].Name)

	filtered, err := svc.Names(ctx, "wood", 20)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Wooden Plank", filtered[0].Name)
}

func TestCatalogService_Surfaces_StandardGrouping(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "600x600", "", false)
	entry := seedEntry(t, db, "Glazed Tile", "600x600", "x", false)
	require.NoError(t, db.Model(&catalogTable{}).Where("id = ?", entry.ID).Update("surface", "").Error)

	surfaces, err := svc.Surfaces(ctx, "Glazed Tile", "600x600")
	require.NoError(t, err)
	require.Len(t, surfaces, 2)

	// Null and blank surfaces collapse into one Standard option.
	assert.Equal(t, "Matt", surfaces[0].Surface)
	assert.Equal(t, 1, surfaces[0].Count)
	assert.Equal(t, domain.SurfaceStandard, surfaces[1].Surface)
	assert.Equal(t, 2, surfaces[1].Count)
}

func TestCatalogService_Entries_StandardSelectsBlank(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	plain := seedEntry(t, db, "Glazed Tile", "600x600", "", false)

	entries, err := svc.Entries(ctx, "Glazed Tile", "600x600", domain.SurfaceStandard)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, plain.ID, entries[0].ID)
	assert.Equal(t, domain.SurfaceStandard, entries[0].Surface)

	matt, err := svc.Entries(ctx, "Glazed Tile", "600x600", "Matt")
	require.NoError(t, err)
	require.Len(t, matt, 1)
	assert.Equal(t, "Matt", matt[0].Surface)
}

func TestCatalogService_Resolve_StopsAtSize(t *testing.T) {
	svc, db := newCatalogService(t)

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "800x800", "Matt", false)

	res, err := svc.Resolve(context.Background(), "Glazed Tile", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageSize, res.Stage)
	assert.Len(t, res.Sizes, 2)
	assert.Nil(t, res.Entry)
}

func TestCatalogService_Resolve_AutoAdvancesSingleSize(t *testing.T) {
	svc, db := newCatalogService(t)

	// One size but two surfaces: the cascade should skip straight past
	// the size stage and stop at the surface choice.
	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "600x600", "Gloss", false)

	res, err := svc.Resolve(context.Background(), "Glazed Tile", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageSurface, res.Stage)
	assert.Equal(t, "600x600", res.Size)
	assert.Len(t, res.Surfaces, 2)
}

func TestCatalogService_Resolve_SingleEntry(t *testing.T) {
	svc, db := newCatalogService(t)

	entry := seedEntry(t, db, "Wooden Plank", "200x1200", "", false)

	res, err := svc.Resolve(context.Background(), "Wooden Plank", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageResolved, res.Stage)
	assert.Equal(t, "200x1200", res.Size)
	assert.Equal(t, domain.SurfaceStandard, res.Surface)
	require.NotNil(t, res.Entry)
	assert.Equal(t, entry.ID, res.Entry.ID)
}

func TestCatalogService_Resolve_MultipleEntriesSameFilter(t *testing.T) {
	svc, db := newCatalogService(t)

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)

	res, err := svc.Resolve(context.Background(), "Glazed Tile", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageEntry, res.Stage)
	assert.Len(t, res.Entries, 2)
	assert.Nil(t, res.Entry)
}

func TestCatalogService_Resolve_EmptyOutcome(t *testing.T) {
	svc, db := newCatalogService(t)

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)

	res, err := svc.Resolve(context.Background(), "No Such Product", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageEmpty, res.Stage)

	// A stale size filter is an empty outcome too, not an error.
	res, err = svc.Resolve(context.Background(), "Glazed Tile", "999x999", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageEmpty, res.Stage)
}

func TestCatalogService_Resolve_ArchivedExcluded(t *testing.T) {
	svc, db := newCatalogService(t)

	seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)
	seedEntry(t, db, "Glazed Tile", "800x800", "Matt", true)

	res, err := svc.Resolve(context.Background(), "Glazed Tile", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageResolved, res.Stage)
	assert.Equal(t, "600x600", res.Size)
}

func TestCatalogService_ArchiveEntry(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	entry := seedEntry(t, db, "Glazed Tile", "600x600", "Matt", false)

	require.NoError(t, svc.ArchiveEntry(ctx, entry.ID))

	// Archived entries stay readable by id for existing references.
	got, err := svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	err = svc.ArchiveEntry(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrCatalogEntryNotFound)
}

func TestCatalogService_GetEntry_NotFound(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.GetEntry(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrCatalogEntryNotFound)
}
