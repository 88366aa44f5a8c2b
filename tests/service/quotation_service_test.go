package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/repository"
	"github.com/tilemart/quotation-api/internal/service"
	"github.com/tilemart/quotation-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testPricingConfig() *config.PricingConfig {
	return &config.PricingConfig{
		CompanyDiscountPercent: 5,
		FreightPerArea:         2,
		DefaultAreaBasis:       "billed",
		ValidityDays:           30,
	}
}

func newQuotationService(db *gorm.DB) *service.QuotationService {
	logger := zap.NewNop()
	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewCustomerRepository(db),
		service.NewCatalogService(repository.NewCatalogRepository(db), logger),
		service.NewSequenceService(
			repository.NewSequenceRepository(db),
			repository.NewCustomerRepository(db),
			logger,
		),
		testPricingConfig(),
		logger,
	)
}

func TestQuotationService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	entry := testutil.CreateTestCatalogEntry(t, db, "Glazed Tile", "600x600", "Matt", 100, 10)

	dto, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Ground floor",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{
				Name: "Living Room",
				Items: []domain.LineItemInput{
					{CatalogEntryID: entry.ID, Quantity: 2, DiscountPercent: 10},
				},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "#QT0101A", dto.Number)
	assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
	assert.NotNil(t, dto.ValidUntil)
	require.Len(t, dto.Rooms, 1)
	require.Len(t, dto.Rooms[0].Items, 1)

	// billed basis by default: rate 90 over 10 billed area, 2 containers
	item := dto.Rooms[0].Items[0]
	assert.InDelta(t, 90.0, item.RatePerArea, 1e-6)
	assert.InDelta(t, 1800.0, item.Amount, 1e-6)
	assert.InDelta(t, 1800.0, dto.TotalAmount, 1e-6)
	assert.InDelta(t, dto.Rooms[0].Total, dto.TotalAmount, 1e-6)
	assert.Equal(t, 2, dto.TotalContainers)
	assert.Equal(t, 1, dto.DistinctProducts)

	second, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "First floor",
		CustomerID: customer.ID,
		Rooms:      []domain.RoomInput{{Name: "Bedroom"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "#QT0101B", second.Number)
}

func TestQuotationService_Create_UnknownCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)

	_, err := svc.Create(context.Background(), &domain.SaveQuotationRequest{
		Title:      "Orphan",
		CustomerID: testutil.CreateTestCustomer(t, db, "Someone Else").ID,
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &domain.SaveQuotationRequest{
		Title:      "Orphan",
		CustomerID: uuid.New(),
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestQuotationService_Update_PreservesIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	entry := testutil.CreateTestCatalogEntry(t, db, "Glazed Tile", "600x600", "Matt", 100, 10)

	created, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Original",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{Name: "Living Room", Items: []domain.LineItemInput{{CatalogEntryID: entry.ID, Quantity: 1}}},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &domain.SaveQuotationRequest{
		Title:      "Renamed",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{Name: "Living Room", Items: []domain.LineItemInput{{CatalogEntryID: entry.ID, Quantity: 3}}},
			{Name: "Kitchen"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.ValidUntil, updated.ValidUntil)
	assert.Equal(t, "Renamed", updated.Title)
	require.Len(t, updated.Rooms, 2)
	assert.Equal(t, 3, updated.TotalContainers)
}

func TestQuotationService_Update_AreaNeededWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	entry := testutil.CreateTestCatalogEntry(t, db, "Glazed Tile", "600x600", "Matt", 100, 10)

	area := 45.0
	dto, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Coverage",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{Name: "Hall", Items: []domain.LineItemInput{
				{CatalogEntryID: entry.ID, Quantity: 99, AreaNeeded: &area},
			}},
		},
	})
	require.NoError(t, err)

	// 45 over 10 billed area rounds up to 5; the authored quantity loses.
	require.Len(t, dto.Rooms[0].Items, 1)
	assert.Equal(t, 5, dto.Rooms[0].Items[0].Quantity)
	require.NotNil(t, dto.Rooms[0].Items[0].AreaNeeded)
	assert.Equal(t, 45.0, *dto.Rooms[0].Items[0].AreaNeeded)
}

func TestQuotationService_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	entry := testutil.CreateTestCatalogEntry(t, db, "Glazed Tile", "600x600", "Matt", 100, 10)

	source, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Source",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{Name: "Living Room", Items: []domain.LineItemInput{{CatalogEntryID: entry.ID, Quantity: 2, DiscountPercent: 10}}},
		},
	})
	require.NoError(t, err)

	copied, err := svc.Duplicate(ctx, source.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, copied.ID)
	assert.NotEqual(t, source.Number, copied.Number)
	assert.Equal(t, "#QT0101B", copied.Number)
	assert.Equal(t, domain.QuotationStatusDraft, copied.Status)
	assert.InDelta(t, source.TotalAmount, copied.TotalAmount, 1e-6)
	require.Len(t, copied.Rooms, 1)
	assert.NotEqual(t, source.Rooms[0].ID, copied.Rooms[0].ID)
}

func TestQuotationService_Recalculate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	entry := testutil.CreateTestCatalogEntry(t, db, "Glazed Tile", "600x600", "Matt", 123.45, 11.3)

	created, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Stable",
		CustomerID: customer.ID,
		Rooms: []domain.RoomInput{
			{Name: "Hall", Items: []domain.LineItemInput{{CatalogEntryID: entry.ID, Quantity: 3, DiscountPercent: 7.5}}},
		},
	})
	require.NoError(t, err)

	first, err := svc.Recalculate(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.Recalculate(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first.TotalAmount, second.TotalAmount)
	assert.Equal(t, first.TotalMarginAmount, second.TotalMarginAmount)
	assert.Equal(t, first.TotalMarginPct, second.TotalMarginPct)
	assert.Equal(t, first.TotalWeight, second.TotalWeight)
}

func TestQuotationService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")

	created, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Short lived",
		CustomerID: customer.ID,
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)

	// The freed number is never handed out again.
	next, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Successor",
		CustomerID: customer.ID,
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "#QT0101B", next.Number)
}

func TestQuotationService_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")
	created, err := svc.Create(ctx, &domain.SaveQuotationRequest{
		Title:      "Lifecycle",
		CustomerID: customer.ID,
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	require.NoError(t, err)

	sent, err := svc.SetStatus(ctx, created.ID, domain.QuotationStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, sent.Status)
	assert.Equal(t, created.Number, sent.Number)

	_, err = svc.SetStatus(ctx, created.ID, "approved")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.SetStatus(ctx, uuid.New(), domain.QuotationStatusSent)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)
}

func TestQuotationService_Create_InvalidBasis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)

	svc := newQuotationService(db)
	customer := testutil.CreateTestCustomer(t, db, "Acme Flooring")

	_, err := svc.Create(context.Background(), &domain.SaveQuotationRequest{
		Title:      "Broken",
		CustomerID: customer.ID,
		AreaBasis:  "carpet",
		Rooms:      []domain.RoomInput{{Name: "Hall"}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
