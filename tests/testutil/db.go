package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/database"
	"github.com/tilemart/quotation-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to the test PostgreSQL database and migrates the
// schema. Integration tests are skipped when no database is reachable.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "quotation_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "quotation_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "quotation_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping integration test: database not available: %v", err)
	}
	if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		t.Skipf("Skipping integration test: database not reachable")
	}

	require.NoError(t, database.AutoMigrate(db))

	return db
}

// CleanupTestData cleans up test data from all tables
func CleanupTestData(t *testing.T, db *gorm.DB) {
	tables := []string{
		"line_items",
		"rooms",
		"quotations",
		"quotation_sequences",
		"counter_sequences",
		"catalog_entries",
		"customers",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error
		if err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestCustomer creates a customer without a code
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	customer := &domain.Customer{
		Name:  name,
		Email: "test@example.com",
		Phone: "12345678",
		City:  "Testville",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestCatalogEntry creates a catalog entry with the given pricing
// attributes. Surface may be empty, which stores NULL.
func CreateTestCatalogEntry(t *testing.T, db *gorm.DB, name, size, surface string, mrpPerArea, billedArea float64) *domain.CatalogEntry {
	entry := &domain.CatalogEntry{
		BaseModel:              domain.BaseModel{ID: uuid.New()},
		Name:                   name,
		Size:                   size,
		MRPPerArea:             mrpPerArea,
		ExFactoryPrice:         mrpPerArea * 0.6,
		GSTPercent:             18,
		InsurancePercent:       0.5,
		ActualAreaPerContainer: billedArea * 0.97,
		BilledAreaPerContainer: billedArea,
		Weight:                 30,
	}
	if surface != "" {
		entry.Surface = &surface
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
