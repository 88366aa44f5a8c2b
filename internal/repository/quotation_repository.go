package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"gorm.io/gorm"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Create persists a new quotation together with its rooms and items in
// a single transaction.
func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Omit("Customer").Create(quotation).Error
}

// SaveTree replaces the persisted tree with the given one atomically.
// Existing rooms and items are dropped and the incoming tree inserted
// in the same transaction, so readers never observe a half-written
// quotation.
func (r *QuotationRepository) SaveTree(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roomIDs := tx.Model(&domain.Room{}).Select("id").Where("quotation_id = ?", quotation.ID)
		if err := tx.Where("room_id IN (?)", roomIDs).Delete(&domain.LineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&domain.Room{}).Error; err != nil {
			return err
		}

		if err := tx.Omit("Customer", "Rooms").Save(quotation).Error; err != nil {
			return err
		}

		for i := range quotation.Rooms {
			quotation.Rooms[i].QuotationID = quotation.ID
		}
		if len(quotation.Rooms) > 0 {
			if err := tx.Create(&quotation.Rooms).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Rooms.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roomIDs := tx.Model(&domain.Room{}).Select("id").Where("quotation_id = ?", id)
		if err := tx.Where("room_id IN (?)", roomIDs).Delete(&domain.LineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quotation_id = ?", id).Delete(&domain.Room{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Quotation{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status *domain.QuotationStatus, search string) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).Preload("Customer")

	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(number) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

// SetStatus updates only the lifecycle status of a quotation.
func (r *QuotationRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.QuotationStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkExpired flips every quotation past its validity date to expired
// and returns how many rows changed.
func (r *QuotationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("status <> ?", domain.QuotationStatusExpired).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Update("status", domain.QuotationStatusExpired)
	return result.RowsAffected, result.Error
}
