package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/tilemart/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creationRaceRetries bounds the re-attempts when two first-time
// allocations race to create the same counter row.
const creationRaceRetries = 3

// SequenceRepository owns the two counters behind quotation numbering:
// the global customer-code counter and the per-customer suffix counter.
// Both are incremented under SELECT FOR UPDATE so concurrent allocations
// can never observe the same value. Counters only move forward; values
// are never derived by counting existing rows.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextCounter atomically increments and returns the named counter. A
// missing counter row is created holding start, and start is returned.
//
// FOR UPDATE cannot lock a row that does not exist yet, so two
// first-time allocations may both take the create branch. The loser's
// insert hits the primary key and the whole attempt is retried; on the
// retry the row exists and the locked increment path applies.
func (r *SequenceRepository) NextCounter(ctx context.Context, name string, start int) (int, error) {
	var nextVal int

	backoff := retry.WithMaxRetries(creationRaceRetries, retry.NewConstant(5*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		val, err := r.nextCounterOnce(ctx, name, start)
		if err != nil {
			if isUniqueViolation(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		nextVal = val
		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextVal, nil
}

func (r *SequenceRepository) nextCounterOnce(ctx context.Context, name string, start int) (int, error) {
	var seq domain.CounterSequence
	var nextVal int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.CounterSequence{
				Name:      name,
				LastValue: start,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create counter sequence: %w", err)
			}
			nextVal = start
		} else if result.Error != nil {
			return fmt.Errorf("failed to get counter sequence: %w", result.Error)
		} else {
			nextVal = seq.LastValue + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_value": nextVal,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update counter sequence: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextVal, nil
}

// NextQuotationSequence atomically increments and returns the suffix
// counter for a customer. The first quotation for a customer gets 1.
// The same creation race as NextCounter applies to a customer's very
// first allocation and is retried the same way.
func (r *SequenceRepository) NextQuotationSequence(ctx context.Context, customerID uuid.UUID) (int, error) {
	var nextSeq int

	backoff := retry.WithMaxRetries(creationRaceRetries, retry.NewConstant(5*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		seq, err := r.nextQuotationSequenceOnce(ctx, customerID)
		if err != nil {
			if isUniqueViolation(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		nextSeq = seq
		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

func (r *SequenceRepository) nextQuotationSequenceOnce(ctx context.Context, customerID uuid.UUID) (int, error) {
	var seq domain.QuotationSequence
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("customer_id = ?", customerID).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.QuotationSequence{
				CustomerID:   customerID,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create quotation sequence: %w", err)
			}
			nextSeq = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get quotation sequence: %w", result.Error)
		} else {
			nextSeq = seq.LastSequence + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": nextSeq,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update quotation sequence: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentSequence retrieves the current suffix counter without
// incrementing. Returns 0 if the customer has no quotations yet.
func (r *SequenceRepository) GetCurrentSequence(ctx context.Context, customerID uuid.UUID) (int, error) {
	var seq domain.QuotationSequence
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get quotation sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// isUniqueViolation reports whether an insert lost a creation race on a
// unique or primary key. Matched textually as well since the postgres
// and sqlite drivers surface it differently.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
