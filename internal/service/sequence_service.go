package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// Quotation numbers follow "#QT" + 4-digit customer code + letter
// suffix, e.g. "#QT0101A". The code identifies the customer, the suffix
// counts that customer's quotations. Both come from database counters
// incremented under row locks; neither is ever derived by counting
// existing rows, so deletions can never free a number for reuse.
const (
	numberPrefix = "#QT"

	// customerCodeSeed makes the first allocated code 0101.
	customerCodeSeed = 101

	customerCodeCounter = "customer_code"
)

// SequenceService allocates customer codes and quotation numbers.
type SequenceService struct {
	sequences *repository.SequenceRepository
	customers *repository.CustomerRepository
	logger    *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(
	sequences *repository.SequenceRepository,
	customers *repository.CustomerRepository,
	logger *zap.Logger,
) *SequenceService {
	return &SequenceService{
		sequences: sequences,
		customers: customers,
		logger:    logger,
	}
}

// EnsureCustomerCode returns the customer's 4-digit code, allocating
// and persisting one on first use. Codes are permanent once assigned.
func (s *SequenceService) EnsureCustomerCode(ctx context.Context, customer *domain.Customer) (string, error) {
	if customer.Code != nil && *customer.Code != "" {
		return *customer.Code, nil
	}

	next, err := s.sequences.NextCounter(ctx, customerCodeCounter, customerCodeSeed)
	if err != nil {
		return "", fmt.Errorf("failed to allocate customer code: %w", err)
	}

	code := FormatCustomerCode(next)
	if err := s.customers.SetCode(ctx, customer.ID, code); err != nil {
		return "", fmt.Errorf("failed to persist customer code: %w", err)
	}
	customer.Code = &code

	s.logger.Info("allocated customer code",
		zap.String("customerID", customer.ID.String()),
		zap.String("code", code))

	return code, nil
}

// NextNumber allocates the next quotation number for a customer.
// Format: #QT{code}{suffix}, e.g. "#QT0101A", "#QT0101B", ... "#QT0101AA".
func (s *SequenceService) NextNumber(ctx context.Context, customer *domain.Customer) (string, error) {
	code, err := s.EnsureCustomerCode(ctx, customer)
	if err != nil {
		return "", err
	}

	seq, err := s.sequences.NextQuotationSequence(ctx, customer.ID)
	if err != nil {
		return "", fmt.Errorf("failed to allocate quotation sequence: %w", err)
	}

	number := numberPrefix + code + SuffixLetters(seq)

	s.logger.Info("allocated quotation number",
		zap.String("customerID", customer.ID.String()),
		zap.Int("sequence", seq),
		zap.String("number", number))

	return number, nil
}

// GetCurrentSequence returns the customer's last used suffix counter
// without incrementing it.
func (s *SequenceService) GetCurrentSequence(ctx context.Context, customerID uuid.UUID) (int, error) {
	return s.sequences.GetCurrentSequence(ctx, customerID)
}

// FormatCustomerCode renders a counter value as a customer code. Codes
// are zero-padded to four digits and grow naturally past 9999; the
// column is wide enough for the extra digits.
func FormatCustomerCode(n int) string {
	return fmt.Sprintf("%04d", n)
}

// SuffixLetters converts a 1-based sequence into spreadsheet-style
// letters: 1 -> A, 26 -> Z, 27 -> AA, 28 -> AB.
func SuffixLetters(seq int) string {
	if seq < 1 {
		return ""
	}
	var buf []byte
	for seq > 0 {
		seq--
		buf = append([]byte{byte('A' + seq%26)}, buf...)
		seq /= 26
	}
	return string(buf)
}
