package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrCatalogEntryNotFound is returned when a referenced catalog entry does not exist
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")

	// ErrCatalogUnavailable is returned when the catalog store cannot be
	// reached. Callers should surface it as retryable, never as an empty
	// result.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrCustomerNotFound is returned when a customer is not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrQuotationNotFound is returned when a quotation is not found
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrNumberExhausted is returned when the quotation number space for
	// a customer could not yield a free number
	ErrNumberExhausted = errors.New("could not allocate a unique quotation number")
)
