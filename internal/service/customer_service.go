package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tilemart/quotation-api/internal/domain"
	"github.com/tilemart/quotation-api/internal/mapper"
	"github.com/tilemart/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// CustomerService handles customer management. The 4-digit customer
// code is not assigned here; it is allocated lazily by the sequence
// service when the customer's first quotation is numbered.
type CustomerService struct {
	customers *repository.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		logger:    logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	customer := &domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		s.logger.Error("failed to create customer", zap.Error(err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Get returns a customer by id
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// List returns a paginated customer listing
func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) ([]domain.CustomerDTO, int64, error) {
	customers, total, err := s.customers.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, mapper.ToCustomerDTO(&customers[i]))
	}
	return dtos, total, nil
}
