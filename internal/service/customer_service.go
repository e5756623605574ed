package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mta/internal/domain"
	"mta/internal/models"
	"mta/internal/nationalid"

	"github.com/rs/zerolog"
)

type CustomerService struct {
	repo   domain.CustomerRepository
	now    func() time.Time
	logger *zerolog.Logger
}

func NewCustomerService(repo domain.CustomerRepository, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		now:    time.Now,
		logger: componentLogger(logger, "customer_service"),
	}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.prepareCustomer(customer); err != nil {
		return err
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return err
	}
	s.logger.Info().Int64("customer_id", customer.ID).Msg("Customer created")
	return nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer != nil && customer.ID <= 0 {
		return domain.NewValidationError("id", "is required")
	}
	if err := s.prepareCustomer(customer); err != nil {
		return err
	}
	return s.repo.UpdateCustomer(ctx, customer)
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("customer_id", id).Msg("Customer deleted")
	return nil
}

// prepareCustomer trims and validates input and normalizes the national id
// to its 11 digits.
func (s *CustomerService) prepareCustomer(c *models.Customer) error {
	if c == nil {
		return domain.NewValidationError("", "customer is required")
	}
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)

	if err := validateStruct(c); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	if !nationalid.IsValid(c.NationalID) {
		return fmt.Errorf("national id %q: %w", c.NationalID, domain.ErrInvalidIdentifier)
	}
	c.NationalID = nationalid.Normalize(c.NationalID)

	if c.BirthDate != nil {
		birth := models.DateOnly(*c.BirthDate)
		today := models.DateOnly(s.now())
		if birth.After(today) {
			return domain.NewValidationError("birth_date", "must not be in the future")
		}
		if today.Before(birth.AddDate(models.MinCustomerAge, 0, 0)) {
			return domain.NewValidationError("birth_date", fmt.Sprintf("customer must be at least %d", models.MinCustomerAge))
		}
		c.BirthDate = &birth
	}
	return nil
}
