package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// Authorizer is satisfied by *auth.Guard.
type Authorizer interface {
	Authorize(ctx context.Context, subject uuid.UUID, res auth.OwnedResource) (auth.Decision, error)
}

// DriverService manages driver profiles. Every mutation goes through the guard.
type DriverService struct {
	store storage.DriverStore
	guard Authorizer
}

func NewDriverService(store storage.DriverStore, guard Authorizer) *DriverService {
	return &DriverService{store: store, guard: guard}
}

// Create registers a driver profile owned by subject.
func (s *DriverService) Create(ctx context.Context, subject uuid.UUID, req dto.CreateDriverRequest) (models.DriverProfile, error) {
	driver := models.DriverProfile{
		ID:            uuid.New(),
		AccountID:     uuid.NullUUID{UUID: subject, Valid: true},
		DisplayName:   strings.TrimSpace(req.DisplayName),
		Phone:         strings.TrimSpace(req.Phone),
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
	}
	created, err := s.store.CreateDriver(ctx, driver)
	if err != nil {
		return models.DriverProfile{}, fmt.Errorf("create driver: %w", err)
	}
	return created, nil
}

// Get is open to any authenticated caller; customers pick drivers from these profiles.
func (s *DriverService) Get(ctx context.Context, id uuid.UUID) (models.DriverProfile, error) {
	driver, err := s.store.DriverByID(ctx, id)
	if err != nil {
		return models.DriverProfile{}, fmt.Errorf("load driver: %w", err)
	}
	return driver, nil
}

// Update applies req to the driver after the ownership check.
func (s *DriverService) Update(ctx context.Context, subject, id uuid.UUID, req dto.UpdateDriverRequest) (models.DriverProfile, error) {
	driver, err := s.store.DriverByID(ctx, id)
	if err != nil {
		return models.DriverProfile{}, fmt.Errorf("load driver: %w", err)
	}
	if _, err := s.guard.Authorize(ctx, subject, driver); err != nil {
		return models.DriverProfile{}, err
	}

	if req.DisplayName != nil {
		driver.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Phone != nil {
		driver.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.LicenseNumber != nil {
		driver.LicenseNumber = strings.TrimSpace(*req.LicenseNumber)
	}
	if req.Available != nil {
		driver.Available = *req.Available
	}

	updated, err := s.store.UpdateDriver(ctx, driver)
	if err != nil {
		return models.DriverProfile{}, fmt.Errorf("update driver: %w", err)
	}
	return updated, nil
}

// CustomerService manages customer profiles. Every mutation goes through the guard.
type CustomerService struct {
	store storage.CustomerStore
	guard Authorizer
}

func NewCustomerService(store storage.CustomerStore, guard Authorizer) *CustomerService {
	return &CustomerService{store: store, guard: guard}
}

func (s *CustomerService) Create(ctx context.Context, subject uuid.UUID, req dto.CreateCustomerRequest) (models.CustomerProfile, error) {
	customer := models.CustomerProfile{
		ID:          uuid.New(),
		AccountID:   uuid.NullUUID{UUID: subject, Valid: true},
		DisplayName: strings.TrimSpace(req.DisplayName),
		Phone:       strings.TrimSpace(req.Phone),
		HomeAddress: strings.TrimSpace(req.HomeAddress),
	}
	created, err := s.store.CreateCustomer(ctx, customer)
	if err != nil {
		return models.CustomerProfile{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// Get returns the customer to its owner only; the profile carries a home address.
func (s *CustomerService) Get(ctx context.Context, subject, id uuid.UUID) (models.CustomerProfile, error) {
	customer, err := s.store.CustomerByID(ctx, id)
	if err != nil {
		return models.CustomerProfile{}, fmt.Errorf("load customer: %w", err)
	}
	if _, err := s.guard.Authorize(ctx, subject, customer); err != nil {
		return models.CustomerProfile{}, err
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, subject, id uuid.UUID, req dto.UpdateCustomerRequest) (models.CustomerProfile, error) {
	customer, err := s.store.CustomerByID(ctx, id)
	if err != nil {
		return models.CustomerProfile{}, fmt.Errorf("load customer: %w", err)
	}
	if _, err := s.guard.Authorize(ctx, subject, customer); err != nil {
		return models.CustomerProfile{}, err
	}

	if req.DisplayName != nil {
		customer.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.HomeAddress != nil {
		customer.HomeAddress = strings.TrimSpace(*req.HomeAddress)
	}

	updated, err := s.store.UpdateCustomer(ctx, customer)
	if err != nil {
		return models.CustomerProfile{}, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}
