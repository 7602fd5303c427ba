package repositories

import (
	"fmt"
	"sync"
	"time"

	"bazaar/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User // user ID -> user
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByMobile returns a user by their mobile number.
func (r *MockUserRepository) GetByMobile(mobile string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Mobile == mobile {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with mobile %s: %w", mobile, models.ErrNotFound)
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, models.ErrNotFound)
	}
	return &user, nil
}

// SetOtp stores the active OTP challenge on the account record.
func (r *MockUserRepository) SetOtp(id string, code int, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", id, models.ErrNotFound)
	}
	user.Otp = code
	user.OtpIssuedAt = issuedAt
	r.users[id] = user
	return nil
}

// MockCustomerRepository is an in-memory implementation of
// CustomerRepository.
type MockCustomerRepository struct {
	customers map[string]models.Customer // customer ID -> customer
	mu        sync.RWMutex
}

// NewMockCustomerRepository creates a new instance of MockCustomerRepository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]models.Customer),
	}
}

// Create adds a new customer profile.
func (r *MockCustomerRepository) Create(customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	r.customers[customer.ID] = *customer
	return nil
}

// GetByUserID returns a customer by the owning account's ID.
func (r *MockCustomerRepository) GetByUserID(userID string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.UserID == userID {
			c := customer
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer for user %s: %w", userID, models.ErrNotFound)
}

// GetByMobile returns a customer by their mobile number.
func (r *MockCustomerRepository) GetByMobile(mobile string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.Mobile == mobile {
			c := customer
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer with mobile %s: %w", mobile, models.ErrNotFound)
}

// GetByID returns a customer by their ID.
func (r *MockCustomerRepository) GetByID(id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer with ID %s: %w", id, models.ErrNotFound)
	}
	return &customer, nil
}
