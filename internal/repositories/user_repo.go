package repositories

import (
	"time"

	"bazaar/internal/models"
)

// UserRepository defines the interface for account data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByMobile(mobile string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// SetOtp stores the active OTP challenge on the account record,
	// overwriting any previous code.
	SetOtp(id string, code int, issuedAt time.Time) error
}

// CustomerRepository defines the interface for customer profile data access.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByUserID(userID string) (*models.Customer, error)
	GetByMobile(mobile string) (*models.Customer, error)
	GetByID(id string) (*models.Customer, error)
}
