package repositories

import (
	"fmt"
	"time"

	"bazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByMobile retrieves a user by their mobile number from the database.
func (r *GORMUserRepository) GetByMobile(mobile string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "mobile = ?", mobile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user with mobile %s: %w", mobile, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by mobile %s: %w", mobile, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// SetOtp stores the active OTP challenge on the account record.
func (r *GORMUserRepository) SetOtp(id string, code int, issuedAt time.Time) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"otp":           code,
		"otp_issued_at": issuedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set otp for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

// Create creates a new customer profile in the database.
func (r *GORMCustomerRepository) Create(customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByUserID retrieves a customer by the owning account's ID.
func (r *GORMCustomerRepository) GetByUserID(userID string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer for user %s: %w", userID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer for user %s: %w", userID, err)
	}
	return &customer, nil
}

// GetByMobile retrieves a customer by their mobile number.
func (r *GORMCustomerRepository) GetByMobile(mobile string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "mobile = ?", mobile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer with mobile %s: %w", mobile, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by mobile %s: %w", mobile, err)
	}
	return &customer, nil
}

// GetByID retrieves a customer by their ID.
func (r *GORMCustomerRepository) GetByID(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by ID %s: %w", id, err)
	}
	return &customer, nil
}
