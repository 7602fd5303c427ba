package repositories

import (
	"bazaar/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	GetByCustomer(customerID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
	// Deletion of orders might be complex, so we'll omit for now.
}
