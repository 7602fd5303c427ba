package repositories

import (
	"bazaar/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// GetByIDs resolves many products in one lookup. Ids that do not
	// resolve are simply missing from the returned map.
	GetByIDs(ids []string) (map[string]*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
