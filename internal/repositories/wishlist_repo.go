package repositories

import (
	"bazaar/internal/models"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	// Create adds an entry; one that already exists is left alone.
	Create(entry *models.Wishlist) error
	GetByCustomer(customerID string) ([]models.Wishlist, error)
	// Delete removes the wishlist row for the (customer, product) pair and
	// fails with models.ErrNotFound when there is none.
	Delete(customerID, productID string) error
}
