package repositories

import (
	"fmt"
	"sync"
	"time"

	"bazaar/internal/models"
)

// MockWishlistRepository is an in-memory implementation of
// WishlistRepository.
type MockWishlistRepository struct {
	entries map[string]models.Wishlist // customer ID + product ID -> entry
	nextID  uint
	mu      sync.Mutex
}

// NewMockWishlistRepository creates a new instance of
// MockWishlistRepository.
func NewMockWishlistRepository() *MockWishlistRepository {
	return &MockWishlistRepository{
		entries: make(map[string]models.Wishlist),
	}
}

// Create adds a product to a customer's wishlist. An existing entry for the
// same pair is left alone.
func (r *MockWishlistRepository) Create(entry *models.Wishlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[entry.CustomerID+"/"+entry.ProductID]; ok {
		*entry = existing
		return nil
	}
	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries[entry.CustomerID+"/"+entry.ProductID] = *entry
	return nil
}

// GetByCustomer returns all wishlist entries for a customer.
func (r *MockWishlistRepository) GetByCustomer(customerID string) ([]models.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []models.Wishlist
	for _, entry := range r.entries {
		if entry.CustomerID == customerID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Delete removes the wishlist row for the (customer, product) pair.
func (r *MockWishlistRepository) Delete(customerID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := customerID + "/" + productID
	if _, ok := r.entries[key]; !ok {
		return fmt.Errorf("wishlist entry for product %s: %w", productID, models.ErrNotFound)
	}
	delete(r.entries, key)
	return nil
}
