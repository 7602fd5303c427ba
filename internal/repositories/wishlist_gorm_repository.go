package repositories

import (
	"fmt"

	"bazaar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{
		db: db,
	}
}

// Create adds a product to a customer's wishlist. An entry that already
// exists is left alone, so a repeated save succeeds without a second row.
func (r *GORMWishlistRepository) Create(entry *models.Wishlist) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to create wishlist entry: %w", err)
	}
	return nil
}

// GetByCustomer retrieves all wishlist entries for a customer.
func (r *GORMWishlistRepository) GetByCustomer(customerID string) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	if err := r.db.Find(&entries, "customer_id = ?", customerID).Error; err != nil {
		return nil, fmt.Errorf("failed to get wishlist for customer %s: %w", customerID, err)
	}
	return entries, nil
}

// Delete removes the wishlist row for the (customer, product) pair.
func (r *GORMWishlistRepository) Delete(customerID, productID string) error {
	res := r.db.Delete(&models.Wishlist{}, "customer_id = ? AND product_id = ?", customerID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wishlist entry for product %s: %w", productID, models.ErrNotFound)
	}
	return nil
}
