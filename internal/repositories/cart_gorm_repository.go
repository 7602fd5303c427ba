package repositories

import (
	"errors"
	"fmt"

	"bazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository. It relies
// on the (cart_id, product_id) unique index for its atomicity guarantees,
// so the *gorm.DB must be opened with TranslateError enabled.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetOrCreate returns the customer's cart, creating an empty one on first
// use.
func (r *GORMCartRepository) GetOrCreate(customerID string) (*models.Cart, error) {
	var c models.Cart
	err := r.db.
		Where(models.Cart{CustomerID: customerID}).
		Attrs(models.Cart{ID: uuid.New().String()}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart for customer %s: %w", customerID, err)
	}
	return &c, nil
}

// GetByCustomer retrieves the customer's cart without creating one.
func (r *GORMCartRepository) GetByCustomer(customerID string) (*models.Cart, error) {
	var c models.Cart
	if err := r.db.First(&c, "customer_id = ?", customerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart for customer %s: %w", customerID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for customer %s: %w", customerID, err)
	}
	return &c, nil
}

// GetItems retrieves all lines of a cart, newest first.
func (r *GORMCartRepository) GetItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Order("created_at DESC").Find(&items, "cart_id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// GetItem retrieves one cart line by product.
func (r *GORMCartRepository) GetItem(cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item for product %s: %w", productID, err)
	}
	return &item, nil
}

// CreateItem inserts a new cart line. A second line for the same product
// trips the unique index and surfaces as models.ErrDuplicateItem.
func (r *GORMCartRepository) CreateItem(item *models.CartItem) error {
	if err := r.db.Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product %s in cart %s: %w", item.ProductID, item.CartID, models.ErrDuplicateItem)
		}
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity overwrites the quantity of an existing line.
func (r *GORMCartRepository) UpdateItemQuantity(cartID, productID string, quantity int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
	}
	return nil
}

// UpsertItemQuantity creates the line or increments its quantity in one
// statement. Concurrent merges for the same (cart, product) pair serialize
// on the unique index instead of losing updates.
func (r *GORMCartRepository) UpsertItemQuantity(cartID, productID string, quantity int) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart item for product %s: %w", productID, err)
	}
	return nil
}

// DeleteItem removes one cart line.
func (r *GORMCartRepository) DeleteItem(cartID, productID string) error {
	res := r.db.Delete(&models.CartItem{}, "cart_id = ? AND product_id = ?", cartID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
	}
	return nil
}

// ClearItems removes all lines of a cart.
func (r *GORMCartRepository) ClearItems(cartID string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
