package repositories

import (
	"bazaar/internal/models"
)

// CartRepository defines the interface for durable cart data access.
//
// CreateItem and UpsertItemQuantity must be atomic against the (cart,
// product) unique constraint: concurrent adds or merges for the same pair
// must not produce duplicate rows or lost increments.
type CartRepository interface {
	// GetOrCreate returns the customer's cart, creating an empty one on
	// first use. Idempotent.
	GetOrCreate(customerID string) (*models.Cart, error)
	GetByCustomer(customerID string) (*models.Cart, error)
	GetItems(cartID string) ([]models.CartItem, error)
	GetItem(cartID, productID string) (*models.CartItem, error)
	// CreateItem inserts a new line and fails with models.ErrDuplicateItem
	// when the product is already in the cart.
	CreateItem(item *models.CartItem) error
	// UpdateItemQuantity overwrites the quantity of an existing line and
	// fails with models.ErrNotFound when there is none.
	UpdateItemQuantity(cartID, productID string, quantity int) error
	// UpsertItemQuantity creates the line with the given quantity or, when
	// it already exists, increments its quantity by that amount, as one
	// atomic write. Used by the login-time merge.
	UpsertItemQuantity(cartID, productID string, quantity int) error
	DeleteItem(cartID, productID string) error
	ClearItems(cartID string) error
}
