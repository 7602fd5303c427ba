package repositories

import (
	"fmt"
	"sync"
	"time"

	"bazaar/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository. The
// mutex gives CreateItem and UpsertItemQuantity the same check-then-write
// atomicity the unique index gives the GORM implementation.
type MockCartRepository struct {
	carts  map[string]models.Cart     // cart ID -> cart
	byCust map[string]string          // customer ID -> cart ID
	items  map[string]models.CartItem // cart ID + product ID -> item
	nextID uint
	mu     sync.Mutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts:  make(map[string]models.Cart),
		byCust: make(map[string]string),
		items:  make(map[string]models.CartItem),
	}
}

func itemKey(cartID, productID string) string {
	return cartID + "/" + productID
}

// GetOrCreate returns the customer's cart, creating an empty one on first
// use.
func (r *MockCartRepository) GetOrCreate(customerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cartID, ok := r.byCust[customerID]; ok {
		c := r.carts[cartID]
		return &c, nil
	}

	c := models.Cart{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}
	r.carts[c.ID] = c
	r.byCust[customerID] = c.ID
	return &c, nil
}

// GetByCustomer retrieves the customer's cart without creating one.
func (r *MockCartRepository) GetByCustomer(customerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cartID, ok := r.byCust[customerID]
	if !ok {
		return nil, fmt.Errorf("cart for customer %s: %w", customerID, models.ErrNotFound)
	}
	c := r.carts[cartID]
	return &c, nil
}

// GetItems retrieves all lines of a cart.
func (r *MockCartRepository) GetItems(cartID string) ([]models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []models.CartItem
	for _, item := range r.items {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetItem retrieves one cart line by product.
func (r *MockCartRepository) GetItem(cartID, productID string) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemKey(cartID, productID)]
	if !ok {
		return nil, fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
	}
	return &item, nil
}

// CreateItem inserts a new cart line, rejecting duplicates.
func (r *MockCartRepository) CreateItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := itemKey(item.CartID, item.ProductID)
	if _, ok := r.items[key]; ok {
		return fmt.Errorf("product %s in cart %s: %w", item.ProductID, item.CartID, models.ErrDuplicateItem)
	}
	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[key] = *item
	return nil
}

// UpdateItemQuantity overwrites the quantity of an existing line.
func (r *MockCartRepository) UpdateItemQuantity(cartID, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := itemKey(cartID, productID)
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
	}
	item.Quantity = quantity
	r.items[key] = item
	return nil
}

// UpsertItemQuantity creates the line or increments its quantity.
func (r *MockCartRepository) UpsertItemQuantity(cartID, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := itemKey(cartID, productID)
	if item, ok := r.items[key]; ok {
		item.Quantity += quantity
		r.items[key] = item
		return nil
	}
	r.nextID++
	r.items[key] = models.CartItem{
		ID:        r.nextID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	return nil
}

// DeleteItem removes one cart line.
func (r *MockCartRepository) DeleteItem(cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := itemKey(cartID, productID)
	if _, ok := r.items[key]; !ok {
		return fmt.Errorf("cart item for product %s: %w", productID, models.ErrNotFound)
	}
	delete(r.items, key)
	return nil
}

// ClearItems removes all lines of a cart.
func (r *MockCartRepository) ClearItems(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, key)
		}
	}
	return nil
}
