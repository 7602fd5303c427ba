package models

import "time"

// Cart is the durable, customer-scoped shopping cart. Exactly one cart
// exists per customer; it is created lazily on the first cart mutation.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string     `json:"customer_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem is a single product line in a durable cart. At most one row
// exists per (cart, product) pair; quantity is at least 1.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    string    `json:"cart_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	CreatedAt time.Time `json:"created_at"`
}

// Wishlist marks a product a customer has saved for later. Adding the
// product to the durable cart removes the wishlist row.
type Wishlist struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID string    `json:"customer_id" gorm:"uniqueIndex:idx_customer_product;type:varchar(36)"`
	ProductID  string    `json:"product_id" gorm:"uniqueIndex:idx_customer_product;type:varchar(36)"`
	CreatedAt  time.Time `json:"created_at"`
}
