package models

import "time"

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	OrderID   string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // Price at the time of order
}

// Order represents a customer order built from the durable cart at checkout.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID  string      `json:"customer_id" gorm:"index;type:varchar(36)"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount int64       `json:"total_amount"`
	Status      string      `json:"status"` // e.g., "pending", "processing", "shipped", "delivered", "cancelled"
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
