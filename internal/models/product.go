package models

import "gorm.io/gorm"

// Product represents a product in the store catalog.
//
// Prices are stored as whole integer amounts (the store currency has no
// fractional unit). DiscountPrice, when set and non-zero, replaces Price as
// the effective unit price.
type Product struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Slug          string `json:"slug" gorm:"uniqueIndex;type:varchar(255)" validate:"omitempty,max=255"`
	Description   string `json:"description" validate:"omitempty,max=2000"`
	Price         int64  `json:"price" validate:"required,gt=0"`
	DiscountPrice *int64 `json:"discount_price,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Stock         int    `json:"stock" validate:"gte=0"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// HasDiscount reports whether a discount is active for the product.
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice != 0
}
