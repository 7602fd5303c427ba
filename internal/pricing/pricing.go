// Package pricing computes unit and line prices for product line items.
// All amounts are whole integer currency values; the functions are pure.
package pricing

import "bazaar/internal/models"

// UnitPrice returns the effective price for one unit of the product: the
// discount price when a discount is active, the regular price otherwise.
func UnitPrice(product *models.Product) int64 {
	if product.HasDiscount() {
		return *product.DiscountPrice
	}
	return product.Price
}

// LineTotal returns the effective price for quantity units of the product.
func LineTotal(product *models.Product, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, models.ErrInvalidQuantity
	}
	return UnitPrice(product) * int64(quantity), nil
}

// LineOldTotal returns the undiscounted price for quantity units.
func LineOldTotal(product *models.Product, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, models.ErrInvalidQuantity
	}
	return product.Price * int64(quantity), nil
}

// LineDiscount returns the amount saved on quantity units, zero when no
// discount is active.
func LineDiscount(product *models.Product, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, models.ErrInvalidQuantity
	}
	if !product.HasDiscount() {
		return 0, nil
	}
	return (product.Price - UnitPrice(product)) * int64(quantity), nil
}
