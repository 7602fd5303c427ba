package pricing_test

import (
	"testing"

	"bazaar/internal/models"
	"bazaar/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func discounted(price, discountPrice int64) *models.Product {
	return &models.Product{ID: "p1", Price: price, DiscountPrice: &discountPrice}
}

func TestUnitPrice(t *testing.T) {
	assert.Equal(t, int64(800), pricing.UnitPrice(discounted(1000, 800)))
	assert.Equal(t, int64(500), pricing.UnitPrice(&models.Product{ID: "p2", Price: 500}))

	// A zero discount is treated as no discount
	zero := int64(0)
	assert.Equal(t, int64(500), pricing.UnitPrice(&models.Product{ID: "p3", Price: 500, DiscountPrice: &zero}))
}

func TestLineTotals_WithDiscount(t *testing.T) {
	product := discounted(1000, 800)

	total, err := pricing.LineTotal(product, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(2400), total)

	oldTotal, err := pricing.LineOldTotal(product, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(3000), oldTotal)

	discount, err := pricing.LineDiscount(product, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(600), discount)
}

func TestLineTotals_NoDiscount(t *testing.T) {
	product := &models.Product{ID: "p1", Price: 500}

	total, err := pricing.LineTotal(product, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	discount, err := pricing.LineDiscount(product, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), discount)
}

func TestLineTotals_RejectNonPositiveQuantity(t *testing.T) {
	product := discounted(1000, 800)

	for _, quantity := range []int{0, -1} {
		_, err := pricing.LineTotal(product, quantity)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)

		_, err = pricing.LineOldTotal(product, quantity)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)

		_, err = pricing.LineDiscount(product, quantity)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	}
}
