// Package cart implements the guest shopping cart: an ephemeral,
// session-scoped list of product quantities. The cart is a plain value the
// caller loads from and saves back to the session store after every
// mutation; nothing in this package touches storage.
package cart

import (
	"encoding/json"

	"bazaar/internal/models"
	"bazaar/internal/pricing"
)

// Item is one guest cart entry.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SessionCart holds the guest cart entries in insertion order.
type SessionCart struct {
	Items []Item `json:"items"`
}

// LineView is a resolved, priced projection of one cart entry.
type LineView struct {
	Product       *models.Product `json:"product"`
	Quantity      int             `json:"quantity"`
	UnitPrice     int64           `json:"unit_price"`
	TotalPrice    int64           `json:"total_price"`
	TotalOldPrice int64           `json:"total_old_price"`
	TotalDiscount int64           `json:"total_discount"`
}

// New returns an empty session cart.
func New() *SessionCart {
	return &SessionCart{}
}

// Decode restores a session cart from its JSON form. An empty payload
// yields an empty cart.
func Decode(data string) (*SessionCart, error) {
	c := New()
	if data == "" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(data), c); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode serializes the cart for the session store.
func (c *SessionCart) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *SessionCart) find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts a product in the cart or adjusts its quantity. With override the
// quantity is set absolutely, otherwise it is incremented. The caller must
// persist the cart afterwards.
func (c *SessionCart) Add(productID string, quantity int, override bool) {
	i := c.find(productID)
	if i < 0 {
		c.Items = append(c.Items, Item{ProductID: productID})
		i = len(c.Items) - 1
	}
	if override {
		c.Items[i].Quantity = quantity
	} else {
		c.Items[i].Quantity += quantity
	}
}

// Update sets the quantity of an existing entry exactly. Absent products
// are ignored. No clamping happens here; callers validate against stock.
func (c *SessionCart) Update(productID string, quantity int) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	return true
}

// Remove deletes an entry. Absent products are ignored.
func (c *SessionCart) Remove(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *SessionCart) Clear() {
	c.Items = nil
}

// IsEmpty reports whether the cart has no entries.
func (c *SessionCart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total quantity across all entries, not the number
// of distinct products.
func (c *SessionCart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// ProductIDs returns the product ids currently in the cart, in insertion
// order, for a batched catalog lookup.
func (c *SessionCart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Resolve projects the cart onto the given product map and returns the
// priced line views plus the ids of entries that should be pruned: products
// that no longer resolve and entries whose quantity has dropped below 1.
// Resolve itself does not mutate the cart; the caller applies the prune with
// Prune and persists the result.
func (c *SessionCart) Resolve(products map[string]*models.Product) ([]LineView, []string) {
	lines := make([]LineView, 0, len(c.Items))
	var pruned []string

	for _, item := range c.Items {
		product, ok := products[item.ProductID]
		if !ok || item.Quantity < 1 {
			pruned = append(pruned, item.ProductID)
			continue
		}

		unit := pricing.UnitPrice(product)
		total, _ := pricing.LineTotal(product, item.Quantity)
		oldTotal, _ := pricing.LineOldTotal(product, item.Quantity)
		discount, _ := pricing.LineDiscount(product, item.Quantity)

		lines = append(lines, LineView{
			Product:       product,
			Quantity:      item.Quantity,
			UnitPrice:     unit,
			TotalPrice:    total,
			TotalOldPrice: oldTotal,
			TotalDiscount: discount,
		})
	}
	return lines, pruned
}

// Prune removes the given product ids from the cart.
func (c *SessionCart) Prune(productIDs []string) {
	for _, id := range productIDs {
		c.Remove(id)
	}
}

// TotalPrice sums the effective price over the given line views.
func TotalPrice(lines []LineView) int64 {
	var total int64
	for _, line := range lines {
		total += line.TotalPrice
	}
	return total
}

// TotalOldPrice sums the undiscounted price over the given line views.
func TotalOldPrice(lines []LineView) int64 {
	var total int64
	for _, line := range lines {
		total += line.TotalOldPrice
	}
	return total
}

// TotalDiscount sums the saved amount over the given line views.
func TotalDiscount(lines []LineView) int64 {
	var total int64
	for _, line := range lines {
		total += line.TotalDiscount
	}
	return total
}
