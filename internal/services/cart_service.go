package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bazaar/internal/cart"
	"bazaar/internal/models"
	"bazaar/internal/pricing"
	"bazaar/internal/repositories"
)

// CartSummary is the priced projection of a durable cart. It is recomputed
// on every read; nothing here is cached.
type CartSummary struct {
	CartID        string          `json:"cart_id"`
	Lines         []cart.LineView `json:"lines"`
	TotalPrice    int64           `json:"total_price"`
	TotalOldPrice int64           `json:"total_old_price"`
	TotalDiscount int64           `json:"total_discount"`
	NumOfItems    int             `json:"num_of_items"`
}

// CartService handles business logic for both cart flavors: the durable
// customer cart and the resolution of guest session carts against the
// catalog.
type CartService struct {
	cartRepo     repositories.CartRepository
	productRepo  repositories.ProductRepository
	wishlistRepo repositories.WishlistRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, wishlistRepo repositories.WishlistRepository) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		wishlistRepo: wishlistRepo,
	}
}

// GetProduct resolves one product from the catalog.
func (s *CartService) GetProduct(productID string) (*models.Product, error) {
	return s.productRepo.GetByID(productID)
}

// AddItem puts the requested quantity of the product in the customer's
// durable cart. Re-adding a product that is already there fails with
// models.ErrDuplicateItem; the storefront treats that as an error, not an
// increment. A matching wishlist entry is removed on success.
func (s *CartService) AddItem(customerID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}

	dbCart, err := s.cartRepo.GetOrCreate(customerID)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{
		CartID:    dbCart.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.CreateItem(&item); err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.Delete(customerID, productID); err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Printf("Warning: failed to drop wishlist entry for product %s: %v", productID, err)
	}

	return &item, nil
}

// UpdateItem overwrites the quantity of an existing cart line. The caller
// validates the quantity against stock beforehand; this layer only rejects
// non-positive values.
func (s *CartService) UpdateItem(customerID, productID string, quantity int) error {
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}

	dbCart, err := s.cartRepo.GetByCustomer(customerID)
	if err != nil {
		return err
	}
	return s.cartRepo.UpdateItemQuantity(dbCart.ID, productID, quantity)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(customerID, productID string) error {
	dbCart, err := s.cartRepo.GetByCustomer(customerID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(dbCart.ID, productID)
}

// Clear empties the customer's durable cart.
func (s *CartService) Clear(customerID string) error {
	dbCart, err := s.cartRepo.GetByCustomer(customerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.cartRepo.ClearItems(dbCart.ID)
}

// Summary prices the customer's durable cart. Lines whose product no
// longer resolves are skipped.
func (s *CartService) Summary(customerID string) (*CartSummary, error) {
	dbCart, err := s.cartRepo.GetOrCreate(customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.GetItems(dbCart.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}

	summary := &CartSummary{CartID: dbCart.ID, Lines: []cart.LineView{}}
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || item.Quantity < 1 {
			continue
		}

		unit := pricing.UnitPrice(product)
		total, _ := pricing.LineTotal(product, item.Quantity)
		oldTotal, _ := pricing.LineOldTotal(product, item.Quantity)
		discount, _ := pricing.LineDiscount(product, item.Quantity)

		summary.Lines = append(summary.Lines, cart.LineView{
			Product:       product,
			Quantity:      item.Quantity,
			UnitPrice:     unit,
			TotalPrice:    total,
			TotalOldPrice: oldTotal,
			TotalDiscount: discount,
		})
		summary.TotalPrice += total
		summary.TotalOldPrice += oldTotal
		summary.TotalDiscount += discount
		summary.NumOfItems += item.Quantity
	}
	return summary, nil
}

// WishlistItem is one wishlist entry with its product resolved.
type WishlistItem struct {
	Product *models.Product `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// AddWishlistItem saves a product for later. Saving one that is already on
// the wishlist succeeds without a second row.
func (s *CartService) AddWishlistItem(customerID, productID string) error {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return err
	}
	return s.wishlistRepo.Create(&models.Wishlist{
		CustomerID: customerID,
		ProductID:  productID,
	})
}

// RemoveWishlistItem drops a product from the wishlist. Removing one that is
// not there is a no-op.
func (s *CartService) RemoveWishlistItem(customerID, productID string) error {
	if err := s.wishlistRepo.Delete(customerID, productID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return nil
}

// Wishlist returns the customer's saved products. Entries whose product no
// longer resolves are skipped.
func (s *CartService) Wishlist(customerID string) ([]WishlistItem, error) {
	entries, err := s.wishlistRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve wishlist products: %w", err)
	}

	items := []WishlistItem{}
	for _, entry := range entries {
		product, ok := products[entry.ProductID]
		if !ok {
			continue
		}
		items = append(items, WishlistItem{Product: product, AddedAt: entry.CreatedAt})
	}
	return items, nil
}

// ResolveGuest prices a guest session cart, pruning entries whose product
// no longer resolves. The caller persists the mutated cart afterwards.
func (s *CartService) ResolveGuest(sc *cart.SessionCart) ([]cart.LineView, error) {
	products, err := s.productRepo.GetByIDs(sc.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session cart products: %w", err)
	}
	lines, pruned := sc.Resolve(products)
	sc.Prune(pruned)
	return lines, nil
}
