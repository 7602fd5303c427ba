package services

import (
	"errors"
	"fmt"
	"log"

	"bazaar/internal/cart"
	"bazaar/internal/models"
	"bazaar/internal/repositories"
)

// MergeService folds a guest session cart into the customer's durable cart.
// The authentication flow calls Merge exactly once per login, right after
// verification succeeds and before the response is returned.
type MergeService struct {
	customerRepo repositories.CustomerRepository
	cartRepo     repositories.CartRepository
	productRepo  repositories.ProductRepository
}

// NewMergeService creates a new MergeService.
func NewMergeService(customerRepo repositories.CustomerRepository, cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *MergeService {
	return &MergeService{
		customerRepo: customerRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
	}
}

// Merge reconciles the session cart into the durable cart of the user's
// customer profile and clears the session cart. Quantities accumulate:
// products already in the durable cart are incremented, unseen products get
// a new line with the session quantity. Stale session entries are pruned,
// not merged. An empty session cart is a no-op, which also makes a retried
// merge after a completed one a no-op.
//
// Merge is best-effort per item. A write failure leaves earlier items
// committed, keeps only the failed entries in the session cart (so a retry
// finishes the job without double-counting) and is reported as
// *models.MergeError naming the failed products. Stock limits are
// deliberately not enforced here; reads downstream reconcile display.
//
// The caller persists the mutated session cart afterwards.
func (s *MergeService) Merge(sc *cart.SessionCart, userID string) error {
	if sc.IsEmpty() {
		return nil
	}

	customer, err := s.customerRepo.GetByUserID(userID)
	if errors.Is(err, models.ErrNotFound) {
		// Should not happen once the account is provisioned; leave the
		// session cart alone.
		log.Printf("Warning: no customer for user %s, skipping cart merge", userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve customer for user %s: %w", userID, err)
	}

	dbCart, err := s.cartRepo.GetOrCreate(customer.ID)
	if err != nil {
		return fmt.Errorf("failed to open cart for customer %s: %w", customer.ID, err)
	}

	products, err := s.productRepo.GetByIDs(sc.ProductIDs())
	if err != nil {
		return fmt.Errorf("failed to resolve session cart products: %w", err)
	}

	lines, pruned := sc.Resolve(products)
	sc.Prune(pruned)

	var failed []string
	for _, line := range lines {
		if err := s.cartRepo.UpsertItemQuantity(dbCart.ID, line.Product.ID, line.Quantity); err != nil {
			log.Printf("Error merging product %s into cart %s: %v", line.Product.ID, dbCart.ID, err)
			failed = append(failed, line.Product.ID)
			continue
		}
		// Dropped immediately so a retried merge cannot double-count it.
		sc.Remove(line.Product.ID)
	}
	if len(failed) > 0 {
		return &models.MergeError{FailedProductIDs: failed}
	}

	sc.Clear()
	return nil
}
