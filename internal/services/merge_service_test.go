package services_test

import (
	"fmt"
	"testing"

	"bazaar/internal/cart"
	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

// flakyCartRepository fails upserts for one product to exercise the
// partial-merge path.
type flakyCartRepository struct {
	repositories.CartRepository
	failProductID string
}

func (r *flakyCartRepository) UpsertItemQuantity(cartID, productID string, quantity int) error {
	if productID == r.failProductID {
		return fmt.Errorf("write failed for product %s", productID)
	}
	return r.CartRepository.UpsertItemQuantity(cartID, productID, quantity)
}

type mergeFixture struct {
	customerRepo *repositories.MockCustomerRepository
	cartRepo     *repositories.MockCartRepository
	productRepo  *repositories.MockProductRepository
	customer     *models.Customer
}

func newMergeFixture(t *testing.T) *mergeFixture {
	t.Helper()

	f := &mergeFixture{
		customerRepo: repositories.NewMockCustomerRepository(),
		cartRepo:     repositories.NewMockCartRepository(),
		productRepo:  repositories.NewMockProductRepository(),
	}

	f.customer = &models.Customer{UserID: "user-1", Mobile: "09120000001"}
	assert.NoError(t, f.customerRepo.Create(f.customer))

	assert.NoError(t, f.productRepo.Create(&models.Product{ID: "p1", Title: "کتاب", Price: 1000, DiscountPrice: int64Ptr(800), Stock: 10}))
	assert.NoError(t, f.productRepo.Create(&models.Product{ID: "p2", Title: "قلم", Price: 500, Stock: 10}))
	return f
}

func (f *mergeFixture) service() *services.MergeService {
	return services.NewMergeService(f.customerRepo, f.cartRepo, f.productRepo)
}

func (f *mergeFixture) quantityOf(t *testing.T, productID string) int {
	t.Helper()
	dbCart, err := f.cartRepo.GetByCustomer(f.customer.ID)
	assert.NoError(t, err)
	item, err := f.cartRepo.GetItem(dbCart.ID, productID)
	assert.NoError(t, err)
	return item.Quantity
}

func TestMergeService_AccumulatesQuantities(t *testing.T) {
	f := newMergeFixture(t)

	dbCart, err := f.cartRepo.GetOrCreate(f.customer.ID)
	assert.NoError(t, err)
	assert.NoError(t, f.cartRepo.CreateItem(&models.CartItem{CartID: dbCart.ID, ProductID: "p1", Quantity: 3}))

	sc := cart.New()
	sc.Add("p1", 2, false)

	err = f.service().Merge(sc, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, f.quantityOf(t, "p1"))
	assert.True(t, sc.IsEmpty())
}

func TestMergeService_CreatesLinesForNewProducts(t *testing.T) {
	f := newMergeFixture(t)

	sc := cart.New()
	sc.Add("p1", 2, false)
	sc.Add("p2", 1, false)

	err := f.service().Merge(sc, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.quantityOf(t, "p1"))
	assert.Equal(t, 1, f.quantityOf(t, "p2"))
	assert.True(t, sc.IsEmpty())
}

func TestMergeService_RepeatedMergeIsNoOp(t *testing.T) {
	f := newMergeFixture(t)
	svc := f.service()

	sc := cart.New()
	sc.Add("p1", 2, false)

	assert.NoError(t, svc.Merge(sc, "user-1"))
	assert.Equal(t, 2, f.quantityOf(t, "p1"))

	// The session cart is empty now, so a second merge changes nothing.
	assert.NoError(t, svc.Merge(sc, "user-1"))
	assert.Equal(t, 2, f.quantityOf(t, "p1"))
}

func TestMergeService_EmptySessionCartCreatesNothing(t *testing.T) {
	f := newMergeFixture(t)

	assert.NoError(t, f.service().Merge(cart.New(), "user-1"))

	_, err := f.cartRepo.GetByCustomer(f.customer.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMergeService_UnknownUserLeavesSessionCartAlone(t *testing.T) {
	f := newMergeFixture(t)

	sc := cart.New()
	sc.Add("p1", 2, false)

	assert.NoError(t, f.service().Merge(sc, "no-such-user"))
	assert.Equal(t, 2, sc.ItemCount())
}

func TestMergeService_PrunesStaleProducts(t *testing.T) {
	f := newMergeFixture(t)

	sc := cart.New()
	sc.Add("p1", 2, false)
	sc.Add("deleted-product", 4, false)

	err := f.service().Merge(sc, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.quantityOf(t, "p1"))
	assert.True(t, sc.IsEmpty())

	dbCart, err := f.cartRepo.GetByCustomer(f.customer.ID)
	assert.NoError(t, err)
	_, err = f.cartRepo.GetItem(dbCart.ID, "deleted-product")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMergeService_PartialFailureKeepsFailedEntries(t *testing.T) {
	f := newMergeFixture(t)
	flaky := &flakyCartRepository{CartRepository: f.cartRepo, failProductID: "p2"}
	svc := services.NewMergeService(f.customerRepo, flaky, f.productRepo)

	sc := cart.New()
	sc.Add("p1", 2, false)
	sc.Add("p2", 1, false)

	err := svc.Merge(sc, "user-1")
	var mergeErr *models.MergeError
	assert.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, []string{"p2"}, mergeErr.FailedProductIDs)

	// p1 is committed and dropped from the session; p2 stays for a retry.
	assert.Equal(t, 2, f.quantityOf(t, "p1"))
	assert.Equal(t, []string{"p2"}, sc.ProductIDs())

	// A retry against a healthy repository finishes the merge without
	// touching the already-committed line again.
	assert.NoError(t, f.service().Merge(sc, "user-1"))
	assert.Equal(t, 2, f.quantityOf(t, "p1"))
	assert.Equal(t, 1, f.quantityOf(t, "p2"))
	assert.True(t, sc.IsEmpty())
}
