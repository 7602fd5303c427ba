package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bazaar/internal/handlers"
	"bazaar/internal/middleware"
	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

// testEnv wires the full HTTP surface against in-memory repositories, the
// same way main wires it against the real ones. The cookie jar carries the
// guest session across requests.
type testEnv struct {
	app         *fiber.App
	userRepo    *repositories.MockUserRepository
	productRepo *repositories.MockProductRepository
	orderRepo   *repositories.MockOrderRepository
	cookies     []*http.Cookie
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		userRepo:    repositories.NewMockUserRepository(),
		productRepo: repositories.NewMockProductRepository(),
		orderRepo:   repositories.NewMockOrderRepository(),
	}
	customerRepo := repositories.NewMockCustomerRepository()
	cartRepo := repositories.NewMockCartRepository()
	wishlistRepo := repositories.NewMockWishlistRepository()
	otpStore := repositories.NewMemoryOtpStore()

	otpService := services.NewOtpService(env.userRepo, otpStore, nil)
	authService := services.NewAuthService(otpService, customerRepo, "test_jwt_secret")
	cartService := services.NewCartService(cartRepo, env.productRepo, wishlistRepo)
	mergeService := services.NewMergeService(customerRepo, cartRepo, env.productRepo)
	orderService := services.NewOrderService(env.orderRepo, cartService, nil)

	sessions := session.New(session.Config{Expiration: time.Hour})

	env.app = fiber.New()
	apiV1 := env.app.Group("/api/v1")
	handlers.NewAuthHandler(authService, otpService, mergeService, sessions).RegisterRoutes(apiV1)
	handlers.NewProductHandler(env.productRepo).RegisterRoutes(apiV1)

	cartGroup := apiV1.Group("", middleware.AuthOptional(authService))
	handlers.NewCartHandler(cartService, sessions).RegisterRoutes(cartGroup)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewWishlistHandler(cartService).RegisterRoutes(protectedRoutes)
	handlers.NewOrderHandler(orderService).RegisterRoutes(protectedRoutes)

	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "p1", Title: "کتاب", Price: 1000, DiscountPrice: int64Ptr(800), Stock: 10}))
	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "p2", Title: "قلم", Price: 500, Stock: 2}))
	return env
}

// request performs an HTTP request against the app, carrying the cookie jar
// along and absorbing any cookies the response sets.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range e.cookies {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)

	for _, cookie := range resp.Cookies() {
		replaced := false
		for i, existing := range e.cookies {
			if existing.Name == cookie.Name {
				e.cookies[i] = cookie
				replaced = true
				break
			}
		}
		if !replaced {
			e.cookies = append(e.cookies, cookie)
		}
	}

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		parsed = nil
	}
	resp.Body.Close()
	return resp, parsed
}

// login walks the OTP flow for the mobile number and returns the JWT. The
// code is read off the account record, the way the SMS consumer would see
// it.
func (e *testEnv) login(t *testing.T, mobile string) string {
	t.Helper()

	resp, _ := e.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": mobile}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	user, err := e.userRepo.GetByMobile(mobile)
	assert.NoError(t, err)

	resp, body := e.request(t, "POST", "/api/v1/auth/otp/verify", fiber.Map{"mobile": mobile, "code": user.Otp}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestGuestCartFlow(t *testing.T) {
	env := setupTestApp(t)

	resp, body := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1", "quantity": 2}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])
	assert.Equal(t, float64(1600), body["total_price"])

	// The session cookie carries the cart across requests.
	resp, body = env.request(t, "GET", "/api/v1/cart/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])

	resp, body = env.request(t, "PATCH", "/api/v1/cart/items", fiber.Map{"product_id": "p1", "quantity": 5}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body["num_of_items"])
	assert.Equal(t, float64(4000), body["total_price"])

	resp, body = env.request(t, "DELETE", "/api/v1/cart/items/p1", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["num_of_items"])
}

func TestGuestCartValidation(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "no-such-product"}, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p2", "quantity": 3}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Insufficient stock. A maximum of 2 items is available.", body["message"])

	resp, _ = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"quantity": 1}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOtpRequestRateLimited(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": "09120000001"}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": "09120000001"}, "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, float64(60), body["retry_after"])
}

func TestOtpRequestValidation(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": "12345"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": "not-a-number"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestVerifyWrongCode(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/auth/otp/request", fiber.Map{"mobile": "09120000001"}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	user, err := env.userRepo.GetByMobile("09120000001")
	assert.NoError(t, err)
	wrong := user.Otp + 1
	if wrong > 99999 {
		wrong = 10000
	}

	resp, _ = env.request(t, "POST", "/api/v1/auth/otp/verify", fiber.Map{"mobile": "09120000001", "code": wrong}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginMergesGuestCart(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1", "quantity": 2}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	token := env.login(t, "09120000001")

	// The guest cart moved into the durable cart.
	resp, body := env.request(t, "GET", "/api/v1/cart/", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])
	assert.Equal(t, float64(1600), body["total_price"])

	// The session cart is empty afterwards.
	resp, body = env.request(t, "GET", "/api/v1/cart/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["num_of_items"])
}

func TestCustomerCartRejectsDuplicateAdd(t *testing.T) {
	env := setupTestApp(t)
	token := env.login(t, "09120000001")

	resp, _ := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Product already in cart", body["message"])

	// The guest cart, by contrast, accumulates on re-add.
	resp, _ = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, body = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])
}

func TestCustomerAddHonorsRequestedQuantity(t *testing.T) {
	env := setupTestApp(t)
	token := env.login(t, "09120000001")

	resp, body := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1", "quantity": 3}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(3), body["quantity"])
	assert.Equal(t, float64(3), body["num_of_items"])
	assert.Equal(t, float64(2400), body["total_price"])

	resp, body = env.request(t, "GET", "/api/v1/cart/", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["num_of_items"])
}

func TestGuestAddPersistsPruning(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p2"}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// p2 vanishes from the catalog; the next mutation prunes it and that
	// pruning must land in the session, not just in memory.
	assert.NoError(t, env.productRepo.Delete("p2"))

	resp, body := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])

	// Even with p2 back in the catalog, the pruned entry stays gone.
	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "p2", Title: "قلم", Price: 500, Stock: 2}))

	resp, body = env.request(t, "GET", "/api/v1/cart/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["num_of_items"])
}

func TestWishlistFlow(t *testing.T) {
	env := setupTestApp(t)

	// Wishlist routes are off-limits without a token.
	resp, _ := env.request(t, "POST", "/api/v1/wishlist/items", fiber.Map{"product_id": "p1"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := env.login(t, "09120000001")

	resp, _ = env.request(t, "POST", "/api/v1/wishlist/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Saving the same product again succeeds without a second entry.
	resp, _ = env.request(t, "POST", "/api/v1/wishlist/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := env.request(t, "GET", "/api/v1/wishlist/", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, _ = env.request(t, "POST", "/api/v1/wishlist/items", fiber.Map{"product_id": "no-such-product"}, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Adding the saved product to the cart drops it from the wishlist.
	resp, _ = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body = env.request(t, "GET", "/api/v1/wishlist/", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	// Removing an absent entry succeeds quietly.
	resp, _ = env.request(t, "DELETE", "/api/v1/wishlist/items/p1", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOrderStatusScopedToOwner(t *testing.T) {
	env := setupTestApp(t)

	owner := env.login(t, "09120000001")
	resp, _ := env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, owner)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, body := env.request(t, "POST", "/api/v1/orders/checkout", nil, owner)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	orderID, _ := body["id"].(string)
	assert.NotEmpty(t, orderID)

	// Another customer cannot touch the order.
	other := env.login(t, "09120000002")
	resp, _ = env.request(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", orderID), fiber.Map{"status": "cancelled"}, other)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", orderID), fiber.Map{"status": "cancelled"}, owner)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.request(t, "GET", fmt.Sprintf("/api/v1/orders/%s", orderID), nil, owner)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["status"])
}

func TestCheckoutFlow(t *testing.T) {
	env := setupTestApp(t)

	// Orders are off-limits without a token.
	resp, _ := env.request(t, "POST", "/api/v1/orders/checkout", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := env.login(t, "09120000001")

	resp, _ = env.request(t, "POST", "/api/v1/cart/items", fiber.Map{"product_id": "p1"}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = env.request(t, "PATCH", "/api/v1/cart/items", fiber.Map{"product_id": "p1", "quantity": 3}, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.request(t, "POST", "/api/v1/orders/checkout", nil, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(2400), body["total_amount"])
	orderID, _ := body["id"].(string)
	assert.NotEmpty(t, orderID)

	// Checkout emptied the cart.
	resp, body = env.request(t, "GET", "/api/v1/cart/", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["num_of_items"])

	resp, body = env.request(t, "GET", fmt.Sprintf("/api/v1/orders/%s", orderID), nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2400), body["total_amount"])
}

func TestProductEndpoints(t *testing.T) {
	env := setupTestApp(t)

	resp, body := env.request(t, "GET", "/api/v1/products/p1", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "کتاب", body["title"])

	resp, _ = env.request(t, "GET", "/api/v1/products/nope", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
