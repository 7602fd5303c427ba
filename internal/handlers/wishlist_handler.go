package handlers

import (
	"errors"
	"fmt"
	"log"

	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for the customer's saved products.
// All routes require an authenticated customer.
type WishlistHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(cartService *services.CartService) *WishlistHandler {
	return &WishlistHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the wishlist routes with the Fiber app.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router) {
	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleViewWishlist)
	wishlistRoutes.Post("/items", h.HandleAddItem)
	wishlistRoutes.Delete("/items/:productID", h.HandleRemoveItem)
}

// WishlistItemRequest represents the request body for saving a product.
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// HandleViewWishlist returns the customer's saved products.
func (h *WishlistHandler) HandleViewWishlist(c *fiber.Ctx) error {
	custID, ok := customerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	items, err := h.cartService.Wishlist(custID)
	if err != nil {
		log.Printf("Error reading wishlist for customer %s: %v", custID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve wishlist",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// HandleAddItem saves a product for later. Saving one that is already on
// the wishlist succeeds quietly.
func (h *WishlistHandler) HandleAddItem(c *fiber.Ctx) error {
	custID, ok := customerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req WishlistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.cartService.AddWishlistItem(custID, req.ProductID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
			})
		}
		log.Printf("Error saving wishlist entry for product %s: %v", req.ProductID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save product to wishlist",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product saved to wishlist",
	})
}

// HandleRemoveItem drops a product from the wishlist. Removing one that is
// not there succeeds quietly.
func (h *WishlistHandler) HandleRemoveItem(c *fiber.Ctx) error {
	custID, ok := customerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	productID := c.Params("productID")
	if err := h.cartService.RemoveWishlistItem(custID, productID); err != nil {
		log.Printf("Error removing wishlist entry for product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove product from wishlist",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Product removed from wishlist",
	})
}
