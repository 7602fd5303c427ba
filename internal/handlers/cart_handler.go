package handlers

import (
	"errors"
	"fmt"
	"log"

	"bazaar/internal/cart"
	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const sessionCartKey = "cart"

// CartHandler handles HTTP requests for the shopping cart. Guests get the
// session cart, authenticated customers the durable cart; the same routes
// serve both.
type CartHandler struct {
	cartService *services.CartService
	sessions    *session.Store
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, sessions *session.Store) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		sessions:    sessions,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productID", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// customerID returns the authenticated customer's ID, when there is one.
func customerID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("customer_id").(string)
	return id, ok && id != ""
}

// loadSessionCart decodes the guest cart out of the request's session.
func (h *CartHandler) loadSessionCart(c *fiber.Ctx) (*cart.SessionCart, *session.Session, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}
	raw, _ := sess.Get(sessionCartKey).(string)
	sc, err := cart.Decode(raw)
	if err != nil {
		// A corrupt session blob should not lock the user out of the cart.
		log.Printf("Warning: resetting unreadable session cart: %v", err)
		sc = cart.New()
	}
	return sc, sess, nil
}

// saveSessionCart writes the guest cart back into the session.
func saveSessionCart(sess *session.Session, sc *cart.SessionCart) error {
	data, err := sc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session cart: %w", err)
	}
	sess.Set(sessionCartKey, data)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// AddItemRequest represents the request body for adding a product.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateItemRequest represents the request body for changing a quantity.
type UpdateItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// HandleViewCart returns the priced cart contents.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	if custID, ok := customerID(c); ok {
		summary, err := h.cartService.Summary(custID)
		if err != nil {
			log.Printf("Error reading cart for customer %s: %v", custID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve cart",
				"error":   err.Error(),
			})
		}
		return c.JSON(summary)
	}

	sc, sess, err := h.loadSessionCart(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	lines, err := h.cartService.ResolveGuest(sc)
	if err != nil {
		log.Printf("Error resolving guest cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	if err := saveSessionCart(sess, sc); err != nil {
		log.Printf("Error saving session cart: %v", err)
	}

	return c.JSON(fiber.Map{
		"lines":           lines,
		"total_price":     cart.TotalPrice(lines),
		"total_old_price": cart.TotalOldPrice(lines),
		"total_discount":  cart.TotalDiscount(lines),
		"num_of_items":    sc.ItemCount(),
	})
}

// HandleAddItem puts a product in the cart. For authenticated customers a
// re-add of a product already in the cart is rejected; the guest cart
// accumulates instead.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
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
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.cartService.GetProduct(req.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve product",
			"error":   err.Error(),
		})
	}

	// Stock is validated here, at the request boundary; the cart layers do
	// not clamp.
	if product.Stock < req.Quantity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Insufficient stock. A maximum of %d items is available.", product.Stock),
			"error":   models.ErrInsufficientStock.Error(),
		})
	}

	if custID, ok := customerID(c); ok {
		item, err := h.cartService.AddItem(custID, req.ProductID, req.Quantity)
		if err != nil {
			if errors.Is(err, models.ErrDuplicateItem) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"message": "Product already in cart",
				})
			}
			log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not add product to cart",
				"error":   err.Error(),
			})
		}

		summary, err := h.cartService.Summary(custID)
		if err != nil {
			log.Printf("Error reading cart after add: %v", err)
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"message":  "Product added to cart",
				"quantity": item.Quantity,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Product added to cart",
			"quantity":     item.Quantity,
			"num_of_items": summary.NumOfItems,
			"total_price":  summary.TotalPrice,
		})
	}

	sc, sess, err := h.loadSessionCart(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open cart",
			"error":   err.Error(),
		})
	}
	sc.Add(req.ProductID, req.Quantity, false)
	// Resolve before saving so entries pruned here land in the session too.
	lines, err := h.cartService.ResolveGuest(sc)
	if err != nil {
		log.Printf("Error resolving guest cart after add: %v", err)
	}
	if err := saveSessionCart(sess, sc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save cart",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Product added to cart",
		"quantity":     req.Quantity,
		"num_of_items": sc.ItemCount(),
		"total_price":  cart.TotalPrice(lines),
	})
}

// HandleUpdateItem sets the exact quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
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

	product, err := h.cartService.GetProduct(req.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve product",
			"error":   err.Error(),
		})
	}
	if req.Quantity > product.Stock {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Insufficient stock. A maximum of %d items is available.", product.Stock),
			"error":   models.ErrInsufficientStock.Error(),
		})
	}

	if custID, ok := customerID(c); ok {
		if err := h.cartService.UpdateItem(custID, req.ProductID, req.Quantity); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"message": "Product is not in the cart",
				})
			}
			log.Printf("Error updating cart item %s: %v", req.ProductID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update cart item",
				"error":   err.Error(),
			})
		}
		summary, err := h.cartService.Summary(custID)
		if err != nil {
			log.Printf("Error reading cart after update: %v", err)
			return c.JSON(fiber.Map{"message": "Cart item updated", "quantity": req.Quantity})
		}
		return c.JSON(fiber.Map{
			"message":      "Cart item updated",
			"quantity":     req.Quantity,
			"num_of_items": summary.NumOfItems,
			"total_price":  summary.TotalPrice,
		})
	}

	sc, sess, err := h.loadSessionCart(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open cart",
			"error":   err.Error(),
		})
	}
	sc.Update(req.ProductID, req.Quantity)
	lines, err := h.cartService.ResolveGuest(sc)
	if err != nil {
		log.Printf("Error resolving guest cart after update: %v", err)
	}
	if err := saveSessionCart(sess, sc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Cart item updated",
		"quantity":     req.Quantity,
		"num_of_items": sc.ItemCount(),
		"total_price":  cart.TotalPrice(lines),
	})
}

// HandleRemoveItem deletes one product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	productID := c.Params("productID")

	if custID, ok := customerID(c); ok {
		if err := h.cartService.RemoveItem(custID, productID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"message": "Product is not in the cart",
				})
			}
			log.Printf("Error removing cart item %s: %v", productID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not remove cart item",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "Product removed from cart"})
	}

	sc, sess, err := h.loadSessionCart(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open cart",
			"error":   err.Error(),
		})
	}
	sc.Remove(productID)
	if err := saveSessionCart(sess, sc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Product removed from cart",
		"num_of_items": sc.ItemCount(),
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if custID, ok := customerID(c); ok {
		if err := h.cartService.Clear(custID); err != nil {
			log.Printf("Error clearing cart for customer %s: %v", custID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not clear cart",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "Cart cleared"})
	}

	sc, sess, err := h.loadSessionCart(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open cart",
			"error":   err.Error(),
		})
	}
	sc.Clear()
	if err := saveSessionCart(sess, sc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
