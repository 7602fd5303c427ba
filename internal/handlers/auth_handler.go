package handlers

import (
	"errors"
	"log"

	"bazaar/internal/cart"
	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler handles HTTP requests for OTP-based authentication.
type AuthHandler struct {
	authService  *services.AuthService
	otpService   *services.OtpService
	mergeService *services.MergeService
	sessions     *session.Store
	validate     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, otpService *services.OtpService, mergeService *services.MergeService, sessions *session.Store) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		otpService:   otpService,
		mergeService: mergeService,
		sessions:     sessions,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/otp/request", h.HandleRequestOtp)
	authRoutes.Post("/otp/verify", h.HandleVerifyOtp)
}

// OtpRequest represents the request body for requesting a code.
type OtpRequest struct {
	Mobile string `json:"mobile" validate:"required,len=11,numeric"`
}

// VerifyRequest represents the request body for verifying a code.
type VerifyRequest struct {
	Mobile string `json:"mobile" validate:"required,len=11,numeric"`
	Code   int    `json:"code" validate:"required,gte=10000,lte=99999"`
}

// HandleRequestOtp rate-limits and issues a one-time passcode for the
// mobile number. The code travels over the delivery channel, never in the
// response.
func (h *AuthHandler) HandleRequestOtp(c *fiber.Ctx) error {
	var req OtpRequest
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

	ctx := c.UserContext()
	ip := c.IP()

	if err := h.otpService.CanRequest(ctx, req.Mobile, ip); err != nil {
		var rateLimited *models.RateLimitedError
		if errors.As(err, &rateLimited) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message":     "Too many requests",
				"error":       rateLimited.Reason,
				"retry_after": int(rateLimited.RetryAfter.Seconds()),
			})
		}
		log.Printf("Error checking otp limits for %s: %v", req.Mobile, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process request",
			"error":   err.Error(),
		})
	}

	if _, err := h.otpService.Issue(ctx, req.Mobile); err != nil {
		log.Printf("Error issuing otp for %s: %v", req.Mobile, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue code",
			"error":   err.Error(),
		})
	}

	if err := h.otpService.MarkRequested(ctx, req.Mobile, ip); err != nil {
		// The code went out; a bookkeeping failure must not fail the request.
		log.Printf("Warning: failed to record otp issuance for %s: %v", req.Mobile, err)
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent",
	})
}

// HandleVerifyOtp verifies the code, logs the account in and folds the
// guest session cart into the customer's durable cart.
func (h *AuthHandler) HandleVerifyOtp(c *fiber.Ctx) error {
	var req VerifyRequest
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

	token, customer, err := h.authService.Login(c.UserContext(), req.Mobile, req.Code)
	if err != nil {
		if errors.Is(err, models.ErrInvalidOtp) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
				"error":   "wrong or expired code",
			})
		}
		log.Printf("Error during login for %s: %v", req.Mobile, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
			"error":   err.Error(),
		})
	}

	// The merge runs once per login, right after verification and before
	// the response goes out.
	response := fiber.Map{
		"message": "Login successful",
		"token":   token,
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		log.Printf("Warning: could not open session for cart merge: %v", err)
		return c.JSON(response)
	}
	raw, _ := sess.Get(sessionCartKey).(string)
	sc, err := cart.Decode(raw)
	if err != nil {
		log.Printf("Warning: unreadable session cart during merge: %v", err)
		return c.JSON(response)
	}

	if mergeErr := h.mergeService.Merge(sc, customer.UserID); mergeErr != nil {
		log.Printf("Error merging session cart for customer %s: %v", customer.ID, mergeErr)
		response["cart_merge_error"] = mergeErr.Error()
	}
	if err := saveSessionCart(sess, sc); err != nil {
		log.Printf("Warning: failed to persist session cart after merge: %v", err)
	}

	return c.JSON(response)
}
