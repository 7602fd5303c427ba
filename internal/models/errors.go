package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain error kinds surfaced by the cart and OTP cores. The surrounding
// layer maps these to localized, user-facing messages.
var (
	// ErrNotFound signals that a referenced product, cart, item or account
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateItem signals an add of a product that is already in the
	// durable cart.
	ErrDuplicateItem = errors.New("product already in cart")

	// ErrInvalidOtp signals a wrong or expired one-time passcode.
	ErrInvalidOtp = errors.New("invalid or expired otp")

	// ErrInsufficientStock signals a requested quantity above the product's
	// available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity signals a non-positive quantity where a positive
	// one is required.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// RateLimitedError reports a denied OTP request together with a retry-after
// hint for the client.
type RateLimitedError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("otp request denied: %s (retry after %s)", e.Reason, e.RetryAfter)
}

// MergeError reports cart entries that could not be written to the durable
// cart during the login-time merge. Entries merged before the failure stay
// committed.
type MergeError struct {
	FailedProductIDs []string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cart merge incomplete for products: %s", strings.Join(e.FailedProductIDs, ", "))
}
