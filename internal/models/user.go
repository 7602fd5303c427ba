package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the store. Authentication is OTP-based, so
// the account is identified by its mobile number and carries the most recent
// one-time passcode challenge instead of a password.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Mobile      string    `json:"mobile" gorm:"uniqueIndex;type:varchar(11)" validate:"required,len=11,numeric"`
	FirstName   string    `json:"first_name" validate:"omitempty,max=200"`
	LastName    string    `json:"last_name" validate:"omitempty,max=200"`
	Otp         int       `json:"-"` // No json tag exposure for the active code
	OtpIssuedAt time.Time `json:"-"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Customer is the commerce-side profile for a verified account. It is
// created implicitly the first time the account passes OTP verification and
// owns the persistent cart, wishlist and orders.
type Customer struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string `json:"user_id" gorm:"uniqueIndex;type:varchar(36)" validate:"required"`
	Mobile     string `json:"mobile" gorm:"uniqueIndex;type:varchar(11)" validate:"required,len=11,numeric"`
	FirstName  string `json:"first_name" validate:"omitempty,max=200"`
	LastName   string `json:"last_name" validate:"omitempty,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
