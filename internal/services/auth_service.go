package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// AuthService handles business logic for authentication and authorization.
// Login is OTP-based: a verified code takes the place of a password.
type AuthService struct {
	otpService   *OtpService
	customerRepo repositories.CustomerRepository
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(otpService *OtpService, customerRepo repositories.CustomerRepository, jwtSecret string) *AuthService {
	return &AuthService{
		otpService:   otpService,
		customerRepo: customerRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}
}

// Login verifies the OTP for the mobile number, provisions the customer
// profile on first login, and returns a JWT token with the customer.
func (s *AuthService) Login(ctx context.Context, mobile string, code int) (string, *models.Customer, error) {
	user, err := s.otpService.Verify(ctx, mobile, code)
	if err != nil {
		return "", nil, err
	}

	customer, err := s.ensureCustomer(user)
	if err != nil {
		return "", nil, err
	}

	// Generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID,
		"customer_id": customer.ID,
		"mobile":      user.Mobile,
		"exp":         time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":         time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, customer, nil
}

// ensureCustomer returns the user's customer profile, creating it on the
// first verified login.
func (s *AuthService) ensureCustomer(user *models.User) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByUserID(user.ID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer = &models.Customer{
		UserID:    user.ID,
		Mobile:    user.Mobile,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, fmt.Errorf("failed to provision customer: %w", err)
	}
	return customer, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
