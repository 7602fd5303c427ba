package services_test

import (
	"context"
	"testing"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"

	"github.com/stretchr/testify/assert"
)

type authFixture struct {
	userRepo     *repositories.MockUserRepository
	customerRepo *repositories.MockCustomerRepository
	otpService   *services.OtpService
	svc          *services.AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		userRepo:     repositories.NewMockUserRepository(),
		customerRepo: repositories.NewMockCustomerRepository(),
	}
	f.otpService = services.NewOtpService(f.userRepo, repositories.NewMemoryOtpStore(), nil)
	f.svc = services.NewAuthService(f.otpService, f.customerRepo, "test_jwt_secret")
	return f
}

func TestAuthService_LoginWithValidOtp(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	code, err := f.otpService.Issue(ctx, "09120000001")
	assert.NoError(t, err)

	token, customer, err := f.svc.Login(ctx, "09120000001", code)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "09120000001", customer.Mobile)

	claims, err := f.svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, customer.ID, claims["customer_id"])
	assert.Equal(t, customer.UserID, claims["user_id"])
	assert.Equal(t, "09120000001", claims["mobile"])
}

func TestAuthService_LoginWithInvalidOtp(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	code, err := f.otpService.Issue(ctx, "09120000001")
	assert.NoError(t, err)

	wrong := code + 1
	if wrong > 99999 {
		wrong = 10000
	}
	_, _, err = f.svc.Login(ctx, "09120000001", wrong)
	assert.ErrorIs(t, err, models.ErrInvalidOtp)

	// No profile is provisioned on a failed login.
	_, err = f.customerRepo.GetByMobile("09120000001")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthService_ProvisionsCustomerOnFirstLoginOnly(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	code, err := f.otpService.Issue(ctx, "09120000001")
	assert.NoError(t, err)

	_, first, err := f.svc.Login(ctx, "09120000001", code)
	assert.NoError(t, err)

	code, err = f.otpService.Issue(ctx, "09120000001")
	assert.NoError(t, err)

	_, second, err := f.svc.Login(ctx, "09120000001", code)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAuthService_ValidateTokenRejectsTampering(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	code, err := f.otpService.Issue(ctx, "09120000001")
	assert.NoError(t, err)

	token, _, err := f.svc.Login(ctx, "09120000001", code)
	assert.NoError(t, err)

	_, err = f.svc.ValidateToken(token + "x")
	assert.Error(t, err)

	other := services.NewAuthService(f.otpService, f.customerRepo, "another_secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
