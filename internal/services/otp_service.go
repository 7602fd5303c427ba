package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/rabbitmq"
)

// OTP rate-limit parameters. The block after the daily limit lasts 60
// seconds in the upstream product even though it guards a daily counter;
// kept as specified pending product review (see DESIGN.md).
const (
	otpCooldown      = 60 * time.Second
	otpValidity      = 60 * time.Second
	otpDailyLimit    = 10
	otpBlockDuration = 60 * time.Second
	otpIPDailyLimit  = 200
	otpDailyWindow   = 24 * time.Hour
)

// OtpService issues and verifies one-time passcodes, rate-limited per
// mobile number and per source IP through an expiring counter store.
type OtpService struct {
	userRepo repositories.UserRepository
	store    repositories.OtpStore
	mqClient *rabbitmq.Client // nil in tests; delivery falls back to the log

	now func() time.Time
}

// NewOtpService creates a new OtpService.
func NewOtpService(userRepo repositories.UserRepository, store repositories.OtpStore, mqClient *rabbitmq.Client) *OtpService {
	return &OtpService{
		userRepo: userRepo,
		store:    store,
		mqClient: mqClient,
		now:      time.Now,
	}
}

func cooldownKey(mobile string) string { return "otp_limit:" + mobile }
func blockedKey(mobile string) string  { return "otp_blocked:" + mobile }
func dailyKey(mobile string) string    { return "otp_daily_count:" + mobile }
func ipDailyKey(ip string) string      { return "otp_ip_daily:" + ip }

// CanRequest checks whether a new OTP may be issued for the mobile number
// from the given IP. A denial is returned as *models.RateLimitedError with
// a retry-after hint. Hitting the daily limit also arms the block flag.
func (s *OtpService) CanRequest(ctx context.Context, mobile, ip string) error {
	blocked, err := s.store.Exists(ctx, blockedKey(mobile))
	if err != nil {
		return fmt.Errorf("failed to check block flag: %w", err)
	}
	if blocked {
		return &models.RateLimitedError{
			Reason:     "account temporarily blocked",
			RetryAfter: otpBlockDuration,
		}
	}

	cooling, err := s.store.Exists(ctx, cooldownKey(mobile))
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	if cooling {
		return &models.RateLimitedError{
			Reason:     "wait before requesting another code",
			RetryAfter: otpCooldown,
		}
	}

	dailyCount, err := s.store.GetCount(ctx, dailyKey(mobile))
	if err != nil {
		return fmt.Errorf("failed to read daily counter: %w", err)
	}
	if dailyCount >= otpDailyLimit {
		if err := s.store.Set(ctx, blockedKey(mobile), "1", otpBlockDuration); err != nil {
			return fmt.Errorf("failed to arm block flag: %w", err)
		}
		return &models.RateLimitedError{
			Reason:     "too many requests, account temporarily blocked",
			RetryAfter: otpBlockDuration,
		}
	}

	ipCount, err := s.store.GetCount(ctx, ipDailyKey(ip))
	if err != nil {
		return fmt.Errorf("failed to read IP counter: %w", err)
	}
	if ipCount >= otpIPDailyLimit {
		return &models.RateLimitedError{
			Reason:     "request limit for this address exceeded",
			RetryAfter: otpDailyWindow,
		}
	}

	return nil
}

// MarkRequested records an issuance: arms the per-mobile cooldown and
// increments the rolling daily counters for the mobile and the IP. The
// counters get their window TTL on first increment.
func (s *OtpService) MarkRequested(ctx context.Context, mobile, ip string) error {
	if err := s.store.Set(ctx, cooldownKey(mobile), "1", otpCooldown); err != nil {
		return fmt.Errorf("failed to arm cooldown: %w", err)
	}

	for _, key := range []string{dailyKey(mobile), ipDailyKey(ip)} {
		n, err := s.store.Incr(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to increment counter %s: %w", key, err)
		}
		if n == 1 {
			if err := s.store.Expire(ctx, key, otpDailyWindow); err != nil {
				return fmt.Errorf("failed to set counter window on %s: %w", key, err)
			}
		}
	}
	return nil
}

// Issue generates a fresh 5-digit code for the mobile number, stores it on
// the account (creating the account on first contact) and hands it to the
// delivery channel. The code is returned for the caller's bookkeeping, not
// for the response body.
func (s *OtpService) Issue(ctx context.Context, mobile string) (int, error) {
	user, err := s.userRepo.GetByMobile(mobile)
	if errors.Is(err, models.ErrNotFound) {
		user = &models.User{Mobile: mobile}
		if err := s.userRepo.Create(user); err != nil {
			return 0, fmt.Errorf("failed to create account for %s: %w", mobile, err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("failed to look up account for %s: %w", mobile, err)
	}

	code, err := randomOtpCode()
	if err != nil {
		return 0, fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.userRepo.SetOtp(user.ID, code, s.now()); err != nil {
		return 0, fmt.Errorf("failed to store otp: %w", err)
	}

	if s.mqClient != nil {
		if err := s.mqClient.PublishOtp(mobile, code); err != nil {
			// The code is stored and still verifiable; delivery is retried
			// by the user requesting again after the cooldown.
			log.Printf("Warning: failed to enqueue otp delivery for %s: %v", mobile, err)
		}
	} else {
		log.Printf("OTP for %s: %d", mobile, code)
	}

	return code, nil
}

// Verify checks the supplied code against the account's stored challenge.
// The challenge is valid only within the validity window from issuance; it
// is not consumed on success, only time-gated.
func (s *OtpService) Verify(ctx context.Context, mobile string, code int) (*models.User, error) {
	user, err := s.userRepo.GetByMobile(mobile)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidOtp
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account for %s: %w", mobile, err)
	}

	if user.Otp == 0 || user.Otp != code {
		return nil, models.ErrInvalidOtp
	}
	if user.OtpIssuedAt.IsZero() || s.now().Sub(user.OtpIssuedAt) > otpValidity {
		return nil, models.ErrInvalidOtp
	}
	return user, nil
}

// randomOtpCode returns a uniformly random code in [10000, 99999].
func randomOtpCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 10000, nil
}
