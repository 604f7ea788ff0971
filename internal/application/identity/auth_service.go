// Package identity implements customer registration, login and token lifecycle.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
	"github.com/statyba/storefront/internal/infrastructure/auth"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const referralCodeAttempts = 5

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	ReferralsEnabled bool
	Currency         valueobject.Currency
	DefaultLocale    string
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		ReferralsEnabled: true,
		Currency:         valueobject.DefaultCurrency,
		DefaultLocale:    "en",
	}
}

// AuthService handles authentication operations
type AuthService struct {
	customerRepo   customer.Repository
	txScope        transaction.Scope
	jwtService     *auth.JWTService
	revocations    auth.RevocationList
	eventPublisher shared.EventPublisher
	config         AuthServiceConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new authentication service.
// revocations may be nil, in which case logout only discards tokens client-side.
func NewAuthService(
	customerRepo customer.Repository,
	txScope transaction.Scope,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		customerRepo: customerRepo,
		txScope:      txScope,
		jwtService:   jwtService,
		revocations:  revocations,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AuthService) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	shared.PublishPending(ctx, s.eventPublisher, aggregates...)
}

// Register creates a customer account. A referral code, when given, must
// belong to an existing customer; the pending referral is stored in the same
// transaction as the account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "register")
	defer span.End()

	email := customer.NormalizeEmail(req.Email)
	exists, err := s.customerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	code, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	inviteCode := referral.NormalizeCode(req.ReferralCode)
	if inviteCode != "" && !s.config.ReferralsEnabled {
		s.logger.Debug("ignoring referral code, referrals disabled")
		inviteCode = ""
	}

	var (
		c   *customer.Customer
		ref *referral.Referral
	)
	err = s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var referrer *customer.Customer
		if inviteCode != "" {
			if !referral.IsValidCode(inviteCode) {
				return referral.ErrInvalidCode
			}
			var err error
			referrer, err = repos.Customers().FindByReferralCode(ctx, inviteCode)
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Info("registration with unknown referral code", zap.String("code", inviteCode))
				return referral.ErrInvalidCode
			}
			if err != nil {
				return err
			}
		}

		var err error
		c, err = customer.NewCustomer(email, req.Password, req.FirstName, req.LastName, code)
		if err != nil {
			return err
		}
		locale := req.Locale
		if locale == "" {
			locale = s.config.DefaultLocale
		}
		if err := c.UpdateProfile(c.FirstName, c.LastName, "", locale); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, c); err != nil {
			return err
		}

		if referrer == nil {
			return nil
		}
		ref, err = referral.New(referrer.ID, c.ID, inviteCode, s.config.Currency)
		if err != nil {
			return err
		}
		return repos.Referrals().Save(ctx, ref)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrCustomerID, c.ID.String())
	s.publishDomainEvents(ctx, c)
	if ref != nil {
		s.publishDomainEvents(ctx, ref)
	}
	s.logger.Info("customer registered",
		zap.String("customer_id", c.ID.String()),
		zap.Bool("referred", ref != nil),
	)
	return s.issue(c)
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	c, err := s.customerRepo.FindByEmail(ctx, customer.NormalizeEmail(req.Email))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !c.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.String("customer_id", c.ID.String()))
		return nil, errInvalidCredentials
	}
	if !c.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	c.RecordLogin(s.now())
	if err := s.customerRepo.Save(ctx, c); err != nil {
		// login still succeeds
		s.logger.Error("failed to record login", zap.String("customer_id", c.ID.String()), zap.Error(err))
	}
	return s.issue(c)
}

// Refresh exchanges a refresh token for a new pair. The customer is
// re-read so role and active flag changes take effect, and the presented
// refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err := auth.Check(ctx, s.revocations, claims); err != nil {
		if errors.Is(err, auth.ErrTokenRevoked) {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
		return nil, err
	}

	c, err := s.customerRepo.FindByID(ctx, claims.CustomerUUID())
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if s.revocations != nil {
		if err := s.revocations.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Error("failed to revoke used refresh token", zap.Error(err))
		}
	}

	result, err := s.issue(c)
	if err != nil {
		return nil, err
	}
	return &result.Tokens, nil
}

// Logout revokes the presented access token until it expires
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	s.logger.Info("customer logout", zap.String("customer_id", in.CustomerID.String()))
	if s.revocations == nil || in.TokenJTI == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, in.TokenJTI, max(in.ExpiresAt.Sub(s.now()), 0))
}

// Me returns the authenticated customer
func (s *AuthService) Me(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// UpdateProfile changes the customer's personal details
func (s *AuthService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req UpdateProfileRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	locale := req.Locale
	if locale == "" {
		locale = c.PreferredLocale
	}
	if err := c.UpdateProfile(req.FirstName, req.LastName, req.Phone, locale); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// ChangePassword replaces the password and revokes every token issued
// before the change. A fresh token pair is returned.
func (s *AuthService) ChangePassword(ctx context.Context, customerID uuid.UUID, req ChangePasswordRequest) (*TokenResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := c.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	if s.revocations != nil {
		if err := s.revocations.RevokeCustomer(ctx, c.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
			return nil, err
		}
	}
	s.logger.Info("customer password changed", zap.String("customer_id", c.ID.String()))

	result, err := s.issue(c)
	if err != nil {
		return nil, err
	}
	return &result.Tokens, nil
}

// PromoteToAdmin grants back-office access to the account with email
func (s *AuthService) PromoteToAdmin(ctx context.Context, email string) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByEmail(ctx, customer.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !c.IsAdmin() {
		c.PromoteToAdmin()
		if err := s.customerRepo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

func (s *AuthService) issue(c *customer.Customer) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		CustomerID: c.ID,
		Email:      c.Email,
		Role:       string(c.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &AuthResult{
		Customer: ToCustomerResponse(c),
		Tokens: TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
			TokenType:             pair.TokenType,
		},
	}, nil
}

func (s *AuthService) newReferralCode(ctx context.Context) (string, error) {
	for range referralCodeAttempts {
		code := referral.NewCode()
		taken, err := s.customerRepo.ExistsByReferralCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", shared.NewDomainError("INTERNAL_ERROR", "Could not allocate a referral code")
}
