// Package auth issues and validates customer JWTs.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingCustomerID  = errors.New("missing customer_id in claims")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrMissingTokenSecret = errors.New("jwt secret is required")
)

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role,omitempty"`
	TokenType  TokenType `json:"token_type"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// Subject identifies whom a token pair is issued to
type Subject struct {
	CustomerID uuid.UUID
	Email      string
	Role       string
}

// JWTService handles JWT token operations
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	now               func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingTokenSecret
	}
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}
	accessExp := cfg.AccessTokenExpiration
	if accessExp <= 0 {
		accessExp = 15 * time.Minute
	}
	refreshExp := cfg.RefreshTokenExpiration
	if refreshExp <= 0 {
		refreshExp = 7 * 24 * time.Hour
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  accessExp,
		refreshExpiration: refreshExp,
		issuer:            cfg.Issuer,
		now:               time.Now,
	}, nil
}

// GenerateTokenPair generates both access and refresh tokens
func (s *JWTService) GenerateTokenPair(sub Subject) (*TokenPair, error) {
	if sub.CustomerID == uuid.Nil {
		return nil, ErrMissingCustomerID
	}
	now := s.now()

	access := &Claims{
		RegisteredClaims: s.registered(sub.CustomerID, now, s.accessExpiration),
		CustomerID:       sub.CustomerID.String(),
		Email:            sub.Email,
		Role:             sub.Role,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.sign(access, s.accessSecret)
	if err != nil {
		return nil, err
	}

	// refresh tokens carry identity only; role is re-read on refresh
	refresh := &Claims{
		RegisteredClaims: s.registered(sub.CustomerID, now, s.refreshExpiration),
		CustomerID:       sub.CustomerID.String(),
		TokenType:        TokenTypeRefresh,
	}
	refreshToken, err := s.sign(refresh, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(customerID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   customerID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}
	if _, err := uuid.Parse(claims.CustomerID); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// CustomerUUID parses the customer ID from claims
func (c *Claims) CustomerUUID() uuid.UUID {
	id, _ := uuid.Parse(c.CustomerID)
	return id
}

// IssuedAtTime returns the token's issued-at time
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires, never negative
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
