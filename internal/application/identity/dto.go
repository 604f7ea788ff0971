package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/customer"
)

// RegisterRequest is the storefront sign-up form
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=200"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	FirstName    string `json:"first_name" binding:"max=100"`
	LastName     string `json:"last_name" binding:"max=100"`
	Locale       string `json:"locale" binding:"omitempty,locale"`
	ReferralCode string `json:"referral_code" binding:"omitempty,max=16"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest carries the current and new password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest changes personal details
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=40"`
	Locale    string `json:"locale" binding:"omitempty,locale"`
}

// CustomerResponse is the account view returned by me and after sign-up
type CustomerResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	FullName        string     `json:"full_name"`
	Phone           string     `json:"phone,omitempty"`
	PreferredLocale string     `json:"preferred_locale,omitempty"`
	Role            string     `json:"role"`
	ReferralCode    string     `json:"referral_code"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TokenResponse is an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Customer CustomerResponse `json:"customer"`
	Tokens   TokenResponse    `json:"tokens"`
}

// LogoutInput identifies the access token being revoked
type LogoutInput struct {
	CustomerID uuid.UUID
	TokenJTI   string
	ExpiresAt  time.Time
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		FullName:        c.FullName(),
		Phone:           c.Phone,
		PreferredLocale: c.PreferredLocale,
		Role:            string(c.Role),
		ReferralCode:    c.ReferralCode,
		LastLoginAt:     c.LastLoginAt,
		CreatedAt:       c.CreatedAt,
	}
}
