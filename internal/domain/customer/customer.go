package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access role of an account
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// PasswordCost is the bcrypt cost used for new password hashes
var PasswordCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
)

// Customer is a storefront account. Back-office staff are customers with the admin role.
type Customer struct {
	shared.BaseAggregateRoot
	Email           string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash    string     `gorm:"type:varchar(100);not null"`
	FirstName       string     `gorm:"type:varchar(100)"`
	LastName        string     `gorm:"type:varchar(100)"`
	Phone           string     `gorm:"type:varchar(40)"`
	PreferredLocale string     `gorm:"type:varchar(16)"`
	Role            Role       `gorm:"type:varchar(20);not null;default:'customer'"`
	ReferralCode    string     `gorm:"type:varchar(16);not null;uniqueIndex"`
	IsActive        bool       `gorm:"not null;default:true"`
	LastLoginAt     *time.Time
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer registers an active customer with a hashed password
func NewCustomer(email, password, firstName, lastName, referralCode string) (*Customer, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if referralCode == "" {
		return nil, shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code is required")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Role:              RoleCustomer,
		ReferralCode:      referralCode,
		IsActive:          true,
	}
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

// FullName returns first and last name joined, or the email when both are empty
func (c *Customer) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// UpdateProfile changes personal details
func (c *Customer) UpdateProfile(firstName, lastName, phone, locale string) error {
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	if len(phone) > 40 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 40 characters")
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.Phone = strings.TrimSpace(phone)
	c.PreferredLocale = locale
	c.touch()
	return nil
}

// ChangePassword replaces the password after verifying the current one
func (c *Customer) ChangePassword(current, next string) error {
	if !c.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	c.touch()
	return nil
}

// VerifyPassword reports whether password matches the stored hash
func (c *Customer) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// PromoteToAdmin grants back-office access
func (c *Customer) PromoteToAdmin() {
	c.Role = RoleAdmin
	c.touch()
}

// IsAdmin reports whether the account has back-office access
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Deactivate blocks further logins
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.touch()
}

// RecordLogin stores the time of a successful login
func (c *Customer) RecordLogin(at time.Time) {
	c.LastLoginAt = &at
	c.touch()
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AggregateTypeCustomer is the aggregate type of customer events
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerRegistered is published after a successful registration
const EventTypeCustomerRegistered = "CustomerRegistered"

// CustomerRegisteredEvent is published when a customer signs up
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
}

// NewCustomerRegisteredEvent creates a CustomerRegisteredEvent
func NewCustomerRegisteredEvent(c *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Email:           c.Email,
	}
}

// Repository persists customers
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByReferralCode(ctx context.Context, code string) (*Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByReferralCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}
