package identity

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an account belonging to a tenant
type User struct {
	shared.TenantEntity
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_tenant_email,priority:2"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	FirstName    string     `gorm:"type:varchar(100);not null"`
	LastName     string     `gorm:"type:varchar(100);not null"`
	RoleID       *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with the given plaintext password
func NewUser(tenantID uuid.UUID, email, password, firstName, lastName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "User email cannot be empty")
	}
	u := &User{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Active:       true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores the password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// FullName returns the display name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AssignRole sets the user's role
func (u *User) AssignRole(roleID uuid.UUID) {
	u.RoleID = &roleID
	u.Touch()
}

// Deactivate blocks the user from logging in
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
}
