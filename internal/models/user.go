package models

import "golang.org/x/crypto/bcrypt"

// Role gates which console an account may use.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleShipper  Role = "shipper"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleShipper || r == RoleCustomer
}

// User is an account: back-office employee, courier or storefront customer.
type User struct {
	Record
	Email        string `gorm:"size:255;uniqueIndex" json:"email"`
	FullName     string `json:"fullName"`
	Phone        string `gorm:"size:32" json:"phone"`
	Role         Role   `gorm:"size:16;index" json:"role"`
	PasswordHash string `json:"-"`
	IsActive     bool   `gorm:"not null" json:"isActive"`
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
