// internal/domain/user/entity.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a storefront account
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string         `gorm:"not null;size:255" json:"-"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a saved delivery address
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Street    string    `gorm:"not null;size:255" json:"street"`
	City      string    `gorm:"not null;size:100" json:"city"`
	State     string    `gorm:"not null;size:100" json:"state"`
	ZipCode   string    `gorm:"not null;size:20" json:"zip_code"`
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (User) TableName() string    { return "users" }
func (Address) TableName() string { return "addresses" }

// BeforeCreate lowercases email before persisting
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// Format denormalizes the address to the single-line form stored on orders.
func (a *Address) Format() string {
	return fmt.Sprintf("%s, %s, %s, %s %s", a.Name, a.Street, a.City, a.State, a.ZipCode)
}
