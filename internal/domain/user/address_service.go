// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"gorm.io/gorm"
)

// ErrAddressNotFound is returned when an address does not exist or does not
// belong to the requesting user.
var ErrAddressNotFound = errors.New("address not found")

// AddressService handles the per-user address book
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Phone   string `json:"phone"`
}

// ListForUser retrieves all addresses belonging to a user
func (s *AddressService) ListForUser(userID uint) ([]Address, error) {
	var addresses []Address
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Get retrieves an address, scoped to its owner. A lookup for another user's
// address reports ErrAddressNotFound rather than leaking its existence.
func (s *AddressService) Get(ctx context.Context, userID, addressID uint) (*Address, error) {
	var addr Address
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}
	return &addr, nil
}

// Create adds a new address to a user's address book
func (s *AddressService) Create(userID uint, req *CreateAddressRequest) (*Address, error) {
	addr := Address{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Street:  strings.TrimSpace(req.Street),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		ZipCode: strings.TrimSpace(req.ZipCode),
		Phone:   strings.TrimSpace(req.Phone),
	}
	if err := s.db.Create(&addr).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &addr, nil
}

// Delete removes an address, scoped to its owner
func (s *AddressService) Delete(userID, addressID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
