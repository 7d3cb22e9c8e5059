package repositories

import (
	"fmt"

	"nimwema/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository is the persistence contract for merchant accounts.
type MerchantRepository interface {
	Create(m *models.Merchant) error
	GetByID(id uint) (*models.Merchant, error)
	GetByPhone(phone string) (*models.Merchant, error)
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(m *models.Merchant) error {
	if err := r.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *merchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.First(&m, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &m, nil
}

func (r *merchantRepository) GetByPhone(phone string) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.First(&m, "phone = ?", phone).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &m, nil
}
