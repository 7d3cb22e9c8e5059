package repositories

import (
	"context"
	"fmt"
	"time"

	"nimwema/internal/models"

	"gorm.io/gorm"
)

// RequestRepository is the persistence contract for voucher requests.
type RequestRepository interface {
	Create(req *models.Request) error
	GetByID(id uint) (*models.Request, error)
	ListOpen(limit, offset int) ([]*models.Request, error)
	MarkFulfilled(ctx context.Context, ids []uint) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(req *models.Request) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *requestRepository) GetByID(id uint) (*models.Request, error) {
	var req models.Request
	if err := r.db.First(&req, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (r *requestRepository) ListOpen(limit, offset int) ([]*models.Request, error) {
	var requests []*models.Request
	err := r.db.Where("status = ? AND expires_at > ?",
		models.RequestStatusPending, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) MarkFulfilled(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id IN ? AND status = ?", ids, models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":     models.RequestStatusFulfilled,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark requests fulfilled: %w", err)
	}
	return nil
}
