package repositories

import (
	"context"
	"fmt"
	"time"

	"nimwema/internal/models"

	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Recipients").First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) GetByPaymentReference(ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Recipients").First(&order, "payment_reference = ?", ref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by reference: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListBySender(phone string, limit, offset int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.Preload("Recipients").
		Where("sender_phone = ?", phone).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatusIf(ctx context.Context, id string, from []string, to string, tsColumn string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if tsColumn != "" {
		updates[tsColumn] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update order status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) SetPaymentInitiated(ctx context.Context, id, providerRef string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_reference":   providerRef,
			"payment_initiated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record payment initiation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) GetStats(ctx context.Context) ([]models.OrderStats, error) {
	var stats []models.OrderStats
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total), 0) as volume").
		Group("status").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}
	return stats, nil
}

func (r *orderRepository) ExecuteInTransaction(fn func(OrderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}
