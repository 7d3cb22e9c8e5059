package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nimwema/internal/models"

	"gorm.io/gorm"
)

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(v *models.Voucher) error {
	if err := r.db.Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

func (r *voucherRepository) GetByCode(code string) (*models.Voucher, error) {
	var v models.Voucher
	if err := r.db.First(&v, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	return &v, nil
}

func (r *voucherRepository) ListByOrder(orderID string) ([]*models.Voucher, error) {
	var vouchers []*models.Voucher
	err := r.db.Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&vouchers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return vouchers, nil
}

func (r *voucherRepository) MarkRedeemed(ctx context.Context, code string, p RedeemParams) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("code = ? AND status = ? AND expires_at > ?",
			code, models.VoucherStatusPending, p.Now).
		Updates(map[string]interface{}{
			"status":        models.VoucherStatusRedeemed,
			"redeemed_at":   p.Now,
			"merchant_id":   p.MerchantID,
			"merchant_name": p.MerchantName,
			"updated_at":    p.Now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to redeem voucher: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *voucherRepository) CreateRedemption(redemption *models.Redemption) error {
	if err := r.db.Create(redemption).Error; err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

func (r *voucherRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("status = ? AND expires_at <= ?", models.VoucherStatusPending, now).
		Updates(map[string]interface{}{
			"status":     models.VoucherStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire vouchers: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *voucherRepository) ExecuteInTransaction(fn func(VoucherRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&voucherRepository{db: tx})
	})
}
