package redemption

import (
	"context"
	"fmt"
	"log"
	"time"

	"nimwema/internal/models"
	"nimwema/internal/repositories"
)

// MerchantInfo identifies the merchant consuming a voucher.
type MerchantInfo struct {
	ID       uint   `json:"-"`
	Name     string `json:"-"`
	Phone    string `json:"-"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// Service is the redemption engine: it consumes vouchers with
// at-most-once semantics and records the receipt.
type Service interface {
	Redeem(ctx context.Context, code string, merchant MerchantInfo) (*models.Voucher, *models.Redemption, error)
	IsValid(ctx context.Context, code string) (bool, error)
	ExpireOld(ctx context.Context) (int64, error)
}

// Cache is the subset of caching operations the engine needs.
type Cache interface {
	CacheVoucher(ctx context.Context, v *models.Voucher) error
	GetVoucher(ctx context.Context, code string) (*models.Voucher, error)
	InvalidateVoucher(ctx context.Context, code string) error
}

type service struct {
	repo  repositories.VoucherRepository
	cache Cache
}

// NewService creates a new redemption service.
func NewService(repo repositories.VoucherRepository, cache Cache) Service {
	if repo == nil {
		panic("voucher repository is required")
	}
	return &service{repo: repo, cache: cache}
}

// Redeem flips the voucher from pending to redeemed and writes the
// redemption receipt in a single transaction. The conditional update
// guarantees exactly one winner under concurrent attempts; losers get
// a typed error naming the cause.
func (s *service) Redeem(ctx context.Context, code string, merchant MerchantInfo) (*models.Voucher, *models.Redemption, error) {
	if merchant.ID == 0 {
		return nil, nil, ErrInvalidMerchant
	}

	now := time.Now()
	var redeemed *models.Voucher
	var receipt *models.Redemption

	err := s.repo.ExecuteInTransaction(func(tx repositories.VoucherRepository) error {
		rows, err := tx.MarkRedeemed(ctx, code, repositories.RedeemParams{
			MerchantID:   merchant.ID,
			MerchantName: merchant.Name,
			Now:          now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyFailure(tx, code, now)
		}

		v, err := tx.GetByCode(code)
		if err != nil {
			return err
		}

		r := &models.Redemption{
			VoucherID:     v.ID,
			MerchantID:    merchant.ID,
			MerchantName:  merchant.Name,
			MerchantPhone: merchant.Phone,
			Location:      merchant.Location,
			Amount:        v.Amount,
			Currency:      v.Currency,
			Notes:         merchant.Notes,
		}
		if err := tx.CreateRedemption(r); err != nil {
			return err
		}

		redeemed = v
		receipt = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateVoucher(ctx, code); err != nil {
			log.Printf("failed to invalidate voucher cache %s: %v", code, err)
		}
	}

	return redeemed, receipt, nil
}

// classifyFailure distinguishes why the conditional update matched
// nothing: unknown code, a concurrent or earlier redemption, expiry,
// or a cancelled voucher.
func (s *service) classifyFailure(tx repositories.VoucherRepository, code string, now time.Time) error {
	v, err := tx.GetByCode(code)
	if err != nil {
		if err == repositories.ErrVoucherNotFound {
			return ErrVoucherNotFound
		}
		return err
	}

	switch v.Status {
	case models.VoucherStatusRedeemed:
		return ErrAlreadyRedeemed
	case models.VoucherStatusExpired:
		return ErrVoucherExpired
	case models.VoucherStatusPending:
		if !v.ExpiresAt.After(now) {
			return ErrVoucherExpired
		}
		return ErrVoucherNotRedeemable
	default:
		return fmt.Errorf("%w: status %s", ErrVoucherNotRedeemable, v.Status)
	}
}

// IsValid is the pre-flight check used by merchant UIs. It never
// mutates; a stale cached answer is bounded by the cache TTL and the
// atomic update in Redeem remains the source of truth.
func (s *service) IsValid(ctx context.Context, code string) (bool, error) {
	if s.cache != nil {
		if v, err := s.cache.GetVoucher(ctx, code); err == nil {
			return v.Status == models.VoucherStatusPending && v.ExpiresAt.After(time.Now()), nil
		}
	}

	v, err := s.repo.GetByCode(code)
	if err != nil {
		if err == repositories.ErrVoucherNotFound {
			return false, nil
		}
		return false, err
	}

	if s.cache != nil {
		if err := s.cache.CacheVoucher(ctx, v); err != nil {
			log.Printf("failed to cache voucher %s: %v", code, err)
		}
	}

	return v.Status == models.VoucherStatusPending && v.ExpiresAt.After(time.Now()), nil
}

// ExpireOld sweeps pending vouchers past their expiry. Safe to run on
// a schedule; a second run right after the first changes nothing.
func (s *service) ExpireOld(ctx context.Context) (int64, error) {
	return s.repo.ExpireOld(ctx, time.Now())
}
