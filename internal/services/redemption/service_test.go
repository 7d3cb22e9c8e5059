package redemption

import (
	"context"
	"sync"
	"testing"
	"time"

	"nimwema/internal/models"
	"nimwema/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memVoucherRepo is an in-memory VoucherRepository. MarkRedeemed is a
// compare-and-set under a mutex, matching the conditional UPDATE the
// real repository issues.
type memVoucherRepo struct {
	mu       sync.Mutex
	nextID   uint
	byCode   map[string]*models.Voucher
	receipts []*models.Redemption
}

func newMemVoucherRepo() *memVoucherRepo {
	return &memVoucherRepo{byCode: make(map[string]*models.Voucher)}
}

func (m *memVoucherRepo) Create(v *models.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byCode[v.Code]; exists {
		return repositories.ErrDuplicateCode
	}
	m.nextID++
	v.ID = m.nextID
	cp := *v
	m.byCode[v.Code] = &cp
	return nil
}

func (m *memVoucherRepo) GetByCode(code string) (*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byCode[code]
	if !ok {
		return nil, repositories.ErrVoucherNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVoucherRepo) ListByOrder(orderID string) ([]*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Voucher
	for _, v := range m.byCode {
		if v.OrderID == orderID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memVoucherRepo) MarkRedeemed(ctx context.Context, code string, p repositories.RedeemParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byCode[code]
	if !ok {
		return 0, nil
	}
	if v.Status != models.VoucherStatusPending || !v.ExpiresAt.After(p.Now) {
		return 0, nil
	}
	v.Status = models.VoucherStatusRedeemed
	v.MerchantID = &p.MerchantID
	v.MerchantName = p.MerchantName
	redeemedAt := p.Now
	v.RedeemedAt = &redeemedAt
	return 1, nil
}

func (m *memVoucherRepo) CreateRedemption(r *models.Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.receipts = append(m.receipts, &cp)
	return nil
}

func (m *memVoucherRepo) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.byCode {
		if v.Status == models.VoucherStatusPending && !v.ExpiresAt.After(now) {
			v.Status = models.VoucherStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memVoucherRepo) ExecuteInTransaction(fn func(repositories.VoucherRepository) error) error {
	return fn(m)
}

func seedVoucher(repo *memVoucherRepo, code, status string, expiresAt time.Time) {
	repo.Create(&models.Voucher{
		Code:           code,
		Amount:         25,
		Currency:       "USD",
		RecipientPhone: "0811111111",
		Status:         status,
		OrderID:        "ORD-1",
		ExpiresAt:      expiresAt,
	})
}

func merchant() MerchantInfo {
	return MerchantInfo{ID: 42, Name: "Kin Market", Phone: "0899999999", Location: "Gombe"}
}

func TestRedeem_Success(t *testing.T) {
	repo := newMemVoucherRepo()
	seedVoucher(repo, "123456789012", models.VoucherStatusPending, time.Now().Add(time.Hour))
	svc := NewService(repo, nil)

	v, receipt, err := svc.Redeem(context.Background(), "123456789012", merchant())
	require.NoError(t, err)

	assert.Equal(t, models.VoucherStatusRedeemed, v.Status)
	require.NotNil(t, v.RedeemedAt)
	require.NotNil(t, v.MerchantID)
	assert.Equal(t, uint(42), *v.MerchantID)
	assert.Equal(t, "Kin Market", v.MerchantName)

	assert.Equal(t, v.ID, receipt.VoucherID)
	assert.Equal(t, uint(42), receipt.MerchantID)
	assert.Equal(t, "Kin Market", receipt.MerchantName)
	assert.Equal(t, 25.0, receipt.Amount)
	assert.Equal(t, "USD", receipt.Currency)
	assert.Equal(t, "Gombe", receipt.Location)
	assert.Len(t, repo.receipts, 1)
}

func TestRedeem_SecondAttemptFails(t *testing.T) {
	repo := newMemVoucherRepo()
	seedVoucher(repo, "123456789012", models.VoucherStatusPending, time.Now().Add(time.Hour))
	svc := NewService(repo, nil)

	_, _, err := svc.Redeem(context.Background(), "123456789012", merchant())
	require.NoError(t, err)

	_, _, err = svc.Redeem(context.Background(), "123456789012", merchant())
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
	assert.Len(t, repo.receipts, 1)
}

func TestRedeem_ConcurrentSingleWinner(t *testing.T) {
	repo := newMemVoucherRepo()
	seedVoucher(repo, "123456789012", models.VoucherStatusPending, time.Now().Add(time.Hour))
	svc := NewService(repo, nil)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Redeem(context.Background(), "123456789012", merchant())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	winners, losers := 0, 0
	for err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyRedeemed)
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, attempts-1, losers)
	assert.Len(t, repo.receipts, 1)
}

func TestRedeem_FailureClassification(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		status  string
		expires time.Time
		wantErr error
	}{
		{"already redeemed", models.VoucherStatusRedeemed, future, ErrAlreadyRedeemed},
		{"marked expired", models.VoucherStatusExpired, past, ErrVoucherExpired},
		{"pending but past expiry", models.VoucherStatusPending, past, ErrVoucherExpired},
		{"cancelled", models.VoucherStatusCancelled, future, ErrVoucherNotRedeemable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemVoucherRepo()
			seedVoucher(repo, "123456789012", tt.status, tt.expires)
			svc := NewService(repo, nil)

			_, _, err := svc.Redeem(context.Background(), "123456789012", merchant())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.receipts)
		})
	}
}

func TestRedeem_UnknownCode(t *testing.T) {
	svc := NewService(newMemVoucherRepo(), nil)
	_, _, err := svc.Redeem(context.Background(), "000000000000", merchant())
	assert.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestRedeem_RequiresMerchant(t *testing.T) {
	svc := NewService(newMemVoucherRepo(), nil)
	_, _, err := svc.Redeem(context.Background(), "123456789012", MerchantInfo{})
	assert.ErrorIs(t, err, ErrInvalidMerchant)
}

func TestIsValid(t *testing.T) {
	repo := newMemVoucherRepo()
	seedVoucher(repo, "111111111111", models.VoucherStatusPending, time.Now().Add(time.Hour))
	seedVoucher(repo, "222222222222", models.VoucherStatusRedeemed, time.Now().Add(time.Hour))
	seedVoucher(repo, "333333333333", models.VoucherStatusPending, time.Now().Add(-time.Hour))
	svc := NewService(repo, nil)

	valid, err := svc.IsValid(context.Background(), "111111111111")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.IsValid(context.Background(), "222222222222")
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = svc.IsValid(context.Background(), "333333333333")
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = svc.IsValid(context.Background(), "000000000000")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestExpireOld_Idempotent(t *testing.T) {
	repo := newMemVoucherRepo()
	seedVoucher(repo, "111111111111", models.VoucherStatusPending, time.Now().Add(-time.Hour))
	seedVoucher(repo, "222222222222", models.VoucherStatusPending, time.Now().Add(-time.Minute))
	seedVoucher(repo, "333333333333", models.VoucherStatusPending, time.Now().Add(time.Hour))
	seedVoucher(repo, "444444444444", models.VoucherStatusRedeemed, time.Now().Add(-time.Hour))
	svc := NewService(repo, nil)

	n, err := svc.ExpireOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.ExpireOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	v, err := repo.GetByCode("444444444444")
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusRedeemed, v.Status)
}
