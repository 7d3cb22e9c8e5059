package voucher

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

// memVoucherRepo is an in-memory VoucherRepository keyed by code, with
// the unique-code constraint enforced the way the database would.
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

// fakeLedger records transitions instead of touching a database.
type fakeLedger struct {
	mu          sync.Mutex
	transitions []string
}

func (f *fakeLedger) Transition(ctx context.Context, id, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, id+":"+to)
	return true, nil
}

// fakeNotifier counts deliveries.
type fakeNotifier struct {
	mu    sync.Mutex
	codes []string
}

func (f *fakeNotifier) VoucherIssued(ctx context.Context, v *models.Voucher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, v.Code)
}

// fakeRequests records which request IDs got marked fulfilled.
type fakeRequests struct {
	fulfilled []uint
}

func (f *fakeRequests) Create(req *models.Request) error { return nil }

func (f *fakeRequests) GetByID(id uint) (*models.Request, error) {
	return nil, repositories.ErrRequestNotFound
}

func (f *fakeRequests) ListOpen(limit, offset int) ([]*models.Request, error) { return nil, nil }
func (f *fakeRequests) MarkFulfilled(ctx context.Context, ids []uint) error {
	f.fulfilled = append(f.fulfilled, ids...)
	return nil
}

// stubGenerator yields a fixed sequence of codes.
type stubGenerator struct {
	codes []string
	i     int
}

func (s *stubGenerator) Generate() (string, error) {
	if s.i >= len(s.codes) {
		return s.codes[len(s.codes)-1], nil
	}
	c := s.codes[s.i]
	s.i++
	return c, nil
}

func paidOrder(recipients ...models.OrderRecipient) *models.Order {
	return &models.Order{
		ID:         "ORD-1",
		SenderName: "Chris",
		Amount:     20,
		Currency:   "USD",
		Quantity:   len(recipients),
		Message:    "enjoy",
		Status:     models.OrderStatusPaid,
		Recipients: recipients,
	}
}

func TestIssue_HappyPath(t *testing.T) {
	repo := newMemVoucherRepo()
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	iss := NewIssuer(repo, nil, ledger, NewGenerator(0), notifier, IssuerConfig{
		TTL: 90 * 24 * time.Hour,
	})

	order := paidOrder(
		models.OrderRecipient{Phone: "0811111111"},
		models.OrderRecipient{Phone: "0822222222"},
		models.OrderRecipient{Phone: "0833333333"},
	)

	before := time.Now()
	result, err := iss.Issue(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Issued)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Vouchers, 3)

	seen := map[string]bool{}
	for _, v := range result.Vouchers {
		assert.False(t, seen[v.Code])
		seen[v.Code] = true
		assert.Equal(t, models.VoucherStatusPending, v.Status)
		assert.Equal(t, order.Amount, v.Amount)
		assert.Equal(t, "Chris", v.SenderName)
		assert.Equal(t, "ORD-1", v.OrderID)
		assert.WithinDuration(t, before.Add(90*24*time.Hour), v.ExpiresAt, 5*time.Second)
	}

	assert.Equal(t, []string{"ORD-1:" + models.OrderStatusCompleted}, ledger.transitions)
	assert.Len(t, notifier.codes, 3)
}

func TestIssue_RequiresPaidOrder(t *testing.T) {
	iss := NewIssuer(newMemVoucherRepo(), nil, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{})

	order := paidOrder(models.OrderRecipient{Phone: "0811111111"})
	order.Status = models.OrderStatusPendingPayment

	_, err := iss.Issue(context.Background(), order)
	assert.ErrorIs(t, err, ErrOrderNotIssuable)
}

func TestIssue_NoRecipients(t *testing.T) {
	iss := NewIssuer(newMemVoucherRepo(), nil, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{})

	_, err := iss.Issue(context.Background(), paidOrder())
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestIssue_CapsRecipientsAtQuantity(t *testing.T) {
	repo := newMemVoucherRepo()
	iss := NewIssuer(repo, nil, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{})

	order := paidOrder(
		models.OrderRecipient{Phone: "0811111111"},
		models.OrderRecipient{Phone: "0822222222"},
	)
	order.Quantity = 1

	result, err := iss.Issue(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issued)
}

func TestIssue_AnonymousSender(t *testing.T) {
	iss := NewIssuer(newMemVoucherRepo(), nil, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{})

	order := paidOrder(models.OrderRecipient{Phone: "0811111111"})
	order.Anonymous = true

	result, err := iss.Issue(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, result.Vouchers, 1)
	assert.Equal(t, models.AnonymousSender, result.Vouchers[0].SenderName)
}

func TestIssue_RetriesOnCodeCollision(t *testing.T) {
	repo := newMemVoucherRepo()
	repo.Create(&models.Voucher{Code: "111111111111", OrderID: "ORD-0", ExpiresAt: time.Now().Add(time.Hour)})

	gen := &stubGenerator{codes: []string{"111111111111", "222222222222"}}
	iss := NewIssuer(repo, nil, &fakeLedger{}, gen, nil, IssuerConfig{})

	result, err := iss.Issue(context.Background(), paidOrder(models.OrderRecipient{Phone: "0811111111"}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issued)
	assert.Equal(t, "222222222222", result.Vouchers[0].Code)
}

func TestIssue_CountsFailuresAndContinues(t *testing.T) {
	repo := newMemVoucherRepo()
	repo.Create(&models.Voucher{Code: "111111111111", OrderID: "ORD-0", ExpiresAt: time.Now().Add(time.Hour)})

	// Every candidate for the first recipient collides; the second
	// recipient gets a fresh code.
	gen := &stubGenerator{codes: []string{
		"111111111111", "111111111111", "111111111111", "111111111111", "111111111111",
		"222222222222",
	}}
	ledger := &fakeLedger{}
	iss := NewIssuer(repo, nil, ledger, gen, nil, IssuerConfig{MaxCodeRetries: 5})

	order := paidOrder(
		models.OrderRecipient{Phone: "0811111111"},
		models.OrderRecipient{Phone: "0822222222"},
	)

	result, err := iss.Issue(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issued)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, ledger.transitions, "partially issued order must stay paid")
}

func TestIssue_AllFailedLeavesOrderPaid(t *testing.T) {
	repo := newMemVoucherRepo()
	repo.Create(&models.Voucher{Code: "111111111111", OrderID: "ORD-0", ExpiresAt: time.Now().Add(time.Hour)})

	gen := &stubGenerator{codes: []string{"111111111111"}}
	ledger := &fakeLedger{}
	iss := NewIssuer(repo, nil, ledger, gen, nil, IssuerConfig{MaxCodeRetries: 2})

	result, err := iss.Issue(context.Background(), paidOrder(models.OrderRecipient{Phone: "0811111111"}))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Issued)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, ledger.transitions)
}

func TestIssue_MarksRequestsFulfilled(t *testing.T) {
	requests := &fakeRequests{}
	iss := NewIssuer(newMemVoucherRepo(), requests, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{})

	reqID := uint(7)
	order := paidOrder(
		models.OrderRecipient{Phone: "0811111111", RequestID: &reqID},
		models.OrderRecipient{Phone: "0822222222"},
	)

	_, err := iss.Issue(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, requests.fulfilled)
}

func TestIssue_InterruptedBetweenBatches(t *testing.T) {
	iss := NewIssuer(newMemVoucherRepo(), nil, &fakeLedger{}, NewGenerator(0), nil, IssuerConfig{
		BatchSize:  1,
		BatchPause: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order := paidOrder(
		models.OrderRecipient{Phone: "0811111111"},
		models.OrderRecipient{Phone: "0822222222"},
	)

	result, err := iss.Issue(ctx, order)
	assert.ErrorIs(t, err, ErrIssuanceInterrupted)
	assert.Equal(t, 1, result.Issued)
}
