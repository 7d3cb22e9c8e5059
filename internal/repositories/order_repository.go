package repositories

import (
	"context"

	"nimwema/internal/models"
)

// OrderRepository is the persistence contract for orders. Status
// transitions go through UpdateStatusIf so that exactly one caller can
// win a given transition under concurrent attempts.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByPaymentReference(ref string) (*models.Order, error)
	ListBySender(phone string, limit, offset int) ([]*models.Order, error)

	// UpdateStatusIf atomically moves the order to the target status
	// when its current status is one of from. The timestamp column
	// named by tsColumn (may be empty) is set in the same write. It
	// reports whether this caller won the transition.
	UpdateStatusIf(ctx context.Context, id string, from []string, to string, tsColumn string) (bool, error)

	SetPaymentInitiated(ctx context.Context, id, providerRef string) error
	GetStats(ctx context.Context) ([]models.OrderStats, error)
	ExecuteInTransaction(fn func(OrderRepository) error) error
}
