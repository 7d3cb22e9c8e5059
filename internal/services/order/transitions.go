package order

import "nimwema/internal/models"

// allowedFrom lists, for each target status, the statuses an order may
// come from. pending and pending_payment convert freely between each
// other; paid is the idempotency gate for payment confirmation;
// completed is terminal and means every voucher for the order exists.
var allowedFrom = map[string][]string{
	models.OrderStatusPending:        {models.OrderStatusPendingPayment},
	models.OrderStatusPendingPayment: {models.OrderStatusPending},
	models.OrderStatusPaid:           {models.OrderStatusPending, models.OrderStatusPendingPayment},
	models.OrderStatusCancelled:      {models.OrderStatusPending, models.OrderStatusPendingPayment},
	models.OrderStatusRejected:       {models.OrderStatusPending, models.OrderStatusPendingPayment},
	models.OrderStatusFailed:         {models.OrderStatusPending, models.OrderStatusPendingPayment},
	models.OrderStatusCompleted:      {models.OrderStatusPaid},
}

// timestampColumn maps a target status to the timestamp column written
// in the same update as the status flip.
var timestampColumn = map[string]string{
	models.OrderStatusPaid:   "paid_at",
	models.OrderStatusFailed: "failed_at",
}
