package orders

import (
	"time"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

// allowedNext is the order lifecycle transition table. Cancellation is only
// reachable before the vendor starts preparing the order; completed and
// cancelled are terminal.
var allowedNext = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipping},
	enums.OrderStatusShipping:   {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:  {enums.OrderStatusCompleted},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusCancelled:  {},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedNext[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of the order moved to the target status with a
// refreshed updated timestamp. It is pure: persistence and authorization are
// the caller's responsibility.
func Transition(order models.Order, target enums.OrderStatus, now time.Time) (models.Order, error) {
	if !target.IsValid() {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": target})
	}
	if !CanTransition(order.Status, target) {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
			WithDetails(map[string]any{
				"order_id": order.ID,
				"from":     order.Status,
				"to":       target,
			})
	}

	order.Status = target
	order.UpdatedAt = now
	return order, nil
}
