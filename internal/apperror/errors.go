// Package apperror holds the error kinds shared by the floor, ledger,
// billing and waitlist services. Callers annotate these with
// errors.Annotatef and test for them with errors.Is.
package apperror

import "github.com/juju/errors"

const (
	// InvalidTransition is returned when a state change is out of sequence.
	InvalidTransition = errors.ConstError("invalid transition")

	// CapacityExceeded is returned when a party does not fit a table.
	CapacityExceeded = errors.ConstError("capacity exceeded")

	// TableUnavailable is returned when allocating a table that is not free.
	// It also matches errors.NotFound.
	TableUnavailable = unavailableTable("table not available")

	// EmptyOrder is returned when an order is created without lines.
	EmptyOrder = errors.ConstError("empty order")

	// ItemUnavailable is returned when an order references an item that
	// the kitchen has marked unavailable.
	ItemUnavailable = errors.ConstError("item unavailable")

	// OrderClosed is returned when lines are added to an order that has
	// left the kitchen.
	OrderClosed = errors.ConstError("order closed")

	// NoCompletedOrders is returned when a bill has nothing to collect.
	NoCompletedOrders = errors.ConstError("no completed orders")

	// AlreadyPaid is returned when a bill is paid twice.
	AlreadyPaid = errors.ConstError("already paid")

	// InvalidPartySize is returned for waitlist parties outside 1-20.
	InvalidPartySize = errors.ConstError("invalid party size")

	// InUse is returned when deleting something an open order references.
	InUse = errors.ConstError("in use")

	// PaymentFailed is returned when the payment processor declines.
	PaymentFailed = errors.ConstError("payment failed")

	// Expired is returned for QR codes past their expiry.
	Expired = errors.ConstError("expired")

	// Unavailable is returned when the backing store cannot be reached.
	Unavailable = errors.ConstError("store unavailable")
)

type unavailableTable string

func (e unavailableTable) Error() string { return string(e) }

// Is reports NotFound as well so callers that only understand the generic
// kinds still treat a busy table as "no such free table".
func (e unavailableTable) Is(target error) bool {
	if t, ok := target.(unavailableTable); ok {
		return t == e
	}
	return target == errors.NotFound
}
