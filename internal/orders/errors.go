package orders

import "fmt"

// InsufficientStockError aborts order creation; Available is -1 when the
// ledger could not report a quantity.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: sku=%s, requested=%d, available=%d",
		e.SKU, e.Requested, e.Available)
}

type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order not found: %s", e.OrderID)
}

type InvalidStateError struct {
	OrderID  string
	Actual   Status
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %s is in state %q, but expected %q", e.OrderID, e.Actual, e.Expected)
}

type UnauthorizedError struct {
	Requester string
	Resource  string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %s is not authorized to access %s", e.Requester, e.Resource)
}
