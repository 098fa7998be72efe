package payments

import "fmt"

type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no payment found for order %s", e.OrderID)
}

// NotRefundableError: the latest payment record is not a settled SUCCESS.
type NotRefundableError struct {
	OrderID string
	Status  Status
}

func (e *NotRefundableError) Error() string {
	return fmt.Sprintf("payment for order %s is %s, only SUCCESS payments can be refunded", e.OrderID, e.Status)
}
