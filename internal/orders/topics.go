package orders

const (
	TopicInventoryReserved = "inventory.reserved"
	TopicInventoryReleased = "inventory.released"
	TopicPaymentSucceeded  = "payment.succeeded"
)

// Partition key = order_id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
