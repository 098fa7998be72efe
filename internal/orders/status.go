package orders

type Status string

const (
	StatusReserved  Status = "RESERVED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

var validNext = map[Status]map[Status]bool{
	StatusReserved:  {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusCancelled: true, StatusRefunded: true},
	StatusCancelled: {},
	StatusRefunded:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
