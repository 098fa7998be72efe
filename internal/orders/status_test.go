package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusReserved, StatusPaid, true},
		{StatusReserved, StatusCancelled, true},
		{StatusReserved, StatusRefunded, false},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusRefunded, true},
		{StatusPaid, StatusReserved, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusRefunded, StatusPaid, false},
		{StatusRefunded, StatusCancelled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
