package redisx

import "time"

const (
	// Reservation fact by order: resv:order:{order_id}:{sku} -> {"qty":..,"reserved_at":".."}
	KeyReservationByOrder = "resv:order:%s:%s"

	// Reservation fact by sku: resv:sku:{sku}:{order_id} -> same payload
	KeyReservationBySKU = "resv:sku:%s:%s"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
