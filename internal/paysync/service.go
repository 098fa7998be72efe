// Package paysync consumes payment.succeeded and marks orders PAID. The bus
// is at-least-once, so the whole path is built for duplicates: a Redis dedup
// key short-circuits replays and MarkPaid itself is idempotent.
package paysync

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/kafka"
	"github.com/carpetline/orderflow/internal/orders"
	"github.com/carpetline/orderflow/internal/redisx"
)

type Service struct {
	Saga  *orders.Saga
	Redis *redis.Client
	Log   *zap.Logger
}

// HandlePaymentSucceeded is the consumer handler. Domain rejections
// (unknown order, wrong state) are logged and committed; only infra errors
// trigger redelivery. The dedup key is written only once the event has
// settled, so a transient MarkPaid failure stays eligible for replay.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafka.UnmarshalEnvelope(m.Value, &env); err != nil {
		// a message that does not parse will not parse on redelivery either
		s.Log.Warn("dropping undecodable message",
			zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventPaymentSucceeded {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "paysync", env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	p, err := kafka.UnwrapPayload[orders.PaymentSucceededPayload](env.Payload)
	if err != nil {
		s.Log.Warn("dropping event with undecodable payload",
			zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	if _, err := s.Saga.MarkPaid(ctx, p.OrderID); err != nil {
		var notFound *orders.NotFoundError
		var invalid *orders.InvalidStateError
		if errors.As(err, &notFound) || errors.As(err, &invalid) {
			s.Log.Warn("could not mark order paid from bus",
				zap.String("order_id", p.OrderID), zap.Error(err))
			s.markSeen(ctx, dkey)
			return nil
		}
		return err
	}
	s.markSeen(ctx, dkey)
	s.Log.Info("order marked PAID via bus", zap.String("order_id", p.OrderID))
	return nil
}

// markSeen records the event id once processing has settled. Writing it
// before MarkPaid would turn a transient failure into a lost transition:
// the redelivery would hit the key and commit without retrying.
func (s *Service) markSeen(ctx context.Context, key string) {
	if err := s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err(); err != nil {
		s.Log.Warn("dedup mark failed", zap.String("key", key), zap.Error(err))
	}
}
