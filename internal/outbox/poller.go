// Package outbox publishes placed-order events from the checkout store to
// kafka, and recovers checkout sessions abandoned mid-submit.
package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

const topic = "order-outbox"

type Poller struct {
	timeout      time.Duration
	eventTick    time.Duration
	recoveryTick time.Duration
	store        checkout.Store
	writer       *kafka.Writer
	logger       *zap.Logger
}

func NewPoller(store checkout.Store, logger *zap.Logger, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{
		timeout:      5 * time.Second,
		eventTick:    time.Second,
		recoveryTick: 5 * time.Second,
		store:        store,
		writer:       w,
		logger:       logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("error closing kafka writer", zap.Error(err))
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.store.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			p.logger.Error("failed to publish outbox event",
				zap.Int64("event_id", event.ID), zap.Error(errPublish))
			continue
		}

		if errMark := p.store.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.logger.Error("failed to mark outbox event as processed",
				zap.Int64("event_id", event.ID), zap.Error(errMark))
			continue
		}
	}
}

// recoverStuckSessions flips sessions abandoned in SUBMITTING back to
// PAYMENT_SELECTION so the user's next attempt is not blocked forever.
func (p *Poller) recoverStuckSessions(ctx context.Context) {
	sessions, err := p.store.GetStuckSessions(ctx)
	if err != nil {
		p.logger.Error("failed to get stuck sessions", zap.Error(err))
		return
	}

	for _, session := range sessions {
		p.logger.Info("recovering stuck checkout session",
			zap.String("checkout_id", session.ID.String()))

		err := p.store.UpdateSessionStatus(ctx, session.ID,
			domain.CheckoutStatusPaymentSelection, "submission interrupted")
		if err != nil {
			p.logger.Error("failed to recover stuck session",
				zap.String("checkout_id", session.ID.String()), zap.Error(err))
		}
	}
}

func (p *Poller) publish(ctx context.Context, event checkout.OutboxEvent) error {
	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.EventType),
		Value: event.Payload,
	})
}
