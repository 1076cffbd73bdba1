package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/infrastructure/metrics"
)

// LedgerWriter is the write surface the consumer records against.
// Satisfied by usecase.LedgerWriter.
type LedgerWriter interface {
	RecordEntry(ctx context.Context, req domain.RecordEntryRequest) (*domain.LedgerEntry, error)
	RecordTransfer(ctx context.Context, req domain.RecordTransferRequest) (*domain.TransferPair, error)
}

// DeadLetterPublisher forwards a poisoned message after write attempts are
// exhausted.
type DeadLetterPublisher interface {
	PublishDeadLetter(ctx context.Context, sourceTopic string, payload []byte, reason string) error
}

// Consumer records queued write requests through the ledger writer. Messages
// that fail validation or replay an already-committed write are acknowledged
// and dropped; messages the store cannot take right now go to the dead
// letter topic so the partition keeps moving.
type Consumer struct {
	writer     LedgerWriter
	deadLetter DeadLetterPublisher
	topics     Topics
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewConsumer creates a new Consumer. metrics may be nil.
func NewConsumer(writer LedgerWriter, deadLetter DeadLetterPublisher, topics Topics, logger zerolog.Logger, m *metrics.Metrics) *Consumer {
	return &Consumer{
		writer:     writer,
		deadLetter: deadLetter,
		topics:     topics,
		logger:     logger,
		metrics:    m,
	}
}

func (c *Consumer) countOutcome(topic, outcome string) {
	if c.metrics == nil {
		return
	}

	c.metrics.MessagesConsumed.WithLabelValues(topic, outcome).Inc()
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := c.handleMessage(session.Context(), msg); err != nil {
				return err
			}

			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage records one queued request. A nil return acknowledges the
// message; an error leaves it unacknowledged for redelivery.
func (c *Consumer) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var err error

	switch msg.Topic {
	case c.topics.Entries:
		err = c.recordEntry(ctx, msg.Value)
	case c.topics.Transfers:
		err = c.recordTransfer(ctx, msg.Value)
	default:
		c.logger.Warn().Str("topic", msg.Topic).Msg("message from unexpected topic dropped")
		return nil
	}

	if err == nil {
		c.countOutcome(msg.Topic, "recorded")
		return nil
	}

	if domain.IsValidation(err) || errors.Is(err, domain.ErrDuplicateEntry) || errors.Is(err, domain.ErrDuplicateTransaction) {
		// Redelivering cannot fix these; drop after logging.
		c.logger.Warn().
			Err(err).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("unrecordable message dropped")

		c.countOutcome(msg.Topic, "dropped")

		return nil
	}

	if c.deadLetter != nil {
		if dlqErr := c.deadLetter.PublishDeadLetter(ctx, msg.Topic, msg.Value, err.Error()); dlqErr != nil {
			return fmt.Errorf("dead letter publish: %w", dlqErr)
		}

		c.logger.Error().
			Err(err).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("message routed to dead letter topic")

		c.countOutcome(msg.Topic, "dead_lettered")
		if c.metrics != nil {
			c.metrics.DeadLetters.Inc()
		}

		return nil
	}

	return err
}

func (c *Consumer) recordEntry(ctx context.Context, payload []byte) error {
	var req domain.RecordEntryRequest
	if err := decodeMessage(payload, &req); err != nil {
		return fmt.Errorf("%w: malformed entry message: %v", domain.ErrMissingField, err)
	}

	_, err := c.writer.RecordEntry(ctx, req)

	return err
}

func (c *Consumer) recordTransfer(ctx context.Context, payload []byte) error {
	var req domain.RecordTransferRequest
	if err := decodeMessage(payload, &req); err != nil {
		return fmt.Errorf("%w: malformed transfer message: %v", domain.ErrMissingField, err)
	}

	_, err := c.writer.RecordTransfer(ctx, req)

	return err
}

func decodeMessage(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	return dec.Decode(v)
}
