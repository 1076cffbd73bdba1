package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
)

// NewConsumerGroup creates a sarama consumer group that starts from the
// oldest unconsumed offset.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return group, nil
}

// Run consumes the entry and transfer topics until ctx is cancelled.
// Consume returns on every rebalance, so it loops.
func Run(ctx context.Context, group sarama.ConsumerGroup, consumer *Consumer) error {
	topics := []string{consumer.topics.Entries, consumer.topics.Transfers}

	for {
		if err := group.Consume(ctx, topics, consumer); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			return fmt.Errorf("consume: %w", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
