package queue

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

// DeadLetterProducer implements DeadLetterPublisher on the same sync
// producer the publisher uses. The original payload travels unchanged; the
// source topic and failure reason ride along as headers.
type DeadLetterProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewDeadLetterProducer creates a new DeadLetterProducer.
func NewDeadLetterProducer(producer sarama.SyncProducer, topic string) *DeadLetterProducer {
	return &DeadLetterProducer{producer: producer, topic: topic}
}

// PublishDeadLetter forwards a poisoned message to the dead letter topic.
func (p *DeadLetterProducer) PublishDeadLetter(_ context.Context, sourceTopic string, payload []byte, reason string) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("source-topic"), Value: []byte(sourceTopic)},
			{Key: []byte("reason"), Value: []byte(reason)},
		},
	})
	if err != nil {
		return fmt.Errorf("send dead letter message: %w", err)
	}

	return nil
}
