package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/jefwallets/ledger/internal/domain"
)

// Topics names the Kafka topics the ledger uses.
type Topics struct {
	Entries    string
	Transfers  string
	DeadLetter string
}

// KafkaPublisher implements usecase.Publisher on a sarama sync producer.
// Entry messages are keyed by account number and transfer messages by
// transaction ID, so records for one account arrive in publish order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topics   Topics
}

// NewKafkaPublisher creates a new KafkaPublisher.
func NewKafkaPublisher(producer sarama.SyncProducer, topics Topics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topics: topics}
}

// NewSyncProducer creates a sarama sync producer with full-ISR acks.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(brokers, cfg)
}

// PublishEntry sends a single-entry write request to the entries topic.
func (p *KafkaPublisher) PublishEntry(ctx context.Context, req domain.RecordEntryRequest) (string, error) {
	return p.publish(ctx, p.topics.Entries, req.AccountNumber, req)
}

// PublishTransfer sends a double-entry write request to the transfers topic.
func (p *KafkaPublisher) PublishTransfer(ctx context.Context, req domain.RecordTransferRequest) (string, error) {
	return p.publish(ctx, p.topics.Transfers, req.TransactionID, req)
}

func (p *KafkaPublisher) publish(_ context.Context, topic, key string, payload any) (string, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal queue message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return "", fmt.Errorf("send queue message: %w", err)
	}

	return fmt.Sprintf("%s/%d/%d", topic, partition, offset), nil
}

// Close shuts down the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
