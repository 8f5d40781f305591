// Package kafka streams audit events to a Kafka topic, keyed by account so a
// single account's history stays ordered within one partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "peerhelp/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store implements audit.Store by producing one record per event.
type Store struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Store {
	return &Store{producer: producer, topic: topic}
}

// payload is the JSON document written to the topic.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	AccountID string `json:"account_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	p := payload{
		Category:  string(audit.AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorID:   event.ActorID,
		Action:    event.Action,
		Subject:   event.Subject,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}
	var key []byte
	if !event.AccountID.IsNil() {
		p.AccountID = event.AccountID.String()
		key = []byte(p.AccountID)
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   key,
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(p.Category)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
