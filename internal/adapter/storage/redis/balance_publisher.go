package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"current-account-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// BalanceEventsChannel carries balance.materialized events.
const BalanceEventsChannel = "balance_events"

const eventBalanceMaterialized = "balance.materialized"

// BalanceEvent is the payload published on BalanceEventsChannel.
type BalanceEvent struct {
	EventType string          `json:"event_type"`
	Balance   *domain.Balance `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}

// BalancePublisher implements ports.BalanceEventPublisher over Redis pub/sub.
type BalancePublisher struct {
	client goredis.UniversalClient
}

// NewBalancePublisher creates a balance event publisher.
func NewBalancePublisher(client goredis.UniversalClient) *BalancePublisher {
	return &BalancePublisher{client: client}
}

// PublishBalance announces a persisted checkpoint.
func (p *BalancePublisher) PublishBalance(ctx context.Context, balance *domain.Balance) error {
	payload, err := json.Marshal(BalanceEvent{
		EventType: eventBalanceMaterialized,
		Balance:   balance,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal balance event: %w", err)
	}
	if err := p.client.Publish(ctx, BalanceEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish balance event: %w", err)
	}
	return nil
}
