package webhook

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "report_webhook_events"
)

// ReportEvent - уведомление о срочном отчете для внешних систем
type ReportEvent struct {
	ReportID      uuid.UUID `json:"report_id"`
	Severity      string    `json:"severity"`
	PriorityScore int       `json:"priority_score"`
	DamageTypes   []string  `json:"damage_types"`
	IsEmergency   bool      `json:"is_emergency"`
	SOSType       string    `json:"sos_type,omitempty"`
	LocationName  string    `json:"location_name,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event ReportEvent) error
}

// RedisWebhookPublisher кладет события в очередь Redis, откуда их забирает WebhookWorker
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish добавляет событие в голову списка; воркер читает с хвоста
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event ReportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue webhook event for report %s: %w", event.ReportID, err)
	}
	return nil
}
