package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// Event types written to the ad events topic.
const (
	EventClickCharged         = "click.charged"
	EventCampaignStatusChange = "campaign.status_changed"
)

// Message is the JSON envelope of every ad event. Exactly one of Click
// and StatusChange is set, matching Type.
type Message struct {
	Type         string               `json:"type"`
	CampaignID   string               `json:"campaign_id"`
	OccurredAt   time.Time            `json:"occurred_at"`
	Click        *ClickPayload        `json:"click,omitempty"`
	StatusChange *StatusChangePayload `json:"status_change,omitempty"`
}

type ClickPayload struct {
	ClickID       string `json:"click_id"`
	ViewerID      string `json:"viewer_id,omitempty"`
	ChargedAmount int64  `json:"charged_amount"`
}

type StatusChangePayload struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Actor string `json:"actor"`
}

// Publisher writes ad events to Kafka, keyed by campaign id so that the
// events of one campaign stay ordered within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewProducerConfig returns the sarama settings used for ad events.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

// NewPublisher connects a sync producer to cfg.Brokers.
func NewPublisher(cfg configs.Kafka, logger *slog.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic, logger), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) PublishClick(ctx context.Context, click domain.ClickEvent) error {
	return p.send(ctx, Message{
		Type:       EventClickCharged,
		CampaignID: click.CampaignID,
		OccurredAt: click.CreatedAt,
		Click: &ClickPayload{
			ClickID:       click.ID,
			ViewerID:      click.ViewerID,
			ChargedAmount: click.ChargedAmount,
		},
	})
}

func (p *Publisher) PublishStatusChange(ctx context.Context, change domain.StatusChange) error {
	return p.send(ctx, Message{
		Type:       EventCampaignStatusChange,
		CampaignID: change.CampaignID,
		OccurredAt: change.At,
		StatusChange: &StatusChangePayload{
			From:  string(change.From),
			To:    string(change.To),
			Actor: change.Actor,
		},
	})
}

func (p *Publisher) send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.CampaignID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	p.logger.Debug("event published",
		slog.String("type", msg.Type),
		slog.String("campaign_id", msg.CampaignID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close producer: %w", err)
	}
	return nil
}
