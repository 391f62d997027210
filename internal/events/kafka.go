package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shenikar/resqnet/internal/models"
	"github.com/sirupsen/logrus"
)

// EventReportCreated - тип события о новом отчете
const EventReportCreated = "report.created"

// ReportCreated - полезная нагрузка сообщения в Kafka
type ReportCreated struct {
	Type   string         `json:"type"`
	Report *models.Report `json:"report"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher публикует события об отчетах в топик Kafka
type KafkaPublisher struct {
	writer messageWriter
	logger *logrus.Logger
}

// NewKafkaPublisher создает продюсера для заданного топика
func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// PublishReportCreated отправляет одно событие report.created
func (p *KafkaPublisher) PublishReportCreated(ctx context.Context, report *models.Report) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish report %s: %w", report.ID, err)
	}
	p.logger.WithField("report_id", report.ID.String()).Debug("Report event published to Kafka")
	return nil
}

// Close закрывает продюсера
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage сериализует отчет в сообщение; ключ - ID отчета,
// чтобы события одного отчета попадали в одну партицию.
func serializeToMessage(report *models.Report) (kafkago.Message, error) {
	data, err := json.Marshal(ReportCreated{Type: EventReportCreated, Report: report})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventReportCreated)},
			{Key: "severity", Value: []byte(report.Severity)},
			{Key: "created_at", Value: []byte(report.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}

// NoopPublisher используется, когда Kafka отключена
type NoopPublisher struct{}

func (NoopPublisher) PublishReportCreated(context.Context, *models.Report) error { return nil }

func (NoopPublisher) Close() error { return nil }
