package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ImportCompletedPayload announces a finished file import so the assistant
// worker can rebuild that investor's searchable data chunks.
type ImportCompletedPayload struct {
	InvestorID      string `json:"investor_id"`
	InvestorName    string `json:"investor_name"`
	Kind            string `json:"kind"` // lead | enrollment
	FileName        string `json:"file_name"`
	RecordsImported int    `json:"records_imported"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishImportCompleted(ctx context.Context, payload ImportCompletedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing import-completed event: %w", err)
	}
	return nil
}
