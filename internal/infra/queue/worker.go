package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AssistantRefresher rebuilds an investor's searchable data after an import.
type AssistantRefresher interface {
	RefreshInvestorData(ctx context.Context, investorID string) error
}

// Worker consumes import-completed events and refreshes assistant data out of
// band. Imports themselves stay synchronous; only this follow-up is queued.
type Worker struct {
	Channel   *amqp.Channel
	Refresher AssistantRefresher
	Log       *zap.Logger
}

func NewWorker(ch *amqp.Channel, refresher AssistantRefresher, log *zap.Logger) *Worker {
	return &Worker{Channel: ch, Refresher: refresher, Log: log}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		w.Log.Fatal("registering RabbitMQ consumer", zap.Error(err))
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ImportCompletedPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				w.Log.Error("malformed import event, rejecting", zap.Error(err))
				// Rotten message: no requeue, straight to the DLQ.
				d.Nack(false, false)
				continue
			}

			w.Log.Info("refreshing assistant data",
				zap.String("investor", payload.InvestorName),
				zap.String("kind", payload.Kind),
				zap.Int("records", payload.RecordsImported))

			if err := w.Refresher.RefreshInvestorData(context.Background(), payload.InvestorID); err != nil {
				w.Log.Error("assistant refresh failed", zap.Error(err))
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	w.Log.Info("worker waiting on queue", zap.String("queue", queueName))
	<-forever
}
