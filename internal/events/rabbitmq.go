package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

// RabbitMQPublisher publica eventos em uma fila durável do RabbitMQ,
// protegido por circuit breaker para não travar o fluxo de chamados
// quando o broker estiver indisponível.
type RabbitMQPublisher struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

// NewRabbitMQPublisher conecta no broker e declara a fila (idempotente).
func NewRabbitMQPublisher(amqpURL, queueName string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "amqp-publisher",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &RabbitMQPublisher{conn: conn, ch: ch, queueName: queueName, cb: cb}, nil
}

// PublishEquipmentScrapped envia o evento serializado em JSON.
func (p *RabbitMQPublisher) PublishEquipmentScrapped(ctx context.Context, evt EquipmentScrappedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		err := p.ch.PublishWithContext(
			ctx,
			"",          // exchange (default)
			p.queueName, // routing key == nome da fila
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}

// Close encerra canal e conexão.
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
