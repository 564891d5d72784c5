package queue

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// RabbitQueue implements Queue on top of a RabbitMQ channel with durable
// queues. Suited to deployments where the report worker runs as a separate
// process.
type RabbitQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  zerolog.Logger
}

func NewRabbitQueue(url string, log zerolog.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &RabbitQueue{conn: conn, ch: ch, log: log}, nil
}

func (q *RabbitQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *RabbitQueue) Publish(topic string, body []byte) error {
	if _, err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe consumes the topic on a background goroutine. A failing handler
// gets the message republished with an incremented retry header, up to three
// times, mirroring the retry policy of the in-memory queue.
func (q *RabbitQueue) Subscribe(topic string, handler func(body []byte) error) error {
	if _, err := q.declare(topic); err != nil {
		return err
	}
	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck off for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				retryCount := 0
				if v, ok := d.Headers["x-retry-count"].(int32); ok {
					retryCount = int(v)
				}
				if retryCount < 3 {
					q.log.Debug().Str("topic", topic).Int("retry", retryCount+1).Err(err).
						Msg("handler failed, requeueing")
					_ = q.ch.Publish("", topic, false, false, amqp.Publishing{
						ContentType:  "application/json",
						DeliveryMode: amqp.Persistent,
						Headers:      amqp.Table{"x-retry-count": int32(retryCount + 1)},
						Body:         d.Body,
					})
				} else {
					q.log.Warn().Str("topic", topic).Err(err).Msg("dropping message after retries")
				}
			}
			_ = d.Ack(false)
		}
	}()
	return nil
}

func (q *RabbitQueue) Close() error {
	if q.ch != nil {
		_ = q.ch.Close()
	}
	return q.conn.Close()
}
