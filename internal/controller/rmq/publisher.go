package rmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
	"github.com/mkatbalasd/PDFCompress/pkg/rabbitmq"
)

// JobQueue is the server-side publisher of compression jobs.
type JobQueue struct {
	amqpChan *amqp.Channel
	cfg      *config.Config
	l        logger.Interface
}

func NewJobQueue(cfg *config.Config, l logger.Interface) (*JobQueue, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg.RMQ.URL)
	if err != nil {
		return nil, errors.Wrap(err, "rabbitmq.Dial")
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "amqpConn.Channel")
	}

	q := &JobQueue{amqpChan: amqpChan, cfg: cfg, l: l}

	if err := setupExchangeAndQueue(amqpChan, l, cfg.RMQ.Exchange, cfg.RMQ.Queue); err != nil {
		return nil, err
	}

	return q, nil
}

// PublishJob enqueues one compression job for the worker fleet.
func (q *JobQueue) PublishJob(_ context.Context, msg entity.CompressionJobMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal job message")
	}

	q.l.Info("publishing job %s to exchange %s", msg.JobID, q.cfg.RMQ.Exchange)

	if err := q.amqpChan.Publish(
		q.cfg.RMQ.Exchange,
		routingKey,
		publishMandatory,
		publishImmediate,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.New().String(),
			Timestamp:     time.Now(),
			CorrelationId: msg.JobID,
			Body:          body,
		},
	); err != nil {
		return errors.Wrap(err, "ch.Publish")
	}

	return nil
}

// CloseChan closes the underlying channel.
func (q *JobQueue) CloseChan() error {
	if err := q.amqpChan.Close(); err != nil {
		q.l.Error("JobQueue CloseChan: %v", err)
		return err
	}
	return nil
}

// setupExchangeAndQueue declares the exchange and queue and binds them.
func setupExchangeAndQueue(ch *amqp.Channel, l logger.Interface, exchange, queueName string) error {
	l.Info("declaring exchange: %s", exchange)
	err := ch.ExchangeDeclare(
		exchange,
		exchangeKind,
		exchangeDurable,
		exchangeAutoDelete,
		exchangeInternal,
		exchangeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "ch.ExchangeDeclare")
	}

	queue, err := ch.QueueDeclare(
		queueName,
		queueDurable,
		queueAutoDelete,
		queueExclusive,
		queueNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "ch.QueueDeclare")
	}

	l.Info("declared queue %v (messages: %v, consumers: %v), binding to %v with key %v",
		queue.Name,
		queue.Messages,
		queue.Consumers,
		exchange,
		routingKey,
	)

	if err := ch.QueueBind(
		queue.Name,
		routingKey,
		exchange,
		queueNoWait,
		nil,
	); err != nil {
		return errors.Wrap(err, "ch.QueueBind")
	}

	return nil
}
