package rmq

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
	"github.com/mkatbalasd/PDFCompress/pkg/rabbitmq"
)

// JobConsumer is the worker-side consumer of compression jobs.
type JobConsumer struct {
	amqpChan  *amqp.Channel
	cfg       *config.Config
	l         logger.Interface
	processor *compression.JobProcessor
}

func NewJobConsumer(cfg *config.Config, l logger.Interface, processor *compression.JobProcessor) (*JobConsumer, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg.RMQ.URL)
	if err != nil {
		return nil, errors.Wrap(err, "rabbitmq.Dial")
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "amqpConn.Channel")
	}

	return &JobConsumer{amqpChan: amqpChan, cfg: cfg, l: l, processor: processor}, nil
}

// StartConsumer declares the queue topology and consumes until the
// channel closes.
func (c *JobConsumer) StartConsumer() error {
	if err := setupExchangeAndQueue(c.amqpChan, c.l, c.cfg.RMQ.Exchange, c.cfg.RMQ.Queue); err != nil {
		return err
	}

	deliveries, err := c.amqpChan.Consume(
		c.cfg.RMQ.Queue,
		"",
		consumeAutoAck,
		consumeExclusive,
		consumeNoLocal,
		consumeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "ch.Consume")
	}

	go c.consumeJobs(deliveries)

	chanErr := <-c.amqpChan.NotifyClose(make(chan *amqp.Error))
	c.l.Error("ch.NotifyClose: %v", chanErr)
	return chanErr
}

// consumeJobs processes deliveries one at a time. Every delivery is
// acked: failed jobs are recorded on their row and never requeued, the
// caller resubmits if desired.
func (c *JobConsumer) consumeJobs(deliveries <-chan amqp.Delivery) {
	for delivery := range deliveries {
		ctx, span := otel.Tracer(traceName).Start(context.Background(), "consume-job")

		var msg entity.CompressionJobMessage
		if err := json.Unmarshal(delivery.Body, &msg); err != nil {
			c.l.Error("discarding malformed job message: %s", err)
			delivery.Ack(false)
			span.End()
			continue
		}

		c.l.Info("processing job %s", msg.JobID)
		if err := c.processor.ProcessJob(ctx, msg); err != nil {
			c.l.Error(err, "rmq - consume - ProcessJob")
		}

		delivery.Ack(false)
		span.End()
	}
}

// CloseChan closes the underlying channel.
func (c *JobConsumer) CloseChan() error {
	if err := c.amqpChan.Close(); err != nil {
		c.l.Error("JobConsumer CloseChan: %v", err)
		return err
	}
	return nil
}
