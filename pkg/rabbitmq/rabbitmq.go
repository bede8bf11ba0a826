package rabbitmq

import (
	"github.com/streadway/amqp"
)

// NewRabbitMQConn initializes a new RabbitMQ connection.
func NewRabbitMQConn(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}
