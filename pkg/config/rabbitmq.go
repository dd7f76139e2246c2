package config

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logrus "github.com/sirupsen/logrus"
)

var RabbitMQ *amqp.Connection

// InitRabbitMQ connects using the loaded config, retrying on failure.
// Eventing is optional: the caller decides whether a failed init is fatal.
func InitRabbitMQ(cfg *Config) error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	maxRetries := 5
	retryDelay := 3 * time.Second

	var conn *amqp.Connection
	var err error

	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			RabbitMQ = conn
			logrus.Infof("Connected to RabbitMQ at %s", cfg.RabbitMQHost)
			return nil
		}
		if i < maxRetries-1 {
			logrus.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...",
				i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}
