// Package planqueue publishes generated test plans to the workers over kafka.
package planqueue

import (
	"context"
	"strings"
	"time"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type producer struct {
	topicName   string
	kafkaWriter *kafka.Writer
	logger      lumber.Logger
}

// NewProducer return a new plan queue producer.
func NewProducer(cfg *config.Config, logger lumber.Logger) core.QueueProducer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     strings.Split(cfg.Kafka.Brokers, ","),
		Topic:       cfg.Kafka.PlanQueueConfig.Topic,
		ErrorLogger: kafka.LoggerFunc(logger.Errorf),
		// messages of one plan share a key and stay ordered on one partition.
		Balancer:         &kafka.Hash{},
		CompressionCodec: kafka.Snappy.Codec(),
		RequiredAcks:     int(kafka.RequireOne), // will wait for acknowledgement from only master.
		BatchTimeout:     50 * time.Millisecond,
	})
	logger.Infof("Kafka Producer connection created successfully for topic %s", writer.Topic)
	return &producer{
		logger:      logger,
		topicName:   writer.Topic,
		kafkaWriter: writer,
	}
}

func (p *producer) Enqueue(item interface{}) error {
	payload, ok := item.(*core.PlanMessage)
	if !ok {
		p.logger.Errorf("Invalid plan queue payload %v", item)
		return errs.ErrInvalidQueuePayload
	}
	rawMessage, err := json.Marshal(payload)
	if err != nil {
		p.logger.Errorf("failed to marshal message for planID %s, fork %d, error: %v", payload.PlanID, payload.Fork, err)
		return err
	}
	msg := kafka.Message{Key: []byte(payload.PlanID), Value: rawMessage}
	if err = p.kafkaWriter.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Errorf("failed to write message in kafka topic %s, planID %s, fork %d, error: %v",
			p.topicName, payload.PlanID, payload.Fork, err)
		return err
	}
	return nil
}

func (p *producer) Close() error {
	return p.kafkaWriter.Close()
}
