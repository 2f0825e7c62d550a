package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	writeTimeout = 5 * time.Second
	batchTimeout = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// 注文イベントを1つのtopicへ送る
type Producer struct {
	w     messageWriter
	topic string
}

// 送信はリクエストを待たせないよう非同期。失敗はCompletionでログに出す。
func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
		BatchTimeout:           batchTimeout,
		Async:                  true,
		Completion:             completionLogger(topic, log),
	}
	return &Producer{w: w, topic: topic}
}

func completionLogger(topic string, log *zap.Logger) func([]kafkago.Message, error) {
	return func(msgs []kafkago.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			log.Warn("kafka delivery failed",
				zap.String("topic", topic),
				zap.String("key", string(m.Key)),
				zap.Error(err),
			)
		}
	}
}

// 同じkey（注文ID）は同じパーティションに入る
func (p *Producer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
