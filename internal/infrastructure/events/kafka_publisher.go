package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-cacc/internal/application/ports"
	"github.com/jhoicas/inventario-cacc/pkg/config"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publica eventos de dominio en Kafka: los de pedidos en un topic
// y los de inventario en otro. La clave del mensaje es Event.Key (id de la entidad),
// así los eventos de una misma entidad quedan en la misma partición.
type KafkaPublisher struct {
	w              messageWriter
	topicOrders    string
	topicMovements string
}

// NewKafkaPublisher sin brokers devuelve ports.NopPublisher.
func NewKafkaPublisher(cfg config.KafkaConfig) ports.EventPublisher {
	if len(cfg.Brokers) == 0 {
		return ports.NopPublisher{}
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, cfg.TopicOrders, cfg.TopicMovements)
}

func newKafkaPublisher(w messageWriter, topicOrders, topicMovements string) *KafkaPublisher {
	return &KafkaPublisher{w: w, topicOrders: topicOrders, topicMovements: topicMovements}
}

// Publish serializa y envía todos los eventos en una sola escritura.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for _, ev := range events {
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = time.Now().UTC()
		}
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.Type, err)
		}
		msgs = append(msgs, kafkago.Message{
			Topic:   p.topicFor(ev.Type),
			Key:     []byte(ev.Key),
			Value:   value,
			Time:    ev.OccurredAt,
			Headers: []kafkago.Header{{Key: "event-type", Value: []byte(ev.Type)}},
		})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	log.Debug().Int("count", len(msgs)).Msg("eventos publicados")
	return nil
}

func (p *KafkaPublisher) topicFor(t ports.EventType) string {
	if strings.HasPrefix(string(t), "order.") {
		return p.topicOrders
	}
	return p.topicMovements
}

// Close vacía el buffer del writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
