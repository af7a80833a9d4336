package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Lead event names carried in LeadEventPayload.Event.
const (
	EventLeadUpdated   = "lead.updated"
	EventLeadRollback  = "lead.rolled_back"
	EventLeadConverted = "lead.converted"
)

// LeadEventPayload is the message published after the cache settles on an
// outcome: a confirmed update, a rollback, or a conversion.
type LeadEventPayload struct {
	Event         string    `json:"event"`
	LeadID        string    `json:"lead_id"`
	LeadName      string    `json:"lead_name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Status        string    `json:"status,omitempty"`
	OpportunityID string    `json:"opportunity_id,omitempty"`
	Opportunity   string    `json:"opportunity,omitempty"`
	Amount        *float64  `json:"amount,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, payload LeadEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}

	return nil
}
