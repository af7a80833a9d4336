package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConversionNotifier is the contract for outbound conversion notices
// (today the SMTP sender in infra/mail).
type ConversionNotifier interface {
	SendConversionNotice(to, leadName, opportunityName string, amount *float64) error
}

// Worker drains the lead-event queue and notifies the sales inbox about
// confirmed conversions. Other events are acknowledged and dropped.
type Worker struct {
	Channel       *amqp.Channel
	Notifier      ConversionNotifier
	NotifyAddress string
}

func NewWorker(ch *amqp.Channel, notifier ConversionNotifier, notifyAddress string) *Worker {
	return &Worker{
		Channel:       ch,
		Notifier:      notifier,
		NotifyAddress: notifyAddress,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[worker] invalid lead event, dropping: %s", err)
				// Malformed message: reject without requeue so it lands in the DLQ.
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(payload); err != nil {
				log.Printf("[worker] notify failed for %s: %s", payload.LeadID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("[worker] consuming lead events from %q", queueName)
	<-forever
}

func (w *Worker) processMessage(payload LeadEventPayload) error {
	switch payload.Event {
	case EventLeadConverted:
		if w.Notifier == nil || w.NotifyAddress == "" {
			return nil
		}
		return w.Notifier.SendConversionNotice(
			w.NotifyAddress, payload.LeadName, payload.Opportunity, payload.Amount,
		)

	case EventLeadUpdated, EventLeadRollback:
		// Audit-only events, nothing to do here yet.
		return nil

	default:
		log.Printf("[worker] unknown event %q, acking", payload.Event)
		return nil
	}
}
