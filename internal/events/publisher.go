package events

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	OrganizationCreated  = "organization.created"
	ApplicationSubmitted = "application.submitted"
	ApplicationApproved  = "application.approved"
	ApplicationRejected  = "application.rejected"
	GoalCreated          = "goal.created"
	GoalProgressUpdated  = "goal.progress_updated"
	DevReportGenerated   = "dev_report.generated"
	ProgressReportSaved  = "progress_report.saved"
)

// Event is the msgpack payload published to intersect.events.<type>.
type Event struct {
	ID             string            `msgpack:"id"`
	Type           string            `msgpack:"type"`
	OrganizationID string            `msgpack:"organization_id"`
	Actor          string            `msgpack:"actor"`
	At             time.Time         `msgpack:"at"`
	Data           map[string]string `msgpack:"data,omitempty"`
}

type Publisher struct {
	js nats.JetStreamContext
}

func NewPublisher(js nats.JetStreamContext) *Publisher {
	return &Publisher{js: js}
}

// Publish emits a domain event. Event delivery is best effort: a bus outage
// must not fail the mutation that triggered it.
func (p *Publisher) Publish(eventType, orgID, actor string, data map[string]string) {
	if p == nil || p.js == nil {
		return
	}

	event := Event{
		ID:             uuid.New().String(),
		Type:           eventType,
		OrganizationID: orgID,
		Actor:          actor,
		At:             time.Now().UTC(),
		Data:           data,
	}

	payload, err := msgpack.Marshal(&event)
	if err != nil {
		log.Printf("WARN Event marshal error for %s: %v", eventType, err)
		return
	}

	if _, err := p.js.Publish("intersect.events."+eventType, payload); err != nil {
		log.Printf("WARN Event publish error for %s: %v", eventType, err)
	}
}
