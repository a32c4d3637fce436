package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes every event to subject `aps.schedule.<type>`
// using github.com/nats-io/nats.go. Selected when run_config.events_nats_url
// is set (SPEC_FULL.md §3.2). Publish failures are logged and swallowed —
// scheduling must never block on a downstream consumer.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url and returns a publisher, or an error if
// the connection cannot be established. The run command returns that
// error, ending the run.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(e Event) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		log.Printf("events: failed to marshal %s for stream %s: %v", e.Type, e.StreamID, err)
		return
	}
	subject := fmt.Sprintf("aps.schedule.%s", e.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		log.Printf("events: failed to publish %s to %s: %v", e.Type, subject, err)
	}
}

// Close flushes and closes the underlying NATS connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

var _ Publisher = (*NATSPublisher)(nil)
