package schedule

import (
	"context"
	"encoding/json"
	"fmt"
)

// Command directives understood by every device family.
const (
	// DirectiveGetAll asks the device for its full schedule snapshot.
	DirectiveGetAll = "GET_ALL"

	// DirectiveSetAll replaces the device's schedule list wholesale.
	DirectiveSetAll = "SET_ALL"
)

// Message is the structured command body inside a Command envelope.
type Message struct {
	Directive string       `json:"directive"`
	Schedules []WireRecord `json:"schedules,omitempty"`
}

// Command is the outbound envelope: a request topic addressing the
// physical device, the command body, and the response topic the device
// must publish its confirmation to.
type Command struct {
	RequestTopic  string  `json:"requestTopic"`
	Message       Message `json:"message"`
	ResponseTopic string  `json:"responseTopic"`
}

// Ack is an immediate acknowledgement returned by the transport's own
// request cycle. Accepted means the device took the command; it does
// not mean the schedule state was applied. A snapshot, when present,
// is the device's post-command schedule list.
type Ack struct {
	Accepted  bool         `json:"accepted"`
	Schedules []WireRecord `json:"schedules,omitempty"`
}

// Transport is the channel contract the engine requires: publish a
// correlated command and return whatever immediate acknowledgement the
// cycle produced. A nil Ack with a nil error means the confirmation
// will arrive out-of-band on the command's response topic.
type Transport interface {
	Request(ctx context.Context, cmd Command) (*Ack, error)
}

// Publisher is the slice of the MQTT client the transport needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTTransport publishes command envelopes over the broker. MQTT has
// no request/response cycle of its own, so Request never produces an
// immediate Ack: confirmation always arrives as a push on the response
// topic.
type MQTTTransport struct {
	publisher Publisher
	qos       byte
}

// NewMQTTTransport creates a transport over a connected MQTT client.
func NewMQTTTransport(publisher Publisher, qos byte) *MQTTTransport {
	return &MQTTTransport{publisher: publisher, qos: qos}
}

// Request publishes the envelope to the command's request topic.
func (t *MQTTTransport) Request(ctx context.Context, cmd Command) (*Ack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encoding command: %w", err)
	}

	if err := t.publisher.Publish(cmd.RequestTopic, payload, t.qos, false); err != nil {
		return nil, fmt.Errorf("publishing command: %w", err)
	}

	return nil, nil
}
