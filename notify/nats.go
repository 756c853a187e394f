package notify

import (
	"context"
	"encoding/json"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/natsclient"
)

// NATS subjects for governor events
const (
	SubjectQualityWarning = "governor.quality.warning"
	SubjectSessionOutcome = "governor.session.outcome"
)

// NATSNotifier publishes events as JSON over core NATS. Delivery is
// fire-and-forget; a disconnected client surfaces as a transient error the
// caller may ignore or log.
type NATSNotifier struct {
	client *natsclient.Client
}

// NewNATSNotifier creates a notifier publishing through the given client
func NewNATSNotifier(client *natsclient.Client) (*NATSNotifier, error) {
	if client == nil {
		return nil, errors.ErrMissingConfig
	}
	return &NATSNotifier{client: client}, nil
}

// NotifyQuality publishes a quality warning to SubjectQualityWarning
func (n *NATSNotifier) NotifyQuality(ctx context.Context, warning QualityWarning) error {
	return n.publish(ctx, SubjectQualityWarning, warning)
}

// NotifySession publishes a session outcome to SubjectSessionOutcome
func (n *NATSNotifier) NotifySession(ctx context.Context, event SessionEvent) error {
	return n.publish(ctx, SubjectSessionOutcome, event)
}

func (n *NATSNotifier) publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapInvalid(err, "NATSNotifier", "publish", "marshal event")
	}

	if err := n.client.Publish(ctx, subject, data); err != nil {
		return errors.WrapTransient(err, "NATSNotifier", "publish", "publish event")
	}
	return nil
}
