package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/pkg/errors"

	"github.com/sanskar717/stablecoin-backend/core"
)

// Publisher delivers committed mutation notifications to NATS
// JetStream. Subjects follow the pattern stable.engine.events.{type}.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) Publish(ctx context.Context, event core.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	subject := fmt.Sprintf("stable.engine.events.%s", event.Type)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// EnsureEventStream creates the outbound events stream.
func EnsureEventStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "STABLE_ENGINE_EVENTS",
		Subjects:  []string{"stable.engine.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return errors.Wrap(err, "create events stream")
	}
	return nil
}
