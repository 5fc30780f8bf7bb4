// Package notify is the realtime refresh channel between the server
// and connected consoles.
//
// Whenever a question is created or updated, the server publishes a
// change event over NATS; consoles subscribe and refetch the
// questionnaire so every open canvas converges on the new flow. The
// publisher is optional: with no NATS URL configured the server uses
// the no-op publisher and consoles fall back to manual refresh.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dentflow/dentflow/pkg/errors"
)

// Event topic constants.
const (
	TopicQuestionsChanged = "dentflow.questions.changed"
)

// QuestionsChanged is published after any question mutation.
type QuestionsChanged struct {
	QuestionID string `json:"questionId"`
	Action     string `json:"action"` // "created" or "updated"
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NATSPublisher publishes events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to NATS at %s", url)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshaling event")
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "publishing to %s", topic)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NoopPublisher is a Publisher that does nothing, used when NATS is
// not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, event any) error { return nil }
func (NoopPublisher) Close() error                                               { return nil }

// Subscriber receives change events from NATS with automatic
// reconnection.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber connects to NATS. Extra nats.Option values (e.g.
// reconnect handlers) can be appended.
func NewSubscriber(url string, opts ...nats.Option) (*Subscriber, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to NATS at %s", url)
	}
	return &Subscriber{conn: nc}, nil
}

// OnQuestionsChanged invokes fn for every question change event. The
// callback runs on the NATS delivery goroutine; keep it short and hand
// real work off. Call the returned cancel function to unsubscribe.
func (s *Subscriber) OnQuestionsChanged(fn func(QuestionsChanged)) (func(), error) {
	var once sync.Once

	sub, err := s.conn.Subscribe(TopicQuestionsChanged, func(msg *nats.Msg) {
		var ev QuestionsChanged
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "subscribing to %s", TopicQuestionsChanged)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so events published on other connections are routed.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "flushing subscription")
	}

	cancel := func() {
		once.Do(func() { _ = sub.Unsubscribe() })
	}
	return cancel, nil
}

func (s *Subscriber) Close() error {
	s.conn.Close()
	return nil
}
