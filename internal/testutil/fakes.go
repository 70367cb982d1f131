package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
)

// RecordingPublisher captures published events instead of writing to sockets.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, realtime.Event{Type: eventType, Data: data})
}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.events...)
}

// Count returns how many events of eventType were published.
func (p *RecordingPublisher) Count(eventType string) int {
	n := 0
	for _, e := range p.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// StaticIdentity reports a fixed user ID. The zero value is signed out.
type StaticIdentity struct {
	UserID string
}

func (i *StaticIdentity) CurrentUserID() string { return i.UserID }

// RecordingChannel is a notify.Channel that records every event it receives.
//
// Example usage:
//
//	ch := testutil.NewRecordingChannel("sound").WithError(errors.New("boom"))
type RecordingChannel struct {
	ChannelName string
	WantAll     bool
	Err         error
	Panic       bool

	mu     sync.Mutex
	events []model.AlertEvent
}

func NewRecordingChannel(name string) *RecordingChannel {
	return &RecordingChannel{ChannelName: name, WantAll: true}
}

// WithError configures the channel to fail every send.
func (c *RecordingChannel) WithError(err error) *RecordingChannel {
	c.Err = err
	return c
}

// Panicking configures the channel to panic on send.
func (c *RecordingChannel) Panicking() *RecordingChannel {
	c.Panic = true
	return c
}

// Unwanted makes the channel decline every alert.
func (c *RecordingChannel) Unwanted() *RecordingChannel {
	c.WantAll = false
	return c
}

func (c *RecordingChannel) Name() string { return c.ChannelName }

func (c *RecordingChannel) Wants(_ model.Alert) bool { return c.WantAll }

func (c *RecordingChannel) Send(_ context.Context, event model.AlertEvent) error {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	if c.Panic {
		panic("channel exploded")
	}
	return c.Err
}

// Events returns the events received so far.
func (c *RecordingChannel) Events() []model.AlertEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.AlertEvent(nil), c.events...)
}

// RecordingMailer is a notify.Mailer that keeps sent messages in memory.
type RecordingMailer struct {
	Err error

	mu       sync.Mutex
	messages []notify.Message
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) Send(_ context.Context, msg notify.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns the messages sent so far.
func (m *RecordingMailer) Messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.messages...)
}

// StaticEmailSettings serves fixed email settings.
type StaticEmailSettings struct {
	Value model.EmailSettings
	Err   error
}

func (s *StaticEmailSettings) Settings(_ context.Context) (model.EmailSettings, error) {
	return s.Value, s.Err
}

// WaitFor polls cond until it holds or a second passes. Mock clock timers run
// their callbacks on separate goroutines, so assertions on their effects wait here.
func WaitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
