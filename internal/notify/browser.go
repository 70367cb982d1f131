package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
)

// Permission is the browser's desktop-notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification defaults.
const (
	NotificationTag         = "crypto-alert"
	NotificationAutoDismiss = 10 * time.Second
)

// PermissionState is the three-state permission machine. A request resolves
// only from default; once granted or denied the browser stops prompting and
// the answer stands until Reset.
type PermissionState struct {
	mu    sync.RWMutex
	state Permission
}

func NewPermissionState() *PermissionState {
	return &PermissionState{state: PermissionDefault}
}

func (p *PermissionState) Current() Permission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Request applies the user's answer to a permission prompt and returns the resulting state.
func (p *PermissionState) Request(answer Permission) (Permission, error) {
	if answer != PermissionGranted && answer != PermissionDenied {
		return "", fmt.Errorf("invalid permission answer %q", answer)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PermissionDefault {
		p.state = answer
	}
	return p.state, nil
}

// Reset returns to default, as when the user clears the site setting.
func (p *PermissionState) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PermissionDefault
}

// Notification is a desktop notification shown on the clients.
type Notification struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	Tag                string    `json:"tag"`
	RequireInteraction bool      `json:"requireInteraction"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// BrowserNotifier shows notifications while permission is granted and closes
// each one after the auto-dismiss timeout unless it was dismissed first.
type BrowserNotifier struct {
	permission *PermissionState
	publisher  realtime.Publisher
	clock      clock.Clock
	timeout    time.Duration

	mu     sync.Mutex
	open   map[string]Notification
	timers map[string]*clock.Timer
}

func NewBrowserNotifier(permission *PermissionState, publisher realtime.Publisher, clk clock.Clock) *BrowserNotifier {
	return &BrowserNotifier{
		permission: permission,
		publisher:  publisher,
		clock:      clk,
		timeout:    NotificationAutoDismiss,
		open:       make(map[string]Notification),
		timers:     make(map[string]*clock.Timer),
	}
}

// Permission exposes the permission machine.
func (n *BrowserNotifier) Permission() *PermissionState {
	return n.permission
}

// Show displays a notification. It is a no-op returning false unless permission is granted.
func (n *BrowserNotifier) Show(title, body string) (Notification, bool) {
	if n.permission.Current() != PermissionGranted {
		return Notification{}, false
	}

	now := n.clock.Now().UTC()
	note := Notification{
		ID:                 uuid.New().String(),
		Title:              title,
		Body:               body,
		Tag:                NotificationTag,
		RequireInteraction: true,
		CreatedAt:          now,
		ExpiresAt:          now.Add(n.timeout),
	}

	n.mu.Lock()
	n.open[note.ID] = note
	n.timers[note.ID] = n.clock.AfterFunc(n.timeout, func() {
		n.close(note.ID)
	})
	n.mu.Unlock()

	n.publisher.Publish(realtime.EventNotificationShow, note)
	return note, true
}

// Dismiss closes a notification before its timeout.
func (n *BrowserNotifier) Dismiss(id string) error {
	n.mu.Lock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
	}
	n.mu.Unlock()

	if !n.close(id) {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (n *BrowserNotifier) close(id string) bool {
	n.mu.Lock()
	_, ok := n.open[id]
	delete(n.open, id)
	delete(n.timers, id)
	n.mu.Unlock()

	if ok {
		n.publisher.Publish(realtime.EventNotificationClose, map[string]string{"id": id})
	}
	return ok
}

// Open lists notifications that are still showing, oldest first.
func (n *BrowserNotifier) Open() []Notification {
	n.mu.Lock()
	out := make([]Notification, 0, len(n.open))
	for _, note := range n.open {
		out = append(out, note)
	}
	n.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PriceAlertTitle is the notification title for a fired alert.
func PriceAlertTitle(symbol string, d model.Direction) string {
	return fmt.Sprintf("%s %s Price Alert", d.Emoji(), symbol)
}

// PriceAlertBody is the notification body for a fired alert.
func PriceAlertBody(symbol string, current, target float64) string {
	return fmt.Sprintf("%s is now %s your target price of $%s\nCurrent price: $%s",
		symbol, model.DirectionOf(current, target), FormatPrice(target), FormatPrice(current))
}

// BrowserChannel shows a desktop notification for alerts that asked for one.
type BrowserChannel struct {
	notifier *BrowserNotifier
}

func NewBrowserChannel(notifier *BrowserNotifier) *BrowserChannel {
	return &BrowserChannel{notifier: notifier}
}

func (c *BrowserChannel) Name() string { return "browser" }

func (c *BrowserChannel) Wants(alert model.Alert) bool { return alert.BrowserNotification }

// Send shows the notification; without permission it does nothing.
func (c *BrowserChannel) Send(_ context.Context, event model.AlertEvent) error {
	c.notifier.Show(
		PriceAlertTitle(event.Alert.TokenSymbol, event.Direction),
		PriceAlertBody(event.Alert.TokenSymbol, event.NewPrice, event.Alert.TargetPrice),
	)
	return nil
}
