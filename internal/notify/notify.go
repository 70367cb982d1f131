// Package notify delivers fired alerts through sound, browser notifications and email.
package notify

import (
	"context"
	"fmt"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Channel is one independent notification sink.
type Channel interface {
	Name() string
	// Wants reports whether the alert asked for this channel.
	Wants(alert model.Alert) bool
	Send(ctx context.Context, event model.AlertEvent) error
}

// ChannelResult records the outcome of one channel for one event.
type ChannelResult struct {
	Channel string `json:"channel"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher fans an event out to every channel the alert asked for. A failing
// or panicking channel never prevents the others from running.
type Dispatcher struct {
	channels []Channel
	logger   logger.Logger
}

func NewDispatcher(logger logger.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		logger:   logger.With("component", "notify"),
	}
}

// Dispatch sends event through each wanted channel in registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, event model.AlertEvent) []ChannelResult {
	results := make([]ChannelResult, 0, len(d.channels))
	for _, ch := range d.channels {
		if !ch.Wants(event.Alert) {
			continue
		}
		res := ChannelResult{Channel: ch.Name()}
		if err := safeSend(ctx, ch, event); err != nil {
			d.logger.Errorf("%s notification for alert %s failed: %v", ch.Name(), event.Alert.ID, err)
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func safeSend(ctx context.Context, ch Channel, event model.AlertEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s channel panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Send(ctx, event)
}
