package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
)

// ClipPlaybackTimeout bounds how long an uploaded clip may play.
const ClipPlaybackTimeout = 5 * time.Second

// Playback is one sound started on the connected clients.
type Playback struct {
	ID         string    `json:"id"`
	SoundID    string    `json:"soundId"`
	Source     string    `json:"source"` // "tone" or "clip"
	URL        string    `json:"url"`
	Volume     float64   `json:"volume"`
	DurationMs int64     `json:"durationMs"`
	FellBack   bool      `json:"fellBack,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
}

// Player plays one sound at a time on the connected clients. Starting a sound
// stops the current one first.
type Player struct {
	mu        sync.Mutex
	current   *Playback
	stopTimer *clock.Timer

	library   *SoundLibrary
	publisher realtime.Publisher
	clock     clock.Clock
	logger    logger.Logger
}

func NewPlayer(library *SoundLibrary, publisher realtime.Publisher, clk clock.Clock, logger logger.Logger) *Player {
	return &Player{
		library:   library,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With("component", "sound"),
	}
}

// Play starts soundID at volume. Unknown or missing uploads fall back to the default beep.
func (p *Player) Play(_ context.Context, soundID string, volume float64) Playback {
	volume = ClampVolume(volume)
	if soundID == "" {
		soundID = DefaultBeepTone.ID
	}

	pb := Playback{
		ID:        uuid.New().String(),
		Volume:    volume,
		StartedAt: p.clock.Now().UTC(),
	}

	var duration time.Duration
	if tone, ok := BuiltInTone(soundID); ok {
		pb.SoundID, pb.Source, duration = tone.ID, "tone", tone.Duration
	} else if _, err := p.library.Get(soundID); err == nil {
		pb.SoundID, pb.Source, duration = soundID, "clip", ClipPlaybackTimeout
	} else {
		p.logger.Warnf("sound %s unavailable, falling back to default beep: %v", soundID, err)
		pb.SoundID, pb.Source, duration = DefaultBeepTone.ID, "tone", DefaultBeepTone.Duration
		pb.FellBack = true
	}
	pb.URL = AudioURL(pb.SoundID, volume)
	pb.DurationMs = duration.Milliseconds()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.current = &pb
	p.publisher.Publish(realtime.EventSoundPlay, pb)

	id := pb.ID
	p.stopTimer = p.clock.AfterFunc(duration, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.current != nil && p.current.ID == id {
			p.current = nil
		}
	})
	return pb
}

// Stop stops the current sound, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stopTimer != nil {
		p.stopTimer.Stop()
		p.stopTimer = nil
	}
	if p.current == nil {
		return
	}
	p.publisher.Publish(realtime.EventSoundStop, map[string]string{"id": p.current.ID})
	p.current = nil
}

// Current returns the sound that is playing.
func (p *Player) Current() (Playback, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Playback{}, false
	}
	return *p.current, true
}

// AudioURL is where clients fetch the audio for a sound.
func AudioURL(soundID string, volume float64) string {
	return fmt.Sprintf("/api/sounds/%s/audio?volume=%s", soundID, strconv.FormatFloat(volume, 'f', -1, 64))
}

// SoundChannel plays the alert's sound when the alert has sound enabled.
type SoundChannel struct {
	player *Player
}

func NewSoundChannel(player *Player) *SoundChannel {
	return &SoundChannel{player: player}
}

func (c *SoundChannel) Name() string { return "sound" }

func (c *SoundChannel) Wants(alert model.Alert) bool { return alert.SoundEnabled }

func (c *SoundChannel) Send(ctx context.Context, event model.AlertEvent) error {
	volume := event.Alert.Volume
	if volume == 0 {
		volume = model.DefaultAlertVolume
	}
	c.player.Play(ctx, event.Alert.SoundFile, volume)
	return nil
}
