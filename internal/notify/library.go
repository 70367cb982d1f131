package notify

import (
	"sort"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// MaxClipSize is the largest accepted upload.
const MaxClipSize = 2 << 20

// decodableTypes are the non-audio containers a browser can still preload as sound.
var decodableTypes = map[string]bool{
	"application/ogg": true,
	"video/mp4":       true,
	"video/webm":      true,
}

// Clip is an uploaded audio file.
type Clip struct {
	model.Sound
	Data []byte
}

// SoundLibrary holds uploaded clips for the lifetime of the process.
type SoundLibrary struct {
	mu    sync.RWMutex
	clips map[string]Clip
	clock clock.Clock
}

func NewSoundLibrary(clk clock.Clock) *SoundLibrary {
	return &SoundLibrary{
		clips: make(map[string]Clip),
		clock: clk,
	}
}

// Add validates and stores an uploaded clip. The declared type must be audio,
// the size at most MaxClipSize, and the content must sniff as a playable format.
func (l *SoundLibrary) Add(name, contentType string, data []byte) (model.Sound, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "audio/") {
		return model.Sound{}, apperrors.ErrUnsupportedAudio
	}
	if len(data) > MaxClipSize {
		return model.Sound{}, apperrors.ErrAudioTooLarge
	}
	if !Decodable(data) {
		return model.Sound{}, apperrors.ErrUnsupportedAudio
	}

	sound := model.Sound{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  l.clock.Now().UTC(),
	}

	l.mu.Lock()
	l.clips[sound.ID] = Clip{Sound: sound, Data: data}
	l.mu.Unlock()
	return sound, nil
}

// Decodable reports whether data sniffs as an audio container. MPEG frame
// streams without an ID3 tag, FLAC and M4A are recognised.
func Decodable(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || decodableTypes[m.String()] {
			return true
		}
	}
	return false
}

// Get returns the clip with the given ID.
func (l *SoundLibrary) Get(id string) (Clip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.clips[id]
	if !ok {
		return Clip{}, apperrors.ErrSoundNotFound
	}
	return c, nil
}

// Delete removes an uploaded clip. Built-in tones cannot be deleted.
func (l *SoundLibrary) Delete(id string) error {
	if _, ok := BuiltInTone(id); ok {
		return apperrors.ErrBuiltInSound
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.clips[id]; !ok {
		return apperrors.ErrSoundNotFound
	}
	delete(l.clips, id)
	return nil
}

// List returns the built-in tones followed by uploads, oldest first.
func (l *SoundLibrary) List() []model.Sound {
	out := make([]model.Sound, 0, 3)
	for _, t := range BuiltInTones() {
		out = append(out, model.Sound{ID: t.ID, Name: t.Name, BuiltIn: true})
	}

	l.mu.RLock()
	uploads := make([]model.Sound, 0, len(l.clips))
	for _, c := range l.clips {
		uploads = append(uploads, c.Sound)
	}
	l.mu.RUnlock()

	sort.Slice(uploads, func(i, j int) bool {
		if !uploads[i].UploadedAt.Equal(uploads[j].UploadedAt) {
			return uploads[i].UploadedAt.Before(uploads[j].UploadedAt)
		}
		return uploads[i].ID < uploads[j].ID
	})
	return append(out, uploads...)
}
