package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
)

// uploadOverhead leaves room for the multipart framing around a clip.
const uploadOverhead = 64 << 10

// SoundHandler serves the alert sound library and plays sounds on the clients.
type SoundHandler struct {
	library     *notify.SoundLibrary
	player      *notify.Player
	synth       *notify.PCMSynthesizer
	preferences *service.PreferencesService
}

// NewSoundHandler creates a new SoundHandler.
func NewSoundHandler(library *notify.SoundLibrary, player *notify.Player, preferences *service.PreferencesService) *SoundHandler {
	return &SoundHandler{
		library:     library,
		player:      player,
		synth:       notify.NewPCMSynthesizer(),
		preferences: preferences,
	}
}

// Sounds handles GET requests to list the built-in tones and uploaded clips.
//
// Endpoint: GET /api/sounds
// Response: 200 OK with array of Sound
func (h *SoundHandler) Sounds(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.library.List())
}

// UploadSound handles multipart uploads of a custom alert sound.
//
// Endpoint: POST /api/sounds
// Request Body: multipart/form-data with a "file" part and an optional "name" field
// Response: 201 Created with Sound
// Error: 400 Bad Request if the form has no file
// Error: 413 Request Entity Too Large if the clip exceeds 2MB
// Error: 422 Unprocessable Entity if the file is not playable audio
func (h *SoundHandler) UploadSound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, notify.MaxClipSize+uploadOverhead)
	if err := r.ParseMultipartForm(notify.MaxClipSize + uploadOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(w, http.StatusRequestEntityTooLarge, "audio file too large", err.Error())
			return
		}
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", "missing file part")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}

	sound, err := h.library.Add(name, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondServiceError(w, err, "failed to store sound")
		return
	}
	response.RespondJSON(w, http.StatusCreated, sound)
}

// DeleteSound handles DELETE requests to remove an uploaded clip.
//
// Endpoint: DELETE /api/sounds/{soundId}
// Response: 204 No Content
// Error: 404 Not Found if the sound does not exist
// Error: 409 Conflict for built-in tones
func (h *SoundHandler) DeleteSound(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(chi.URLParam(r, "soundId")); err != nil {
		respondServiceError(w, err, "failed to delete sound")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Audio handles GET requests for the playable audio of a sound. Built-in
// tones are synthesized as WAV at the requested volume; uploads are returned
// as stored and the client applies the volume.
//
// Endpoint: GET /api/sounds/{soundId}/audio
// Query Parameters:
//   - volume: 0 to 1, defaults to 1
//
// Response: 200 OK with the audio bytes
// Error: 400 Bad Request if volume is not a number
// Error: 404 Not Found if the sound does not exist
func (h *SoundHandler) Audio(w http.ResponseWriter, r *http.Request) {
	soundID := chi.URLParam(r, "soundId")

	volume := 1.0
	if v := r.URL.Query().Get("volume"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid volume", err.Error())
			return
		}
		volume = notify.ClampVolume(parsed)
	}

	if tone, ok := notify.BuiltInTone(soundID); ok {
		wav := notify.EncodeWAV(h.synth.Render(tone, volume), notify.DefaultSampleRate)
		writeAudio(w, "audio/wav", wav)
		return
	}

	clip, err := h.library.Get(soundID)
	if err != nil {
		respondServiceError(w, err, "failed to load sound")
		return
	}
	writeAudio(w, clip.ContentType, clip.Data)
}

func writeAudio(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// TestSound handles POST requests to play a sound once on the connected clients.
//
// Endpoint: POST /api/sounds/{soundId}/test
// Request Body: optional TestSoundRequest (volume); the saved alert volume is used when absent
// Response: 200 OK with Playback
func (h *SoundHandler) TestSound(w http.ResponseWriter, r *http.Request) {
	soundID := chi.URLParam(r, "soundId")

	var req request.TestSoundRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	volume := h.preferences.AlertVolume()
	if req.Volume != nil {
		volume = *req.Volume
	}

	response.RespondJSON(w, http.StatusOK, h.player.Play(r.Context(), soundID, volume))
}

// StopSound handles POST requests to stop whatever is playing.
//
// Endpoint: POST /api/sounds/stop
// Response: 204 No Content
func (h *SoundHandler) StopSound(w http.ResponseWriter, _ *http.Request) {
	h.player.Stop()
	response.RespondJSON(w, http.StatusNoContent, nil)
}
