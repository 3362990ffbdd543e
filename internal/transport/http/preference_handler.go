package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// PreferenceWriter persists the sound flag.
type PreferenceWriter interface {
	SoundPreference
	SetSoundEnabled(enabled bool) error
}

// PreferenceHandler reads and writes the persisted sound preference.
type PreferenceHandler struct {
	prefs PreferenceWriter
}

func NewPreferenceHandler(prefs PreferenceWriter) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

type soundPreferencePayload struct {
	SoundEnabled bool `json:"soundEnabled"`
}

func (h *PreferenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, soundPreferencePayload{SoundEnabled: h.prefs.SoundEnabled(true)})
	case http.MethodPut:
		var payload soundPreferencePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid preference payload", http.StatusBadRequest)
			return
		}
		if err := h.prefs.SetSoundEnabled(payload.SoundEnabled); err != nil {
			logrus.WithError(err).Warn("persist sound preference failed")
			http.Error(w, "persist preference failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
