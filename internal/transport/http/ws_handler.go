package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// SoundPreference reads the persisted sound flag.
type SoundPreference interface {
	SoundEnabled(fallback bool) bool
}

// WSHandler runs one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	prefs    SoundPreference
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, prefs SoundPreference) *WSHandler {
	return &WSHandler{
		service: service,
		prefs:   prefs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type finishPayload struct {
	Name string `json:"name"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type soundPayload struct {
	Cue app.Cue `json:"cue"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// chanCueSink forwards audio cues to the connection's write channel. Cues are
// dropped rather than ever blocking a session transition.
type chanCueSink struct {
	send chan<- outboundMessage[any]
}

func (c chanCueSink) PlayCue(cue app.Cue) error {
	select {
	case c.send <- outboundMessage[any]{Type: "sound", Payload: soundPayload{Cue: cue}}:
		return nil
	default:
		return errors.New("cue channel full")
	}
}

// ServeWS upgrades the request and plays a full quiz session over the socket:
// the handshake carries category/difficulty/sound, the server streams state
// snapshots and sound cues, the client sends answers and the final name.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "missing category", http.StatusBadRequest)
		return
	}
	difficulty, err := domain.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	soundEnabled := h.soundEnabled(r.URL.Query().Get("sound"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	session, err := h.service.StartSession(r.Context(), category, difficulty, soundEnabled, chanCueSink{send: send})
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "loading questions failed: " + err.Error()}}
		close(send)
		<-writerDone
		return
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	go func() {
		defer close(updatesDone)
		for snap := range updates {
			select {
			case send <- outboundMessage[any]{Type: "state", Payload: snap}:
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			session.Submit(payload.Index)
		case "finish":
			var payload finishPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid finish payload"}}
				continue
			}
			entry, err := h.service.FinishSession(r.Context(), session.ID(), payload.Name)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "saved", Payload: entry}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	// Discard the session first so its timers stop producing updates and cues,
	// then drain the pumps before closing the write channel.
	h.service.CloseSession(session.ID())
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) soundEnabled(param string) bool {
	if param != "" {
		if enabled, err := strconv.ParseBool(param); err == nil {
			return enabled
		}
	}
	if h.prefs != nil {
		return h.prefs.SoundEnabled(true)
	}
	return true
}
