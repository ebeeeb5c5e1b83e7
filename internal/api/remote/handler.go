// Package remote is the headless HTTP face of the session: it serves
// snapshots, streams them over a websocket and forwards commands.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
	"github.com/Vasu1712/scenyx-remote/internal/session"
	"github.com/Vasu1712/scenyx-remote/internal/ws"
)

// Controller is what the API needs from a session.
type Controller interface {
	Snapshot() models.Snapshot
	Scene(sceneName string) (models.Scene, bool)
	Activate(ctx context.Context) error
	Deactivate()
	Reconfigure(address, password string)
	ChangeScene(sceneName string) error
	ToggleMute(inputName string) error
	EnableFilter(filterName string) error
}

// RemoteHandler holds the dependencies of the remote-control routes.
type RemoteHandler struct {
	Session       Controller
	Hub           *ws.Hub
	AllowedOrigin string // Origin allowed to open the state stream besides same-host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}

// pathVar returns the unescaped mux variable name.
func pathVar(r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// GetState returns the current snapshot.
func (h *RemoteHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.Snapshot())
}

// GetScene looks a scene up by name in the mirrored scene list.
func (h *RemoteHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "sceneName")
	if !ok {
		http.Error(w, "Invalid scene name", http.StatusBadRequest)
		return
	}
	scene, ok := h.Session.Scene(name)
	if !ok {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// ChangeScene expects {"sceneName": "..."}.
func (h *RemoteHandler) ChangeScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SceneName string `json:"sceneName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Debug().Err(err).Msg("decoding change scene request")
		return
	}
	if req.SceneName == "" {
		http.Error(w, "sceneName cannot be empty", http.StatusBadRequest)
		return
	}
	h.command(w, h.Session.ChangeScene(req.SceneName))
}

// ToggleMute flips the mute state of the input in the path.
func (h *RemoteHandler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "inputName")
	if !ok {
		http.Error(w, "Invalid input name", http.StatusBadRequest)
		return
	}
	h.command(w, h.Session.ToggleMute(name))
}

// EnableFilter enables the filter in the path on the current scene.
func (h *RemoteHandler) EnableFilter(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "filterName")
	if !ok {
		http.Error(w, "Invalid filter name", http.StatusBadRequest)
		return
	}
	h.command(w, h.Session.EnableFilter(name))
}

// command answers 202 on success: the mirror only moves once OBS reports
// the change, so the caller should watch the state stream.
func (h *RemoteHandler) command(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	case errors.Is(err, session.ErrNotConnected), errors.Is(err, obsws.ErrClosed):
		http.Error(w, "Not connected to OBS", http.StatusConflict)
	case errors.Is(err, session.ErrNoCurrentScene):
		http.Error(w, "No current scene yet", http.StatusConflict)
	default:
		log.Error().Err(err).Msg("sending command")
		http.Error(w, "Failed to send command", http.StatusInternalServerError)
	}
}

// Activate connects to OBS and returns the resulting snapshot.
func (h *RemoteHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.activate(w, r)
}

// Deactivate closes the OBS connection.
func (h *RemoteHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.Session.Deactivate()
	writeJSON(w, http.StatusOK, h.Session.Snapshot())
}

// Reconnect expects {"address": "...", "password": "..."}, replaces the
// connection parameters and reconnects with them.
func (h *RemoteHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address  string `json:"address"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Debug().Err(err).Msg("decoding reconnect request")
		return
	}
	if req.Address == "" {
		http.Error(w, "address cannot be empty", http.StatusBadRequest)
		return
	}

	h.Session.Reconfigure(req.Address, req.Password)
	h.Session.Deactivate()
	h.activate(w, r)
}

func (h *RemoteHandler) activate(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Activate(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, h.Session.Snapshot())
		return
	}
	writeJSON(w, http.StatusOK, h.Session.Snapshot())
}

const writeWait = 10 * time.Second

func (h *RemoteHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == h.AllowedOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// ServeWS streams snapshots to the caller until either side goes away.
func (h *RemoteHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrading state stream")
		return
	}

	client := &ws.Client{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 16),
		Conn: conn,
	}
	if !h.Hub.Join(client) {
		conn.Close()
		return
	}
	log.Info().Str("viewer", client.ID).Msg("state stream opened")

	// Read pump: viewers do not send anything; reading detects the close.
	go func() {
		defer func() {
			h.Hub.Leave(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("viewer", client.ID).Msg("state stream read error")
				}
				return
			}
		}
	}()

	// Write pump.
	go func() {
		defer func() {
			conn.Close()
			log.Info().Str("viewer", client.ID).Msg("state stream closed")
		}()
		for message := range client.Send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("viewer", client.ID).Msg("state stream write error")
				return
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()
}
