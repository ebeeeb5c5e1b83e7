// Package session owns the connection to OBS and the mirrors built on top
// of it. A Session is activated when the control surface becomes visible
// and deactivated when it is hidden; every activation starts from empty
// mirrors and seeds them again.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/mirror"
	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

var (
	// ErrNotConnected is returned by commands while no connection is live.
	ErrNotConnected = errors.New("session: not connected to obs")

	// ErrNoCurrentScene is returned by EnableFilter before the scene list arrived.
	ErrNoCurrentScene = errors.New("session: no current scene")
)

// Transport is the connection a session drives. *obsws.Client implements it.
type Transport interface {
	mirror.Requester
	On(eventType string, handler obsws.EventHandler) obsws.HandlerID
	Off(eventType string, id obsws.HandlerID) bool
	Close() error
	Done() <-chan struct{}
	Err() error
	ID() string
}

// Dialer opens a Transport. Failures should be *obsws.ConnectError so the
// reason can be shown as is.
type Dialer func(ctx context.Context, address, password string) (Transport, error)

// Config holds the connection parameters of a Session.
type Config struct {
	Address   string // host:port of obs-websocket
	Password  string // obs-websocket password, empty when auth is off
	InputKind string // Input kind whose mute state is mirrored
	Dial      Dialer // nil means obsws.Dial
}

// Session is the explicit, per-process handle on the OBS connection. Pass it
// to whatever needs to read state or issue commands.
type Session struct {
	mu        sync.Mutex
	address   string
	password  string
	inputKind string
	dial      Dialer

	state   models.ConnState
	reason  string      // Set when the last attempt failed or the connection dropped
	conn    *connection // Live connection and its mirrors, nil when none
	attempt uint64      // Bumped by Activate and Deactivate to detect stale dials

	watchers    map[int]func(models.Snapshot)
	nextWatcher int
}

// New creates an idle session. Nothing connects until Activate.
func New(cfg Config) *Session {
	dial := cfg.Dial
	if dial == nil {
		dial = dialOBS
	}
	return &Session{
		address:   cfg.Address,
		password:  cfg.Password,
		inputKind: cfg.InputKind,
		dial:      dial,
		state:     models.StateIdle,
		watchers:  make(map[int]func(models.Snapshot)),
	}
}

func dialOBS(ctx context.Context, address, password string) (Transport, error) {
	client, err := obsws.Dial(ctx, address, password, nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Activate connects and seeds the mirrors. It does nothing if a connection
// is live or being established. A failed attempt leaves the session
// errored with a readable reason until the next Activate; there is no
// automatic retry.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.state == models.StateConnecting || s.state == models.StateConnected {
		s.mu.Unlock()
		return nil
	}
	s.state = models.StateConnecting
	s.reason = ""
	s.attempt++
	attempt := s.attempt
	address, password, inputKind := s.address, s.password, s.inputKind
	s.mu.Unlock()
	s.publish()

	log.Info().Str("address", address).Msg("connecting to obs")
	transport, err := s.dial(ctx, address, password)

	s.mu.Lock()
	if attempt != s.attempt {
		// Deactivated while dialing.
		s.mu.Unlock()
		if transport != nil {
			transport.Close()
		}
		log.Info().Str("address", address).Msg("discarding connection opened after deactivation")
		return nil
	}
	if err != nil {
		s.state = models.StateDisconnected
		s.reason = failureReason(err)
		s.mu.Unlock()
		log.Error().Err(err).Str("address", address).Msg("connect to obs failed")
		s.publish()
		return err
	}
	conn := s.newConnection(transport)
	s.conn = conn
	s.state = models.StateConnected
	s.mu.Unlock()

	conn.start(inputKind)
	go s.watchDrop(conn)
	s.publish()
	return nil
}

// Deactivate unsubscribes the event handlers, closes the connection and
// drops the mirrors. It is safe to call at any time.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.attempt++
	conn := s.conn
	s.conn = nil
	wasActive := s.state == models.StateConnecting || s.state == models.StateConnected
	if wasActive {
		s.state = models.StateDisconnected
	}
	s.mu.Unlock()

	if conn != nil {
		conn.stop()
	}
	if wasActive {
		log.Info().Msg("obs session deactivated")
		s.publish()
	}
}

// Reconfigure replaces the connection parameters used by the next Activate.
func (s *Session) Reconfigure(address, password string) {
	s.mu.Lock()
	s.address = address
	s.password = password
	s.mu.Unlock()
	log.Info().Str("address", address).Msg("obs connection parameters updated")
}

// Address returns the address the next Activate will dial.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// watchDrop tears the connection down when the remote end goes away.
func (s *Session) watchDrop(conn *connection) {
	<-conn.transport.Done()

	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = models.StateDisconnected
	s.reason = "connection to obs lost"
	s.mu.Unlock()

	log.Warn().Err(conn.transport.Err()).Str("connection_id", conn.transport.ID()).Msg("obs connection dropped; waiting for next activation")
	conn.stop()
	s.publish()
}

func (s *Session) live() *connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Scene looks a scene up by name in the live connection's scene list.
func (s *Session) Scene(sceneName string) (models.Scene, bool) {
	conn := s.live()
	if conn == nil {
		return models.Scene{}, false
	}
	return conn.scenes.Scene(sceneName)
}

// ChangeScene asks OBS to switch the program scene.
func (s *Session) ChangeScene(sceneName string) error {
	conn := s.live()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.scenes.ChangeScene(conn.transport, sceneName)
}

// ToggleMute asks OBS to flip an input's mute state.
func (s *Session) ToggleMute(inputName string) error {
	conn := s.live()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.audio.ToggleMute(conn.transport, inputName)
}

// EnableFilter enables filterName on the current scene.
func (s *Session) EnableFilter(filterName string) error {
	conn := s.live()
	if conn == nil {
		return ErrNotConnected
	}
	scene := conn.scenes.Current()
	if scene == "" {
		return ErrNoCurrentScene
	}
	return conn.filters.EnableFilter(conn.transport, scene, filterName)
}

func failureReason(err error) string {
	var connectErr *obsws.ConnectError
	if errors.As(err, &connectErr) && connectErr.Reason != "" {
		return connectErr.Reason
	}
	return err.Error()
}
