package session

import (
	"github.com/Vasu1712/scenyx-remote/internal/models"
)

// Snapshot returns a copy of the connection state and all mirrors. Mirrors
// read as empty when no connection is live.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		State:   s.state,
		Error:   s.reason,
		Scenes:  models.SceneList{},
		Audio:   models.AudioMap{},
		Filters: models.FilterList{Names: []string{}},
	}
	if s.conn == nil {
		return snap
	}
	snap.ConnectionID = s.conn.transport.ID()
	snap.Scenes = s.conn.scenes.List()
	snap.CurrentScene = s.conn.scenes.Current()
	snap.Audio = s.conn.audio.Inputs()
	snap.Filters = s.conn.filters.List()
	return snap
}

// Watch registers fn to receive a snapshot after every state transition and
// every mirror update. fn runs on the goroutine that caused the change and
// must not block or call back into the session's lifecycle methods. The
// returned func unregisters fn.
func (s *Session) Watch(fn func(models.Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// changed publishes mirror updates of the live connection only.
func (s *Session) changed(conn *connection) {
	s.mu.Lock()
	live := s.conn == conn
	s.mu.Unlock()
	if live {
		s.publish()
	}
}

func (s *Session) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	watchers := make([]func(models.Snapshot), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
}
