package session

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/mirror"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

// connection binds one transport to the mirrors seeded over it. Handlers and
// callbacks of a connection only ever touch its own mirrors.
type connection struct {
	transport Transport
	scenes    *mirror.Scenes
	audio     *mirror.Audio
	filters   *mirror.Filters

	mu           sync.Mutex // Serializes start and stop
	stopped      bool
	sceneHandler obsws.HandlerID
	muteHandler  obsws.HandlerID
}

func (s *Session) newConnection(t Transport) *connection {
	conn := &connection{transport: t}
	changed := func() { s.changed(conn) }

	conn.filters = mirror.NewFilters(changed)
	conn.audio = mirror.NewAudio(changed)
	conn.scenes = mirror.NewScenes(func(sceneName string) {
		if err := conn.filters.Seed(t, sceneName); err != nil {
			log.Warn().Err(err).Str("connection_id", t.ID()).Msg("filter seeding failed")
		}
	}, changed)
	return conn
}

// start subscribes to events and seeds the mirrors. It does nothing once
// stop has run.
func (c *connection) start(inputKind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}

	c.sceneHandler = c.transport.On(obsws.EventCurrentProgramSceneChanged, c.scenes.HandleSceneChanged)
	c.muteHandler = c.transport.On(obsws.EventInputMuteStateChanged, c.audio.HandleMuteChanged)

	if err := c.scenes.Seed(c.transport); err != nil {
		log.Warn().Err(err).Str("connection_id", c.transport.ID()).Msg("scene seeding failed")
	}
	if err := c.audio.Seed(c.transport, inputKind); err != nil {
		log.Warn().Err(err).Str("connection_id", c.transport.ID()).Msg("audio seeding failed")
	}
	log.Info().Str("connection_id", c.transport.ID()).Str("input_kind", inputKind).Msg("obs session connected")
}

// stop unsubscribes and closes the transport. It waits for a running start.
func (c *connection) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true

	c.transport.Off(obsws.EventCurrentProgramSceneChanged, c.sceneHandler)
	c.transport.Off(obsws.EventInputMuteStateChanged, c.muteHandler)
	if err := c.transport.Close(); err != nil {
		log.Debug().Err(err).Str("connection_id", c.transport.ID()).Msg("closing obs connection")
	}
}
