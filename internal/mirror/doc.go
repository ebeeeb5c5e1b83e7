// Package mirror holds local copies of remote OBS state: the scene list and
// current scene, per-input mute flags, and the current scene's filters.
//
// Each mirror is seeded with one-shot requests after connect and is then
// kept current by event handlers. Commands are sent through the same
// Requester but never touch the mirror; the mirror only changes when OBS
// reports the change back as an event. All writes arrive on the transport's
// read goroutine; reads may come from anywhere and get copies.
package mirror

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

// Requester is the part of the transport the mirrors need.
type Requester interface {
	Send(requestType string, data any, callback obsws.ResponseFunc) error
}

// decodeEntries decodes each list entry on its own and skips the ones that
// do not fit T, so one bad entry does not cost the whole list.
func decodeEntries[T any](raw []json.RawMessage, kind string) []T {
	out := make([]T, 0, len(raw))
	for _, entry := range raw {
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			log.Debug().Err(err).RawJSON(kind, entry).Msg("skipping malformed list entry")
			continue
		}
		out = append(out, v)
	}
	return out
}
