package mirror

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

// Filters mirrors the filter names of the current scene only.
type Filters struct {
	mu      sync.RWMutex
	list    models.FilterList
	seq     uint64 // Bumped on every Seed; older responses are dropped
	changed func()
}

// NewFilters creates an empty, not yet loaded filter mirror.
func NewFilters(changed func()) *Filters {
	return &Filters{
		list:    models.FilterList{Names: []string{}},
		changed: changed,
	}
}

// Seed discards the current list right away and requests the filters of
// sceneName. Only the response to the most recent Seed is applied.
func (f *Filters) Seed(r Requester, sceneName string) error {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.list = models.FilterList{Scene: sceneName, Names: []string{}}
	f.mu.Unlock()
	f.notify()

	err := r.Send(obsws.RequestGetSourceFilterList, obsws.GetSourceFilterListRequest{SourceName: sceneName}, func(data json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Str("scene", sceneName).Msg("filter list request failed")
			return
		}

		var resp struct {
			Filters []json.RawMessage `json:"filters"`
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn().Err(err).Str("scene", sceneName).Msg("skipping malformed filter list")
			return
		}

		names := make([]string, 0, len(resp.Filters))
		for _, filter := range decodeEntries[obsws.FilterEntry](resp.Filters, "filter") {
			if filter.FilterName != "" {
				names = append(names, filter.FilterName)
			}
		}

		f.mu.Lock()
		if seq != f.seq {
			f.mu.Unlock()
			log.Debug().Str("scene", sceneName).Msg("dropping filter list for a scene that is no longer current")
			return
		}
		f.list = models.FilterList{Scene: sceneName, Names: names, Loaded: true}
		f.mu.Unlock()

		log.Debug().Str("scene", sceneName).Int("filters", len(names)).Msg("filter list loaded")
		f.notify()
	})
	if err != nil {
		return fmt.Errorf("seed filters of %q: %w", sceneName, err)
	}
	return nil
}

// EnableFilter asks OBS to enable filterName on sceneName. There is no
// disable counterpart; the list itself does not track enabled state.
func (f *Filters) EnableFilter(r Requester, sceneName, filterName string) error {
	req := obsws.SetSourceFilterEnabledRequest{
		SourceName:    sceneName,
		FilterName:    filterName,
		FilterEnabled: true,
	}
	err := r.Send(obsws.RequestSetSourceFilterEnabled, req, func(_ json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Str("scene", sceneName).Str("filter", filterName).Msg("enable filter failed")
			return
		}
		log.Info().Str("scene", sceneName).Str("filter", filterName).Msg("filter enabled")
	})
	if err != nil {
		return fmt.Errorf("enable filter %q on %q: %w", filterName, sceneName, err)
	}
	return nil
}

// List returns a copy of the current filter list.
func (f *Filters) List() models.FilterList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.list.Clone()
}

func (f *Filters) notify() {
	if f.changed != nil {
		f.changed()
	}
}
