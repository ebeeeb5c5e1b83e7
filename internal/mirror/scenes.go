package mirror

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

// Scenes mirrors the scene list and the current program scene.
type Scenes struct {
	mu      sync.RWMutex     // Guards scenes and current
	scenes  models.SceneList // Scenes in remote order, fetched once per connection
	current string           // Name of the current program scene
	changed func()           // Called after every mutation, may be nil
	onScene func(string)     // Called with the new current scene, may be nil
}

// NewScenes creates an empty scene mirror. onScene is invoked whenever the
// current scene is set, by the seed response or by an event; the session
// uses it to reseed the filter mirror. changed is invoked after any update.
func NewScenes(onScene func(sceneName string), changed func()) *Scenes {
	return &Scenes{
		scenes:  models.SceneList{},
		changed: changed,
		onScene: onScene,
	}
}

// Seed requests the scene list. The response replaces the list and the
// current scene together, then fires the onScene hook.
func (s *Scenes) Seed(r Requester) error {
	err := r.Send(obsws.RequestGetSceneList, nil, func(data json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("scene list request failed")
			return
		}

		var resp struct {
			Scenes                  []json.RawMessage `json:"scenes"`
			CurrentProgramSceneName string            `json:"currentProgramSceneName"`
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn().Err(err).Msg("skipping malformed scene list")
			return
		}

		scenes := make(models.SceneList, 0, len(resp.Scenes))
		for _, entry := range decodeEntries[obsws.SceneEntry](resp.Scenes, "scene") {
			if entry.SceneName == "" {
				continue
			}
			scenes = append(scenes, models.Scene{Name: entry.SceneName})
		}

		s.mu.Lock()
		s.scenes = scenes
		s.current = resp.CurrentProgramSceneName
		s.mu.Unlock()

		log.Info().Int("scenes", len(scenes)).Str("scene", resp.CurrentProgramSceneName).Msg("scene list loaded")
		s.notify(resp.CurrentProgramSceneName)
	})
	if err != nil {
		return fmt.Errorf("seed scenes: %w", err)
	}
	return nil
}

// HandleSceneChanged applies a CurrentProgramSceneChanged event. The scene
// list is not refetched.
func (s *Scenes) HandleSceneChanged(data json.RawMessage) {
	var ev obsws.CurrentProgramSceneChangedEvent
	if err := json.Unmarshal(data, &ev); err != nil || ev.SceneName == "" {
		log.Warn().Err(err).Msg("skipping malformed scene change event")
		return
	}

	s.mu.Lock()
	s.current = ev.SceneName
	s.mu.Unlock()

	log.Debug().Str("scene", ev.SceneName).Msg("current scene changed")
	s.notify(ev.SceneName)
}

// ChangeScene asks OBS to switch the program scene. Current is left alone
// until the matching event arrives.
func (s *Scenes) ChangeScene(r Requester, sceneName string) error {
	err := r.Send(obsws.RequestSetCurrentProgramScene, obsws.SetCurrentProgramSceneRequest{SceneName: sceneName}, nil)
	if err != nil {
		return fmt.Errorf("change scene to %q: %w", sceneName, err)
	}
	return nil
}

// List returns a copy of the scene list.
func (s *Scenes) List() models.SceneList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.SceneList, len(s.scenes))
	copy(out, s.scenes)
	return out
}

// Current returns the current program scene, or "" before seeding.
func (s *Scenes) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Scene looks a scene up by name.
func (s *Scenes) Scene(name string) (models.Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, scene := range s.scenes {
		if scene.Name == name {
			return scene, true
		}
	}
	return models.Scene{}, false
}

func (s *Scenes) notify(sceneName string) {
	if s.onScene != nil && sceneName != "" {
		s.onScene(sceneName)
	}
	if s.changed != nil {
		s.changed()
	}
}
