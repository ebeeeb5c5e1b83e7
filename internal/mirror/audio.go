package mirror

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

// Audio mirrors the muted flag of every input of one kind.
type Audio struct {
	mu      sync.RWMutex
	inputs  models.AudioMap
	changed func()
}

// NewAudio creates an empty audio mirror. changed is invoked after any update.
func NewAudio(changed func()) *Audio {
	return &Audio{
		inputs:  make(models.AudioMap),
		changed: changed,
	}
}

// Seed enumerates the inputs of inputKind, then fetches the mute state of
// each one with its own request. Every response writes only its own input,
// so the responses may arrive in any order. An input whose request fails or
// never gets an answer stays absent.
func (a *Audio) Seed(r Requester, inputKind string) error {
	err := r.Send(obsws.RequestGetInputList, obsws.GetInputListRequest{InputKind: inputKind}, func(data json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Str("input_kind", inputKind).Msg("input list request failed")
			return
		}

		var resp obsws.GetInputListResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn().Err(err).Msg("skipping malformed input list")
			return
		}

		for _, input := range resp.Inputs {
			name, ok := input["inputName"].(string)
			if !ok || name == "" {
				log.Debug().Interface("input", input).Msg("skipping input without a name")
				continue
			}
			if err := a.fetchMute(r, name); err != nil {
				log.Warn().Err(err).Str("input", name).Msg("mute state request not sent")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("seed audio inputs: %w", err)
	}
	return nil
}

func (a *Audio) fetchMute(r Requester, inputName string) error {
	return r.Send(obsws.RequestGetInputMute, obsws.InputRequest{InputName: inputName}, func(data json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Str("input", inputName).Msg("mute state request failed")
			return
		}
		var resp obsws.GetInputMuteResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn().Err(err).Str("input", inputName).Msg("skipping malformed mute state")
			return
		}
		a.set(inputName, resp.InputMuted)
	})
}

// HandleMuteChanged applies an InputMuteStateChanged event. Inputs that
// were not enumerated at seed time are added.
func (a *Audio) HandleMuteChanged(data json.RawMessage) {
	var ev obsws.InputMuteStateChangedEvent
	if err := json.Unmarshal(data, &ev); err != nil || ev.InputName == "" {
		log.Warn().Err(err).Msg("skipping malformed mute event")
		return
	}
	a.set(ev.InputName, ev.InputMuted)
}

// ToggleMute asks OBS to flip an input's mute state. The mirror is updated
// by the event OBS sends back.
func (a *Audio) ToggleMute(r Requester, inputName string) error {
	if err := r.Send(obsws.RequestToggleInputMute, obsws.InputRequest{InputName: inputName}, nil); err != nil {
		return fmt.Errorf("toggle mute of %q: %w", inputName, err)
	}
	return nil
}

// Muted returns the mirrored flag for inputName and whether it is known.
func (a *Audio) Muted(inputName string) (muted, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	muted, ok = a.inputs[inputName]
	return muted, ok
}

// Inputs returns a copy of the whole map.
func (a *Audio) Inputs() models.AudioMap {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inputs.Clone()
}

func (a *Audio) set(inputName string, muted bool) {
	a.mu.Lock()
	a.inputs[inputName] = muted
	a.mu.Unlock()

	log.Debug().Str("input", inputName).Bool("muted", muted).Msg("input mute state updated")
	if a.changed != nil {
		a.changed()
	}
}
