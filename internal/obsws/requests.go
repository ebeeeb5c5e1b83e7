package obsws

// Request and response payloads for the calls the remote control makes.
// Only the fields the mirrors read are declared.

type GetSceneListResponse struct {
	Scenes                  []SceneEntry `json:"scenes"`
	CurrentProgramSceneName string       `json:"currentProgramSceneName"`
}

type SceneEntry struct {
	SceneName  string `json:"sceneName"`
	SceneIndex int    `json:"sceneIndex"`
}

type SetCurrentProgramSceneRequest struct {
	SceneName string `json:"sceneName"`
}

type GetInputListRequest struct {
	InputKind string `json:"inputKind,omitempty"`
}

// GetInputListResponse keeps inputs loosely typed; entries whose inputName
// is not a string are skipped by the caller rather than failing the decode.
type GetInputListResponse struct {
	Inputs []map[string]any `json:"inputs"`
}

type InputRequest struct {
	InputName string `json:"inputName"`
}

type GetInputMuteResponse struct {
	InputMuted bool `json:"inputMuted"`
}

type GetSourceFilterListRequest struct {
	SourceName string `json:"sourceName"`
}

type GetSourceFilterListResponse struct {
	Filters []FilterEntry `json:"filters"`
}

type FilterEntry struct {
	FilterName    string `json:"filterName"`
	FilterEnabled bool   `json:"filterEnabled"`
	FilterIndex   int    `json:"filterIndex"`
	FilterKind    string `json:"filterKind"`
}

type SetSourceFilterEnabledRequest struct {
	SourceName    string `json:"sourceName"`
	FilterName    string `json:"filterName"`
	FilterEnabled bool   `json:"filterEnabled"`
}

type CurrentProgramSceneChangedEvent struct {
	SceneName string `json:"sceneName"`
}

type InputMuteStateChangedEvent struct {
	InputName  string `json:"inputName"`
	InputMuted bool   `json:"inputMuted"`
}
