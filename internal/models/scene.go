package models

// Scene represents one OBS scene as reported by GetSceneList.
// Scenes are identified by name; OBS guarantees names are unique.
type Scene struct {
	Name string `json:"sceneName"` // Unique scene name (the remote key)
}

// SceneList is the ordered list of scenes in remote order.
type SceneList []Scene

// Names returns the scene names in list order.
func (l SceneList) Names() []string {
	names := make([]string, 0, len(l))
	for _, scene := range l {
		names = append(names, scene.Name)
	}
	return names
}
