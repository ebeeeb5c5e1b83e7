package models

// ConnState is the lifecycle state of a session's connection.
type ConnState string

const (
	StateIdle         ConnState = "idle"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

// Snapshot is a point-in-time copy of everything the remote control knows.
// It is safe to hand to other goroutines and to encode as JSON.
type Snapshot struct {
	ConnectionID string    `json:"connectionId,omitempty"` // uuid of the live connection, empty when none
	State        ConnState `json:"state"`
	Error        string    `json:"error,omitempty"` // Set while the session is errored

	Scenes       SceneList  `json:"scenes"`
	CurrentScene string     `json:"currentScene"`
	Audio        AudioMap   `json:"audio"`
	Filters      FilterList `json:"filters"`
}

// Errored reports whether the last connect attempt failed.
func (s Snapshot) Errored() bool {
	return s.Error != ""
}
