package models

// FilterList holds the filter names attached to one scene.
//
// Loaded is false until the filter list response for Scene has arrived, so
// an empty Names with Loaded=true means the scene genuinely has no filters.
type FilterList struct {
	Scene  string   `json:"scene"`  // Scene the list was requested for
	Names  []string `json:"names"`  // Filter names in remote order
	Loaded bool     `json:"loaded"` // Whether the response for Scene has arrived
}

// Clone returns a copy that shares no memory with l.
func (l FilterList) Clone() FilterList {
	names := make([]string, len(l.Names))
	copy(names, l.Names)
	l.Names = names
	return l
}
