package models

import "sort"

// AudioMap maps an input name to its muted flag.
type AudioMap map[string]bool

// Clone returns an independent copy of the map.
func (m AudioMap) Clone() AudioMap {
	out := make(AudioMap, len(m))
	for name, muted := range m {
		out[name] = muted
	}
	return out
}

// Names returns the input names sorted alphabetically.
func (m AudioMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
