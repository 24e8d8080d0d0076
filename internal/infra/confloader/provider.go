package confloader

import (
	"errors"
	"strings"
)

// mapProvider feeds an in-memory configuration map to koanf. It exists
// so tests can exercise merge priority without touching the filesystem.
// Keys use dotted path notation ("gateway.public_base") and are
// unflattened into the nested shape koanf expects.
type mapProvider struct {
	values map[string]any
}

func newMapProvider(values map[string]any) *mapProvider {
	return &mapProvider{values: values}
}

// Read returns the configuration as a nested map.
func (p *mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any)
	for key, value := range p.values {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out, nil
}

// ReadBytes is not supported; the provider is map-based.
func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: mapProvider does not support ReadBytes")
}

// LoadMap merges an in-memory map into the loader state. Later loads
// override earlier ones, matching the file/env merge order.
func (l *Loader) LoadMap(values map[string]any) error {
	return l.k.Load(newMapProvider(values), nil)
}
