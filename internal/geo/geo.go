// Package geo resolves map names referenced by a chart option to GeoJSON
// files so they can be registered with the renderer before drawing.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no GeoJSON file exists for a map name.
var ErrNotFound = errors.New("map not found")

var extensions = []string{".json", ".geojson"}

// Resolver looks up <Dir>/<name>.json, then <Dir>/<name>.geojson.
type Resolver struct {
	Dir string
}

// Path returns the file backing name.
func (r Resolver) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	if r.Dir == "" {
		return "", fmt.Errorf("%w: %s (no maps directory configured)", ErrNotFound, name)
	}
	for _, ext := range extensions {
		p := filepath.Join(r.Dir, name+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Resolve maps each name to its file. Names without a file are returned in
// missing, in input order.
func (r Resolver) Resolve(names []string) (resolved map[string]string, missing []string) {
	resolved = make(map[string]string, len(names))
	for _, n := range names {
		if p, err := r.Path(n); err == nil {
			resolved[n] = p
		} else {
			missing = append(missing, n)
		}
	}
	return resolved, missing
}

// Load returns the raw GeoJSON for name after checking it is a JSON object.
func (r Resolver) Load(name string) ([]byte, error) {
	p, err := r.Path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", name, err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("map %s is not a GeoJSON object: %w", name, err)
	}
	return b, nil
}

// validName rejects names that could escape Dir.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
