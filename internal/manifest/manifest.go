// Package manifest loads the route manifest produced by `pen build`.
//
// The manifest is a JSON object whose keys are route URLs and whose values
// describe the route. Only the fields the runtime needs are decoded into
// typed fields; everything else is kept as raw JSON so the build step stays
// free to evolve the entry shape.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"

	penerrors "github.com/conneroisu/pen/internal/errors"
)

// DefaultPath is where `pen build` writes the manifest.
const DefaultPath = "./.pen/build/manifest.json"

// Entry is the metadata for a single route.
type Entry struct {
	// URL is the route path, e.g. "/blog/"
	URL string `json:"url,omitempty"`
	// Segment is the last path segment of the route
	Segment string `json:"segment,omitempty"`
	// Screen identifies the component rendered for the route
	Screen string `json:"screen,omitempty"`
	// Layouts are the inherited layout components, root first
	Layouts []string `json:"layouts,omitempty"`
	// Extra holds fields the runtime does not interpret
	Extra map[string]json.RawMessage `json:"-"`
	// Raw is the entry exactly as it appeared in the manifest
	Raw json.RawMessage `json:"-"`
}

// ComponentID returns the registry identifier of the route's component.
func (e *Entry) ComponentID() string {
	return e.Screen
}

// Manifest maps route URLs to entries, preserving file order.
type Manifest struct {
	keys    []string
	entries map[string]*Entry
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{entries: make(map[string]*Entry)}
}

// Keys returns the route URLs in manifest order.
func (m *Manifest) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get looks up a route by its exact URL.
func (m *Manifest) Get(url string) (*Entry, bool) {
	entry, ok := m.entries[url]
	return entry, ok
}

// Len returns the number of routes.
func (m *Manifest) Len() int {
	return len(m.keys)
}

// set keeps the first-seen position of a key and the last value, the way
// JSON.parse treats duplicate keys.
func (m *Manifest) set(url string, entry *Entry) {
	if _, exists := m.entries[url]; !exists {
		m.keys = append(m.keys, url)
	}
	m.entries[url] = entry
}

// MarshalJSON writes the manifest back out in key order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		raw := m.entries[key].Raw
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Load reads the manifest at path. Existence is checked before anything is
// read so a missing artifact is never reported as a parse failure.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking manifest %s: %w", path, err)
	}
	if !exists {
		return nil, penerrors.NewMissingArtifactError(penerrors.ArtifactManifest, path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, penerrors.NewParseError(path, err)
	}

	return m, nil
}

// Parse decodes manifest JSON, keeping the key order of the top-level object.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, describe(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("manifest must be a JSON object, got %s", tokenKind(tok))
	}

	m := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, describe(err)
		}
		url, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("route %q: %w", url, describe(err))
		}

		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", url, err)
		}
		m.set(url, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, describe(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after manifest object")
	}

	return m, nil
}

func decodeEntry(raw json.RawMessage) (*Entry, error) {
	entry := &Entry{Raw: raw}

	switch firstByte(raw) {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for name, value := range fields {
			if !decodeKnown(entry, name, value) {
				if entry.Extra == nil {
					entry.Extra = make(map[string]json.RawMessage)
				}
				entry.Extra[name] = value
			}
		}
	case '"':
		if err := json.Unmarshal(raw, &entry.Screen); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// decodeKnown fills the typed field called name. It reports false for
// unknown names and for values of an unexpected type, which the caller keeps
// as extra fields.
func decodeKnown(entry *Entry, name string, value json.RawMessage) bool {
	var target interface{}
	switch name {
	case "url":
		target = &entry.URL
	case "segment":
		target = &entry.Segment
	case "screen":
		target = &entry.Screen
	case "layouts":
		var layouts []string
		if err := json.Unmarshal(value, &layouts); err != nil {
			return false
		}
		entry.Layouts = layouts
		return true
	default:
		return false
	}

	return json.Unmarshal(value, target) == nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func tokenKind(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return string(v)
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

func describe(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("unexpected end of JSON input")
	}
	return err
}

