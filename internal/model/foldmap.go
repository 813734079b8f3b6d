package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FoldMap is an insertion-ordered map with case-insensitive string keys.
// Estimation columns, role names, and rate-card entries are all addressed
// this way: "Dev Hours" and "dev hours" are the same entry, and the casing
// of the first Set wins for display. Construct with NewFoldMap; a nil map
// is safe to read but not to write.
type FoldMap[V any] struct {
	keys []string
	vals map[string]V
}

// NewFoldMap returns an empty FoldMap.
func NewFoldMap[V any]() *FoldMap[V] {
	return &FoldMap[V]{vals: make(map[string]V)}
}

func fold(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Set stores v under key. An existing entry (under any casing) keeps its
// position and display casing; only the value is replaced.
func (m *FoldMap[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	f := fold(key)
	if _, ok := m.vals[f]; !ok {
		m.keys = append(m.keys, strings.TrimSpace(key))
	}
	m.vals[f] = v
}

// Get returns the value stored under key (case-insensitive).
func (m *FoldMap[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.vals == nil {
		return zero, false
	}
	v, ok := m.vals[fold(key)]
	if !ok {
		return zero, false
	}
	return v, true
}

// Has reports whether key is present (case-insensitive).
func (m *FoldMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes the entry for key, if present.
func (m *FoldMap[V]) Delete(key string) {
	if m == nil || m.vals == nil {
		return
	}
	f := fold(key)
	if _, ok := m.vals[f]; !ok {
		return
	}
	delete(m.vals, f)
	for i, k := range m.keys {
		if fold(k) == f {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *FoldMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order, in their display casing.
func (m *FoldMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clone returns a deep copy of the map structure. Values are copied by
// assignment.
func (m *FoldMap[V]) Clone() *FoldMap[V] {
	out := NewFoldMap[V]()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		v, _ := m.Get(k)
		out.Set(k, v)
	}
	return out
}

// MarshalJSON encodes the map as a JSON object, preserving insertion order.
func (m *FoldMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, eris.Wrap(err, "foldmap: marshal key")
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v, _ := m.Get(k)
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, eris.Wrapf(err, "foldmap: marshal value for %q", k)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document key order.
func (m *FoldMap[V]) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.vals = make(map[string]V)

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "foldmap: read opening token")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.New("foldmap: expected JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "foldmap: read key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.New("foldmap: non-string key")
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return eris.Wrapf(err, "foldmap: decode value for %q", key)
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "foldmap: read closing token")
	}
	return nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the document key order.
func (m *FoldMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return eris.New("foldmap: expected YAML mapping")
	}
	m.keys = nil
	m.vals = make(map[string]V)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return eris.Wrap(err, "foldmap: decode key")
		}
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return eris.Wrapf(err, "foldmap: decode value for %q", key)
		}
		m.Set(key, v)
	}
	return nil
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m *FoldMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if m == nil {
		return node, nil
	}
	for _, k := range m.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return nil, eris.Wrap(err, "foldmap: encode key")
		}
		v, _ := m.Get(k)
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return nil, eris.Wrapf(err, "foldmap: encode value for %q", k)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
