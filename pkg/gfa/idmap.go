package gfa

import "github.com/gfatools/getblunted/pkg/errors"

// IncrementalIDMap interns segment names as dense integer ids starting at 1.
// The mapping is a bijection: every name gets exactly one id and ids are
// assigned in first-seen order.
type IncrementalIDMap struct {
	names []string
	ids   map[string]int64
}

// NewIncrementalIDMap creates an empty id map.
func NewIncrementalIDMap() *IncrementalIDMap {
	return &IncrementalIDMap{ids: make(map[string]int64)}
}

// Insert assigns the next id to name. Inserting a name twice is an error.
func (m *IncrementalIDMap) Insert(name string) (int64, error) {
	if _, ok := m.ids[name]; ok {
		return 0, errors.New(errors.ErrCodeMalformedInput, "duplicate segment name %q", name)
	}
	m.names = append(m.names, name)
	id := int64(len(m.names))
	m.ids[name] = id
	return id, nil
}

// GetID returns the id for name, or 0 if the name is unknown.
func (m *IncrementalIDMap) GetID(name string) int64 {
	return m.ids[name]
}

// GetName returns the name for id. Ids outside [1, Len()] return "".
func (m *IncrementalIDMap) GetName(id int64) string {
	if id < 1 || id > int64(len(m.names)) {
		return ""
	}
	return m.names[id-1]
}

// Len returns the number of interned names.
func (m *IncrementalIDMap) Len() int {
	return len(m.names)
}
