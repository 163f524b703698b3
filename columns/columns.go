// Package columns describes the exported columns of a sheet: which record
// attributes are written, under which header title, at which column index,
// and with which declared cell type.
package columns

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey     = errors.New("column key is empty")
	ErrDuplicateKey = errors.New("duplicate column key")
	ErrNoColumns    = errors.New("no columns defined")
)

// Field declares one exported attribute. Title defaults to Key.
type Field struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title,omitempty"`
	Type  string `yaml:"type,omitempty"`
}

// Attribute is a Field bound to its 1-based column index.
type Attribute struct {
	Key    string
	Title  string
	Type   CellType
	Column int
}

// Mapper holds column attributes in declaration order.
type Mapper struct {
	attrs []Attribute
	index map[string]int
}

// New assigns column indices 1..N to fields in the order given.
func New(fields ...Field) (*Mapper, error) {
	m := &Mapper{
		attrs: make([]Attribute, 0, len(fields)),
		index: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return nil, ErrEmptyKey
		}
		if _, ok := m.index[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		typ, err := ParseCellType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", key, err)
		}
		title := f.Title
		if title == "" {
			title = key
		}
		m.index[key] = len(m.attrs)
		m.attrs = append(m.attrs, Attribute{
			Key:    key,
			Title:  title,
			Type:   typ,
			Column: len(m.attrs) + 1,
		})
	}
	return m, nil
}

// FromNames builds a mapper with untyped columns titled by their names.
func FromNames(names []string) (*Mapper, error) {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Key: n}
	}
	return New(fields...)
}

// Attributes returns the attributes in declaration order.
func (m *Mapper) Attributes() []Attribute {
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Keys returns the attribute keys in declaration order.
func (m *Mapper) Keys() []string {
	keys := make([]string, len(m.attrs))
	for i, a := range m.attrs {
		keys[i] = a.Key
	}
	return keys
}

// Lookup returns the attribute for key.
func (m *Mapper) Lookup(key string) (Attribute, bool) {
	i, ok := m.index[key]
	if !ok {
		return Attribute{}, false
	}
	return m.attrs[i], true
}

// Len returns the number of columns.
func (m *Mapper) Len() int { return len(m.attrs) }

// Fields converts the mapper back into declarations.
func (m *Mapper) Fields() []Field {
	fields := make([]Field, len(m.attrs))
	for i, a := range m.attrs {
		fields[i] = Field{Key: a.Key, Title: a.Title, Type: a.Type.String()}
		if a.Title == a.Key {
			fields[i].Title = ""
		}
	}
	return fields
}
