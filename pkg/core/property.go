package core

import (
	"fmt"
	"slices"

	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// PropertyKey is the identity of a property cell. The visibility is part of
// the identity, so the same logical property can exist under several
// visibilities at once.
type PropertyKey struct {
	Key        string
	Name       string
	Visibility visibility.Visibility
}

func (k PropertyKey) String() string {
	return fmt.Sprintf("%s:%s[%s]", k.Name, k.Key, k.Visibility)
}

// Property is one projected property cell.
type Property struct {
	Key                string
	Name               string
	Value              any
	Visibility         visibility.Visibility
	Metadata           Metadata
	Timestamp          int64
	HiddenVisibilities []visibility.Visibility
}

// Identity returns the (key, name, visibility) triple of p.
func (p Property) Identity() PropertyKey {
	return PropertyKey{Key: p.Key, Name: p.Name, Visibility: p.Visibility}
}

// IsHidden reports whether any hide mark on p is readable with auths.
func (p Property) IsHidden(ev *visibility.Evaluator, auths visibility.Authorizations) (bool, error) {
	return hiddenFor(p.HiddenVisibilities, ev, auths)
}

func (p Property) clone() Property {
	p.Metadata = p.Metadata.Clone()
	p.HiddenVisibilities = slices.Clone(p.HiddenVisibilities)
	return p
}

// MetadataEntry is one visibility-tagged metadata value of a property.
type MetadataEntry struct {
	Key        string
	Value      any
	Visibility visibility.Visibility
}

// Metadata is the metadata bag of a property. Entries are identified by
// (key, visibility). The zero value is an empty bag.
type Metadata struct {
	entries []MetadataEntry
}

// NewMetadata builds a bag from entries; later duplicates replace earlier ones.
func NewMetadata(entries ...MetadataEntry) Metadata {
	var m Metadata
	for _, e := range entries {
		m.Add(e.Key, e.Value, e.Visibility)
	}
	return m
}

// Add sets the value for (key, vis).
func (m *Metadata) Add(key string, value any, vis visibility.Visibility) {
	for i, e := range m.entries {
		if e.Key == key && e.Visibility == vis {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, MetadataEntry{Key: key, Value: value, Visibility: vis})
}

// Remove deletes the entry for (key, vis), if present.
func (m *Metadata) Remove(key string, vis visibility.Visibility) {
	m.entries = slices.DeleteFunc(m.entries, func(e MetadataEntry) bool {
		return e.Key == key && e.Visibility == vis
	})
}

// Get returns the entry for (key, vis).
func (m Metadata) Get(key string, vis visibility.Visibility) (MetadataEntry, bool) {
	for _, e := range m.entries {
		if e.Key == key && e.Visibility == vis {
			return e, true
		}
	}
	return MetadataEntry{}, false
}

// Value returns the first value stored under key, regardless of visibility.
func (m Metadata) Value(key string) (any, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns a copy of all entries in insertion order.
func (m Metadata) Entries() []MetadataEntry {
	return slices.Clone(m.entries)
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.entries)
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	return Metadata{entries: slices.Clone(m.entries)}
}

// Filter keeps only the entries readable with auths.
func (m Metadata) Filter(ev *visibility.Evaluator, auths visibility.Authorizations) (Metadata, error) {
	var out Metadata
	for _, e := range m.entries {
		ok, err := canRead(ev, e.Visibility, auths)
		if err != nil {
			return Metadata{}, err
		}
		if ok {
			out.entries = append(out.entries, e)
		}
	}
	return out, nil
}

func canRead(ev *visibility.Evaluator, v visibility.Visibility, auths visibility.Authorizations) (bool, error) {
	if ev == nil {
		return visibility.CanRead(v, auths)
	}
	return ev.CanRead(v, auths)
}

func hiddenFor(marks []visibility.Visibility, ev *visibility.Evaluator, auths visibility.Authorizations) (bool, error) {
	for _, hv := range marks {
		ok, err := canRead(ev, hv, auths)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
