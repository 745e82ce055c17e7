package engine

import (
	"encoding/json"
	"fmt"
)

// --- Metadata Operations ---
// The metadata store holds engine-wide bookkeeping (schema or version
// markers). Values are stored JSON-encoded and are not subject to
// visibilities.

// SetMetadata stores value under key.
func (e *Engine) SetMetadata(key string, value any) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if key == "" {
		return invalidArgument("metadata key is empty")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode metadata %q: %w", key, err)
	}
	e.metadata.Set(key, data)
	return nil
}

// GetMetadata decodes the value stored under key into out.
// Returns false if the key was not found.
func (e *Engine) GetMetadata(key string, out any) (bool, error) {
	if err := e.checkOpen(); err != nil {
		return false, err
	}
	data, found := e.metadata.Get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("decode metadata %q: %w", key, err)
	}
	return true, nil
}

// RemoveMetadata removes key and reports whether it was present.
func (e *Engine) RemoveMetadata(key string) bool {
	return e.metadata.Delete(key)
}

// MetadataKeys returns, sorted, the keys starting with prefix.
func (e *Engine) MetadataKeys(prefix string) []string {
	return e.metadata.Keys(prefix)
}
