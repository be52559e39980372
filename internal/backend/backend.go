package backend

import (
	"fmt"

	"finrealize/internal/config"
	"finrealize/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the selected store and optional cleanup function
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Type represents the kind of data backend
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend}
}

// FromAppConfig extracts the backend type from the application config
func FromAppConfig(appConfig *config.Config) (Type, error) {
	if appConfig == nil {
		return "", fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return t, nil
}
