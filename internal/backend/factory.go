package backend

import (
	"fmt"

	"finrealize/internal/config"
	applog "finrealize/internal/log"
	"finrealize/internal/store/memory"
	"finrealize/internal/store/sqlite"
)

// Factory creates dataset stores based on configuration
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentBackend)
	}
	return &Factory{logger: logger}
}

// Create builds the store selected by the application config
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	t, err := FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	switch t {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case MemoryBackend:
		return f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", applog.FieldPath, cfg.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   memory.New(),
		Cleanup: nil,
	}, nil
}
