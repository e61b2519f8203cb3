// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
)

// StoreOpener opens the play store described by a configuration.
type StoreOpener func(cfg *config.Config) (ports.PlayStore, error)

// InitHandler handles project initialization.
type InitHandler struct {
	openStore StoreOpener
}

// NewInitHandler creates a new init handler. A nil opener skips schema
// creation.
func NewInitHandler(openStore StoreOpener) *InitHandler {
	return &InitHandler{
		openStore: openStore,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
	AliasesPath  string
}

// Handle writes the default configuration and creates the store schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("drama already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.openStore != nil {
		store, err := h.openStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: cfg.SQLite.Path,
		AliasesPath:  cfg.AliasesFile,
	}, nil
}
