package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ierg/nscsync/internal/config"
	"github.com/ierg/nscsync/internal/engine"
	"github.com/ierg/nscsync/internal/importer"
	"github.com/ierg/nscsync/internal/logbook"
	"github.com/ierg/nscsync/internal/rules"
	"github.com/ierg/nscsync/internal/storage"
	"github.com/ierg/nscsync/internal/transport"
)

// loadConfig builds the validated configuration and the compiled rule set
// from the viper instance initConfig populated.
func loadConfig() (*config.Config, *rules.RuleSet, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	set, err := rules.LoadRuleSet(cfg.Rules)
	if err != nil {
		return nil, nil, err
	}

	return cfg, set, nil
}

// openStore opens the SQLite sync ledger and runs pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, func(), error) {
	store, err := storage.NewStore(ctx, cfg.Local.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sync ledger: %w", err)
	}
	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

// buildEngine wires the full transfer stack: endpoint connection, ledger,
// logbook, import runner. The returned cleanup closes everything.
func buildEngine(ctx context.Context, cfg *config.Config, set *rules.RuleSet) (*engine.Engine, func(), error) {
	if err := cfg.ValidateTransfer(); err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	book, err := logbook.New(cfg.Local.LogFile)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to open logbook: %w", err)
	}

	client, err := transport.Dial(cfg.FTP)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	cleanup := func() {
		_ = client.Close()
		closeStore()
	}

	eng := engine.New(cfg, set, client, store, book, importer.NewRunner())
	return eng, cleanup, nil
}
