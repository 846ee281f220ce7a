// Package config loads and validates the nscsync configuration tree.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ierg/nscsync/internal/model"
	"github.com/ierg/nscsync/internal/rules"
)

// FTPConfig describes the clearinghouse file-transfer endpoint.
type FTPConfig struct {
	Host        string
	Username    string
	Password    string
	Protocol    string
	ReceivePath string
	SendPath    string
	Port        int
}

// LocalConfig describes the local directory tree and durable logs.
type LocalConfig struct {
	ReceivePath string // classified files land here under rendered names
	SendPath    string // outbound submissions are picked up here
	ArchivePath string // sent files are archived here
	FilePath    string // quarantine for unparsed/unmatched files
	LogFile     string // append-only CSV logbook
	Database    string // SQLite sync ledger
}

// ImportConfig describes the external import trigger.
type ImportConfig struct {
	Type string // report type eligible for automatic import
	Cmd  string // command template with {entry}, {fn}, {dt}
}

// Config is the explicitly constructed, immutable configuration object
// passed into every component. Never ambient state.
type Config struct {
	FTP    FTPConfig
	Local  LocalConfig
	Import ImportConfig
	Rules  []model.Rule // in authored order; order is rule precedence
}

// Load extracts the nsc configuration from an already-read viper instance.
// Scalar sections come from viper; the rename rules are re-decoded from the
// raw config file because viper's maps do not preserve the authored key
// order, and rule order is first-match precedence.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		FTP: FTPConfig{
			Host:        v.GetString("nsc.ftp.host"),
			Port:        v.GetInt("nsc.ftp.port"),
			Username:    v.GetString("nsc.ftp.username"),
			Password:    v.GetString("nsc.ftp.password"),
			Protocol:    v.GetString("nsc.ftp.protocol"),
			ReceivePath: v.GetString("nsc.ftp.receive_path"),
			SendPath:    v.GetString("nsc.ftp.send_path"),
		},
		Local: LocalConfig{
			ReceivePath: v.GetString("nsc.local.receive_path"),
			SendPath:    v.GetString("nsc.local.send_path"),
			ArchivePath: v.GetString("nsc.local.archive_path"),
			FilePath:    v.GetString("nsc.local.file_path"),
			LogFile:     v.GetString("nsc.local.log_file"),
			Database:    v.GetString("nsc.local.database"),
		},
		Import: ImportConfig{
			Type: v.GetString("nsc.import.type"),
			Cmd:  v.GetString("nsc.import.cmd"),
		},
	}

	if file := v.ConfigFileUsed(); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read config file: %w", err)
		}
		cfg.Rules, err = decodeOrderedRules(data)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate applies defaults and checks the cross-field constraints that do
// not require compiling the rule set (rules.LoadRuleSet owns those).
func (cfg *Config) Validate() error {
	if cfg.FTP.Port == 0 {
		cfg.FTP.Port = 22
	}
	if cfg.FTP.Protocol == "" {
		cfg.FTP.Protocol = "sftp"
	}
	if cfg.FTP.Protocol != "sftp" {
		return fmt.Errorf("nsc.ftp.protocol: unsupported protocol %q", cfg.FTP.Protocol)
	}

	if cfg.Local.Database == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Local.Database = filepath.Join(home, ".config", "nscsync", "nscsync.db")
	}

	if cfg.Import.Type != "" {
		if !model.ValidReportType(cfg.Import.Type) {
			return fmt.Errorf("nsc.import.type: unknown report type %q", cfg.Import.Type)
		}
		if cfg.Import.Cmd == "" {
			return fmt.Errorf("nsc.import.cmd is required when nsc.import.type is set")
		}
		if err := rules.ValidateImportTemplate(cfg.Import.Cmd); err != nil {
			return fmt.Errorf("nsc.import.cmd: %w", err)
		}
	}

	return nil
}

// ValidateTransfer checks the fields the SFTP commands need. Kept separate
// from Validate so rule-only commands work without endpoint credentials.
func (cfg *Config) ValidateTransfer() error {
	if cfg.FTP.Host == "" {
		return fmt.Errorf("nsc.ftp.host is required")
	}
	if cfg.FTP.Username == "" {
		return fmt.Errorf("nsc.ftp.username is required")
	}
	if cfg.Local.ReceivePath == "" {
		return fmt.Errorf("nsc.local.receive_path is required")
	}
	if cfg.Local.LogFile == "" {
		return fmt.Errorf("nsc.local.log_file is required")
	}
	return nil
}
