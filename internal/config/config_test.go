package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ierg/nscsync/internal/rules"
)

func loadTestConfig(t *testing.T, path string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return Load(v)
}

func TestLoad(t *testing.T) {
	cfg, err := loadTestConfig(t, filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ftps.nslc.org", cfg.FTP.Host)
	assert.Equal(t, 22, cfg.FTP.Port)
	assert.Equal(t, "ierg", cfg.FTP.Username)
	assert.Equal(t, "sftp", cfg.FTP.Protocol)
	assert.Equal(t, "/receive", cfg.FTP.ReceivePath)
	assert.Equal(t, "/send", cfg.FTP.SendPath)

	assert.Equal(t, "/data/nsc/receive", cfg.Local.ReceivePath)
	assert.Equal(t, "/data/nsc/files", cfg.Local.FilePath)
	assert.Equal(t, "/data/nsc/nsc_log.csv", cfg.Local.LogFile)
	assert.Equal(t, "/data/nsc/nscsync.db", cfg.Local.Database)

	assert.Equal(t, "DETLRPT", cfg.Import.Type)
	assert.Equal(t, "nsc-import-db {entry} {fn} {dt}", cfg.Import.Cmd)

	require.NoError(t, cfg.ValidateTransfer())
}

func TestLoadPreservesRuleOrder(t *testing.T) {
	cfg, err := loadTestConfig(t, filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	var names []string
	for _, r := range cfg.Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"IPEDS", "COHORT1", "COHORT2", "CATCHALL"}, names)

	// The authored order must survive into a compiled rule set.
	set, err := rules.LoadRuleSet(cfg.Rules)
	require.NoError(t, err)
	assert.Equal(t, 4, set.Len())

	ipeds := cfg.Rules[0]
	assert.Equal(t, "SE", ipeds.Mode)
	assert.True(t, ipeds.Import)
	assert.Equal(t, "IPEDS submission detail", ipeds.Description)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
nsc:
  ftp:
    host: example.org
    username: u
`)
	cfg, err := loadTestConfig(t, path)
	require.NoError(t, err)

	assert.Equal(t, 22, cfg.FTP.Port)
	assert.Equal(t, "sftp", cfg.FTP.Protocol)
	assert.NotEmpty(t, cfg.Local.Database)
	assert.Empty(t, cfg.Rules)
}

func TestLoadRejectsBadImportType(t *testing.T) {
	path := writeConfig(t, `
nsc:
  import:
    type: WEEKLYRPT
    cmd: 'import {entry}'
`)
	_, err := loadTestConfig(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEEKLYRPT")
}

func TestLoadRejectsBadImportTemplate(t *testing.T) {
	path := writeConfig(t, `
nsc:
  import:
    type: DETLRPT
    cmd: 'import {entry} {school}'
`)
	_, err := loadTestConfig(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{school}")
}

func TestLoadRejectsMissingImportCmd(t *testing.T) {
	path := writeConfig(t, `
nsc:
  import:
    type: DETLRPT
`)
	_, err := loadTestConfig(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nsc.import.cmd")
}

func TestLoadRejectsUnsupportedProtocol(t *testing.T) {
	path := writeConfig(t, `
nsc:
  ftp:
    protocol: ftp
`)
	_, err := loadTestConfig(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported protocol")
}

func TestValidateTransferMissingFields(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	err := cfg.ValidateTransfer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nsc.ftp.host")
}

func TestDecodeOrderedRulesMalformedEntry(t *testing.T) {
	_, err := decodeOrderedRules([]byte(`
nsc:
  rename:
    BROKEN: just a string
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nsc.rename.BROKEN")
}

func TestDecodeOrderedRulesAbsentSection(t *testing.T) {
	rules, err := decodeOrderedRules([]byte(`nsc: {ftp: {host: h}}`))
	require.NoError(t, err)
	assert.Nil(t, rules)
}
