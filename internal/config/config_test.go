package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/govtoken/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	t.Setenv(config.RPCEnv, "")
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cfg.DefaultToken)
	assert.Empty(t, cfg.DefaultWallet)
	assert.Empty(t, cfg.RPCURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NotNil(t, cfg.Remotes)
}

func TestSaveAndReloadConfig(t *testing.T) {
	t.Setenv(config.RPCEnv, "")
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultToken = "mtk"
	cfg.DefaultWallet = "council"
	cfg.RPCURL = "http://127.0.0.1:8545"
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mtk", reloaded.DefaultToken)
	assert.Equal(t, "council", reloaded.DefaultWallet)
	assert.Equal(t, "http://127.0.0.1:8545", reloaded.RPCURL)
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config.json should be created on save")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigDirAndPaths(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
	assert.Equal(t, filepath.Join(dir, "deployments"), cfg.DeploymentsDir())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestLoadDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.DirEnv, dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
}

func TestRPCEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"rpc_url":"http://file"}`), 0o600))

	t.Setenv(config.RPCEnv, "http://env")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.RPCURL)
}

func TestLoadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0o600))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLevel(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.LogLevel = "debug"
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	cfg.LogLevel = "ERROR"
	assert.Equal(t, slog.LevelError, cfg.Level())
	cfg.LogLevel = "chatty"
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

// ---------------------------------------------------------------------------
// Remotes
// ---------------------------------------------------------------------------

func TestSetAndResolveRemote(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.SetRemote("amoy", "0x5fbdb2315678afecb367f032d93f642f64180aa3"))
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Remotes["amoy"])

	addr, err := cfg.ResolveRemote("amoy")
	require.NoError(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", addr.Hex())

	direct, err := cfg.ResolveRemote("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	require.NoError(t, err)
	assert.Equal(t, addr, direct)

	_, err = cfg.ResolveRemote("mainnet")
	assert.Error(t, err)
}

func TestSetRemoteRejectsBadInput(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	assert.Error(t, cfg.SetRemote("", "0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	assert.Error(t, cfg.SetRemote("x", "0x1234"))
}

func TestRemoveRemote(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	require.NoError(t, cfg.SetRemote("amoy", "0x5FbDB2315678afecb367f032d93F642f64180aa3"))

	require.NoError(t, cfg.RemoveRemote("amoy"))
	assert.Error(t, cfg.RemoveRemote("amoy"))
}

func TestRemotesPersist(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.SetRemote("amoy", "0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", reloaded.Remotes["amoy"])
}
