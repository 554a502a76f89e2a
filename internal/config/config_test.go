package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), cfg.BatchSize)
	require.Equal(t, "./data/actions.jsonl", cfg.Out)
	require.True(t, cfg.CheckpointEnabled)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.Empty(t, cfg.ABI.Files)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("ACTIONS_RPC", "http://node:8545")
	t.Setenv("ACTIONS_PG_DSN", "postgres://localhost/actions")
	t.Setenv("ACTIONS_ABI", "0x00000000000000000000000000000000000000aa=./a.json, 0x00000000000000000000000000000000000000bb=./b.json")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.Uint64("from", 0, "")
	flags.StringSlice("address", nil, "")
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--from", "17", "--address", "0x01,0x02", "--workers", "3"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.Equal(t, "http://node:8545", cfg.RPCURL)
	require.Equal(t, "postgres://localhost/actions", cfg.PGDSN)
	require.Equal(t, uint64(17), cfg.FromBlock)
	require.Equal(t, []string{"0x01", "0x02"}, cfg.Addresses)
	require.Equal(t, 3, cfg.ABI.Workers)
	require.Equal(t, "./b.json", cfg.ABI.Files["0x00000000000000000000000000000000000000bb"])
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier.yaml")
	body := "in: traces.jsonl\nbatch-size: 50\nabi-dir: ./abis\nabi:\n  \"0x00000000000000000000000000000000000000cc\": ./c.json\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadClassify(path, nil)
	require.NoError(t, err)
	require.Equal(t, "traces.jsonl", cfg.In)
	require.Equal(t, 50, cfg.BatchSize)
	require.Equal(t, "./abis", cfg.ABI.Dir)
	require.Equal(t, "./c.json", cfg.ABI.Files["0x00000000000000000000000000000000000000cc"])

	_, err = LoadClassify(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
}

func TestLoadAggregate(t *testing.T) {
	t.Setenv("ACTIONS_WINDOW", "1000")
	t.Setenv("ACTIONS_RECOMPUTE_FROM", "250")

	cfg, err := LoadAggregate("", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), cfg.WindowBlocks)
	require.Equal(t, uint64(250), cfg.RecomputeFrom)
	require.Equal(t, "aggregate", cfg.StateName)
}

func TestParseStringMap(t *testing.T) {
	got := parseStringMap("a=1, b = 2,broken,=x,c=")
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}
