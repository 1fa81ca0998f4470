package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/ggonzalez94/loop-cli/internal/route"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	configPath := writeConfig(t, "output: plain\nrpc_url: https://file.example\nlog:\n  level: info\n")

	t.Setenv("LOOP_OUTPUT", "json")
	t.Setenv("LOOP_RPC_URL", "https://env.example")
	t.Setenv("LOOP_LOG_LEVEL", "error")
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Plain: true, LogLevel: "DEBUG"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.RPCURL != "https://env.example" {
		t.Fatalf("expected env to override file, got %s", settings.RPCURL)
	}
	if settings.LogLevel != "debug" {
		t.Fatalf("expected log level from flags, got %s", settings.LogLevel)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Deployment != registry.DefaultDeploymentName || settings.LogLevel != "warn" || !settings.CacheEnabled {
		t.Fatalf("unexpected defaults %+v", settings)
	}
	if !strings.HasSuffix(filepath.Dir(settings.ActionStorePath), "loop") {
		t.Fatalf("expected action store under the loop cache dir, got %s", settings.ActionStorePath)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	_, err := Load(GlobalFlags{JSON: true, Plain: true})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}

func TestResolveDeploymentLayersConfig(t *testing.T) {
	configPath := writeConfig(t, `
contracts:
  looping: "0x0000000000000000000000000000000000000100"
  gateway: "0x0000000000000000000000000000000000000200"
gas_limits:
  LOOP_SWAP: 900000
debt_tokens:
  "0xdddD73F5Df1F0DC31373357beAC77545dC5A6f3F": "0x00000000000000000000000000000000000000d2"
routes:
  single_hop:
    - {token_a: "0x0000000000000000000000000000000000000011", token_b: "0x0000000000000000000000000000000000000012", pool: "0x0000000000000000000000000000000000000013"}
  special:
    - {supply: "0x0000000000000000000000000000000000000011", borrow: "0xdddD73F5Df1F0DC31373357beAC77545dC5A6f3F", tag: SPLUME}
`)
	settings, err := Load(GlobalFlags{ConfigPath: configPath, PoolAddress: "0x0000000000000000000000000000000000000300"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d, err := settings.ResolveDeployment()
	if err != nil {
		t.Fatalf("ResolveDeployment failed: %v", err)
	}
	if d.Looping != common.HexToAddress("0x100") || d.Gateway != common.HexToAddress("0x200") || d.LendingPool != common.HexToAddress("0x300") {
		t.Fatalf("unexpected contracts %+v", d)
	}
	pusd := common.HexToAddress("0xdddD73F5Df1F0DC31373357beAC77545dC5A6f3F")
	if d.DebtTokens[pusd] != common.HexToAddress("0xd2") {
		t.Fatalf("expected configured debt token, got %s", d.DebtTokens[pusd].Hex())
	}
	last := d.Routes.Special[len(d.Routes.Special)-1]
	if last.Tag != route.TagSPLUME {
		t.Fatalf("expected configured special route, got %+v", last)
	}
	if got := settings.GasTable().Limit(registry.ActionLoopSwap); got.Uint64() != 900000 {
		t.Fatalf("expected gas override, got %s", got)
	}

	resolver, err := route.FromTables(d.Routes, d.WrappedNative)
	if err != nil {
		t.Fatalf("extended tables should validate: %v", err)
	}
	rt, err := resolver.Resolve(common.HexToAddress("0x12"), common.HexToAddress("0x11"))
	if err != nil || rt.Kind != route.KindSingleHop {
		t.Fatalf("expected configured single hop, got %+v, %v", rt, err)
	}
}

func TestResolveDeploymentRejectsBadAddress(t *testing.T) {
	settings := Settings{Deployment: "plume", LoopingAddress: "0x1234"}
	if _, err := settings.ResolveDeployment(); err == nil || !strings.Contains(err.Error(), "looping") {
		t.Fatalf("expected looping address error, got %v", err)
	}

	settings = Settings{Deployment: "unknown"}
	if _, err := settings.ResolveDeployment(); err == nil {
		t.Fatal("expected unknown deployment error")
	}
}
