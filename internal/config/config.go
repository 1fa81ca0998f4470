package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	LogLevel       string
	NoCache        bool
	Deployment     string
	RPCURL         string
	LoopingAddress string
	GatewayAddress string
	PoolAddress    string
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	EnableCommands  []string
	Timeout         time.Duration
	LogLevel        string
	CacheEnabled    bool
	CachePath       string
	CacheLockPath   string
	CacheTTL        time.Duration
	MaxStale        time.Duration
	ActionStorePath string
	ActionLockPath  string

	Deployment         string
	RPCURL             string
	LoopingAddress     string
	GatewayAddress     string
	LendingPoolAddress string
	GasLimits          map[string]uint64
	Routes             RoutesConfig
	DebtTokens         map[string]string
}

type RoutesConfig struct {
	SingleHop []SingleHopConfig `yaml:"single_hop"`
	MultiHop  []MultiHopConfig  `yaml:"multi_hop"`
	Special   []SpecialConfig   `yaml:"special"`
}

type SingleHopConfig struct {
	TokenA string `yaml:"token_a"`
	TokenB string `yaml:"token_b"`
	Pool   string `yaml:"pool"`
}

type HopConfig struct {
	Pool     string `yaml:"pool"`
	TokenAIn bool   `yaml:"token_a_in"`
}

type MultiHopConfig struct {
	TokenA string      `yaml:"token_a"`
	TokenB string      `yaml:"token_b"`
	Hops   []HopConfig `yaml:"hops"`
}

type SpecialConfig struct {
	Supply string `yaml:"supply"`
	Borrow string `yaml:"borrow"`
	Tag    string `yaml:"tag"`
}

type fileConfig struct {
	Output     string `yaml:"output"`
	Timeout    string `yaml:"timeout"`
	Deployment string `yaml:"deployment"`
	RPCURL     string `yaml:"rpc_url"`
	Log        struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Cache struct {
		Enabled  *bool  `yaml:"enabled"`
		TTL      string `yaml:"ttl"`
		MaxStale string `yaml:"max_stale"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	Execution struct {
		ActionsPath     string `yaml:"actions_path"`
		ActionsLockPath string `yaml:"actions_lock_path"`
	} `yaml:"execution"`
	Contracts struct {
		Looping     string `yaml:"looping"`
		Gateway     string `yaml:"gateway"`
		LendingPool string `yaml:"lending_pool"`
	} `yaml:"contracts"`
	GasLimits  map[string]uint64 `yaml:"gas_limits"`
	Routes     RoutesConfig      `yaml:"routes"`
	DebtTokens map[string]string `yaml:"debt_tokens"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = 24 * time.Hour
	}
	if settings.MaxStale < 0 {
		settings.MaxStale = 7 * 24 * time.Hour
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "warn"
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	cachePath, lockPath, err := defaultCachePaths()
	if err != nil {
		return Settings{}, err
	}
	cacheDir := filepath.Dir(cachePath)
	return Settings{
		OutputMode:      "json",
		Timeout:         10 * time.Second,
		LogLevel:        "warn",
		CacheEnabled:    true,
		CachePath:       cachePath,
		CacheLockPath:   lockPath,
		CacheTTL:        24 * time.Hour,
		MaxStale:        7 * 24 * time.Hour,
		ActionStorePath: filepath.Join(cacheDir, "actions.db"),
		ActionLockPath:  filepath.Join(cacheDir, "actions.lock"),
		Deployment:      registry.DefaultDeploymentName,
		GasLimits:       map[string]uint64{},
		DebtTokens:      map[string]string{},
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "loop", "config.yaml"), nil
}

func defaultCachePaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "loop")
	return filepath.Join(dir, "cache.db"), filepath.Join(dir, "cache.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Deployment != "" {
		settings.Deployment = cfg.Deployment
	}
	if cfg.RPCURL != "" {
		settings.RPCURL = cfg.RPCURL
	}
	if cfg.Log.Level != "" {
		settings.LogLevel = strings.ToLower(cfg.Log.Level)
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.TTL != "" {
		d, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("config cache.ttl: %w", err)
		}
		settings.CacheTTL = d
	}
	if cfg.Cache.MaxStale != "" {
		d, err := time.ParseDuration(cfg.Cache.MaxStale)
		if err != nil {
			return fmt.Errorf("config cache.max_stale: %w", err)
		}
		settings.MaxStale = d
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.Execution.ActionsPath != "" {
		settings.ActionStorePath = cfg.Execution.ActionsPath
	}
	if cfg.Execution.ActionsLockPath != "" {
		settings.ActionLockPath = cfg.Execution.ActionsLockPath
	}
	if cfg.Contracts.Looping != "" {
		settings.LoopingAddress = cfg.Contracts.Looping
	}
	if cfg.Contracts.Gateway != "" {
		settings.GatewayAddress = cfg.Contracts.Gateway
	}
	if cfg.Contracts.LendingPool != "" {
		settings.LendingPoolAddress = cfg.Contracts.LendingPool
	}
	for k, v := range cfg.GasLimits {
		settings.GasLimits[strings.ToLower(k)] = v
	}
	for k, v := range cfg.DebtTokens {
		settings.DebtTokens[k] = v
	}
	settings.Routes = cfg.Routes
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("LOOP_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("LOOP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("LOOP_LOG_LEVEL"); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOOP_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
	if v := os.Getenv("LOOP_CACHE_PATH"); v != "" {
		settings.CachePath = v
	}
	if v := os.Getenv("LOOP_CACHE_LOCK_PATH"); v != "" {
		settings.CacheLockPath = v
	}
	if v := os.Getenv("LOOP_ACTIONS_PATH"); v != "" {
		settings.ActionStorePath = v
	}
	if v := os.Getenv("LOOP_ACTIONS_LOCK_PATH"); v != "" {
		settings.ActionLockPath = v
	}
	if v := os.Getenv("LOOP_DEPLOYMENT"); v != "" {
		settings.Deployment = v
	}
	if v := os.Getenv("LOOP_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("LOOP_LOOPING_ADDRESS"); v != "" {
		settings.LoopingAddress = v
	}
	if v := os.Getenv("LOOP_GATEWAY_ADDRESS"); v != "" {
		settings.GatewayAddress = v
	}
	if v := os.Getenv("LOOP_POOL_ADDRESS"); v != "" {
		settings.LendingPoolAddress = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		settings.SelectFields = splitList(flags.Select)
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableCommands) != "" {
		settings.EnableCommands = splitList(flags.EnableCommands)
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.LogLevel != "" {
		settings.LogLevel = strings.ToLower(flags.LogLevel)
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}
	if flags.Deployment != "" {
		settings.Deployment = flags.Deployment
	}
	if flags.RPCURL != "" {
		settings.RPCURL = flags.RPCURL
	}
	if flags.LoopingAddress != "" {
		settings.LoopingAddress = flags.LoopingAddress
	}
	if flags.GatewayAddress != "" {
		settings.GatewayAddress = flags.GatewayAddress
	}
	if flags.PoolAddress != "" {
		settings.LendingPoolAddress = flags.PoolAddress
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ResolveDeployment layers the configured contracts, debt tokens and extra
// routes on top of the named built-in deployment.
func (s Settings) ResolveDeployment() (registry.Deployment, error) {
	d, err := registry.LookupDeployment(s.Deployment)
	if err != nil {
		return registry.Deployment{}, err
	}
	for _, c := range []struct {
		name string
		raw  string
		dst  *common.Address
	}{
		{"looping", s.LoopingAddress, &d.Looping},
		{"gateway", s.GatewayAddress, &d.Gateway},
		{"lending_pool", s.LendingPoolAddress, &d.LendingPool},
	} {
		if strings.TrimSpace(c.raw) == "" {
			continue
		}
		addr, err := parseAddress(c.name, c.raw)
		if err != nil {
			return registry.Deployment{}, err
		}
		*c.dst = addr
	}
	for underlying, debt := range s.DebtTokens {
		asset, err := parseAddress("debt_tokens key", underlying)
		if err != nil {
			return registry.Deployment{}, err
		}
		debtToken, err := parseAddress("debt_tokens value", debt)
		if err != nil {
			return registry.Deployment{}, err
		}
		d.DebtTokens[asset] = debtToken
	}
	extra, err := s.Routes.tables()
	if err != nil {
		return registry.Deployment{}, err
	}
	d.Routes.SingleHop = append(d.Routes.SingleHop, extra.SingleHop...)
	d.Routes.MultiHop = append(d.Routes.MultiHop, extra.MultiHop...)
	d.Routes.Special = append(d.Routes.Special, extra.Special...)
	return d, nil
}

// GasTable returns the default gas table with configured overrides applied.
func (s Settings) GasTable() registry.GasTable {
	return registry.DefaultGasTable().WithOverrides(s.GasLimits)
}

func (r RoutesConfig) tables() (route.Tables, error) {
	var out route.Tables
	for i, entry := range r.SingleHop {
		a, errA := parseAddress(fmt.Sprintf("routes.single_hop[%d].token_a", i), entry.TokenA)
		b, errB := parseAddress(fmt.Sprintf("routes.single_hop[%d].token_b", i), entry.TokenB)
		pool, errP := parseAddress(fmt.Sprintf("routes.single_hop[%d].pool", i), entry.Pool)
		if err := errors.Join(errA, errB, errP); err != nil {
			return route.Tables{}, err
		}
		out.SingleHop = append(out.SingleHop, route.SingleHopPool{TokenA: a, TokenB: b, Pool: pool})
	}
	for i, entry := range r.MultiHop {
		a, errA := parseAddress(fmt.Sprintf("routes.multi_hop[%d].token_a", i), entry.TokenA)
		b, errB := parseAddress(fmt.Sprintf("routes.multi_hop[%d].token_b", i), entry.TokenB)
		if err := errors.Join(errA, errB); err != nil {
			return route.Tables{}, err
		}
		hops := make([]route.Hop, 0, len(entry.Hops))
		for j, h := range entry.Hops {
			pool, err := parseAddress(fmt.Sprintf("routes.multi_hop[%d].hops[%d].pool", i, j), h.Pool)
			if err != nil {
				return route.Tables{}, err
			}
			hops = append(hops, route.Hop{Pool: pool, TokenAIn: h.TokenAIn})
		}
		out.MultiHop = append(out.MultiHop, route.MultiHopPool{TokenA: a, TokenB: b, Hops: hops})
	}
	for i, entry := range r.Special {
		supply, errS := parseAddress(fmt.Sprintf("routes.special[%d].supply", i), entry.Supply)
		borrow, errB := parseAddress(fmt.Sprintf("routes.special[%d].borrow", i), entry.Borrow)
		if err := errors.Join(errS, errB); err != nil {
			return route.Tables{}, err
		}
		tag, err := route.ParseSpecialTag(entry.Tag)
		if err != nil {
			return route.Tables{}, fmt.Errorf("routes.special[%d].tag: %w", i, err)
		}
		out.Special = append(out.Special, route.SpecialPair{Supply: supply, Borrow: borrow, Tag: tag})
	}
	return out, nil
}

func parseAddress(field, raw string) (common.Address, error) {
	v := strings.TrimSpace(raw)
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("config %s: invalid address %q", field, raw)
	}
	return common.HexToAddress(v), nil
}
