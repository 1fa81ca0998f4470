package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/cache"
	"github.com/ggonzalez94/loop-cli/internal/config"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution"
	"github.com/ggonzalez94/loop-cli/internal/execution/actionbuilder"
	"github.com/ggonzalez94/loop-cli/internal/execution/planner"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/looping"
	"github.com/ggonzalez94/loop-cli/internal/model"
	"github.com/ggonzalez94/loop-cli/internal/out"
	"github.com/ggonzalez94/loop-cli/internal/policy"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"github.com/ggonzalez94/loop-cli/internal/schema"
	"github.com/ggonzalez94/loop-cli/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	root        *cobra.Command
	lastCommand string
	log         *zap.Logger

	cache       *cache.Store
	actionStore *execution.Store

	deployment registry.Deployment
	chain      id.Chain
	resolver   *route.Resolver
	builders   *actionbuilder.Registry
	closeRPC   func()
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, log: zap.NewNop()}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	if err != nil {
		state.log.Debug("command failed", zap.String("command", state.lastCommand), zap.Error(err))
		state.renderError("", err)
	}
	state.close()
	if err != nil {
		return clierr.ExitCode(err)
	}
	return 0
}

func (s *runtimeState) close() {
	if s.closeRPC != nil {
		s.closeRPC()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.actionStore != nil {
		_ = s.actionStore.Close()
	}
	_ = s.log.Sync()
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Build looping transactions for the lending protocol",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings

			log, err := newLogger(settings.LogLevel, s.runner.stderr)
			if err != nil {
				return err
			}
			s.log = log

			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			if err := policy.CheckCommandAllowed(settings.EnableCommands, path); err != nil {
				return err
			}

			if settings.CacheEnabled && shouldOpenCache(path) && s.cache == nil {
				cacheStore, err := cache.Open(settings.CachePath, settings.CacheLockPath)
				if err != nil {
					return clierr.Wrap(clierr.CodeInternal, "open cache", err)
				}
				s.cache = cacheStore
			}
			if shouldOpenActionStore(path) {
				return s.ensureActionStore()
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated, dotted paths allowed)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "RPC request timeout")
	cmd.PersistentFlags().StringVar(&s.flags.LogLevel, "log-level", "", "Log level for stderr diagnostics (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable the chain read cache")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&s.flags.Deployment, "deployment", "", "Built-in deployment name")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "RPC URL for allowance and reserve reads")
	cmd.PersistentFlags().StringVar(&s.flags.LoopingAddress, "looping-address", "", "Looping contract address override")
	cmd.PersistentFlags().StringVar(&s.flags.GatewayAddress, "gateway-address", "", "Native gateway contract address override")
	cmd.PersistentFlags().StringVar(&s.flags.PoolAddress, "pool-address", "", "Lending pool address override")

	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(s.newRoutesCommand())
	cmd.AddCommand(s.newSwapCommand())
	cmd.AddCommand(s.newSingleCommand())
	cmd.AddCommand(s.newNativeCommand())
	cmd.AddCommand(s.newAllowanceCommand())
	cmd.AddCommand(s.newDelegationCommand())
	cmd.AddCommand(s.newActionsCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data, nil)
		},
	}
}

// loadDeployment resolves the configured deployment and its route tables.
// It performs no I/O and is shared by every domain command.
func (s *runtimeState) loadDeployment() error {
	if s.resolver != nil {
		return nil
	}
	d, err := s.settings.ResolveDeployment()
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "resolve deployment", err)
	}
	chain, err := id.ParseChain(strconv.FormatInt(d.ChainID, 10))
	if err != nil {
		return err
	}
	resolver, err := route.FromTables(d.Routes, d.WrappedNative)
	if err != nil {
		return err
	}
	s.deployment = d
	s.chain = chain
	s.resolver = resolver
	s.log.Debug("deployment loaded",
		zap.String("deployment", d.Name),
		zap.String("chain", chain.CAIP2),
		zap.Int("single_hop_pools", len(d.Routes.SingleHop)),
		zap.Int("multi_hop_pools", len(d.Routes.MultiHop)),
		zap.Int("special_routes", len(d.Routes.Special)))
	return nil
}

// actionBuilders wires the looping builders to the deployment. withReads
// falls back to the chain's default RPC endpoint when none is configured;
// otherwise RPC is only used when a URL was given explicitly.
func (s *runtimeState) actionBuilders(ctx context.Context, withReads bool) (*actionbuilder.Registry, error) {
	if s.builders != nil {
		return s.builders, nil
	}
	if err := s.loadDeployment(); err != nil {
		return nil, err
	}

	var (
		reader  looping.AllowanceReader
		reserve looping.ReserveReader
	)
	rpcURL := strings.TrimSpace(s.settings.RPCURL)
	if rpcURL == "" && withReads {
		resolved, err := registry.ResolveRPCURL("", s.deployment.ChainID)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, "resolve rpc url", err)
		}
		rpcURL = resolved
	}
	if rpcURL != "" {
		rpc, closeFn, err := planner.DialRPCAllowances(ctx, rpcURL, s.deployment.LendingPool, s.log)
		if err != nil {
			return nil, err
		}
		s.closeRPC = closeFn
		reader = rpc
		if s.deployment.LendingPool != (common.Address{}) {
			reserve = &cache.Reserves{
				Store:    s.cache,
				Source:   rpc,
				ChainID:  s.chain.CAIP2,
				Pool:     s.deployment.LendingPool,
				TTL:      s.settings.CacheTTL,
				MaxStale: s.settings.MaxStale,
				Logger:   s.log,
			}
		}
		s.log.Debug("rpc reads enabled", zap.String("rpc_url", rpcURL))
	}
	debtTokens, err := looping.NewDebtTokenResolver(s.deployment.DebtTokens, reserve)
	if err != nil {
		return nil, err
	}
	builders, err := actionbuilder.New(actionbuilder.Options{
		Deployment: s.deployment,
		Chain:      s.chain,
		RPCURL:     rpcURL,
		Gas:        s.settings.GasTable(),
		Resolver:   s.resolver,
		Reader:     reader,
		DebtTokens: debtTokens,
		Logger:     s.log,
	})
	if err != nil {
		return nil, err
	}
	s.builders = builders
	return builders, nil
}

func (s *runtimeState) ensureActionStore() error {
	if s.actionStore != nil {
		return nil
	}
	store, err := execution.OpenStore(s.settings.ActionStorePath, s.settings.ActionLockPath)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "open action store", err)
	}
	s.actionStore = store
	return nil
}

func (s *runtimeState) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.settings.Timeout)
}

func (s *runtimeState) emitSuccess(commandPath string, data any, warnings []string) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  true,
		Data:     data,
		Error:    nil,
		Warnings: warnings,
		Meta:     s.meta(commandPath),
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) meta(commandPath string) model.EnvelopeMeta {
	cacheStatus := model.CacheStatus{Status: "bypass"}
	if s.cache != nil {
		cacheStatus.Status = "enabled"
	}
	return model.EnvelopeMeta{
		RequestID:  newRequestID(),
		Timestamp:  s.runner.now().UTC(),
		Command:    commandPath,
		Deployment: s.deployment.Name,
		ChainID:    s.chain.CAIP2,
		Cache:      cacheStatus,
	}
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := clierr.TypeName(clierr.CodeInternal)
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Error()
		typ = clierr.TypeName(cErr.Code)
	}

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:    code,
			Type:    typ,
			Message: message,
		},
		Meta: s.meta(commandPath),
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// shouldOpenCache reports whether a command may resolve debt tokens over RPC.
func shouldOpenCache(commandPath string) bool {
	switch firstWord(commandPath) {
	case "swap", "single", "native", "delegation":
		return true
	default:
		return false
	}
}

func shouldOpenActionStore(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "swap plan", "single plan", "native plan", "actions list", "actions status":
		return true
	default:
		return false
	}
}

func normalizeCommandPath(commandPath string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(commandPath))), " ")
}

func firstWord(commandPath string) string {
	parts := strings.Fields(normalizeCommandPath(commandPath))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
