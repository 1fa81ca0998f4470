package app

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution/actionbuilder"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loopArgs are the flags shared by every `<mode> plan` command.
type loopArgs struct {
	assetArg         string
	borrowArg        string
	amountBase       string
	amountDecimal    string
	loops            uint16
	healthFactor     string
	minSupplied      string
	fromAddress      string
	unwrap           bool
	skipChecks       bool
	delegationAmount string
}

func (s *runtimeState) newSwapCommand() *cobra.Command {
	root := &cobra.Command{Use: "swap", Short: "Loops that swap the borrowed asset into the supplied asset"}
	var args loopArgs
	plan := s.newPlanCommand(actionbuilder.ModeSwap, "Plan a swap loop and persist it as an action", &args)
	plan.Flags().StringVar(&args.assetArg, "supply", "", "Supplied asset (symbol, address, CAIP-19 or native)")
	plan.Flags().StringVar(&args.borrowArg, "borrow", "", "Borrowed asset (symbol, address, CAIP-19 or native)")
	plan.Flags().StringVar(&args.minSupplied, "min-supplied", "", "Minimum amount supplied in base units (special routes only)")
	_ = plan.MarkFlagRequired("supply")
	_ = plan.MarkFlagRequired("borrow")
	root.AddCommand(plan)
	return root
}

func (s *runtimeState) newSingleCommand() *cobra.Command {
	root := &cobra.Command{Use: "single", Short: "Loops that supply and borrow the same reserve"}
	var args loopArgs
	plan := s.newPlanCommand(actionbuilder.ModeSingle, "Plan a single-asset loop and persist it as an action", &args)
	plan.Flags().StringVar(&args.assetArg, "asset", "", "Reserve asset (symbol, address or CAIP-19)")
	_ = plan.MarkFlagRequired("asset")
	root.AddCommand(plan)
	return root
}

func (s *runtimeState) newNativeCommand() *cobra.Command {
	root := &cobra.Command{Use: "native", Short: "Single-asset loops on the native asset through the gateway"}
	var args loopArgs
	plan := s.newPlanCommand(actionbuilder.ModeNative, "Plan a native-asset loop and persist it as an action", &args)
	plan.Flags().StringVar(&args.assetArg, "asset", "native", "native to supply the base currency, or the wrapped token")
	plan.Flags().BoolVar(&args.unwrap, "unwrap", false, "Receive the native currency back when the loop ends")
	root.AddCommand(plan)
	return root
}

func (s *runtimeState) newPlanCommand(mode actionbuilder.Mode, short string, args *loopArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			builders, err := s.actionBuilders(ctx, !args.skipChecks)
			if err != nil {
				return err
			}
			req, err := s.loopRequest(mode, *args)
			if err != nil {
				return err
			}
			action, err := builders.BuildLoopAction(ctx, req)
			if err != nil {
				return err
			}
			if err := s.ensureActionStore(); err != nil {
				return err
			}
			if err := s.actionStore.Save(ctx, action); err != nil {
				return clierr.Wrap(clierr.CodeInternal, "persist planned action", err)
			}
			s.log.Info("loop action planned",
				zap.String("action_id", action.ActionID),
				zap.String("mode", action.Mode),
				zap.String("route", action.Route),
				zap.Int("steps", len(action.Steps)))

			var warnings []string
			if args.skipChecks {
				warnings = append(warnings, "allowance checks skipped; prerequisite steps may already be satisfied")
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), action, warnings)
		},
	}
	cmd.Flags().StringVar(&args.amountBase, "amount", "", "Initial amount in base units")
	cmd.Flags().StringVar(&args.amountDecimal, "amount-decimal", "", "Initial amount in decimal units")
	cmd.Flags().Uint16Var(&args.loops, "loops", 1, "Number of loop iterations")
	cmd.Flags().StringVar(&args.healthFactor, "health-factor", "", "Target health factor as a ratio, e.g. 1.25")
	cmd.Flags().StringVar(&args.fromAddress, "from-address", "", "Position owner and sender address")
	cmd.Flags().BoolVar(&args.skipChecks, "skip-checks", false, "Plan without reading allowances over RPC")
	cmd.Flags().StringVar(&args.delegationAmount, "delegation-amount", "", "Credit delegation to grant in base units (default unlimited)")
	_ = cmd.MarkFlagRequired("health-factor")
	_ = cmd.MarkFlagRequired("from-address")
	return cmd
}

func (s *runtimeState) loopRequest(mode actionbuilder.Mode, args loopArgs) (actionbuilder.LoopRequest, error) {
	user, err := parseAddress("--from-address", args.fromAddress)
	if err != nil {
		return actionbuilder.LoopRequest{}, err
	}
	asset, err := id.ParseAsset(args.assetArg, s.chain)
	if err != nil {
		return actionbuilder.LoopRequest{}, err
	}
	amount, _, err := id.NormalizeAmount(args.amountBase, args.amountDecimal, decimalsOf(asset))
	if err != nil {
		return actionbuilder.LoopRequest{}, err
	}
	hf, err := id.ParseHealthFactor(args.healthFactor)
	if err != nil {
		return actionbuilder.LoopRequest{}, err
	}
	req := actionbuilder.LoopRequest{
		Mode:               mode,
		User:               user,
		Asset:              asset.Address,
		Amount:             amount,
		NumLoops:           args.loops,
		TargetHealthFactor: hf,
		Unwrap:             args.unwrap,
		SkipChecks:         args.skipChecks,
	}
	if mode == actionbuilder.ModeSwap {
		borrow, err := id.ParseAsset(args.borrowArg, s.chain)
		if err != nil {
			return actionbuilder.LoopRequest{}, err
		}
		req.Borrow = borrow.Address
		if strings.TrimSpace(args.minSupplied) != "" {
			if req.MinAmountSupplied, err = id.ParseBaseUnits(args.minSupplied); err != nil {
				return actionbuilder.LoopRequest{}, clierr.Wrap(clierr.CodeUsage, "--min-supplied", err)
			}
		}
	}
	if strings.TrimSpace(args.delegationAmount) != "" {
		if req.DelegationAmount, err = id.ParseBaseUnits(args.delegationAmount); err != nil {
			return actionbuilder.LoopRequest{}, clierr.Wrap(clierr.CodeUsage, "--delegation-amount", err)
		}
		if req.DelegationAmount.Sign() == 0 {
			return actionbuilder.LoopRequest{}, clierr.New(clierr.CodeUsage, "--delegation-amount must be positive")
		}
	}
	return req, nil
}

func (s *runtimeState) newAllowanceCommand() *cobra.Command {
	var modeArg, tokenArg, fromArg string
	var unwrap bool
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Read the ERC-20 allowance a loop would draw on",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			mode, err := actionbuilder.ParseMode(modeArg)
			if err != nil {
				return err
			}
			builders, err := s.actionBuilders(ctx, true)
			if err != nil {
				return err
			}
			owner, err := parseAddress("--from-address", fromArg)
			if err != nil {
				return err
			}
			token, err := id.ParseAsset(tokenArg, s.chain)
			if err != nil {
				return err
			}
			approval, err := builders.Allowance(ctx, mode, owner, token.Address, unwrap)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.AllowanceReport{
				Mode:    string(mode),
				Owner:   approval.Owner.Hex(),
				Token:   approval.Token.Hex(),
				Symbol:  symbolFor(s.chain.CAIP2, approval.Token),
				Spender: approval.Spender.Hex(),
				Amount:  amountString(approval.Amount),
			}, nil)
		},
	}
	cmd.Flags().StringVar(&modeArg, "mode", string(actionbuilder.ModeSwap), "Loop mode (swap|single|native)")
	cmd.Flags().StringVar(&tokenArg, "token", "", "Supplied asset (symbol, address, CAIP-19 or native)")
	cmd.Flags().StringVar(&fromArg, "from-address", "", "Token owner address")
	cmd.Flags().BoolVar(&unwrap, "unwrap", false, "Native mode: the loop unwraps on exit")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("from-address")
	return cmd
}

func (s *runtimeState) newDelegationCommand() *cobra.Command {
	var modeArg, tokenArg, fromArg string
	cmd := &cobra.Command{
		Use:   "delegation",
		Short: "Read the credit delegation the looping contract holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			mode, err := actionbuilder.ParseMode(modeArg)
			if err != nil {
				return err
			}
			builders, err := s.actionBuilders(ctx, true)
			if err != nil {
				return err
			}
			owner, err := parseAddress("--from-address", fromArg)
			if err != nil {
				return err
			}
			var asset common.Address
			if mode != actionbuilder.ModeNative {
				if strings.TrimSpace(tokenArg) == "" {
					return clierr.New(clierr.CodeUsage, "--token is required for swap and single modes")
				}
				parsed, err := id.ParseAsset(tokenArg, s.chain)
				if err != nil {
					return err
				}
				asset = parsed.Address
			}
			delegation, err := builders.Delegation(ctx, mode, owner, asset)
			if err != nil {
				return err
			}
			report := model.DelegationReport{
				Mode:      string(mode),
				Owner:     delegation.Owner.Hex(),
				DebtToken: delegation.DebtToken.Hex(),
				Delegatee: delegation.Delegatee.Hex(),
				Amount:    amountString(delegation.Amount),
			}
			if asset != (common.Address{}) {
				report.Asset = asset.Hex()
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), report, nil)
		},
	}
	cmd.Flags().StringVar(&modeArg, "mode", string(actionbuilder.ModeSwap), "Loop mode (swap|single|native)")
	cmd.Flags().StringVar(&tokenArg, "token", "", "Borrowed asset (ignored in native mode)")
	cmd.Flags().StringVar(&fromArg, "from-address", "", "Delegator address")
	_ = cmd.MarkFlagRequired("from-address")
	return cmd
}

func parseAddress(flag, raw string) (common.Address, error) {
	v := strings.TrimSpace(raw)
	if !common.IsHexAddress(v) {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("%s must be a 0x address", flag))
	}
	return common.HexToAddress(v), nil
}

func decimalsOf(asset id.Asset) int {
	if asset.Decimals <= 0 {
		return 18
	}
	return asset.Decimals
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
