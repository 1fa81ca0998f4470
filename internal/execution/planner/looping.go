package planner

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/looping"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Approver builds the prerequisite approval transactions. Every looping
// builder satisfies it.
type Approver interface {
	ApproveTx(token, owner, spender common.Address, amount *big.Int) (looping.TxRequest, error)
	ApproveDelegationTx(debtToken, owner, delegatee common.Address, amount *big.Int) (looping.TxRequest, error)
}

// Requirement is one allowance the loop call depends on. Required is the
// smallest current allowance that satisfies it; Approve is what a new
// approval grants.
type Requirement struct {
	Token    common.Address
	Spender  common.Address
	Symbol   string
	Required *big.Int
	Approve  *big.Int
}

type LoopRequest struct {
	Mode        string
	Chain       id.Chain
	Deployment  string
	RPCURL      string
	User        common.Address
	Amount      *big.Int
	Route       string
	Loop        looping.TxRequest
	Constraints execution.Constraints
	// Approval is nil when nothing is pulled through an ERC-20 allowance.
	Approval   *Requirement
	Delegation *Requirement
	Approver   Approver
	Reader     looping.AllowanceReader
	Metadata   map[string]any
	Logger     *zap.Logger
}

// MaxDelegation is the default credit delegation granted to the looping
// contract. The borrowed amount depends on prices, so it is not derived here.
func MaxDelegation() *big.Int {
	return new(big.Int).Set(math.MaxBig256)
}

// BuildLoopAction turns a built loop call into an action whose steps are the
// missing approval and delegation followed by the loop call itself. With
// SkipChecks set no allowance is read and both prerequisites are included.
func BuildLoopAction(ctx context.Context, req LoopRequest) (execution.Action, error) {
	if req.User == (common.Address{}) {
		return execution.Action{}, clierr.New(clierr.CodeUsage, "loop action requires a sender address")
	}
	if len(req.Loop.Data) == 0 {
		return execution.Action{}, clierr.New(clierr.CodeInternal, "loop action requires loop calldata")
	}
	if (req.Approval != nil || req.Delegation != nil) && req.Approver == nil {
		return execution.Action{}, clierr.New(clierr.CodeInternal, "loop action prerequisites need an approver")
	}
	log := req.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := req.Constraints.SkipChecks
	if !skip && req.Reader == nil && (req.Approval != nil || req.Delegation != nil) {
		return execution.Action{}, clierr.New(clierr.CodeUsage, "allowance checks need an rpc reader; pass --skip-checks to plan without them")
	}

	var approvalCurrent, delegationCurrent *big.Int
	if !skip {
		g, gctx := errgroup.WithContext(ctx)
		if req.Approval != nil {
			g.Go(func() error {
				v, err := req.Reader.GetAllowance(gctx, req.User, req.Approval.Spender, req.Approval.Token)
				approvalCurrent = v
				return err
			})
		}
		if req.Delegation != nil {
			g.Go(func() error {
				v, err := req.Reader.GetDelegationAllowance(gctx, req.User, req.Delegation.Spender, req.Delegation.Token)
				delegationCurrent = v
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return execution.Action{}, err
		}
	}

	action := execution.NewAction(execution.NewActionID(), req.Mode, req.Chain.CAIP2, req.Constraints)
	action.Deployment = req.Deployment
	action.FromAddress = req.User.Hex()
	action.Route = req.Route
	if req.Amount != nil {
		action.InputAmount = req.Amount.String()
	}
	action.Metadata = req.Metadata

	if req.Approval != nil {
		step, needed, err := approvalStep(req, approvalCurrent)
		if err != nil {
			return execution.Action{}, err
		}
		if needed {
			action.Steps = append(action.Steps, step)
		}
		log.Debug("approval prerequisite", zap.String("token", req.Approval.Token.Hex()), zap.Bool("needed", needed), zap.Bool("checked", !skip))
	}
	if req.Delegation != nil {
		step, needed, err := delegationStep(req, delegationCurrent)
		if err != nil {
			return execution.Action{}, err
		}
		if needed {
			action.Steps = append(action.Steps, step)
		}
		log.Debug("delegation prerequisite", zap.String("debt_token", req.Delegation.Token.Hex()), zap.Bool("needed", needed), zap.Bool("checked", !skip))
	}

	action.Steps = append(action.Steps, txStep(req, "loop", execution.StepTypeLoop, execution.StepStatusPending,
		fmt.Sprintf("Loop %s position", req.Mode), req.Loop, nil))
	return action, nil
}

func approvalStep(req LoopRequest, current *big.Int) (execution.ActionStep, bool, error) {
	r := req.Approval
	required := orDefault(r.Required, req.Amount)
	if current != nil && required != nil && current.Cmp(required) >= 0 {
		return execution.ActionStep{}, false, nil
	}
	amount := orDefault(r.Approve, required)
	tx, err := req.Approver.ApproveTx(r.Token, req.User, r.Spender, amount)
	if err != nil {
		return execution.ActionStep{}, false, err
	}
	status, checks := prerequisiteStatus(current, required)
	checks["spender"] = r.Spender.Hex()
	desc := fmt.Sprintf("Approve %s for %s", label(r), r.Spender.Hex())
	return txStep(req, "approve-"+shortHex(r.Token), execution.StepTypeApproval, status, desc, tx, checks), true, nil
}

func delegationStep(req LoopRequest, current *big.Int) (execution.ActionStep, bool, error) {
	r := req.Delegation
	required := orDefault(r.Required, big.NewInt(1))
	if current != nil && current.Cmp(required) >= 0 {
		return execution.ActionStep{}, false, nil
	}
	amount := orDefault(r.Approve, MaxDelegation())
	tx, err := req.Approver.ApproveDelegationTx(r.Token, req.User, r.Spender, amount)
	if err != nil {
		return execution.ActionStep{}, false, err
	}
	status, checks := prerequisiteStatus(current, required)
	checks["delegatee"] = r.Spender.Hex()
	desc := fmt.Sprintf("Delegate borrowing of %s to %s", label(r), r.Spender.Hex())
	return txStep(req, "delegate-"+shortHex(r.Token), execution.StepTypeDelegation, status, desc, tx, checks), true, nil
}

func prerequisiteStatus(current, required *big.Int) (execution.StepStatus, map[string]string) {
	checks := map[string]string{}
	if required != nil {
		checks["required"] = required.String()
	}
	if current == nil {
		return execution.StepStatusUnchecked, checks
	}
	checks["current"] = current.String()
	return execution.StepStatusPending, checks
}

func txStep(req LoopRequest, stepID string, typ execution.StepType, status execution.StepStatus, desc string, tx looping.TxRequest, checks map[string]string) execution.ActionStep {
	step := execution.ActionStep{
		StepID:      stepID,
		Type:        typ,
		Status:      status,
		ChainID:     req.Chain.CAIP2,
		RPCURL:      req.RPCURL,
		Description: desc,
		From:        tx.From.Hex(),
		Target:      tx.To.Hex(),
		Data:        hexutil.Encode(tx.Data),
		Checks:      checks,
	}
	if tx.Value != nil {
		step.Value = tx.Value.String()
	}
	if tx.GasLimit != nil {
		step.GasLimit = tx.GasLimit.String()
	}
	return step
}

func label(r *Requirement) string {
	if strings.TrimSpace(r.Symbol) != "" {
		return strings.ToUpper(r.Symbol)
	}
	return r.Token.Hex()
}

func shortHex(addr common.Address) string {
	return strings.TrimPrefix(strings.ToLower(addr.Hex()), "0x")[:8]
}

func orDefault(v, fallback *big.Int) *big.Int {
	if v != nil {
		return v
	}
	return fallback
}
