package looping

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/registry"
)

// AllowanceReader reads the on-chain state the approval helpers report.
type AllowanceReader interface {
	GetAllowance(ctx context.Context, owner, spender, token common.Address) (*big.Int, error)
	GetDelegationAllowance(ctx context.Context, owner, spender, debtToken common.Address) (*big.Int, error)
}

// DebtTokenSource maps a reserve to its variable debt token.
type DebtTokenSource interface {
	DebtToken(ctx context.Context, asset common.Address) (common.Address, error)
}

// Config carries the deployment addresses and collaborators shared by every
// builder. Looping is required; Gateway is only checked by native flows.
type Config struct {
	Looping                common.Address
	Gateway                common.Address
	WrappedNative          common.Address
	WrappedNativeDebtToken common.Address
	Gas                    registry.GasTable
	Codec                  Codec
	Allowances             AllowanceReader
	DebtTokens             DebtTokenSource
}

type base struct {
	cfg Config
}

func newBase(cfg Config) (base, error) {
	if cfg.Looping == (common.Address{}) {
		return base{}, clierr.New(clierr.CodeUsage, "looping contract address is not configured")
	}
	if cfg.Codec == nil {
		cfg.Codec = DefaultCodec()
	}
	if cfg.Gas == nil {
		cfg.Gas = registry.DefaultGasTable()
	}
	return base{cfg: cfg}, nil
}

func (b base) Looping() common.Address { return b.cfg.Looping }

func (b base) gateway() (common.Address, error) {
	if b.cfg.Gateway == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeUsage, "gateway contract address is not configured")
	}
	return b.cfg.Gateway, nil
}

func (b base) wrappedNative() (common.Address, error) {
	if b.cfg.WrappedNative == (common.Address{}) || id.IsNative(b.cfg.WrappedNative) {
		return common.Address{}, clierr.New(clierr.CodeUsage, "wrapped native token address is not configured")
	}
	return b.cfg.WrappedNative, nil
}

func (b base) call(to, from common.Address, kind registry.ActionKind, value *big.Int, method string, args any) (TxRequest, error) {
	data, err := b.cfg.Codec.EncodeCall(method, args)
	if err != nil {
		return TxRequest{}, err
	}
	tx := TxRequest{
		To:       to,
		From:     from,
		Data:     data,
		GasLimit: b.cfg.Gas.Limit(kind),
	}
	if value != nil {
		tx.Value = new(big.Int).Set(value)
	}
	return tx, nil
}

// ApproveTx builds an ERC-20 approve from owner to spender.
func (b base) ApproveTx(token, owner, spender common.Address, amount *big.Int) (TxRequest, error) {
	if id.IsNative(token) {
		return TxRequest{}, clierr.New(clierr.CodeInvalidParams, "the native asset cannot be approved")
	}
	if amount == nil || amount.Sign() < 0 {
		return TxRequest{}, clierr.New(clierr.CodeUsage, "approval amount must be a non-negative integer")
	}
	data, err := b.cfg.Codec.EncodeCall("approve", spender, amount)
	if err != nil {
		return TxRequest{}, err
	}
	return TxRequest{To: token, From: owner, Data: data, GasLimit: b.cfg.Gas.Limit(registry.ActionApproval)}, nil
}

// ApproveDelegationTx builds a credit delegation on a variable debt token.
func (b base) ApproveDelegationTx(debtToken, owner, delegatee common.Address, amount *big.Int) (TxRequest, error) {
	if amount == nil || amount.Sign() < 0 {
		return TxRequest{}, clierr.New(clierr.CodeUsage, "delegation amount must be a non-negative integer")
	}
	data, err := b.cfg.Codec.EncodeCall("approveDelegation", delegatee, amount)
	if err != nil {
		return TxRequest{}, err
	}
	return TxRequest{To: debtToken, From: owner, Data: data, GasLimit: b.cfg.Gas.Limit(registry.ActionCreditDelegation)}, nil
}

// Approval is the ERC-20 allowance owner has granted spender on token.
type Approval struct {
	Owner   common.Address
	Token   common.Address
	Spender common.Address
	Amount  *big.Int
}

// Delegation is the borrow allowance owner has delegated to delegatee.
type Delegation struct {
	Owner     common.Address
	DebtToken common.Address
	Delegatee common.Address
	Amount    *big.Int
}

func (b base) readApproval(ctx context.Context, owner, token, spender common.Address) (Approval, error) {
	if b.cfg.Allowances == nil {
		return Approval{}, clierr.New(clierr.CodeUsage, "allowance reader is not configured")
	}
	amount, err := b.cfg.Allowances.GetAllowance(ctx, owner, spender, token)
	if err != nil {
		return Approval{}, err
	}
	return Approval{Owner: owner, Token: token, Spender: spender, Amount: nonNil(amount)}, nil
}

func (b base) readDelegation(ctx context.Context, owner, debtToken common.Address) (Delegation, error) {
	if b.cfg.Allowances == nil {
		return Delegation{}, clierr.New(clierr.CodeUsage, "allowance reader is not configured")
	}
	delegatee := b.cfg.Looping
	amount, err := b.cfg.Allowances.GetDelegationAllowance(ctx, owner, delegatee, debtToken)
	if err != nil {
		return Delegation{}, err
	}
	return Delegation{Owner: owner, DebtToken: debtToken, Delegatee: delegatee, Amount: nonNil(amount)}, nil
}

func (b base) debtTokenFor(ctx context.Context, asset common.Address) (common.Address, error) {
	if b.cfg.DebtTokens == nil {
		return common.Address{}, clierr.New(clierr.CodeUsage, "debt token source is not configured")
	}
	return b.cfg.DebtTokens.DebtToken(ctx, asset)
}

func validateLoopInputs(user common.Address, amount *big.Int, numLoops uint16) error {
	if user == (common.Address{}) {
		return clierr.New(clierr.CodeUsage, "user address is required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return clierr.New(clierr.CodeUsage, "amount must be a positive integer in base units")
	}
	if numLoops == 0 {
		return clierr.New(clierr.CodeUsage, fmt.Sprintf("loop count must be at least 1, got %d", numLoops))
	}
	return nil
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
