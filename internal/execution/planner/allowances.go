package planner

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"go.uber.org/zap"
)

var (
	plannerERC20ABI       = mustPlannerABI(registry.ERC20MinimalABI)
	plannerDebtTokenABI   = mustPlannerABI(registry.DebtTokenABI)
	plannerLendingPoolABI = mustPlannerABI(registry.LendingPoolABI)
)

func mustPlannerABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// reserveData mirrors the lending pool's getReserveData tuple.
type reserveData struct {
	Configuration               *big.Int
	LiquidityIndex              *big.Int
	CurrentLiquidityRate        *big.Int
	VariableBorrowIndex         *big.Int
	CurrentVariableBorrowRate   *big.Int
	CurrentStableBorrowRate     *big.Int
	LastUpdateTimestamp         *big.Int
	Id                          uint16
	ATokenAddress               common.Address
	StableDebtTokenAddress      common.Address
	VariableDebtTokenAddress    common.Address
	InterestRateStrategyAddress common.Address
	AccruedToTreasury           *big.Int
	Unbacked                    *big.Int
	IsolationModeTotalDebt      *big.Int
}

// RPCAllowances reads allowances, borrow delegations and reserve debt tokens
// with eth_call. Failures are reported as upstream errors and never retried.
type RPCAllowances struct {
	caller      ethereum.ContractCaller
	lendingPool common.Address
	log         *zap.Logger
}

func NewRPCAllowances(caller ethereum.ContractCaller, lendingPool common.Address, log *zap.Logger) *RPCAllowances {
	if log == nil {
		log = zap.NewNop()
	}
	return &RPCAllowances{caller: caller, lendingPool: lendingPool, log: log}
}

// DialRPCAllowances connects to rpcURL. The returned close func releases the
// client.
func DialRPCAllowances(ctx context.Context, rpcURL string, lendingPool common.Address, log *zap.Logger) (*RPCAllowances, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, func() {}, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	return NewRPCAllowances(client, lendingPool, log), client.Close, nil
}

func (r *RPCAllowances) GetAllowance(ctx context.Context, owner, spender, token common.Address) (*big.Int, error) {
	data, err := plannerERC20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack allowance calldata", err)
	}
	out, err := r.callUint(ctx, owner, token, plannerERC20ABI, "allowance", data)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "read token allowance", err)
	}
	r.log.Debug("read allowance",
		zap.String("token", token.Hex()),
		zap.String("owner", owner.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("amount", out.String()))
	return out, nil
}

func (r *RPCAllowances) GetDelegationAllowance(ctx context.Context, owner, spender, debtToken common.Address) (*big.Int, error) {
	data, err := plannerDebtTokenABI.Pack("borrowAllowance", owner, spender)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack borrowAllowance calldata", err)
	}
	out, err := r.callUint(ctx, owner, debtToken, plannerDebtTokenABI, "borrowAllowance", data)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "read borrow allowance", err)
	}
	r.log.Debug("read borrow allowance",
		zap.String("debt_token", debtToken.Hex()),
		zap.String("owner", owner.Hex()),
		zap.String("delegatee", spender.Hex()),
		zap.String("amount", out.String()))
	return out, nil
}

// VariableDebtToken reads the reserve's variable debt token from the lending
// pool. A zero address means asset is not a reserve.
func (r *RPCAllowances) VariableDebtToken(ctx context.Context, asset common.Address) (common.Address, error) {
	if r.lendingPool == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeUsage, "lending pool address is required to resolve debt tokens; set contracts.lending_pool or --pool-address")
	}
	data, err := plannerLendingPoolABI.Pack("getReserveData", asset)
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeInternal, "pack getReserveData calldata", err)
	}
	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.lendingPool, Data: data}, nil)
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeUnavailable, "read reserve data", err)
	}
	out, err := plannerLendingPoolABI.Unpack("getReserveData", raw)
	if err != nil || len(out) == 0 {
		return common.Address{}, clierr.Wrap(clierr.CodeUnavailable, "decode reserve data", err)
	}
	reserve := *abi.ConvertType(out[0], new(reserveData)).(*reserveData)
	r.log.Debug("resolved debt token",
		zap.String("asset", asset.Hex()),
		zap.String("variable_debt_token", reserve.VariableDebtTokenAddress.Hex()))
	return reserve.VariableDebtTokenAddress, nil
}

func (r *RPCAllowances) callUint(ctx context.Context, from, to common.Address, parsed abi.ABI, method string, data []byte) (*big.Int, error) {
	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, err := parsed.Unpack(method, raw)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, clierr.New(clierr.CodeUnavailable, "empty "+method+" response")
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, clierr.New(clierr.CodeUnavailable, "invalid "+method+" response")
	}
	return value, nil
}
