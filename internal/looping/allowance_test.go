package looping

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapApprovedAmountSpender(t *testing.T) {
	reader := newFakeAllowances()
	reader.allowances[allowanceKey{user, looping, tokenX}] = big.NewInt(42)
	reader.allowances[allowanceKey{user, gateway, wrapped}] = big.NewInt(7)
	b := newSwapBuilder(t, testConfig(reader))
	ctx := context.Background()

	got, err := b.ApprovedAmount(ctx, user, tokenX)
	require.NoError(t, err)
	assert.Equal(t, Approval{Owner: user, Token: tokenX, Spender: looping, Amount: big.NewInt(42)}, got)

	got, err = b.ApprovedAmount(ctx, user, id.NativeAssetAddress)
	require.NoError(t, err)
	assert.Equal(t, gateway, got.Spender)
	assert.Equal(t, wrapped, got.Token)
	assert.Equal(t, "7", got.Amount.String())

	// Unknown allowances read as zero rather than nil.
	got, err = b.ApprovedAmount(ctx, user, tokenY)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Amount.Sign())
}

func TestSwapLoopApprovalTarget(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	token, spender, err := b.LoopApprovalTarget(tokenX, usd)
	require.NoError(t, err)
	assert.Equal(t, tokenX, token)
	assert.Equal(t, looping, spender)

	token, spender, err = b.LoopApprovalTarget(tokenX, id.NativeAssetAddress)
	require.NoError(t, err)
	assert.Equal(t, tokenX, token)
	assert.Equal(t, gateway, spender)
}

func TestSwapCreditApprovedAmountResolvesDebtToken(t *testing.T) {
	reader := newFakeAllowances()
	reader.delegations[allowanceKey{user, looping, debtX}] = big.NewInt(99)
	b := newSwapBuilder(t, testConfig(reader))
	ctx := context.Background()

	got, err := b.CreditApprovedAmount(ctx, user, tokenX)
	require.NoError(t, err)
	assert.Equal(t, Delegation{Owner: user, DebtToken: debtX, Delegatee: looping, Amount: big.NewInt(99)}, got)

	got, err = b.CreditApprovedAmount(ctx, user, id.NativeAssetAddress)
	require.NoError(t, err)
	assert.Equal(t, wrappedDebt, got.DebtToken)
	assert.Equal(t, looping, got.Delegatee)
}

func TestSingleAssetHelpersUseLooping(t *testing.T) {
	reader := newFakeAllowances()
	b, err := NewSingleAssetBuilder(testConfig(reader))
	require.NoError(t, err)

	approval, err := b.ApprovedAmount(context.Background(), user, tokenX)
	require.NoError(t, err)
	assert.Equal(t, looping, approval.Spender)

	delegation, err := b.CreditApprovedAmount(context.Background(), user, tokenX)
	require.NoError(t, err)
	assert.Equal(t, looping, delegation.Delegatee)
	assert.Equal(t, debtX, delegation.DebtToken)
}

func TestNativeApprovedAmountSpender(t *testing.T) {
	reader := newFakeAllowances()
	b, err := NewNativeBuilder(testConfig(reader))
	require.NoError(t, err)

	tests := []struct {
		supplying, unwrap bool
		spender           common.Address
	}{
		{true, true, looping},
		{true, false, looping},
		{false, true, gateway},
		{false, false, looping},
	}
	for _, tc := range tests {
		got, err := b.ApprovedAmount(context.Background(), user, tc.supplying, tc.unwrap)
		require.NoError(t, err)
		assert.Equal(t, tc.spender, got.Spender, "supplying=%v unwrap=%v", tc.supplying, tc.unwrap)
		assert.Equal(t, wrapped, got.Token)
	}

	delegation, err := b.CreditApprovedAmount(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, wrappedDebt, delegation.DebtToken)
	assert.Equal(t, looping, delegation.Delegatee)
}

func TestAllowanceReadFailurePropagates(t *testing.T) {
	reader := newFakeAllowances()
	upstream := clierr.Wrap(clierr.CodeUnavailable, "read token allowance", errors.New("connection refused"))
	reader.err = upstream
	b := newSwapBuilder(t, testConfig(reader))

	_, err := b.ApprovedAmount(context.Background(), user, tokenX)
	assert.ErrorIs(t, err, upstream)
	_, err = b.CreditApprovedAmount(context.Background(), user, tokenX)
	assert.ErrorIs(t, err, upstream)
}

func TestHelpersWithoutReader(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	_, err := b.ApprovedAmount(context.Background(), user, tokenX)
	assert.True(t, clierr.HasCode(err, clierr.CodeUsage))
}

func TestApproveTransactions(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	amount := big.NewInt(1_000)

	approve, err := b.ApproveTx(tokenX, user, looping, amount)
	require.NoError(t, err)
	assert.Equal(t, tokenX, approve.To)
	assert.Equal(t, user, approve.From)
	assert.Nil(t, approve.Value)
	assert.Equal(t, "65000", approve.GasLimit.String())
	want, err := DefaultCodec().EncodeCall("approve", looping, amount)
	require.NoError(t, err)
	assert.Equal(t, want, approve.Data)

	delegate, err := b.ApproveDelegationTx(debtX, user, looping, amount)
	require.NoError(t, err)
	assert.Equal(t, debtX, delegate.To)
	assert.Equal(t, "55000", delegate.GasLimit.String())
	assert.Equal(t, selectorOf(t, "approveDelegation"), delegate.Data[:4])

	_, err = b.ApproveTx(id.NativeAssetAddress, user, looping, amount)
	assert.True(t, clierr.HasCode(err, clierr.CodeInvalidParams))
}

func TestGasOverridesApply(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Gas = registry.DefaultGasTable().WithOverrides(map[string]uint64{"LOOP_SWAP": 450000, "approval": 0})
	b := newSwapBuilder(t, cfg)

	tx, err := b.Build(swapParams(tokenY, usd))
	require.NoError(t, err)
	assert.Equal(t, "450000", tx.GasLimit.String())

	approve, err := b.ApproveTx(tokenY, user, looping, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "65000", approve.GasLimit.String())
}
