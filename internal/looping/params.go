package looping

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Tuple arguments for the looping and gateway contracts. Field names follow
// the ABI component names so accounts/abi can pack them directly.

type loopSingleSwapArgs struct {
	SupplyToken        common.Address
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	IsSupplyTokenA     bool
	BorrowToken        common.Address
	NumLoops           uint16
	MaverickPool       common.Address
	MinAmountSupplied  *big.Int
	InitialAmount      *big.Int
}

type loopMultiSwapArgs struct {
	SupplyToken        common.Address
	TargetHealthFactor uint16
	BorrowToken        common.Address
	NumLoops           uint16
	OnBehalfOf         common.Address
	InitialAmount      *big.Int
	MinAmountSupplied  *big.Int
	Path               []byte
}

type loopSingleAssetArgs struct {
	Token              common.Address
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
	InitialAmount      *big.Int
}

type loopSpecialArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
	InitialAmount      *big.Int
	MinAmountSupplied  *big.Int
}

type loopSpecialNoMinArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
	InitialAmount      *big.Int
}

type entryETHSingleSwapArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	IsSupplyTokenA     bool
	BorrowToken        common.Address
	NumLoops           uint16
	MaverickPool       common.Address
	MinAmountSupplied  *big.Int
}

type exitETHSingleSwapArgs struct {
	SupplyToken        common.Address
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	IsSupplyTokenA     bool
	NumLoops           uint16
	MaverickPool       common.Address
	MinAmountSupplied  *big.Int
	InitialAmount      *big.Int
}

type entryETHMultiSwapArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	BorrowToken        common.Address
	NumLoops           uint16
	MinAmountSupplied  *big.Int
	Path               []byte
}

type exitETHMultiSwapArgs struct {
	SupplyToken        common.Address
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
	MinAmountSupplied  *big.Int
	Path               []byte
	InitialAmount      *big.Int
}

type nativeLoopArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
}

type exitETHSingleAssetArgs struct {
	TargetHealthFactor uint16
	OnBehalfOf         common.Address
	NumLoops           uint16
	InitialAmount      *big.Int
}
