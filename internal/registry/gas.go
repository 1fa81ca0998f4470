package registry

import (
	"math/big"
	"sort"
	"strings"
)

// ActionKind selects a gas limit from the static table.
type ActionKind string

const (
	ActionDefault          ActionKind = "default"
	ActionApproval         ActionKind = "approval"
	ActionCreditDelegation ActionKind = "credit_delegation"
	ActionLoopSwap         ActionKind = "loop_swap"
	ActionLoopSingleAsset  ActionKind = "loop_single_asset"
	ActionLoopNative       ActionKind = "loop_native"
)

var defaultGasLimits = map[ActionKind]uint64{
	ActionDefault:          210000,
	ActionApproval:         65000,
	ActionCreditDelegation: 55000,
}

// GasTable maps action kinds to fixed gas limits. Kinds without an entry use
// the default kind.
type GasTable map[ActionKind]uint64

func DefaultGasTable() GasTable {
	out := make(GasTable, len(defaultGasLimits))
	for k, v := range defaultGasLimits {
		out[k] = v
	}
	return out
}

// WithOverrides returns a copy of g with non-zero overrides applied. Keys are
// matched case-insensitively.
func (g GasTable) WithOverrides(overrides map[string]uint64) GasTable {
	out := make(GasTable, len(g)+len(overrides))
	for k, v := range g {
		out[k] = v
	}
	for k, v := range overrides {
		if v == 0 {
			continue
		}
		out[ActionKind(strings.ToLower(strings.TrimSpace(k)))] = v
	}
	return out
}

func (g GasTable) Limit(kind ActionKind) *big.Int {
	if v, ok := g[kind]; ok && v > 0 {
		return new(big.Int).SetUint64(v)
	}
	if v, ok := g[ActionDefault]; ok && v > 0 {
		return new(big.Int).SetUint64(v)
	}
	return new(big.Int).SetUint64(defaultGasLimits[ActionDefault])
}

func (g GasTable) Kinds() []ActionKind {
	out := make([]ActionKind, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
