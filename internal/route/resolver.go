package route

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
)

// Kind discriminates the Route union.
type Kind int

const (
	KindNone Kind = iota
	KindSingleHop
	KindMultiHop
	KindSpecial
)

// AllKinds lists every Kind; builders are tested against it so a new kind
// cannot go unhandled.
func AllKinds() []Kind {
	return []Kind{KindNone, KindSingleHop, KindMultiHop, KindSpecial}
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSingleHop:
		return "single_hop"
	case KindMultiHop:
		return "multi_hop"
	case KindSpecial:
		return "special"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Route is the resolver's answer for one (supply, borrow) pair. Only the
// fields of the active Kind are set.
type Route struct {
	Kind           Kind
	Pool           common.Address
	IsSupplyTokenA bool
	Path           []byte
	Tag            SpecialTag
}

func (r Route) Found() bool {
	return r.Kind != KindNone
}

func (r Route) Equal(other Route) bool {
	return r.Kind == other.Kind &&
		r.Pool == other.Pool &&
		r.IsSupplyTokenA == other.IsSupplyTokenA &&
		bytes.Equal(r.Path, other.Path) &&
		r.Tag == other.Tag
}

// Tables is the declarative description of one deployment's routing data.
type Tables struct {
	SingleHop []SingleHopPool
	MultiHop  []MultiHopPool
	Special   []SpecialPair
}

// Resolver picks the route for an asset pair. It holds only immutable data and
// is safe for concurrent use.
type Resolver struct {
	pools         *PoolRegistry
	special       *SpecialTable
	wrappedNative common.Address
}

func NewResolver(pools *PoolRegistry, special *SpecialTable, wrappedNative common.Address) (*Resolver, error) {
	if pools == nil {
		return nil, clierr.New(clierr.CodeInternal, "resolver requires a pool registry")
	}
	if wrappedNative == (common.Address{}) || id.IsNative(wrappedNative) {
		return nil, clierr.New(clierr.CodeUsage, "resolver requires the wrapped native token address")
	}
	if special == nil {
		special = &SpecialTable{entries: map[Pair]SpecialTag{}}
	}
	return &Resolver{pools: pools, special: special, wrappedNative: wrappedNative}, nil
}

// FromTables builds the registry, special table and resolver in one step.
func FromTables(tables Tables, wrappedNative common.Address) (*Resolver, error) {
	pools, err := NewPoolRegistry(tables.SingleHop, tables.MultiHop)
	if err != nil {
		return nil, err
	}
	special, err := NewSpecialTable(tables.Special)
	if err != nil {
		return nil, err
	}
	return NewResolver(pools, special, wrappedNative)
}

func (r *Resolver) Pools() *PoolRegistry { return r.pools }

func (r *Resolver) Special() *SpecialTable { return r.special }

func (r *Resolver) WrappedNative() common.Address { return r.wrappedNative }

// Normalize swaps the native sentinel for the wrapped native token.
func (r *Resolver) Normalize(asset common.Address) common.Address {
	if id.IsNative(asset) {
		return r.wrappedNative
	}
	return asset
}

// Resolve returns the route for supplying supply and borrowing borrow.
// Special routes win over pool routes and single-hop wins over multi-hop.
// Multi-hop paths are only looked up in the given direction. When nothing
// matches it returns a KindNone route and a route-not-found error.
func (r *Resolver) Resolve(supply, borrow common.Address) (Route, error) {
	pair := NewPair(r.Normalize(supply), r.Normalize(borrow))

	if tag, ok := r.special.Lookup(pair); ok {
		return Route{Kind: KindSpecial, Tag: tag}, nil
	}
	if match, ok := r.pools.MatchSingleHop(pair.A, pair.B); ok {
		return Route{Kind: KindSingleHop, Pool: match.Pool, IsSupplyTokenA: match.IsSupplyTokenA}, nil
	}
	if path, ok := r.pools.MultiHop(pair); ok {
		return Route{Kind: KindMultiHop, Path: path}, nil
	}
	return Route{Kind: KindNone}, clierr.New(clierr.CodeRouteNotFound, fmt.Sprintf("no swap route found for supply %s and borrow %s", supply.Hex(), borrow.Hex()))
}
