package route

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
)

// Pair is an ordered asset pair. It is comparable and used directly as a map key.
type Pair struct {
	A common.Address
	B common.Address
}

func NewPair(a, b common.Address) Pair {
	return Pair{A: a, B: b}
}

func (p Pair) Reverse() Pair {
	return Pair{A: p.B, B: p.A}
}

func (p Pair) String() string {
	return p.A.Hex() + "/" + p.B.Hex()
}

// SingleHopPool registers Pool for swaps between TokenA and TokenB. The
// ordering decides which side of the pool TokenA sits on.
type SingleHopPool struct {
	TokenA common.Address `json:"token_a"`
	TokenB common.Address `json:"token_b"`
	Pool   common.Address `json:"pool"`
}

// MultiHopPool registers a chained path used when supplying TokenA and
// borrowing TokenB. Paths are directional; the reverse pair needs its own entry.
type MultiHopPool struct {
	TokenA common.Address `json:"token_a"`
	TokenB common.Address `json:"token_b"`
	Hops   []Hop          `json:"hops"`
}

// SingleHopMatch is the result of a single-hop lookup.
type SingleHopMatch struct {
	Pool           common.Address
	IsSupplyTokenA bool
}

// PoolRegistry is the immutable pool graph. Build it once with NewPoolRegistry.
type PoolRegistry struct {
	single      map[Pair]common.Address
	multi       map[Pair][]byte
	singleOrder []SingleHopPool
	multiOrder  []MultiHopPool
}

func NewPoolRegistry(single []SingleHopPool, multi []MultiHopPool) (*PoolRegistry, error) {
	r := &PoolRegistry{
		single: make(map[Pair]common.Address, len(single)),
		multi:  make(map[Pair][]byte, len(multi)),
	}
	for i, entry := range single {
		if err := r.registerSingleHop(entry); err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("single-hop entry %d", i), err)
		}
	}
	for i, entry := range multi {
		if err := r.registerMultiHop(entry); err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("multi-hop entry %d", i), err)
		}
	}
	return r, nil
}

func (r *PoolRegistry) registerSingleHop(entry SingleHopPool) error {
	if err := validatePair(entry.TokenA, entry.TokenB); err != nil {
		return err
	}
	if entry.Pool == (common.Address{}) {
		return fmt.Errorf("pool address is zero for %s", NewPair(entry.TokenA, entry.TokenB))
	}
	key := NewPair(entry.TokenA, entry.TokenB)
	if _, exists := r.single[key]; exists {
		return fmt.Errorf("duplicate single-hop pair %s", key)
	}
	r.single[key] = entry.Pool
	r.singleOrder = append(r.singleOrder, entry)
	return nil
}

func (r *PoolRegistry) registerMultiHop(entry MultiHopPool) error {
	if err := validatePair(entry.TokenA, entry.TokenB); err != nil {
		return err
	}
	key := NewPair(entry.TokenA, entry.TokenB)
	if len(entry.Hops) < 2 {
		return fmt.Errorf("multi-hop pair %s needs at least two hops, got %d", key, len(entry.Hops))
	}
	for i, hop := range entry.Hops {
		if hop.Pool == (common.Address{}) {
			return fmt.Errorf("multi-hop pair %s: hop %d has a zero pool address", key, i)
		}
	}
	if _, exists := r.multi[key]; exists {
		return fmt.Errorf("duplicate multi-hop pair %s", key)
	}
	r.multi[key] = EncodePath(entry.Hops)
	r.multiOrder = append(r.multiOrder, MultiHopPool{
		TokenA: entry.TokenA,
		TokenB: entry.TokenB,
		Hops:   append([]Hop(nil), entry.Hops...),
	})
	return nil
}

func validatePair(a, b common.Address) error {
	if a == (common.Address{}) || b == (common.Address{}) {
		return fmt.Errorf("token address is zero in pair %s", NewPair(a, b))
	}
	if a == b {
		return fmt.Errorf("pair %s uses the same token on both sides", NewPair(a, b))
	}
	return nil
}

// SingleHop looks up the exact ordering given.
func (r *PoolRegistry) SingleHop(pair Pair) (common.Address, bool) {
	pool, ok := r.single[pair]
	return pool, ok
}

// MatchSingleHop tries the given ordering first, then the reversed one. The
// supply asset occupies the token A slot only when the direct ordering matched.
func (r *PoolRegistry) MatchSingleHop(supply, borrow common.Address) (SingleHopMatch, bool) {
	if pool, ok := r.single[NewPair(supply, borrow)]; ok {
		return SingleHopMatch{Pool: pool, IsSupplyTokenA: true}, true
	}
	if pool, ok := r.single[NewPair(borrow, supply)]; ok {
		return SingleHopMatch{Pool: pool, IsSupplyTokenA: false}, true
	}
	return SingleHopMatch{}, false
}

// MultiHop returns a copy of the path registered for the exact ordering.
func (r *PoolRegistry) MultiHop(pair Pair) ([]byte, bool) {
	path, ok := r.multi[pair]
	if !ok {
		return nil, false
	}
	return bytes.Clone(path), true
}

func (r *PoolRegistry) SingleHops() []SingleHopPool {
	return append([]SingleHopPool(nil), r.singleOrder...)
}

func (r *PoolRegistry) MultiHops() []MultiHopPool {
	out := make([]MultiHopPool, 0, len(r.multiOrder))
	for _, entry := range r.multiOrder {
		entry.Hops = append([]Hop(nil), entry.Hops...)
		out = append(out, entry)
	}
	return out
}
