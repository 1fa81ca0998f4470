package app

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution/actionbuilder"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/looping"
	"github.com/ggonzalez94/loop-cli/internal/model"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newRoutesCommand() *cobra.Command {
	root := &cobra.Command{Use: "routes", Short: "Inspect the swap route tables"}

	var kind string
	list := &cobra.Command{
		Use:   "list",
		Short: "List single-hop pools, multi-hop paths and special routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.loadDeployment(); err != nil {
				return err
			}
			entries, err := s.routeEntries(kind)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), entries, nil)
		},
	}
	list.Flags().StringVar(&kind, "kind", "", "Filter by kind (single_hop|multi_hop|special)")

	var supplyArg, borrowArg string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the route a swap loop would take",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.loadDeployment(); err != nil {
				return err
			}
			supply, err := id.ParseAsset(supplyArg, s.chain)
			if err != nil {
				return err
			}
			borrow, err := id.ParseAsset(borrowArg, s.chain)
			if err != nil {
				return err
			}
			rt, err := s.resolver.Resolve(supply.Address, borrow.Address)
			if err != nil {
				return err
			}
			data, err := s.describeResolution(supply, borrow, rt)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data, nil)
		},
	}
	resolve.Flags().StringVar(&supplyArg, "supply", "", "Supplied asset (symbol, address, CAIP-19 or native)")
	resolve.Flags().StringVar(&borrowArg, "borrow", "", "Borrowed asset (symbol, address, CAIP-19 or native)")
	_ = resolve.MarkFlagRequired("supply")
	_ = resolve.MarkFlagRequired("borrow")

	root.AddCommand(list)
	root.AddCommand(resolve)
	return root
}

func (s *runtimeState) routeEntries(kind string) ([]model.PoolRoute, error) {
	filter := strings.ToLower(strings.TrimSpace(kind))
	switch filter {
	case "", route.KindSingleHop.String(), route.KindMultiHop.String(), route.KindSpecial.String():
	default:
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported --kind %q", kind))
	}

	entries := []model.PoolRoute{}
	if filter == "" || filter == route.KindSingleHop.String() {
		for _, p := range s.resolver.Pools().SingleHops() {
			entries = append(entries, s.poolRoute(route.KindSingleHop, p.TokenA, p.TokenB, func(r *model.PoolRoute) {
				r.Pool = p.Pool.Hex()
			}))
		}
	}
	if filter == "" || filter == route.KindMultiHop.String() {
		for _, p := range s.resolver.Pools().MultiHops() {
			entries = append(entries, s.poolRoute(route.KindMultiHop, p.TokenA, p.TokenB, func(r *model.PoolRoute) {
				r.Hops = hopRefs(p.Hops)
			}))
		}
	}
	if filter == "" || filter == route.KindSpecial.String() {
		for _, p := range s.resolver.Special().Entries() {
			entries = append(entries, s.poolRoute(route.KindSpecial, p.Supply, p.Borrow, func(r *model.PoolRoute) {
				r.Tag = string(p.Tag)
			}))
		}
	}
	return entries, nil
}

func (s *runtimeState) poolRoute(kind route.Kind, a, b common.Address, fill func(*model.PoolRoute)) model.PoolRoute {
	r := model.PoolRoute{
		Kind:    kind.String(),
		TokenA:  a.Hex(),
		SymbolA: symbolFor(s.chain.CAIP2, a),
		TokenB:  b.Hex(),
		SymbolB: symbolFor(s.chain.CAIP2, b),
	}
	fill(&r)
	return r
}

func (s *runtimeState) describeResolution(supply, borrow id.Asset, rt route.Route) (model.RouteResolution, error) {
	out := model.RouteResolution{
		Supply:       supply.Address.Hex(),
		SupplySymbol: supply.Symbol,
		Borrow:       borrow.Address.Hex(),
		BorrowSymbol: borrow.Symbol,
		Kind:         actionbuilder.DescribeRoute(rt),
	}
	switch rt.Kind {
	case route.KindSingleHop:
		out.Pool = rt.Pool.Hex()
		isA := rt.IsSupplyTokenA
		out.IsSupplyTokenA = &isA
	case route.KindMultiHop:
		hops, err := route.DecodePath(rt.Path)
		if err != nil {
			return model.RouteResolution{}, err
		}
		out.Path = hexutil.Encode(rt.Path)
		out.Hops = hopRefs(hops)
	case route.KindSpecial:
		out.Tag = string(rt.Tag)
		if method, ok := looping.SpecialMethod(rt.Tag); ok {
			out.Function = method
		}
	}
	return out, nil
}

func hopRefs(hops []route.Hop) []model.HopRef {
	out := make([]model.HopRef, 0, len(hops))
	for _, h := range hops {
		out = append(out, model.HopRef{Pool: h.Pool.Hex(), TokenAIn: h.TokenAIn})
	}
	return out
}

func symbolFor(chainID string, addr common.Address) string {
	if t, ok := id.LookupByAddress(chainID, addr); ok {
		return t.Symbol
	}
	return ""
}
