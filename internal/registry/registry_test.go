package registry

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/route"
)

func TestExecutionABIConstantsParse(t *testing.T) {
	abis := map[string]string{
		"erc20":        ERC20MinimalABI,
		"debt_token":   DebtTokenABI,
		"lending_pool": LendingPoolABI,
		"looping":      LoopingABI,
		"gateway":      LoopingGatewayABI,
	}
	for name, raw := range abis {
		if _, err := abi.JSON(strings.NewReader(raw)); err != nil {
			t.Fatalf("failed to parse %s abi json: %v", name, err)
		}
	}
}

func TestGatewayEntryFunctionsArePayable(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(LoopingGatewayABI))
	if err != nil {
		t.Fatalf("parse gateway abi: %v", err)
	}
	payable := map[string]bool{
		"loopEntryETHSingleSwap":  true,
		"loopEntryETHMultiSwap":   true,
		"loopETHSingleAsset":      true,
		"loopEntryETHSingleAsset": true,
		"loopExitETHSingleSwap":   false,
		"loopExitETHMultiSwap":    false,
		"loopExitETHSingleAsset":  false,
	}
	for name, want := range payable {
		method, ok := parsed.Methods[name]
		if !ok {
			t.Fatalf("gateway abi is missing %s", name)
		}
		if method.IsPayable() != want {
			t.Fatalf("%s payable=%v, want %v", name, method.IsPayable(), want)
		}
	}
}

func TestDefaultRPCURL(t *testing.T) {
	if rpc, ok := DefaultRPCURL(98866); !ok || rpc == "" {
		t.Fatalf("expected plume rpc default, got ok=%v rpc=%q", ok, rpc)
	}
	if _, err := ResolveRPCURL("", 424242); err == nil {
		t.Fatal("expected missing rpc error for unknown chain")
	}
	if rpc, err := ResolveRPCURL(" https://rpc.example ", 424242); err != nil || rpc != "https://rpc.example" {
		t.Fatalf("expected override to win, got %q err=%v", rpc, err)
	}
}

func TestGasTable(t *testing.T) {
	table := DefaultGasTable()
	if got := table.Limit(ActionLoopSwap).Uint64(); got != 210000 {
		t.Fatalf("expected loop kinds to fall back to default, got %d", got)
	}
	if got := table.Limit(ActionApproval).Uint64(); got != 65000 {
		t.Fatalf("unexpected approval gas: %d", got)
	}
	custom := table.WithOverrides(map[string]uint64{"LOOP_SWAP": 900000, "approval": 0})
	if got := custom.Limit(ActionLoopSwap).Uint64(); got != 900000 {
		t.Fatalf("expected override, got %d", got)
	}
	if got := custom.Limit(ActionApproval).Uint64(); got != 65000 {
		t.Fatalf("zero override must not clear the default, got %d", got)
	}
	if _, ok := table[ActionLoopSwap]; ok {
		t.Fatal("WithOverrides must not mutate the receiver")
	}
}

func TestLookupDeploymentReturnsIsolatedCopy(t *testing.T) {
	d, err := LookupDeployment("")
	if err != nil {
		t.Fatalf("LookupDeployment failed: %v", err)
	}
	if d.Name != DefaultDeploymentName || d.ChainID != 98866 {
		t.Fatalf("unexpected deployment: %+v", d)
	}
	d.DebtTokens[common.HexToAddress("0x01")] = common.HexToAddress("0x02")
	d.Routes.MultiHop[0].Hops[0].TokenAIn = !d.Routes.MultiHop[0].Hops[0].TokenAIn

	again, _ := LookupDeployment("PLUME")
	if len(again.DebtTokens) != 1 {
		t.Fatalf("debt token map leaked between lookups: %d entries", len(again.DebtTokens))
	}
	if again.Routes.MultiHop[0].Hops[0].TokenAIn == d.Routes.MultiHop[0].Hops[0].TokenAIn {
		t.Fatal("hop slices leaked between lookups")
	}
	if _, err := LookupDeployment("unknown"); err == nil {
		t.Fatal("expected unknown deployment error")
	}
}

func TestPlumeRoutesBuildAndResolve(t *testing.T) {
	d, _ := LookupDeployment("plume")
	resolver, err := route.FromTables(d.Routes, d.WrappedNative)
	if err != nil {
		t.Fatalf("plume tables rejected: %v", err)
	}

	special := map[route.Pair]bool{}
	for _, entry := range d.Routes.Special {
		special[route.NewPair(entry.Supply, entry.Borrow)] = true
	}

	for _, entry := range d.Routes.SingleHop {
		forward, err := resolver.Resolve(entry.TokenA, entry.TokenB)
		if err != nil {
			t.Fatalf("resolve %s: %v", route.NewPair(entry.TokenA, entry.TokenB), err)
		}
		if special[route.NewPair(entry.TokenA, entry.TokenB)] {
			if forward.Kind != route.KindSpecial {
				t.Fatalf("expected special precedence for %s, got %s", route.NewPair(entry.TokenA, entry.TokenB), forward.Kind)
			}
		} else if forward.Kind != route.KindSingleHop || !forward.IsSupplyTokenA || forward.Pool != entry.Pool {
			t.Fatalf("unexpected forward route for %s: %+v", route.NewPair(entry.TokenA, entry.TokenB), forward)
		}

		reverse, err := resolver.Resolve(entry.TokenB, entry.TokenA)
		if err != nil {
			t.Fatalf("resolve reversed %s: %v", route.NewPair(entry.TokenB, entry.TokenA), err)
		}
		if reverse.Kind != route.KindSingleHop || reverse.IsSupplyTokenA || reverse.Pool != entry.Pool {
			t.Fatalf("unexpected reverse route for %s: %+v", route.NewPair(entry.TokenB, entry.TokenA), reverse)
		}
	}

	for _, entry := range d.Routes.MultiHop {
		got, err := resolver.Resolve(entry.TokenA, entry.TokenB)
		if err != nil {
			t.Fatalf("resolve multi-hop %s: %v", route.NewPair(entry.TokenA, entry.TokenB), err)
		}
		if got.Kind != route.KindMultiHop {
			t.Fatalf("expected multi-hop for %s, got %s", route.NewPair(entry.TokenA, entry.TokenB), got.Kind)
		}
		if string(got.Path) != string(route.EncodePath(entry.Hops)) {
			t.Fatalf("path mismatch for %s", route.NewPair(entry.TokenA, entry.TokenB))
		}
	}
}
