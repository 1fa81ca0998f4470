package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/route"
)

// Deployment carries every address the looping builders need for one network.
// Looping, Gateway and LendingPool are zero when the deployment does not pin
// them; they are then expected from config or flags.
type Deployment struct {
	Name                   string
	ChainID                int64
	WrappedNative          common.Address
	WrappedNativeDebtToken common.Address
	Looping                common.Address
	Gateway                common.Address
	LendingPool            common.Address
	DebtTokens             map[common.Address]common.Address
	Routes                 route.Tables
}

var (
	plumeWPLUME  = common.HexToAddress("0x626613B473F7eF65747967017C11225436EFaEd7")
	plumeNRWA    = common.HexToAddress("0x81537d879ACc8a290a1846635a0cAA908f8ca3a6")
	plumePETH    = common.HexToAddress("0xD630fb6A07c9c723cf709d2DaA9B63325d0E0B73")
	plumeNELIXIR = common.HexToAddress("0x9fbC367B9Bb966a2A537989817A088AFCaFFDC4c")
	plumeNYIELD  = common.HexToAddress("0x892DFf5257B39f7afB7803dd7C81E8ECDB6af3E8")
	plumePUSD    = common.HexToAddress("0xdddD73F5Df1F0DC31373357beAC77545dC5A6f3F")
	plumeNTBILL  = common.HexToAddress("0xE72Fe64840F4EF80E3Ec73a1c749491b5c938CB9")

	plumeWPLUMEDebt = common.HexToAddress("0x578899D60B4ea83537d7d5DD399C2f17Bd15F489")
)

// Maverick pools on Plume.
var (
	poolWPLUMENRWA    = common.HexToAddress("0x6EbE09DDb0edE205fAcE89AB0Bf29211cf885a92")
	poolWPLUMEPETH    = common.HexToAddress("0x2e1ACd5Ef12d161686d417837003415b569c3c16")
	poolWPLUMEPUSD    = common.HexToAddress("0x92962AcCa4300791b0F5cFE2bfB3b6e62a852D83")
	poolNRWAPUSD      = common.HexToAddress("0x9534362C3B5B0ab1770842888497CD299b2bEBCB")
	poolPETHPUSD      = common.HexToAddress("0xc6a6cA7a7C0198a9FC9c616aA30b1BEa2956a0cc")
	poolPUSDNTBILL    = common.HexToAddress("0x483b035C21F77DeB6875f741C7cCb85f22F8E5C3")
	poolWPLUMENELIXIR = common.HexToAddress("0x40528F831D013cca16Fae64a7b4A1fA9b6ae86B7")
	poolNELIXIRHub    = common.HexToAddress("0xCef7E4547328130B58e07d171F56f5A705c86fc5")
	poolNYIELDPUSD    = common.HexToAddress("0xbD2Dc0def95Ab16615dEC0744995027971FA8b8C")
	poolPETHNELIXIR   = common.HexToAddress("0xc48694997a6b7559a2A4C6B0bBA8ffd121Fa60a8")
	poolPETHNYIELD    = common.HexToAddress("0x3B4b1655e50c130686b5da39E4b255e8Dd7e2010")
	poolNELIXIRPUSD   = common.HexToAddress("0x4264FcaA686264B1A247Fa1Ae85078980b759E8A")
)

func hop(pool common.Address, tokenAIn bool) route.Hop {
	return route.Hop{Pool: pool, TokenAIn: tokenAIn}
}

var plumeRoutes = route.Tables{
	SingleHop: []route.SingleHopPool{
		{TokenA: plumeWPLUME, TokenB: plumeNRWA, Pool: poolWPLUMENRWA},
		{TokenA: plumeWPLUME, TokenB: plumePETH, Pool: poolWPLUMEPETH},
		{TokenA: plumeWPLUME, TokenB: plumePUSD, Pool: poolWPLUMEPUSD},
		{TokenA: plumeNRWA, TokenB: plumePUSD, Pool: poolNRWAPUSD},
		{TokenA: plumePETH, TokenB: plumePUSD, Pool: poolPETHPUSD},
		// TODO: confirm the NYIELD/PUSD pool; the deployment notes list the PETH/PUSD pool for it.
		{TokenA: plumeNYIELD, TokenB: plumePUSD, Pool: poolPETHPUSD},
		{TokenA: plumePUSD, TokenB: plumeNTBILL, Pool: poolPUSDNTBILL},
	},
	MultiHop: []route.MultiHopPool{
		{TokenA: plumeWPLUME, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolWPLUMENELIXIR, false), hop(poolNELIXIRHub, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumeWPLUME, Hops: []route.Hop{hop(poolNELIXIRHub, false), hop(poolWPLUMENELIXIR, true)}},
		{TokenA: plumeWPLUME, TokenB: plumeNYIELD, Hops: []route.Hop{hop(poolWPLUMEPUSD, true), hop(poolNYIELDPUSD, false)}},
		{TokenA: plumeNYIELD, TokenB: plumeWPLUME, Hops: []route.Hop{hop(poolNYIELDPUSD, true), hop(poolWPLUMEPUSD, false)}},
		{TokenA: plumeWPLUME, TokenB: plumeNTBILL, Hops: []route.Hop{hop(poolWPLUMEPUSD, true), hop(poolPUSDNTBILL, true)}},
		{TokenA: plumeNTBILL, TokenB: plumeWPLUME, Hops: []route.Hop{hop(poolPUSDNTBILL, false), hop(poolWPLUMEPUSD, false)}},
		{TokenA: plumeNRWA, TokenB: plumePETH, Hops: []route.Hop{hop(poolWPLUMENRWA, false), hop(poolWPLUMEPETH, true)}},
		{TokenA: plumePETH, TokenB: plumeNRWA, Hops: []route.Hop{hop(poolWPLUMEPETH, false), hop(poolWPLUMENRWA, true)}},
		{TokenA: plumeNRWA, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolWPLUMENRWA, false), hop(poolWPLUMENELIXIR, false), hop(poolNELIXIRHub, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumeNRWA, Hops: []route.Hop{hop(poolNELIXIRHub, false), hop(poolWPLUMENELIXIR, true), hop(poolWPLUMENRWA, true)}},
		{TokenA: plumeNRWA, TokenB: plumeNYIELD, Hops: []route.Hop{hop(poolNRWAPUSD, true), hop(poolNYIELDPUSD, false)}},
		{TokenA: plumeNYIELD, TokenB: plumeNRWA, Hops: []route.Hop{hop(poolNYIELDPUSD, true), hop(poolNRWAPUSD, false)}},
		{TokenA: plumeNRWA, TokenB: plumeNTBILL, Hops: []route.Hop{hop(poolNRWAPUSD, true), hop(poolPUSDNTBILL, true)}},
		{TokenA: plumeNTBILL, TokenB: plumeNRWA, Hops: []route.Hop{hop(poolPUSDNTBILL, false), hop(poolNRWAPUSD, false)}},
		{TokenA: plumePETH, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolPETHNELIXIR, false), hop(poolNELIXIRHub, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumePETH, Hops: []route.Hop{hop(poolNELIXIRHub, false), hop(poolPETHNELIXIR, true)}},
		{TokenA: plumePETH, TokenB: plumeNYIELD, Hops: []route.Hop{hop(poolPETHPUSD, true), hop(poolPETHNYIELD, false)}},
		{TokenA: plumeNYIELD, TokenB: plumePETH, Hops: []route.Hop{hop(poolPETHNYIELD, true), hop(poolPETHPUSD, false)}},
		{TokenA: plumePETH, TokenB: plumeNTBILL, Hops: []route.Hop{hop(poolPETHPUSD, true), hop(poolPUSDNTBILL, true)}},
		{TokenA: plumeNTBILL, TokenB: plumePETH, Hops: []route.Hop{hop(poolPUSDNTBILL, true), hop(poolPETHPUSD, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumeNYIELD, Hops: []route.Hop{hop(poolNELIXIRHub, false), hop(poolNELIXIRPUSD, true), hop(poolNYIELDPUSD, false)}},
		{TokenA: plumeNYIELD, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolNYIELDPUSD, true), hop(poolNELIXIRPUSD, false), hop(poolNELIXIRHub, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumeNTBILL, Hops: []route.Hop{hop(poolNELIXIRHub, false), hop(poolNELIXIRPUSD, true), hop(poolPUSDNTBILL, true)}},
		{TokenA: plumeNTBILL, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolPUSDNTBILL, false), hop(poolNELIXIRPUSD, false), hop(poolNELIXIRHub, true)}},
		{TokenA: plumeNELIXIR, TokenB: plumePUSD, Hops: []route.Hop{hop(poolNELIXIRHub, true), hop(poolNELIXIRPUSD, true)}},
		{TokenA: plumePUSD, TokenB: plumeNELIXIR, Hops: []route.Hop{hop(poolNELIXIRPUSD, false), hop(poolNELIXIRHub, false)}},
		{TokenA: plumeNYIELD, TokenB: plumeNTBILL, Hops: []route.Hop{hop(poolPETHNYIELD, true), hop(poolPUSDNTBILL, true)}},
		{TokenA: plumeNTBILL, TokenB: plumeNYIELD, Hops: []route.Hop{hop(poolPUSDNTBILL, false), hop(poolPETHNYIELD, false)}},
	},
	Special: []route.SpecialPair{
		{Supply: plumeNRWA, Borrow: plumePUSD, Tag: route.TagNRWA},
	},
}

var deployments = map[string]Deployment{
	"plume": {
		Name:                   "plume",
		ChainID:                98866,
		WrappedNative:          plumeWPLUME,
		WrappedNativeDebtToken: plumeWPLUMEDebt,
		DebtTokens: map[common.Address]common.Address{
			plumeWPLUME: plumeWPLUMEDebt,
		},
		Routes: plumeRoutes,
	},
}

// LookupDeployment returns a deep copy of a built-in deployment so callers can
// layer config on top without touching the shared tables.
func LookupDeployment(name string) (Deployment, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		norm = DefaultDeploymentName
	}
	d, ok := deployments[norm]
	if !ok {
		return Deployment{}, fmt.Errorf("unknown deployment %q (known: %s)", name, strings.Join(DeploymentNames(), ", "))
	}
	return d.clone(), nil
}

const DefaultDeploymentName = "plume"

func DeploymentNames() []string {
	names := make([]string, 0, len(deployments))
	for name := range deployments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Deployment) clone() Deployment {
	out := d
	out.DebtTokens = make(map[common.Address]common.Address, len(d.DebtTokens))
	for k, v := range d.DebtTokens {
		out.DebtTokens[k] = v
	}
	out.Routes = route.Tables{
		SingleHop: append([]route.SingleHopPool(nil), d.Routes.SingleHop...),
		MultiHop:  make([]route.MultiHopPool, 0, len(d.Routes.MultiHop)),
		Special:   append([]route.SpecialPair(nil), d.Routes.Special...),
	}
	for _, entry := range d.Routes.MultiHop {
		entry.Hops = append([]route.Hop(nil), entry.Hops...)
		out.Routes.MultiHop = append(out.Routes.MultiHop, entry)
	}
	return out
}
