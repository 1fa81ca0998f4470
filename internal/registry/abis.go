package registry

// ABI fragments for the looping deployment and the token surfaces it touches.
const (
	ERC20MinimalABI = `[
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
	]`

	// DebtTokenABI covers credit delegation on variable debt tokens.
	DebtTokenABI = `[
		{"name":"borrowAllowance","type":"function","stateMutability":"view","inputs":[{"name":"fromUser","type":"address"},{"name":"toUser","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approveDelegation","type":"function","stateMutability":"nonpayable","inputs":[{"name":"delegatee","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
	]`

	LendingPoolABI = `[
		{"name":"getReserveData","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"tuple","components":[
			{"name":"configuration","type":"uint256"},
			{"name":"liquidityIndex","type":"uint128"},
			{"name":"currentLiquidityRate","type":"uint128"},
			{"name":"variableBorrowIndex","type":"uint128"},
			{"name":"currentVariableBorrowRate","type":"uint128"},
			{"name":"currentStableBorrowRate","type":"uint128"},
			{"name":"lastUpdateTimestamp","type":"uint40"},
			{"name":"id","type":"uint16"},
			{"name":"aTokenAddress","type":"address"},
			{"name":"stableDebtTokenAddress","type":"address"},
			{"name":"variableDebtTokenAddress","type":"address"},
			{"name":"interestRateStrategyAddress","type":"address"},
			{"name":"accruedToTreasury","type":"uint128"},
			{"name":"unbacked","type":"uint128"},
			{"name":"isolationModeTotalDebt","type":"uint128"}
		]}]}
	]`

	LoopingABI = `[
		{"name":"loopSingleSwap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"supplyToken","type":"address"},
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"isSupplyTokenA","type":"bool"},
			{"name":"borrowToken","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"maverickPool","type":"address"},
			{"name":"minAmountSupplied","type":"uint256"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"},{"name":"","type":"uint256"}]},
		{"name":"loopMultiSwap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"supplyToken","type":"address"},
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"borrowToken","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"initialAmount","type":"uint256"},
			{"name":"minAmountSupplied","type":"uint256"},
			{"name":"path","type":"bytes"}
		]}],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"},{"name":"","type":"uint256"}]},
		{"name":"loopSingleAsset","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"token","type":"address"},
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"}]},
		{"name":"loopNALPHA","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"},
			{"name":"minAmountSupplied","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopNRWA","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"},
			{"name":"minAmountSupplied","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopNINSTO","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopSPLUME","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[]}
	]`

	// LoopingGatewayABI wraps and unwraps the native asset around the looping contract.
	LoopingGatewayABI = `[
		{"name":"loopEntryETHSingleSwap","type":"function","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"isSupplyTokenA","type":"bool"},
			{"name":"borrowToken","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"maverickPool","type":"address"},
			{"name":"minAmountSupplied","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopExitETHSingleSwap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"supplyToken","type":"address"},
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"isSupplyTokenA","type":"bool"},
			{"name":"numLoops","type":"uint16"},
			{"name":"maverickPool","type":"address"},
			{"name":"minAmountSupplied","type":"uint256"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopEntryETHMultiSwap","type":"function","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"borrowToken","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"minAmountSupplied","type":"uint256"},
			{"name":"path","type":"bytes"}
		]}],"outputs":[]},
		{"name":"loopExitETHMultiSwap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"supplyToken","type":"address"},
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"minAmountSupplied","type":"uint256"},
			{"name":"path","type":"bytes"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[]},
		{"name":"loopETHSingleAsset","type":"function","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"}
		]}],"outputs":[]},
		{"name":"loopEntryETHSingleAsset","type":"function","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"}
		]}],"outputs":[]},
		{"name":"loopExitETHSingleAsset","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[
			{"name":"targetHealthFactor","type":"uint16"},
			{"name":"onBehalfOf","type":"address"},
			{"name":"numLoops","type":"uint16"},
			{"name":"initialAmount","type":"uint256"}
		]}],"outputs":[]}
	]`
)
