package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Command    string      `json:"command"`
	Deployment string      `json:"deployment,omitempty"`
	ChainID    string      `json:"chain_id,omitempty"`
	Cache      CacheStatus `json:"cache"`
}

// CacheStatus reports how chain reads behind a response were served:
// "bypass" when the cache is disabled, "enabled" otherwise.
type CacheStatus struct {
	Status string `json:"status"`
}

// PoolRoute is one entry of `routes list`.
type PoolRoute struct {
	Kind    string   `json:"kind"`
	TokenA  string   `json:"token_a"`
	SymbolA string   `json:"symbol_a,omitempty"`
	TokenB  string   `json:"token_b"`
	SymbolB string   `json:"symbol_b,omitempty"`
	Pool    string   `json:"pool,omitempty"`
	Hops    []HopRef `json:"hops,omitempty"`
	Tag     string   `json:"tag,omitempty"`
}

type HopRef struct {
	Pool     string `json:"pool"`
	TokenAIn bool   `json:"token_a_in"`
}

type RouteResolution struct {
	Supply         string   `json:"supply"`
	SupplySymbol   string   `json:"supply_symbol,omitempty"`
	Borrow         string   `json:"borrow"`
	BorrowSymbol   string   `json:"borrow_symbol,omitempty"`
	Kind           string   `json:"kind"`
	Pool           string   `json:"pool,omitempty"`
	IsSupplyTokenA *bool    `json:"is_supply_token_a,omitempty"`
	Path           string   `json:"path,omitempty"`
	Hops           []HopRef `json:"hops,omitempty"`
	Tag            string   `json:"tag,omitempty"`
	Function       string   `json:"function,omitempty"`
}

type AllowanceReport struct {
	Mode    string `json:"mode"`
	Owner   string `json:"owner"`
	Token   string `json:"token"`
	Symbol  string `json:"symbol,omitempty"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type DelegationReport struct {
	Mode      string `json:"mode"`
	Owner     string `json:"owner"`
	Asset     string `json:"asset,omitempty"`
	DebtToken string `json:"debt_token"`
	Delegatee string `json:"delegatee"`
	Amount    string `json:"amount"`
}
