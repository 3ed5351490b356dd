// Package currencyx holds the currency/alias table shared by the intent
// extractor and by downstream adapters that need to branch on whether a
// code is a stablecoin.
package currencyx

import "strings"

// Aliases maps a lowercase free-text token to its canonical currency
// code. "dollar"/"dollars" normalize to USD; every crypto alias
// normalizes to its ticker.
var Aliases = map[string]string{
	"usdc":     "USDC",
	"eth":      "ETH",
	"ether":    "ETH",
	"ethereum": "ETH",
	"sol":      "SOL",
	"solana":   "SOL",
	"btc":      "BTC",
	"bitcoin":  "BTC",
	"dai":      "DAI",
	"matic":    "MATIC",
	"avax":     "AVAX",
	"dollar":   "USD",
	"dollars":  "USD",
}

// stablecoins is the subset of Aliases' canonical codes pegged to fiat.
var stablecoins = map[string]bool{
	"USDC": true,
	"DAI":  true,
}

// Canonicalize resolves a free-text currency token to its canonical
// code, or returns it unchanged (uppercased) if it isn't a known alias.
func Canonicalize(token string) string {
	if code, ok := Aliases[strings.ToLower(token)]; ok {
		return code
	}
	return strings.ToUpper(token)
}

// IsStablecoin reports whether a canonical currency code is a
// fiat-pegged stablecoin rather than a volatile asset or fiat currency
// itself.
func IsStablecoin(code string) bool {
	return stablecoins[strings.ToUpper(code)]
}

// IsAlias reports whether token is a recognized alias (including the
// literal "dollar"/"dollars" form, which callers sometimes need to
// exclude from currency-code overrides — see the intent extractor).
func IsAlias(token string) bool {
	_, ok := Aliases[strings.ToLower(token)]
	return ok
}

// IsDollarWord reports whether token is literally "dollar" or "dollars".
func IsDollarWord(token string) bool {
	t := strings.ToLower(token)
	return t == "dollar" || t == "dollars"
}
