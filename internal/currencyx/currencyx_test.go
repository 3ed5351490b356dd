package currencyx

import "testing"

func TestCanonicalize_KnownAliases(t *testing.T) {
	cases := map[string]string{
		"usdc":     "USDC",
		"USDC":     "USDC",
		"eth":      "ETH",
		"Ethereum": "ETH",
		"sol":      "SOL",
		"bitcoin":  "BTC",
		"dai":      "DAI",
		"matic":    "MATIC",
		"avax":     "AVAX",
		"dollar":   "USD",
		"Dollars":  "USD",
	}
	for in, want := range cases {
		if got := Canonicalize(in); got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalize_UnknownTokenUppercased(t *testing.T) {
	if got := Canonicalize("xyz"); got != "XYZ" {
		t.Errorf("Canonicalize(unknown) = %q, want XYZ", got)
	}
}

func TestIsStablecoin(t *testing.T) {
	if !IsStablecoin("USDC") {
		t.Error("USDC should be a stablecoin")
	}
	if !IsStablecoin("dai") {
		t.Error("DAI should be a stablecoin (case-insensitive)")
	}
	if IsStablecoin("ETH") {
		t.Error("ETH should not be a stablecoin")
	}
	if IsStablecoin("USD") {
		t.Error("USD should not be a stablecoin")
	}
}

func TestIsAlias(t *testing.T) {
	if !IsAlias("USDC") {
		t.Error("USDC should be a recognized alias")
	}
	if !IsAlias("dollar") {
		t.Error("dollar should be a recognized alias")
	}
	if IsAlias("notacurrency") {
		t.Error("unrecognized token should not be an alias")
	}
}

func TestIsDollarWord(t *testing.T) {
	if !IsDollarWord("dollar") || !IsDollarWord("Dollars") {
		t.Error("dollar/dollars should match regardless of case")
	}
	if IsDollarWord("USD") {
		t.Error("USD should not match IsDollarWord")
	}
}
