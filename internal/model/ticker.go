// Package model holds the core PIT domain types shared across the ingestion
// pipeline: tickers, issuer identifiers, filings, facts, standard fields, and
// the request/result/coverage shapes the Snapshot Builder produces.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ticker is a normalized, uppercase exchange ticker symbol.
type Ticker string

var tickerCaser = cases.Upper(language.AmericanEnglish)

// NormalizeTicker trims and Unicode-safe-uppercases a raw ticker string.
func NormalizeTicker(raw string) Ticker {
	return Ticker(tickerCaser.String(strings.TrimSpace(raw)))
}

// IssuerID is the regulator-assigned identifier for a filer (CIK), zero-padded
// to a fixed width. It uniquely identifies an issuer across time, including
// delisted and merged entities.
type IssuerID string

// PadCIK formats a raw numeric CIK string to the regulator's 10-digit,
// zero-padded canonical form.
func PadCIK(raw string) IssuerID {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "0")
	if raw == "" {
		raw = "0"
	}
	if len(raw) > 10 {
		raw = raw[len(raw)-10:]
	}
	return IssuerID(strings.Repeat("0", 10-len(raw)) + raw)
}
