package config

import (
	"strings"

	"github.com/ecclabs/wcost/internal/model"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok        float64
	OutputPerMTok       float64
	CacheWrite5mPerMTok float64
	CacheWrite1hPerMTok float64
	CacheReadPerMTok    float64
}

// FallbackModel prices unknown model identifiers. It is the most expensive
// current tier so unmodeled cost is never silently underreported.
const FallbackModel = "claude-opus-4-6"

// DefaultPricing maps model base names to published Anthropic prices
// (per million tokens, Feb 2026). Cache write has two tiers: 5-minute
// (1.25x input) and 1-hour (2x input); cache read is 0.1x input.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4-6": {
		InputPerMTok: 5.00, OutputPerMTok: 25.00,
		CacheWrite5mPerMTok: 6.25, CacheWrite1hPerMTok: 10.00, CacheReadPerMTok: 0.50,
	},
	"claude-opus-4-5": {
		InputPerMTok: 5.00, OutputPerMTok: 25.00,
		CacheWrite5mPerMTok: 6.25, CacheWrite1hPerMTok: 10.00, CacheReadPerMTok: 0.50,
	},
	"claude-opus-4-1": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWrite5mPerMTok: 18.75, CacheWrite1hPerMTok: 30.00, CacheReadPerMTok: 1.50,
	},
	"claude-sonnet-4-5": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWrite5mPerMTok: 3.75, CacheWrite1hPerMTok: 6.00, CacheReadPerMTok: 0.30,
	},
	"claude-haiku-4-5": {
		InputPerMTok: 1.00, OutputPerMTok: 5.00,
		CacheWrite5mPerMTok: 1.25, CacheWrite1hPerMTok: 2.00, CacheReadPerMTok: 0.10,
	},
}

// familyDefaults routes bare family identifiers (and any model name that
// misses the table but names a known family) to a canonical table entry.
var familyDefaults = map[string]string{
	"opus":   "claude-opus-4-6",
	"sonnet": "claude-sonnet-4-5",
	"haiku":  "claude-haiku-4-5",
}

// pricingOverrides holds user-supplied per-model prices from the config
// file. Installed once at startup via ApplyOverrides; checked before the
// built-in table.
var pricingOverrides = map[string]ModelPricing{}

func hasPricingModel(name string) bool {
	if _, ok := pricingOverrides[name]; ok {
		return true
	}
	_, ok := DefaultPricing[name]
	return ok
}

// NormalizeModelName strips date suffixes from model identifiers.
// e.g., "claude-opus-4-5-20251101" -> "claude-opus-4-5"
func NormalizeModelName(raw string) string {
	if hasPricingModel(raw) {
		return raw
	}

	// Models can have date suffixes like -20251101 (8 digits)
	parts := strings.Split(raw, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			candidate := strings.Join(parts[:len(parts)-1], "-")
			if hasPricingModel(candidate) {
				return candidate
			}
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LookupPricing resolves a model identifier to its price card. The mapping
// is total: exact match first, then date-suffix normalization, then family
// routing, then the FallbackModel entry. It never fails.
func LookupPricing(modelName string) ModelPricing {
	name := NormalizeModelName(modelName)
	if p, ok := pricingOverrides[name]; ok {
		return p
	}
	if p, ok := DefaultPricing[name]; ok {
		return p
	}

	for family, canonical := range familyDefaults {
		if strings.Contains(name, family) {
			if p, ok := pricingOverrides[canonical]; ok {
				return p
			}
			return DefaultPricing[canonical]
		}
	}

	if p, ok := pricingOverrides[FallbackModel]; ok {
		return p
	}
	return DefaultPricing[FallbackModel]
}

// CalculateModelCost prices one model's accumulated usage in USD.
func CalculateModelCost(modelName string, u model.TokenUsage) float64 {
	p := LookupPricing(modelName)

	cost := float64(u.Input) * p.InputPerMTok / 1_000_000
	cost += float64(u.Output) * p.OutputPerMTok / 1_000_000
	cost += float64(u.Cache5m) * p.CacheWrite5mPerMTok / 1_000_000
	cost += float64(u.Cache1h) * p.CacheWrite1hPerMTok / 1_000_000
	cost += float64(u.CacheRead) * p.CacheReadPerMTok / 1_000_000

	return cost
}

// CalculateCost prices a per-model aggregate in USD. Linear in every
// counter; unknown models bill at the fallback rate, never zero.
func CalculateCost(tokens map[string]model.TokenUsage) float64 {
	total := 0.0
	for name, u := range tokens {
		total += CalculateModelCost(name, u)
	}
	return total
}

// CalculateCacheSavings computes how much cache reads saved vs full input
// pricing for one model.
func CalculateCacheSavings(modelName string, cacheReadTokens int64) float64 {
	p := LookupPricing(modelName)
	fullCost := float64(cacheReadTokens) * p.InputPerMTok / 1_000_000
	actualCost := float64(cacheReadTokens) * p.CacheReadPerMTok / 1_000_000
	return fullCost - actualCost
}

// ApplyOverrides installs [pricing.overrides] entries from the config file.
// Unset fields inherit from the model's resolved default card. Called once
// during CLI startup, before any cost calculation.
func ApplyOverrides(po PricingOverrides) {
	installed := make(map[string]ModelPricing, len(po.Overrides))
	for name, o := range po.Overrides {
		base := LookupPricing(name)
		if o.InputPerMTok != nil {
			base.InputPerMTok = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			base.OutputPerMTok = *o.OutputPerMTok
		}
		if o.CacheWrite5mPerMTok != nil {
			base.CacheWrite5mPerMTok = *o.CacheWrite5mPerMTok
		}
		if o.CacheWrite1hPerMTok != nil {
			base.CacheWrite1hPerMTok = *o.CacheWrite1hPerMTok
		}
		if o.CacheReadPerMTok != nil {
			base.CacheReadPerMTok = *o.CacheReadPerMTok
		}
		installed[name] = base
	}
	pricingOverrides = installed
}
