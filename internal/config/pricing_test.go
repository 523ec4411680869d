package config

import (
	"math"
	"testing"

	"github.com/ecclabs/wcost/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLookupPricing_DateSuffixNormalized(t *testing.T) {
	cases := []struct {
		model     string
		wantInput float64
	}{
		{"claude-opus-4-6", 5.00},
		{"claude-opus-4-5-20251101", 5.00},
		{"claude-opus-4-1-20250805", 15.00},
		{"claude-sonnet-4-5-20250929", 3.00},
		{"claude-haiku-4-5-20251001", 1.00},
	}
	for _, tc := range cases {
		p := LookupPricing(tc.model)
		if p.InputPerMTok != tc.wantInput {
			t.Errorf("LookupPricing(%q).InputPerMTok = %.2f, want %.2f",
				tc.model, p.InputPerMTok, tc.wantInput)
		}
	}
}

func TestLookupPricing_FamilyRouting(t *testing.T) {
	// Bare family names and unlisted family versions route to the
	// canonical entry for that family.
	if p := LookupPricing("sonnet"); p.InputPerMTok != 3.00 {
		t.Errorf("sonnet routed to input rate %.2f, want 3.00", p.InputPerMTok)
	}
	if p := LookupPricing("claude-haiku-9-9"); p.InputPerMTok != 1.00 {
		t.Errorf("future haiku routed to input rate %.2f, want 1.00", p.InputPerMTok)
	}
}

func TestLookupPricing_UnknownFallsBackToOpus(t *testing.T) {
	p := LookupPricing("experimental-model-x")
	want := DefaultPricing[FallbackModel]
	if p != want {
		t.Errorf("unknown model pricing = %+v, want fallback %+v", p, want)
	}
}

func TestCalculateCost_SonnetScenario(t *testing.T) {
	// Two assistant messages at 1000 in / 500 out each:
	// 2000*3.00/1e6 + 1000*15.00/1e6 = 0.006 + 0.015 = 0.021
	tokens := map[string]model.TokenUsage{
		"claude-sonnet-4-5": {Input: 2000, Output: 1000, Messages: 2},
	}
	got := CalculateCost(tokens)
	if !almostEqual(got, 0.021) {
		t.Errorf("CalculateCost = %.6f, want 0.021", got)
	}
}

func TestCalculateCost_Linearity(t *testing.T) {
	base := model.TokenUsage{Input: 1000, Output: 500, Cache5m: 200, Cache1h: 400, CacheRead: 10000}
	doubled := base
	doubled.CacheRead *= 2

	baseCost := CalculateModelCost("claude-opus-4-6", base)
	doubledCost := CalculateModelCost("claude-opus-4-6", doubled)

	readRate := DefaultPricing["claude-opus-4-6"].CacheReadPerMTok
	wantDelta := float64(base.CacheRead) * readRate / 1_000_000
	if !almostEqual(doubledCost-baseCost, wantDelta) {
		t.Errorf("doubling cache reads changed cost by %.6f, want %.6f",
			doubledCost-baseCost, wantDelta)
	}
}

func TestCalculateCost_UnknownModelNeverZero(t *testing.T) {
	tokens := map[string]model.TokenUsage{
		"mystery-model": {Input: 1_000_000},
	}
	got := CalculateCost(tokens)
	if got <= 0 {
		t.Fatalf("unknown model cost = %.6f, want > 0 (fallback pricing)", got)
	}
	// One MTok of input at the opus fallback rate.
	if !almostEqual(got, DefaultPricing[FallbackModel].InputPerMTok) {
		t.Errorf("unknown model cost = %.6f, want %.2f", got, DefaultPricing[FallbackModel].InputPerMTok)
	}
}

func TestCalculateCacheSavings(t *testing.T) {
	// 1 MTok of cache reads on opus: full input would cost $5.00,
	// cache read costs $0.50, so savings = $4.50.
	got := CalculateCacheSavings("claude-opus-4-6", 1_000_000)
	if !almostEqual(got, 4.50) {
		t.Errorf("CalculateCacheSavings = %.4f, want 4.50", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	defer ApplyOverrides(PricingOverrides{})

	in := 9.99
	ApplyOverrides(PricingOverrides{
		Overrides: map[string]ModelPricingOverride{
			"claude-sonnet-4-5": {InputPerMTok: &in},
		},
	})

	p := LookupPricing("claude-sonnet-4-5")
	if p.InputPerMTok != 9.99 {
		t.Errorf("overridden input rate = %.2f, want 9.99", p.InputPerMTok)
	}
	// Unset fields inherit defaults.
	if p.OutputPerMTok != 15.00 {
		t.Errorf("inherited output rate = %.2f, want 15.00", p.OutputPerMTok)
	}
	// Dated variants resolve through the same override.
	if got := LookupPricing("claude-sonnet-4-5-20250929"); got.InputPerMTok != 9.99 {
		t.Errorf("dated variant input rate = %.2f, want 9.99", got.InputPerMTok)
	}
}
