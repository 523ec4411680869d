package config

import (
	"testing"

	"github.com/BurntSushi/toml"
)

func TestTrackedWorkflows_DefaultWhenUnset(t *testing.T) {
	cfg := Config{}
	tracked := cfg.TrackedWorkflows()
	for _, wf := range DefaultWorkflows {
		if _, ok := tracked[wf]; !ok {
			t.Errorf("default tracked set missing %q", wf)
		}
	}
	if _, ok := tracked["not-a-workflow"]; ok {
		t.Error("default tracked set contains unexpected entry")
	}
}

func TestTrackedWorkflows_ConfiguredListWins(t *testing.T) {
	cfg := Config{}
	cfg.Tracking.Workflows = []string{"custom-flow"}
	tracked := cfg.TrackedWorkflows()
	if _, ok := tracked["custom-flow"]; !ok {
		t.Error("configured workflow not tracked")
	}
	if _, ok := tracked["ecc-dev-story"]; ok {
		t.Error("default workflow still tracked after override")
	}
}

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.CSVPath = "/tmp/costs.csv"
	cfg.General.Quiet = true
	cfg.Tracking.Workflows = []string{"a", "b"}

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.General.CSVPath != "/tmp/costs.csv" || !back.General.Quiet {
		t.Errorf("general section did not survive round trip: %+v", back.General)
	}
	if len(back.Tracking.Workflows) != 2 || back.Tracking.Workflows[0] != "a" {
		t.Errorf("tracking section did not survive round trip: %+v", back.Tracking)
	}
	if back.Appearance.Theme != cfg.Appearance.Theme {
		t.Errorf("theme = %q, want %q", back.Appearance.Theme, cfg.Appearance.Theme)
	}
}

func TestPricingOverridesTOML(t *testing.T) {
	src := `
[pricing.overrides.claude-sonnet-4-5]
input_per_mtok = 4.5
cache_read_per_mtok = 0.45
`
	var cfg Config
	if err := toml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ov, ok := cfg.Pricing.Overrides["claude-sonnet-4-5"]
	if !ok {
		t.Fatal("override entry missing after decode")
	}
	if ov.InputPerMTok == nil || *ov.InputPerMTok != 4.5 {
		t.Errorf("input override = %v, want 4.5", ov.InputPerMTok)
	}
	if ov.OutputPerMTok != nil {
		t.Error("unset output override should stay nil")
	}
}
