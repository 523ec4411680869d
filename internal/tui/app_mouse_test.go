package tui

import "testing"

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := 0; active < 4; active++ {
		a := App{activeTab: active}
		pos := 1 // leading space before the first tab

		for i := 0; i < 4; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < 3 {
				pos += 2 // separator
			}
		}
	}
}

func TestTabAtXMissesGaps(t *testing.T) {
	a := App{activeTab: 0}

	if got := a.tabAtX(0); got != -1 {
		t.Errorf("tabAtX(0) = %d, want -1 (leading space)", got)
	}

	// First position inside the separator after the active Overview tab.
	gap := 1 + tabWidthForTest(0, 0)
	if got := a.tabAtX(gap); got != -1 {
		t.Errorf("tabAtX(%d) = %d, want -1 (separator)", gap, got)
	}

	if got := a.tabAtX(10_000); got != -1 {
		t.Errorf("tabAtX(10000) = %d, want -1 (past the bar)", got)
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Sessions"),
		len("Workflows"),
		len("Settings"),
	}

	w := nameWidths[tabIdx]
	if tabIdx != activeIdx {
		w += 2 // inactive tabs bracket their shortcut key
		if tabIdx == 3 {
			w++ // Settings' key is not in its name: "[x] Settings"
		}
	}
	return w
}
