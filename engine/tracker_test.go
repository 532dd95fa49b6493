package engine

import "testing"

// TestTrackerTransitions asserts the barrier transition table directly:
// edges fire their hook exactly once, repeats fire nothing
func TestTrackerTransitions(t *testing.T) {
	cases := []struct {
		name      string
		sequence  []bool
		wantUps   int
		wantDowns int
		wantFinal bool
	}{
		{"stays down", []bool{false, false, false}, 0, 0, false},
		{"single rise", []bool{false, true}, 1, 0, true},
		{"rise holds", []bool{true, true, true}, 1, 0, true},
		{"rise and fall", []bool{true, false}, 1, 1, false},
		{"full cycle twice", []bool{true, false, true, false}, 2, 2, false},
		{"recover", []bool{true, false, false, true}, 2, 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()
			ups, downs := 0, 0
			tr.OnUp = func() { ups++ }
			tr.OnDown = func() { downs++ }

			for _, covered := range tc.sequence {
				tr.Observe(covered)
			}

			if ups != tc.wantUps {
				t.Errorf("ups = %d, want %d", ups, tc.wantUps)
			}
			if downs != tc.wantDowns {
				t.Errorf("downs = %d, want %d", downs, tc.wantDowns)
			}
			if tr.Ready() != tc.wantFinal {
				t.Errorf("Ready = %v, want %v", tr.Ready(), tc.wantFinal)
			}
		})
	}
}

// TestTrackerNilHooks verifies transitions are safe without hooks
func TestTrackerNilHooks(t *testing.T) {
	tr := NewTracker()
	tr.Observe(true)
	tr.Observe(false)
	if tr.Ready() {
		t.Error("Ready after falling edge")
	}
}
