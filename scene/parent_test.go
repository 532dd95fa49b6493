package scene

import (
	"strings"
	"testing"
)

type fakeMixer struct{ voices int }

// TestRequireParent verifies the missing-context assertion fires for absent
// and mistyped parents and passes through valid ones
func TestRequireParent(t *testing.T) {
	m := &fakeMixer{}
	if got := RequireParent[*fakeMixer](m, "audio/tone", "audio/context"); got != m {
		t.Error("RequireParent returned different resource")
	}

	assertPanics := func(label string, parent any, wantSubstr string) {
		t.Helper()
		defer func() {
			r := recover()
			if r == nil {
				t.Errorf("%s: expected panic, got none", label)
				return
			}
			msg, _ := r.(string)
			if !strings.Contains(msg, wantSubstr) {
				t.Errorf("%s: panic %q missing %q", label, msg, wantSubstr)
			}
		}()
		RequireParent[*fakeMixer](parent, "audio/tone", "audio/context")
	}

	assertPanics("nil parent", nil, "must be declared inside")
	assertPanics("wrong type", "not a mixer", "wrong parent scope")
}

// TestElementAs verifies typed snapshot access
func TestElementAs(t *testing.T) {
	m := &fakeMixer{voices: 3}
	e := Elements{"master": m, "label": "hi"}

	got, ok := ElementAs[*fakeMixer](e, "master")
	if !ok || got != m {
		t.Errorf("ElementAs[*fakeMixer] = (%v, %v), want (%v, true)", got, ok, m)
	}
	if _, ok := ElementAs[*fakeMixer](e, "label"); ok {
		t.Error("ElementAs with mismatched type reported ok")
	}
	if _, ok := ElementAs[*fakeMixer](e, "absent"); ok {
		t.Error("ElementAs with absent name reported ok")
	}

	if MustElement[*fakeMixer](e, "master") != m {
		t.Error("MustElement returned different resource")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustElement with absent name did not panic")
		}
	}()
	MustElement[*fakeMixer](e, "absent")
}
