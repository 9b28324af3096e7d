package ams

import "testing"

func TestStepProgress(t *testing.T) {
	cases := []struct {
		kind      OpKind
		statusSub int
		wantIdx   int
		wantName  string
	}{
		{OpLoad, 2, 0, "push"},
		{OpLoad, 5, 1, "heat"},
		{OpLoad, 7, 2, "purge"},
		{OpLoad, 99, 0, "push"}, // unrecognized code falls back to the first step
		{OpUnload, 4, 0, "heat"},
		{OpUnload, 6, 1, "retract"},
		{OpUnload, -1, 0, "heat"},
	}
	for _, c := range cases {
		idx, name := StepProgress(c.kind, c.statusSub)
		if idx != c.wantIdx || name != c.wantName {
			t.Fatalf("StepProgress(%v, %d) = (%d, %q), want (%d, %q)",
				c.kind, c.statusSub, idx, name, c.wantIdx, c.wantName)
		}
	}
}

func TestStepProgress_NoProjectionForRefresh(t *testing.T) {
	if steps := Steps(OpRefresh); steps != nil {
		t.Fatalf("refresh has no step projection, got %v", steps)
	}
	idx, name := StepProgress(OpRefresh, 3)
	if idx != 0 || name != "" {
		t.Fatalf("StepProgress(refresh) = (%d, %q)", idx, name)
	}
}
