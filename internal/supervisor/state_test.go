package supervisor

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "idle"},
		{StatusRunning, "running"},
		{StatusStopped, "stopped"},
		{StatusErrored, "errored"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if StatusIdle.IsTerminal() || StatusRunning.IsTerminal() {
		t.Error("idle/running reported as terminal")
	}
	if !StatusStopped.IsTerminal() || !StatusErrored.IsTerminal() {
		t.Error("stopped/errored not reported as terminal")
	}
}
