package conversation

import "testing"

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"none", StateNone},
		{"awaiting_name", StateAwaitingName},
		{"awaiting_date", StateAwaitingDate},
		{"awaiting_slot_choice", StateAwaitingSlot},
		{"", StateNone},
		{"garbage", StateNone},
		{"AWAITING_DATE", StateNone},
	}

	for _, tt := range tests {
		if got := ParseState(tt.in); got != tt.want {
			t.Errorf("ParseState(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInFlow(t *testing.T) {
	if StateNone.InFlow() {
		t.Error("StateNone should not be in flow")
	}
	for _, s := range []State{StateAwaitingName, StateAwaitingDate, StateAwaitingSlot} {
		if !s.InFlow() {
			t.Errorf("%v should be in flow", s)
		}
	}
}
