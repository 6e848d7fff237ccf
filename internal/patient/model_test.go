package patient

import "testing"

func TestNormalizeSenderKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"whatsapp suffix", "5511999999999@c.us", "5511999999999"},
		{"bare number", "5511999999999", "5511999999999"},
		{"group suffix", "5511999999999@g.us", "5511999999999"},
		{"double at keeps prefix", "user@host@extra", "user"},
		{"surrounding whitespace", "  5511999999999@c.us ", "5511999999999"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSenderKey(tt.raw); got != tt.want {
				t.Errorf("NormalizeSenderKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeSenderKeySameIdentity(t *testing.T) {
	a := NormalizeSenderKey("5511999999999@c.us")
	b := NormalizeSenderKey("5511999999999")
	if a != b {
		t.Errorf("suffixed and bare ids should share a sender key: %q vs %q", a, b)
	}
}

func TestPatientName(t *testing.T) {
	name := "Maria Silva"
	p := &Patient{DisplayName: &name}
	if got := p.Name(); got != "Maria Silva" {
		t.Errorf("Name() = %q", got)
	}

	empty := ""
	for _, p := range []*Patient{{}, {DisplayName: &empty}} {
		if got := p.Name(); got != "cliente" {
			t.Errorf("Name() fallback = %q, want cliente", got)
		}
	}
}
