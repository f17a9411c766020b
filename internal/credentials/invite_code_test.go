package credentials

import (
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode() error = %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Errorf("code %q has length %d, want %d", code, len(code), InviteCodeLength)
		}
		if strings.ContainsAny(code, "0O1I") {
			t.Errorf("code %q contains an ambiguous character", code)
		}
		if !ValidInviteCode(code) {
			t.Errorf("generated code %q does not validate", code)
		}
		seen[code] = true
	}

	// 500 draws from ~1M codes should almost never collide more than a few times
	if len(seen) < 490 {
		t.Errorf("only %d distinct codes in 500 draws", len(seen))
	}
}

func TestInviteCodeAlphabet(t *testing.T) {
	if len(InviteCodeAlphabet) != 32 {
		t.Errorf("alphabet has %d characters, want 32", len(InviteCodeAlphabet))
	}
	for _, c := range "0O1I" {
		if strings.ContainsRune(InviteCodeAlphabet, c) {
			t.Errorf("alphabet contains ambiguous character %q", c)
		}
	}
}

func TestNormalizeInviteCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ab23", "AB23"},
		{"  xy7k \n", "XY7K"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeInviteCode(tt.input); got != tt.want {
			t.Errorf("NormalizeInviteCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidInviteCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB23", true},
		{"AB2", false},
		{"AB234", false},
		{"AB0C", false},
		{"ab23", false},
	}

	for _, tt := range tests {
		if got := ValidInviteCode(tt.code); got != tt.want {
			t.Errorf("ValidInviteCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
