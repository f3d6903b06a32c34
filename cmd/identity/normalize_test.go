package identity

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.com \t"); got != "A@X.com" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"a@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"plain", false},
		{"a@", false},
		{"@x.com", false},
		{"a@localhost", false},
		{"Alice <a@x.com>", false},
		{"a b@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			err := ValidateEmail(tt.in)
			if tt.ok && err != nil {
				t.Fatalf("ValidateEmail(%q) unexpected error: %v", tt.in, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("ValidateEmail(%q) expected error", tt.in)
			}
		})
	}
}
