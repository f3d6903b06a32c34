package posts

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "hello", "hello", false},
		{"trimmed", "  hello \n", "hello", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"max runes", strings.Repeat("a", MaxTextRunes), strings.Repeat("a", MaxTextRunes), false},
		{"too many runes", strings.Repeat("a", MaxTextRunes+1), "", true},
		{"multibyte at max", strings.Repeat("é", MaxTextRunes), strings.Repeat("é", MaxTextRunes), false},
		{"invalid utf8", "ab\xffcd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateText(tt.in)
			if tt.wantErr {
				if err == nil || !IsValidation(err) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
