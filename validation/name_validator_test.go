package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDrugName(t *testing.T) {
	validator := NewNameValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple generic", "ibuprofen", "ibuprofen", false},
		{"brand with capitals", "ADVIL", "ADVIL", false},
		{"trimmed", "  warfarin\t", "warfarin", false},
		{"combination", "acetaminophen and codeine", "acetaminophen and codeine", false},
		{"ampersand", "Tylenol & Codeine", "Tylenol & Codeine", false},
		{"slash and hyphen", "amlodipine/benazepril-HCl", "amlodipine/benazepril-HCl", false},
		{"parentheses and percent", "lidocaine (2%)", "lidocaine (2%)", false},
		{"apostrophe", "St. John's Wort", "St. John's Wort", false},
		{"accented", "éthinylestradiol", "éthinylestradiol", false},
		{"digits", "vitamin B12", "vitamin B12", false},
		{"single character", "x", "x", false},
		{"exactly max length", strings.Repeat("ab", 50), strings.Repeat("ab", 50), false},

		{"empty", "", "", true},
		{"whitespace only", "   \n\t", "", true},
		{"too long", strings.Repeat("ab", 50) + "c", "", true},
		{"too many words", "a b c d e f g h i", "", true},
		{"double quote", `aspirin" OR "x`, "", true},
		{"colon", "openfda.brand_name:advil", "", true},
		{"backslash", `aspirin\`, "", true},
		{"asterisk", "asp*", "", true},
		{"script tag", "<script>alert(1)</script>", "", true},
		{"path traversal", "../etc/passwd", "", true},
		{"sql comment", "aspirin -- drop", "", true},
		{"shell expansion", "$(whoami)", "", true},
		{"repetition", "aaaaaaaaaaaa", "", true},
		{"invalid utf8", "asp\xffirin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateDrugName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateDrugName(%q) expected error, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidDrugName) {
					t.Errorf("Expected error to wrap ErrInvalidDrugName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateDrugName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateDrugName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLengthCountsRunes(t *testing.T) {
	validator := NewNameValidator()

	// 100 two-byte runes is 200 bytes but still within the limit
	name := strings.Repeat("éa", 50)
	if _, err := validator.ValidateDrugName(name); err != nil {
		t.Errorf("Expected 100 runes to be accepted, got %v", err)
	}
}

func TestHasExcessiveRepetition(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"aaaaaaaaaa", false},
		{"aaaaaaaaaaa", true},
		{"abababababababab", false},
		{"xaaaaaaaaaaay", true},
		{"ééééééééééé", true},
		{"aaaaaaaaaabaaaaaaaaaa", false},
	}

	for _, tt := range tests {
		if got := hasExcessiveRepetition(tt.input); got != tt.expected {
			t.Errorf("hasExcessiveRepetition(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
