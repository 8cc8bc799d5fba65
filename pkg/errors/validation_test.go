package errors

import (
	"strings"
	"testing"
)

func TestValidateCourseCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid spaced", "CMPUT 174", false},
		{"valid compact", "cmput174", false},
		{"valid suffix", "MATH 125A", false},
		{"valid padded", "  STAT 151 ", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("A", 40), true},
		{"control char", "CMPUT\x01174", true},
		{"newline", "CMPUT\n174", true},
		{"quote", "CMPUT' 174", true},
		{"path", "../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCourseCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCourseCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCourseCode) {
				t.Errorf("ValidateCourseCode(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidCourseCode)
			}
		})
	}
}

func TestValidateDepth(t *testing.T) {
	tests := []struct {
		name    string
		depth   int
		max     int
		wantErr bool
	}{
		{"zero", 0, 10, false},
		{"within", 4, 10, false},
		{"at max", 10, 10, false},
		{"no max", 100, 0, false},
		{"negative", -1, 10, true},
		{"over max", 11, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDepth(tt.depth, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDepth(%d, %d) error = %v, wantErr %v", tt.depth, tt.max, err, tt.wantErr)
			}
		})
	}
}
