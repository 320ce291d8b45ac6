package errors

import (
	"testing"
)

func TestValidateSequence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bases", "ACGT", false},
		{"gap", "AC-T", false},
		{"ambiguity codes", "ACNRY?", false},

		{"empty", "", true},
		{"lowercase", "acgt", true},
		{"digit", "AC1T", true},
		{"space", "AC T", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSequence(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSequence(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSequence) {
				t.Errorf("ValidateSequence(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestIsAmbiguous(t *testing.T) {
	if IsAmbiguous("ACGT-") {
		t.Error("IsAmbiguous(ACGT-) = true")
	}
	if !IsAmbiguous("ACNT") {
		t.Error("IsAmbiguous(ACNT) = false")
	}
}

func TestValidateLeafName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "seq1", false},
		{"with dash and dot", "hCoV-19/A.1", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "foo\x01bar", true},
		{"paren", "a(b", true},
		{"comma", "a,b", true},
		{"colon", "a:b", true},
		{"semicolon", "a;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLeafName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLeafName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
