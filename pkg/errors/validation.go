package errors

import (
	"strings"
	"unicode"
)

// nucleotideAlphabet holds every character accepted in a sequence: the four bases,
// the gap symbol and the IUPAC ambiguity codes.
const nucleotideAlphabet = "ACGT-RYSWKMBDHVN?"

// ValidateSequence checks that a nucleotide sequence is non-empty and only
// contains bases, gaps or IUPAC ambiguity codes. Lowercase input is rejected;
// callers normalize case before building genomes.
func ValidateSequence(seq string) error {
	if seq == "" {
		return New(ErrCodeInvalidSequence, "sequence cannot be empty")
	}
	for i := 0; i < len(seq); i++ {
		if strings.IndexByte(nucleotideAlphabet, seq[i]) < 0 {
			return New(ErrCodeInvalidSequence, "invalid character %q at site %d", seq[i], i+1)
		}
	}
	return nil
}

// IsAmbiguous reports whether seq contains a character other than a base or gap.
func IsAmbiguous(seq string) bool {
	for i := 0; i < len(seq); i++ {
		if strings.IndexByte("ACGT-", seq[i]) < 0 {
			return true
		}
	}
	return false
}

// ValidateLeafName validates a leaf identifier read from a tree file.
//
// The rules keep names safe to round-trip through Newick output:
//   - No empty names
//   - No control characters
//   - None of the Newick structural characters ( ) , : ; [ ]
//   - Maximum length of 256 characters
func ValidateLeafName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "leaf name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "leaf name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "leaf name contains invalid control characters")
		}
	}

	if i := strings.IndexAny(name, "(),:;[]"); i >= 0 {
		return New(ErrCodeInvalidName, "leaf name contains reserved character %q", name[i])
	}

	return nil
}
