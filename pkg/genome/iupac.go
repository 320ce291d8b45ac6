package genome

// StateOrder lists the unambiguous states in the bit order used by [States].
// It is also the tie-break order when a site admits several bases.
const StateOrder = "ACGT-"

var iupac = [256]uint8{
	'A': 0b00001, 'C': 0b00010, 'G': 0b00100, 'T': 0b01000, '-': 0b10000,
	'R': 0b00101, 'Y': 0b01010, 'S': 0b00110, 'W': 0b01001,
	'K': 0b01100, 'M': 0b00011, 'B': 0b01110, 'D': 0b01101,
	'H': 0b01011, 'V': 0b00111, 'N': 0b01111, '?': 0b11111,
}

// States returns the set of unambiguous states admitted by the nucleotide
// code b, as bits over [StateOrder]. Unknown characters admit nothing.
func States(b byte) uint8 { return iupac[b] }

// Compatible reports whether codes a and b admit a common state. An
// ambiguous leaf base is compatible with every base its code covers.
func Compatible(a, b byte) bool { return iupac[a]&iupac[b] != 0 }
