package sequence

// Allowed IUPAC nucleic acid codes and the standard bases each one stands for.
var iupac = map[byte]string{
	'A': "A",
	'C': "C",
	'G': "G",
	'T': "T",
	'U': "T", // uridine pairs like thymidine
	'R': "AG",
	'Y': "CT",
	'S': "CG",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
	'-': "",
}

// Alphabet lists every accepted code in display order.
const Alphabet = "ACGTUNKSYMWRBDHV-"

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Accepts reports whether c (in either case) is an accepted code.
func Accepts(c byte) bool {
	_, ok := iupac[upper(c)]
	return ok
}

// Bases returns the standard bases the code stands for. The gap and unknown
// codes return "".
func Bases(code byte) string {
	return iupac[upper(code)]
}

// IsAmbiguous reports whether the code stands for more than one base.
func IsAmbiguous(code byte) bool {
	return len(Bases(code)) > 1
}
