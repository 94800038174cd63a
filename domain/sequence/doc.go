// Package sequence validates and normalizes nucleic-acid sequences before
// anything is hashed or fingerprinted.
//
// Sequences are expected in the standard IUB/IUPAC nucleic acid codes:
//
//	A  adenosine          C  cytidine             G  guanine
//	T  thymidine          N  A/G/C/T (any)        U  uridine
//	K  G/T (keto)         S  G/C (strong)         Y  T/C (pyrimidine)
//	M  A/C (amino)        W  A/T (weak)           R  G/A (purine)
//	B  G/T/C              D  G/A/T                H  A/C/T
//	V  G/C/A              -  gap of indeterminate length
//
// Lower-case letters are accepted and mapped to upper-case. A Sequence is
// expected to come from Validate; a plain conversion from string skips every
// check.
package sequence
