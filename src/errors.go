package qrtone

import "errors"

// Sentinel errors returned by the Galois field and Reed-Solomon layers
// (and, wrapped, by ParseECCLevel). The public Modem API never returns these directly:
// PushSamples absorbs them, logs a warning, and re-arms (see modem.go).
var (
	ErrIllegalArgument = errors.New("qrtone: illegal argument")
	ErrDivideByZero    = errors.New("qrtone: divide by zero")
	ErrReedSolomon     = errors.New("qrtone: reed-solomon decoding failed")
	ErrIllegalState    = errors.New("qrtone: illegal state")
)
