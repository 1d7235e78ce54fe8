package ir

import "strconv"

// ScalarReg is a hardware scalar register index.
type ScalarReg uint32

// VectorReg is a hardware vector register index.
type VectorReg uint32

const (
	NumScalarRegs = 104
	NumVectorRegs = 256
)

func (r ScalarReg) String() string { return "s" + strconv.Itoa(int(r)) }
func (r VectorReg) String() string { return "v" + strconv.Itoa(int(r)) }
