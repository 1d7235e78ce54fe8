package ir

import (
	"math/bits"
	"strings"
)

// Type is a bit set of value types. Opcode argument tables use unions of
// several bits to accept more than one type.
type Type uint32

const (
	TypeVoid   Type = 0
	TypeOpaque Type = 1 << (iota - 1)
	TypeScalarReg
	TypeVectorReg
	TypeAttribute
	TypePatch
	TypeU1
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeF16
	TypeF32
	TypeF64
	TypeU32x2
	TypeU32x3
	TypeU32x4
	TypeF16x2
	TypeF16x3
	TypeF16x4
	TypeF32x2
	TypeF32x3
	TypeF32x4
	TypeF64x2
	TypeF64x3
	TypeF64x4
	TypeStringLiteral
)

var typeNames = [...]string{
	"Opaque", "ScalarReg", "VectorReg", "Attribute", "Patch",
	"U1", "U8", "U16", "U32", "U64", "F16", "F32", "F64",
	"U32x2", "U32x3", "U32x4",
	"F16x2", "F16x3", "F16x4",
	"F32x2", "F32x3", "F32x4",
	"F64x2", "F64x3", "F64x4",
	"StringLiteral",
}

// Has reports whether t and other share any type bit.
func (t Type) Has(other Type) bool {
	return t&other != 0
}

// IsF16 reports whether t contains any half precision type.
func (t Type) IsF16() bool {
	return t.Has(TypeF16 | TypeF16x2 | TypeF16x3 | TypeF16x4)
}

// IsF64 reports whether t contains any double precision type.
func (t Type) IsF64() bool {
	return t.Has(TypeF64 | TypeF64x2 | TypeF64x3 | TypeF64x4)
}

func (t Type) String() string {
	if t == TypeVoid {
		return "Void"
	}

	var b strings.Builder

	for rest := uint32(t); rest != 0; rest &= rest - 1 {
		i := bits.TrailingZeros32(rest)

		if b.Len() != 0 {
			b.WriteByte('|')
		}

		if i < len(typeNames) {
			b.WriteString(typeNames[i])
		} else {
			b.WriteString("?")
		}
	}

	return b.String()
}
