package ir

import (
	"math"
	"strconv"

	"tlog.app/go/tlog/tlwire"
)

// Value is either an immediate or a reference to the instruction producing
// it. The zero Value is empty and has type Void.
//
// A Value never owns the instruction it points to; instructions belong to
// the Pool of their Program.
type Value struct {
	typ  Type
	inst *Inst
	imm  uint64
	str  string
}

// ValueOf returns an opaque value referring to the result of inst.
func ValueOf(inst *Inst) Value {
	if inst == nil {
		throw(ErrInvalidArgument, "nil instruction")
	}

	return Value{typ: TypeOpaque, inst: inst}
}

func ImmU1(v bool) Value {
	if v {
		return Value{typ: TypeU1, imm: 1}
	}

	return Value{typ: TypeU1}
}

func Imm8(v uint8) Value         { return Value{typ: TypeU8, imm: uint64(v)} }
func Imm16(v uint16) Value       { return Value{typ: TypeU16, imm: uint64(v)} }
func Imm32(v uint32) Value       { return Value{typ: TypeU32, imm: uint64(v)} }
func Imm64(v uint64) Value       { return Value{typ: TypeU64, imm: v} }
func ImmF16Bits(v uint16) Value  { return Value{typ: TypeF16, imm: uint64(v)} }
func ImmF32(v float32) Value     { return ImmF32Bits(math.Float32bits(v)) }
func ImmF32Bits(v uint32) Value  { return Value{typ: TypeF32, imm: uint64(v)} }
func ImmF64(v float64) Value     { return Value{typ: TypeF64, imm: math.Float64bits(v)} }
func StringValue(s string) Value { return Value{typ: TypeStringLiteral, str: s} }

func AttributeValue(a Attribute) Value { return Value{typ: TypeAttribute, imm: uint64(a)} }
func PatchValue(p Patch) Value         { return Value{typ: TypePatch, imm: uint64(p)} }
func ScalarRegValue(r ScalarReg) Value { return Value{typ: TypeScalarReg, imm: uint64(r)} }
func VectorRegValue(r VectorReg) Value { return Value{typ: TypeVectorReg, imm: uint64(r)} }

func (v Value) IsEmpty() bool { return v.typ == TypeVoid }

// IsInst reports whether v refers to an instruction, without resolving
// identities.
func (v Value) IsInst() bool { return v.typ == TypeOpaque }

func (v Value) IsIdentity() bool {
	return v.typ == TypeOpaque && v.inst.op == OpIdentity
}

func (v Value) IsPhi() bool {
	return v.typ == TypeOpaque && v.inst.op == OpPhi
}

// IsImmediate reports whether v resolves to something other than an
// instruction result, looking through Identity chains.
func (v Value) IsImmediate() bool {
	for v.IsIdentity() {
		v = v.inst.Arg(0)
	}

	return v.typ != TypeOpaque
}

// Type returns the type of v. For instruction results it is the result
// type of the producing opcode, looking through Identity chains.
func (v Value) Type() Type {
	if v.typ != TypeOpaque {
		return v.typ
	}

	if v.inst.op == OpIdentity {
		return v.inst.Arg(0).Type()
	}

	if v.inst.op == OpPhi {
		// first operand that is not itself a phi decides
		for i := range v.inst.NumArgs() {
			a := v.inst.Arg(i).Resolve()
			if a.IsPhi() || a.IsEmpty() {
				continue
			}

			return a.Type()
		}

		return TypeOpaque
	}

	return TypeOf(v.inst.op)
}

// Inst returns the producing instruction without resolving identities.
func (v Value) Inst() *Inst {
	assertf(v.typ == TypeOpaque, "value of type %v has no instruction", v.typ)
	return v.inst
}

// InstRecursive returns the producing instruction behind any Identity chain.
func (v Value) InstRecursive() *Inst {
	assertf(v.typ == TypeOpaque, "value of type %v has no instruction", v.typ)

	if v.IsIdentity() {
		return v.inst.Arg(0).InstRecursive()
	}

	return v.inst
}

// TryInstRecursive is like InstRecursive but returns nil for immediates.
func (v Value) TryInstRecursive() *Inst {
	if v.IsIdentity() {
		return v.inst.Arg(0).TryInstRecursive()
	}

	if v.typ != TypeOpaque {
		return nil
	}

	return v.inst
}

// Resolve follows Identity chains to the underlying value.
func (v Value) Resolve() Value {
	for v.IsIdentity() {
		v = v.inst.Arg(0)
	}

	return v
}

func (v Value) imm64(t Type) uint64 {
	v = v.Resolve()
	assertf(v.typ == t, "value of type %v read as %v", v.typ, t)

	return v.imm
}

func (v Value) U1() bool          { return v.imm64(TypeU1) != 0 }
func (v Value) U8() uint8         { return uint8(v.imm64(TypeU8)) }
func (v Value) U16() uint16       { return uint16(v.imm64(TypeU16)) }
func (v Value) U32() uint32       { return uint32(v.imm64(TypeU32)) }
func (v Value) U64() uint64       { return v.imm64(TypeU64) }
func (v Value) F16Bits() uint16   { return uint16(v.imm64(TypeF16)) }
func (v Value) F32() float32      { return math.Float32frombits(v.F32Bits()) }
func (v Value) F32Bits() uint32   { return uint32(v.imm64(TypeF32)) }
func (v Value) F64() float64      { return math.Float64frombits(v.imm64(TypeF64)) }
func (v Value) F64Bits() uint64   { return v.imm64(TypeF64) }
func (v Value) Attribute() Attribute { return Attribute(v.imm64(TypeAttribute)) }
func (v Value) Patch() Patch         { return Patch(v.imm64(TypePatch)) }
func (v Value) ScalarReg() ScalarReg { return ScalarReg(v.imm64(TypeScalarReg)) }
func (v Value) VectorReg() VectorReg { return VectorReg(v.imm64(TypeVectorReg)) }

func (v Value) StringLiteral() string {
	v = v.Resolve()
	assertf(v.typ == TypeStringLiteral, "value of type %v read as string", v.typ)

	return v.str
}

// Equal reports whether v and w are the same immediate or refer to the
// same instruction. Identities are not resolved.
func (v Value) Equal(w Value) bool {
	return v == w
}

// String formats v the way Dump prints operands.
func (v Value) String() string {
	switch v.typ {
	case TypeVoid:
		return "void"
	case TypeOpaque:
		return "%" + strconv.FormatUint(uint64(v.inst.ref), 10)
	case TypeU1:
		return strconv.FormatBool(v.imm != 0)
	case TypeU8:
		return "#" + strconv.FormatUint(v.imm, 10) + "u8"
	case TypeU16:
		return "#" + strconv.FormatUint(v.imm, 10) + "u16"
	case TypeU32:
		return "#" + strconv.FormatUint(v.imm, 10)
	case TypeU64:
		return "#" + strconv.FormatUint(v.imm, 10) + "u64"
	case TypeF16:
		return "f16(0x" + strconv.FormatUint(v.imm, 16) + ")"
	case TypeF32:
		f := math.Float32frombits(uint32(v.imm))
		if math.IsInf(float64(f), 0) || f != f {
			return "f32(0x" + strconv.FormatUint(v.imm, 16) + ")"
		}

		return "#" + strconv.FormatFloat(float64(f), 'g', -1, 32) + "f"
	case TypeF64:
		f := math.Float64frombits(v.imm)
		if math.IsInf(f, 0) || f != f {
			return "f64(0x" + strconv.FormatUint(v.imm, 16) + ")"
		}

		return "#" + strconv.FormatFloat(f, 'g', -1, 64) + "d"
	case TypeStringLiteral:
		return strconv.Quote(v.str)
	case TypeAttribute:
		return Attribute(v.imm).String()
	case TypePatch:
		return Patch(v.imm).String()
	case TypeScalarReg:
		return ScalarReg(v.imm).String()
	case TypeVectorReg:
		return VectorReg(v.imm).String()
	default:
		return "<" + v.typ.String() + ">"
	}
}

func (v Value) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, v.String())
}
