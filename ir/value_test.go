package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlock() (*Program, *Block) {
	p := NewProgram(Info{})
	return p, p.NewBlock()
}

func identityChain(blk *Block, v Value, n int) Value {
	for range n {
		v = ValueOf(blk.Append(OpIdentity, 0, v))
	}

	return v
}

func TestIdentityTransparency(t *testing.T) {
	_, blk := newTestBlock()

	prod := blk.Append(OpIAdd32, 0, Imm32(1), Imm32(2))

	for n := 0; n < 6; n++ {
		imm := identityChain(blk, Imm32(0xdeadbeef), n)

		assert.True(t, imm.IsImmediate(), "n=%d", n)
		assert.Equal(t, uint32(0xdeadbeef), imm.U32(), "n=%d", n)
		assert.Equal(t, TypeU32, imm.Type(), "n=%d", n)
		assert.Nil(t, imm.TryInstRecursive(), "n=%d", n)
		assert.Equal(t, Imm32(0xdeadbeef), imm.Resolve(), "n=%d", n)

		ref := identityChain(blk, ValueOf(prod), n)

		assert.False(t, ref.IsImmediate(), "n=%d", n)
		assert.Same(t, prod, ref.InstRecursive(), "n=%d", n)
		assert.Same(t, prod, ref.TryInstRecursive(), "n=%d", n)
		assert.Equal(t, TypeU32, ref.Type(), "n=%d", n)
		assert.Equal(t, n > 0, ref.IsIdentity(), "n=%d", n)
	}
}

func TestIdentityTransparencyAllKinds(t *testing.T) {
	_, blk := newTestBlock()

	for _, tc := range []struct {
		v     Value
		check func(Value) any
		want  any
	}{
		{ImmU1(true), func(v Value) any { return v.U1() }, true},
		{Imm8(7), func(v Value) any { return v.U8() }, uint8(7)},
		{Imm16(0xbeef), func(v Value) any { return v.U16() }, uint16(0xbeef)},
		{Imm64(1 << 40), func(v Value) any { return v.U64() }, uint64(1 << 40)},
		{ImmF64(-2.5), func(v Value) any { return v.F64() }, -2.5},
		{StringValue("dbg"), func(v Value) any { return v.StringLiteral() }, "dbg"},
		{AttributeValue(AttrParam0.Offset(3)), func(v Value) any { return v.Attribute() }, AttrParam0 + 3},
		{PatchValue(PatchGeneric(5)), func(v Value) any { return v.Patch() }, PatchComponent0 + 5},
		{ScalarRegValue(12), func(v Value) any { return v.ScalarReg() }, ScalarReg(12)},
		{VectorRegValue(3), func(v Value) any { return v.VectorReg() }, VectorReg(3)},
	} {
		for n := 0; n < 3; n++ {
			v := identityChain(blk, tc.v, n)
			assert.Equal(t, tc.want, tc.check(v), "%v n=%d", tc.v, n)
			assert.True(t, v.IsImmediate())
		}
	}
}

func TestF32RoundTrip(t *testing.T) {
	for _, bits := range []uint32{
		0x00000000,
		0x80000000, // -0
		0x3fc00000, // 1.5
		0x00000001, // smallest denormal
		0x7f7fffff, // max finite
		0x7f800000, // +inf
		0x7fc00001, // quiet NaN with payload
		0xffbfffff, // signalling NaN
	} {
		v := ImmF32Bits(bits)
		assert.Equal(t, bits, v.F32Bits(), "%#x", bits)
		assert.Equal(t, bits, math.Float32bits(v.F32()), "%#x", bits)

	}

	assert.Equal(t, float32(0.1), ImmF32(0.1).F32())
	assert.Equal(t, uint32(0x80000000), ImmF32(float32(math.Copysign(0, -1))).F32Bits())
}

func TestValueAccessorTypeMismatch(t *testing.T) {
	defer func() {
		p := recover()
		require.NotNil(t, p)

		e, ok := p.(*Error)
		require.True(t, ok, "%T", p)
		assert.ErrorIs(t, e, ErrLogic)
	}()

	_ = Imm32(1).F32()
}

func TestValueString(t *testing.T) {
	_, blk := newTestBlock()
	inst := blk.Append(OpLaneId, 0)

	for _, tc := range []struct {
		v    Value
		want string
	}{
		{Value{}, "void"},
		{ImmU1(false), "false"},
		{Imm8(3), "#3u8"},
		{Imm16(3), "#3u16"},
		{Imm32(3), "#3"},
		{Imm64(3), "#3u64"},
		{ImmF32(1.5), "#1.5f"},
		{ImmF32Bits(0x7fc00000), "f32(0x7fc00000)"},
		{ImmF64(0.25), "#0.25d"},
		{ImmF16Bits(0x3c00), "f16(0x3c00)"},
		{StringValue("a\"b"), `"a\"b"`},
		{AttributeValue(AttrPrimitiveId), "PrimitiveId"},
		{PatchValue(PatchFactor(1)), "TessellationLodTop"},
		{ScalarRegValue(4), "s4"},
		{VectorRegValue(9), "v9"},
		{ValueOf(inst), "%0"},
	} {
		assert.Equal(t, tc.want, tc.v.String())
	}
}

func TestAttributeNames(t *testing.T) {
	for a := Attribute(0); a < NumAttributes; a++ {
		s := a.String()
		back, ok := ParseAttribute(s)
		if !ok {
			continue // unnamed gaps
		}

		assert.Equal(t, a, back, s)
	}

	a, ok := ParseAttribute("Param31")
	require.True(t, ok)
	assert.True(t, a.IsParam())

	_, ok = ParseAttribute("Param32")
	assert.False(t, ok)
}

func TestAttributeFlags(t *testing.T) {
	var f AttributeFlags

	assert.False(t, f.GetAny(AttrParam0))

	f.Set(AttrParam0.Offset(2), 2)
	f.Set(AttrParam0.Offset(2), 0)
	f.Set(AttrTcsInputCpStride, 3)

	assert.True(t, f.Get(AttrParam0.Offset(2), 2))
	assert.False(t, f.Get(AttrParam0.Offset(2), 1))
	assert.Equal(t, uint32(3), f.NumComponents(AttrParam0.Offset(2)))
	assert.Equal(t, uint32(4), f.NumComponents(AttrTcsInputCpStride))
	assert.Equal(t, uint32(0), f.NumComponents(AttrParam0))
}

func TestPatchNames(t *testing.T) {
	for _, p := range []Patch{PatchFactor(0), PatchFactor(5), PatchGeneric(0), PatchGeneric(127)} {
		back, ok := ParsePatch(p.String())
		require.True(t, ok, p.String())
		assert.Equal(t, p, back)
	}

	assert.True(t, PatchFactor(2).IsFactor())
	assert.True(t, PatchGeneric(2).IsGeneric())
	assert.Equal(t, uint32(2), PatchGeneric(2).GenericIndex())
	assert.Panics(t, func() { PatchFactor(6) })
}
