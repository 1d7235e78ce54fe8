package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

func newHullProgram(hash uint64) (*ir.Program, *ir.Block, *ir.Emitter) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageHull, PgmHash: hash})
	blk := p.NewBlock()

	return p, blk, ir.NewEmitter(blk, nil)
}

func sharedStoreTo(blk *ir.Block, addr ir.Value) *ir.Inst {
	return blk.Append(ir.OpWriteSharedU32, 0, addr, ir.Imm32(0))
}

// outputCpAddress builds #patches * inPatch + InvocationId * cpStride + offset.
func outputCpAddress(e *ir.Emitter, inPatch, cpStride, offset uint32) (addr, invID ir.Value) {
	patches := e.GetAttributeU32(ir.AttrTcsNumPatches)
	invID = e.GetAttributeU32(ir.AttrInvocationId)

	base := e.IAdd32(e.IMul32(patches, ir.Imm32(inPatch)), e.IMul32(invID, ir.Imm32(cpStride)))

	return e.IAdd32(base, ir.Imm32(offset)), invID
}

func TestRingAddressOutputCP(t *testing.T) {
	_, blk, e := newHullProgram(1)

	addr, invID := outputCpAddress(e, 0x400, 16, 20)
	st := sharedStoreTo(blk, addr)

	var r RingAddress
	require.NoError(t, r.Walk(st))

	assert.Equal(t, RegionOutputCP, r.RegionKind())
	assert.Equal(t, uint32(20), r.AttributeByteOffset())
	assert.Same(t, invID.Inst(), r.ControlPointIndex().Inst())
	assert.Equal(t, ir.OpIMul32, r.Index().Inst().Opcode())

	if assert.Len(t, r.Products(), 3) {
		assert.Len(t, r.Products()[0], 2)
		assert.Equal(t, ir.AttrTcsNumPatches, r.Products()[0][0].Attribute())
		assert.Equal(t, uint32(0x400), r.Products()[0][1].U32())
		assert.Equal(t, uint32(20), r.Products()[2][0].U32())
	}
}

func TestRingAddressNumPatchesFromConstBuffer(t *testing.T) {
	_, blk, e := newHullProgram(1)

	handle := e.Inst(ir.OpGetUserData, ir.ScalarRegValue(4))
	patches := e.ReadConstBuffer(handle, e.IAdd32(ir.Imm32(0), ir.Imm32(2)))

	// two #patches terms reach the per-patch outputs
	in := e.IMul32(patches, ir.Imm32(0x300))
	out := e.IMul32(patches, ir.Imm32(0x200))
	prim := e.IMul32(e.GetAttributeU32(ir.AttrPrimitiveId), ir.Imm32(32))

	addr := e.IAdd32(e.IAdd32(e.IAdd32(in, out), prim), ir.Imm32(12))

	var r RingAddress
	require.NoError(t, r.Walk(sharedStoreTo(blk, addr)))

	assert.Equal(t, RegionPatchOutput, r.RegionKind())
	assert.Equal(t, uint32(12), r.AttributeByteOffset())
	assert.True(t, r.Index().IsEmpty())
	assert.True(t, r.ControlPointIndex().IsEmpty())
}

func TestRingAddressMad(t *testing.T) {
	_, blk, e := newHullProgram(1)

	inv := e.GetAttributeU32(ir.AttrInvocationId)
	sext := func(v ir.Value) ir.Value { return e.BitFieldSExtract(v, ir.Imm32(0), ir.Imm32(24)) }

	mul := e.IMul32(sext(inv), sext(ir.Imm32(16)))
	addr := e.IAdd32(mul, ir.Imm32(4))

	var r RingAddress
	require.NoError(t, r.Walk(sharedStoreTo(blk, addr)))

	assert.Equal(t, RegionInputCP, r.RegionKind())
	assert.Equal(t, uint32(4), r.AttributeByteOffset())
	assert.Same(t, mul.Inst(), r.Index().Inst())
	assert.Same(t, inv.Inst(), r.ControlPointIndex().Inst())
}

func TestRingAddressShift(t *testing.T) {
	_, blk, e := newHullProgram(1)

	inv := e.GetAttributeU32(ir.AttrInvocationId)
	addr := e.IAdd32(e.ShiftLeftLogical32(inv, ir.Imm32(4)), ir.Imm32(12))

	var r RingAddress
	require.NoError(t, r.Walk(sharedStoreTo(blk, addr)))

	assert.Equal(t, uint32(12), r.AttributeByteOffset())
	assert.Same(t, inv.Inst(), r.ControlPointIndex().Inst())

	if assert.Len(t, r.Products(), 2) {
		assert.Equal(t, uint32(16), r.Products()[0][0].U32())
	}
}

func TestRingAddressConstantOffsetsAddUp(t *testing.T) {
	_, blk, e := newHullProgram(1)

	prim := e.IMul32(e.GetAttributeU32(ir.AttrPrimitiveId), ir.Imm32(64))
	addr := e.IAdd32(e.IAdd32(prim, e.IMul32(ir.Imm32(3), ir.Imm32(4))), ir.Imm32(8))

	var r RingAddress
	require.NoError(t, r.Walk(sharedStoreTo(blk, addr)))

	assert.Equal(t, RegionInputCP, r.RegionKind())
	assert.Equal(t, uint32(20), r.AttributeByteOffset())
	assert.True(t, r.Index().IsEmpty())
}

func TestRingAddressAddWithinMulIsOpaque(t *testing.T) {
	_, blk, e := newHullProgram(1)

	inv := e.GetAttributeU32(ir.AttrInvocationId)
	sum := e.IAdd32(inv, ir.Imm32(1))
	addr := e.IMul32(sum, ir.Imm32(16))

	var r RingAddress
	require.NoError(t, r.Walk(sharedStoreTo(blk, addr)))

	assert.Equal(t, uint32(0), r.AttributeByteOffset())
	assert.Same(t, sum.Inst(), r.ControlPointIndex().Inst())
}

func TestRingAddressTwoDynamicTerms(t *testing.T) {
	_, blk, e := newHullProgram(1)

	inv := e.GetAttributeU32(ir.AttrInvocationId)
	lane := e.Inst(ir.OpLaneId)

	addr := e.IAdd32(e.IMul32(inv, ir.Imm32(16)), e.IMul32(lane, ir.Imm32(4)))

	var r RingAddress
	err := r.Walk(sharedStoreTo(blk, addr))
	assert.ErrorIs(t, err, ErrAddressShape)
}

func TestRingAddressPassthrough(t *testing.T) {
	_, blk, e := newHullProgram(1)

	patches := e.GetAttributeU32(ir.AttrTcsNumPatches)
	one := e.IAdd32(e.IMul32(patches, ir.Imm32(0x400)), ir.Imm32(8))
	two := e.IAdd32(e.IAdd32(e.IMul32(patches, ir.Imm32(0x400)), e.IMul32(patches, ir.Imm32(0x100))), ir.Imm32(8))

	r := RingAddress{Passthrough: true}

	require.NoError(t, r.Walk(sharedStoreTo(blk, ir.Imm32(4))))
	assert.Equal(t, RegionInputCP, r.RegionKind())
	assert.Equal(t, uint32(4), r.AttributeByteOffset())

	require.NoError(t, r.Walk(sharedStoreTo(blk, one)))
	assert.Equal(t, RegionPatchOutput, r.RegionKind())
	assert.Equal(t, uint32(8), r.AttributeByteOffset())

	err := r.Walk(sharedStoreTo(blk, two))
	assert.ErrorIs(t, err, ErrAddressShape)

	r.Passthrough = false
	require.NoError(t, r.Walk(sharedStoreTo(blk, two)))
	assert.Equal(t, RegionPatchOutput, r.RegionKind())
}

func TestRingAddressTooManyRegions(t *testing.T) {
	_, blk, e := newHullProgram(1)

	patches := e.GetAttributeU32(ir.AttrTcsNumPatches)

	var addr ir.Value = ir.Imm32(0)
	for range 3 {
		addr = e.IAdd32(addr, e.IMul32(patches, ir.Imm32(0x100)))
	}

	var r RingAddress
	assert.ErrorIs(t, r.Walk(sharedStoreTo(blk, addr)), ErrAddressShape)
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "input_cp", RegionInputCP.String())
	assert.Equal(t, "output_cp", RegionOutputCP.String())
	assert.Equal(t, "patch_output", RegionPatchOutput.String())
}
