package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireThrows(t *testing.T, kind error, f func()) {
	t.Helper()

	defer func() {
		t.Helper()

		p := recover()
		require.NotNil(t, p, "expected a panic")

		e, ok := p.(*Error)
		require.True(t, ok, "panic value %T: %v", p, p)
		assert.ErrorIs(t, e, kind)
	}()

	f()
}

func TestSetArgBounds(t *testing.T) {
	_, blk := newTestBlock()
	add := blk.Append(OpIAdd32, 0, Imm32(1), Imm32(2))

	requireThrows(t, ErrInvalidArgument, func() { add.SetArg(2, Imm32(0)) })
	requireThrows(t, ErrInvalidArgument, func() { add.SetArg(-1, Imm32(0)) })
	requireThrows(t, ErrInvalidArgument, func() { add.Arg(5) })

	var err error
	func() {
		defer Recover(&err)
		add.SetArg(7, Imm32(0))
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bounds argument index 7 in opcode IAdd32")
}

func TestSetArgMovesUse(t *testing.T) {
	p, blk := newTestBlock()

	a := blk.Append(OpLaneId, 0)
	b := blk.Append(OpLaneId, 0)
	add := blk.Append(OpIAdd32, 0, ValueOf(a), ValueOf(a))

	assert.Equal(t, 2, a.UseCount())
	assert.Equal(t, 0, b.UseCount())

	add.SetArg(1, ValueOf(b))

	assert.Equal(t, 1, a.UseCount())
	assert.Equal(t, 1, b.UseCount())

	add.SetArg(0, Imm32(4))

	assert.False(t, a.HasUses())
	assert.True(t, add.Arg(0).IsImmediate())
	require.NoError(t, CheckUseDef(p))
}

func TestReplaceUsesWith(t *testing.T) {
	p, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	y := blk.Append(OpLaneId, 0)
	mul := blk.Append(OpIMul32, 0, ValueOf(x), ValueOf(x))
	add := blk.Append(OpIAdd32, 0, ValueOf(mul), ValueOf(x))

	x.ReplaceUsesWithAndRemove(ValueOf(y))

	assert.Equal(t, OpVoid, x.Opcode())
	assert.False(t, x.HasUses())
	assert.Equal(t, 3, y.UseCount())
	assert.Same(t, y, mul.Arg(0).Inst())
	assert.Same(t, y, mul.Arg(1).Inst())
	assert.Same(t, y, add.Arg(1).Inst())
	require.NoError(t, CheckUseDef(p))

	mul.ReplaceUsesWith(Imm32(9), true)

	assert.Equal(t, OpIdentity, mul.Opcode())
	assert.Equal(t, Imm32(9), mul.Arg(0))
	assert.Equal(t, Imm32(9), add.Arg(0))
	assert.Equal(t, 1, y.UseCount(), "identity dropped the multiply operands")
	assert.Equal(t, uint32(9), ValueOf(mul).U32())
	require.NoError(t, CheckUseDef(p))
}

func TestReplaceUsesWithPreserveChain(t *testing.T) {
	p, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	y := blk.Append(OpGetUserData, 0, ScalarRegValue(2))
	neg := blk.Append(OpINeg32, 0, ValueOf(x))

	x.ReplaceUsesWith(ValueOf(y), true)

	assert.Equal(t, OpIdentity, x.Opcode())
	assert.Same(t, y, ValueOf(x).InstRecursive())
	assert.Same(t, y, neg.Arg(0).Inst())
	assert.Equal(t, 2, y.UseCount(), "neg and the identity")
	require.NoError(t, CheckUseDef(p))
}

func TestInvalidate(t *testing.T) {
	p, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	add := blk.Append(OpIAdd32, 0, ValueOf(x), Imm32(1))

	requireThrows(t, ErrLogic, x.Invalidate)

	add.Invalidate()

	assert.Equal(t, OpVoid, add.Opcode())
	assert.Equal(t, 0, add.NumArgs())
	assert.False(t, x.HasUses())

	x.Invalidate()
	require.NoError(t, CheckUseDef(p))
}

func TestPhi(t *testing.T) {
	p := NewProgram(Info{})
	entry := p.NewBlock()
	left := p.NewBlock()
	right := p.NewBlock()
	merge := p.NewBlock()

	entry.AddBranch(left)
	entry.AddBranch(right)
	left.AddBranch(merge)
	right.AddBranch(merge)

	a := left.Append(OpLaneId, 0)
	b := right.Append(OpGetUserData, 0, ScalarRegValue(0))

	phi := NewEmitter(merge, nil).Phi()
	phi.AddPhiOperand(left, ValueOf(a))
	phi.AddPhiOperand(right, ValueOf(b))

	assert.Equal(t, 2, phi.NumArgs())
	assert.Same(t, right, phi.PhiBlock(1))
	assert.Equal(t, TypeU32, ValueOf(phi).Type())
	assert.True(t, ValueOf(phi).IsPhi())
	assert.Equal(t, 1, a.UseCount())
	require.NoError(t, CheckUseDef(p))

	requireThrows(t, ErrInvalidArgument, func() { phi.PhiBlock(2) })
	requireThrows(t, ErrLogic, func() { a.AddPhiOperand(left, Imm32(0)) })
	requireThrows(t, ErrLogic, func() { a.PhiBlock(0) })
	requireThrows(t, ErrLogic, func() { phi.AreAllArgsImmediates() })
	requireThrows(t, ErrLogic, func() { a.ReplaceOpcode(OpPhi) })
	requireThrows(t, ErrNotImplemented, func() { merge.InsertClone(nil, phi) })
	requireThrows(t, ErrInvalidArgument, func() { merge.Append(OpPhi, 0, Imm32(1)) })

	phi.ReplaceOpcode(OpIdentity)

	assert.Equal(t, 1, phi.NumArgs())
	assert.True(t, phi.Arg(0).IsEmpty())
	assert.False(t, a.HasUses())
	assert.False(t, b.HasUses())
	require.NoError(t, CheckUseDef(p))
}

func TestPhiTypeSkipsPhis(t *testing.T) {
	p := NewProgram(Info{})
	head := p.NewBlock()
	body := p.NewBlock()

	head.AddBranch(body)
	body.AddBranch(head)

	e := NewEmitter(head, nil)
	outer := e.Phi()
	inner := e.Phi()

	inner.AddPhiOperand(body, ValueOf(outer))
	outer.AddPhiOperand(body, ValueOf(inner))

	assert.Equal(t, TypeOpaque, ValueOf(outer).Type())

	f := body.Append(OpFPAdd32, 0, ImmF32(1), ImmF32(2))
	outer.AddPhiOperand(head, ValueOf(f))

	assert.Equal(t, TypeF32, ValueOf(outer).Type())
}

func TestInsertClone(t *testing.T) {
	p, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	add := blk.Append(OpIAdd32, 7, ValueOf(x), Imm32(3))
	clone := blk.InsertClone(add, add)

	assert.Same(t, clone, add.Prev())
	assert.Equal(t, OpIAdd32, clone.Opcode())
	assert.Equal(t, uint32(7), clone.Flags())
	assert.Equal(t, Imm32(3), clone.Arg(1))
	assert.Equal(t, 2, x.UseCount())
	assert.False(t, clone.HasUses())
	require.NoError(t, CheckUseDef(p))
}

func TestEraseAndIterate(t *testing.T) {
	p, blk := newTestBlock()

	for i := range 5 {
		blk.Append(OpGetUserData, 0, ScalarRegValue(ScalarReg(i)))
	}

	for inst := range blk.Instructions() {
		if inst.Arg(0).ScalarReg()%2 == 1 {
			blk.Erase(inst)
		}
	}

	var regs []ScalarReg
	for inst := range blk.Instructions() {
		regs = append(regs, inst.Arg(0).ScalarReg())
	}

	assert.Equal(t, []ScalarReg{0, 2, 4}, regs)
	assert.Equal(t, 3, blk.Len())
	assert.Equal(t, 3, p.Pool().Live())
	assert.Equal(t, 5, p.Pool().Len())
}

func TestSideEffects(t *testing.T) {
	_, blk := newTestBlock()

	for _, tc := range []struct {
		op   Opcode
		want bool
	}{
		{OpSetPatch, true},
		{OpSetAttribute, true},
		{OpWriteSharedU32, true},
		{OpStoreBufferU32x4, true},
		{OpBarrier, true},
		{OpEmitVertex, true},
		{OpIAdd32, false},
		{OpLoadSharedU32, false},
		{OpGetAttributeU32, false},
		{OpIdentity, false},
	} {
		inst := blk.Append(tc.op, 0)
		assert.Equal(t, tc.want, inst.MayHaveSideEffects(), "%v", tc.op)
	}
}

func TestAreAllArgsImmediates(t *testing.T) {
	_, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	id := blk.Append(OpIdentity, 0, Imm32(5))

	assert.True(t, blk.Append(OpIAdd32, 0, Imm32(1), Imm32(2)).AreAllArgsImmediates())
	assert.True(t, blk.Append(OpIAdd32, 0, ValueOf(id), Imm32(2)).AreAllArgsImmediates())
	assert.False(t, blk.Append(OpIAdd32, 0, ValueOf(x), Imm32(2)).AreAllArgsImmediates())
	assert.True(t, x.AreAllArgsImmediates())
}

func TestBufferInstInfo(t *testing.T) {
	_, blk := newTestBlock()

	info := NewBufferInstInfo(0x30, true, false).WithIndexEnable()
	st := blk.Append(OpStoreBufferU32, uint32(info))

	got := FlagsAs[BufferInstInfo](st)
	assert.Equal(t, uint32(0x30), got.InstOffset())
	assert.True(t, got.GloballyCoherent())
	assert.False(t, got.SystemCoherent())
	assert.True(t, got.IndexEnable())
	assert.False(t, got.OffsetEnable())

	SetFlagsAs(st, got.WithOffsetEnable())
	assert.True(t, FlagsAs[BufferInstInfo](st).OffsetEnable())

	requireThrows(t, ErrInvalidArgument, func() { NewBufferInstInfo(0x1000, false, false) })
}

func TestOperandLimit(t *testing.T) {
	_, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	phi := NewEmitter(blk, nil).Phi()

	for range maxUseOperand {
		phi.AddPhiOperand(blk, ValueOf(x))
	}

	assert.Equal(t, maxUseOperand, x.UseCount())

	requireThrows(t, ErrLogic, func() { phi.AddPhiOperand(blk, ValueOf(x)) })
}
