package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/ir"
)

func newEmitter() (*ir.Program, *ir.Emitter) {
	p := ir.NewProgram(ir.Info{})
	return p, ir.NewEmitter(p.NewBlock(), nil)
}

func TestPrimitives(t *testing.T) {
	_, e := newEmitter()

	lane := e.Inst(ir.OpLaneId)
	id := e.Identity(ir.Imm32(24))

	var v ir.Value

	assert.True(t, Value(&v).Match(lane))
	assert.Equal(t, lane, v)

	assert.True(t, Ignore().Match(ir.Value{}))

	v = ir.Value{}
	assert.False(t, Imm(&v).Match(lane))
	assert.True(t, v.IsEmpty())

	assert.True(t, Imm(&v).Match(id))
	assert.Equal(t, ir.Imm32(24), v, "identity resolved")

	assert.True(t, U32(24).Match(id))
	assert.False(t, U32(25).Match(id))
	assert.False(t, U32(24).Match(ir.Imm64(24)))
	assert.False(t, U32(0).Match(lane))

	assert.True(t, Attribute(ir.AttrPrimitiveId).Match(ir.AttributeValue(ir.AttrPrimitiveId)))
	assert.False(t, Attribute(ir.AttrPrimitiveId).Match(ir.AttributeValue(ir.AttrInvocationId)))
	assert.False(t, Attribute(ir.AttrPrimitiveId).Match(ir.Imm32(uint32(ir.AttrPrimitiveId))))
}

func TestInstMatch(t *testing.T) {
	_, e := newEmitter()

	x := e.GetAttributeU32(ir.AttrInvocationId)
	y := e.Inst(ir.OpLaneId)
	sum := e.IAdd32(e.IMul32(x, ir.Imm32(16)), y)

	var a, b, c ir.Value

	m := Inst(ir.OpIAdd32, Inst(ir.OpIMul32, Value(&a), Imm(&b)), Value(&c))

	require.True(t, m.Match(sum))
	assert.Equal(t, x, a)
	assert.Equal(t, uint32(16), b.U32())
	assert.Equal(t, y, c)

	assert.True(t, m.Match(e.Identity(e.Identity(sum))), "identity chains are transparent")

	assert.False(t, Inst(ir.OpIMul32, Ignore(), Ignore()).Match(sum))
	assert.False(t, Inst(ir.OpIAdd32, Ignore(), Ignore()).Match(ir.Imm32(1)))
	assert.False(t, Inst(ir.OpIAdd32, Inst(ir.OpIMul32, Ignore(), U32(15)), Ignore()).Match(sum))

	assert.True(t, AttributeRead(ir.AttrInvocationId).Match(x))
	assert.False(t, AttributeRead(ir.AttrPrimitiveId).Match(x))
}

func TestInstShortCircuit(t *testing.T) {
	_, e := newEmitter()

	sum := e.IAdd32(ir.Imm32(1), ir.Imm32(2))

	calls := 0
	count := Func(func(ir.Value) bool {
		calls++
		return true
	})

	assert.False(t, Inst(ir.OpIAdd32, U32(7), count).Match(sum))
	assert.Equal(t, 0, calls)

	assert.True(t, Inst(ir.OpIAdd32, U32(1), count).Match(sum))
	assert.Equal(t, 1, calls)
}

func TestInstArity(t *testing.T) {
	defer func() {
		p := recover()
		require.NotNil(t, p)

		err, ok := p.(*ir.Error)
		require.True(t, ok, "%T", p)
		assert.ErrorIs(t, err, ir.ErrInvalidArgument)
	}()

	Inst(ir.OpIAdd32, Ignore())
}

func TestIMad(t *testing.T) {
	_, e := newEmitter()

	pid := e.GetAttributeU32(ir.AttrPrimitiveId)
	sext := func(v ir.Value) ir.Value { return e.BitFieldSExtract(v, ir.Imm32(0), ir.Imm32(24)) }

	mad := e.IAdd32(e.IMul32(sext(pid), sext(ir.Imm32(64))), ir.Imm32(12))
	mul := e.IMul32(sext(pid), sext(ir.Imm32(64)))

	var a, b, c ir.Value

	require.True(t, IMad(Value(&a), Value(&b), Value(&c)).Match(mad))
	assert.Equal(t, pid, a)
	assert.Equal(t, uint32(64), b.U32())
	assert.Equal(t, uint32(12), c.U32())

	assert.False(t, IMad(Ignore(), Ignore(), Ignore()).Match(mul))
	assert.True(t, IMul24(Value(&a), Imm(&b)).Match(mul))

	plain := e.IMul32(pid, ir.Imm32(64))
	assert.False(t, IMul24(Ignore(), Ignore()).Match(plain), "operands must be 24-bit extracts")
}

func TestMatchDoesNotMutate(t *testing.T) {
	p, e := newEmitter()

	x := e.Inst(ir.OpLaneId)
	sum := e.IAdd32(x, x)
	before := ir.Dump(p)

	var a ir.Value
	Inst(ir.OpIAdd32, Value(&a), Value(&a)).Match(sum)
	Inst(ir.OpIMul32, Value(&a), Value(&a)).Match(sum)

	assert.Equal(t, before, ir.Dump(p))
	require.NoError(t, ir.CheckUseDef(p))
}
