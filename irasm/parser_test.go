package irasm

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

const hullText = `.stage hs
.hash 0x0000000000000abc
.buffer 2 storage written
.buffer 4 f32 dwords=16

block0: -> block1
	%0 = GetAttributeU32 InvocationId, #0 ; uses=1
	%1 = IMul32 %0, #16 ; uses=1
	%2 = BitCastU32F32 #0.5f ; uses=1
	WriteSharedU32 %1, %2

block1:
	SetPatch TessellationLodLeft, #1f
`

func TestParseRoundTrip(t *testing.T) {
	p, err := Parse(hullText)
	require.NoError(t, err)

	assert.Equal(t, shader.StageHull, p.Info.Stage)
	assert.Equal(t, uint64(0xabc), p.Info.PgmHash)
	assert.Equal(t, []ir.BufferResource{
		{SharpIdx: 2, IsStorage: true, IsWritten: true},
		{SharpIdx: 4, UsedTypes: ir.TypeF32, NumDwords: 16},
	}, p.Info.Buffers, spew.Sdump(p.Info))

	require.Len(t, p.Blocks, 2)
	assert.Equal(t, []*ir.Block{p.Blocks[1]}, p.Blocks[0].Successors())
	assert.Equal(t, []*ir.Block{p.Blocks[0]}, p.Blocks[1].Predecessors())

	assert.Equal(t, hullText, ir.Dump(p))
	assert.NoError(t, ir.CheckUseDef(p))
}

func TestParseLoopPhi(t *testing.T) {
	const text = `.stage cs
.hash 0x0000000000000000
.sampler 3

block0: -> block1
	%0 = LaneId ; uses=1

block1: -> block1, block2
	%1 = Phi [block0, %0], [block1, %2] ; uses=1
	%2 = IAdd32 %1, #1 ; uses=2

block2:
	%3 = SelectU32 true, %2, #0 ; uses=0
`

	p, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, []ir.SamplerResource{{SharpIdx: 3}}, p.Info.Samplers)
	assert.Equal(t, text, ir.Dump(p))

	phi := p.Blocks[1].Front()
	require.Equal(t, ir.OpPhi, phi.Opcode())
	assert.Equal(t, ir.TypeU32, ir.ValueOf(phi).Type())
	assert.Equal(t, p.Blocks[1], phi.PhiBlock(1))
	assert.Equal(t, phi.Next(), phi.Arg(1).Inst())

	assert.NoError(t, ir.CheckUseDef(p))
}

func TestParseFlags(t *testing.T) {
	p, err := Parse("block0:\n\tStoreBufferU32<0x1008> #0, #4, #9\n")
	require.NoError(t, err)

	st := p.Blocks[0].Front()
	assert.Equal(t, uint32(8), ir.FlagsAs[ir.BufferInstInfo](st).InstOffset())
	assert.Equal(t, uint32(0x1008), st.Flags())
}

func TestParseOperands(t *testing.T) {
	for _, tc := range []struct {
		text string
		want ir.Value
	}{
		{"#16", ir.Imm32(16)},
		{"#7u8", ir.Imm8(7)},
		{"#300u16", ir.Imm16(300)},
		{"#1099511627776u64", ir.Imm64(1 << 40)},
		{"#0.5f", ir.ImmF32(0.5)},
		{"#-1.25e+10f", ir.ImmF32(-1.25e10)},
		{"#2.5d", ir.ImmF64(2.5)},
		{"f32(0x7fc00001)", ir.ImmF32Bits(0x7fc00001)},
		{"f16(0x3c00)", ir.ImmF16Bits(0x3c00)},
		{"f64(0x7ff0000000000000)", ir.ImmF64(math.Inf(1))},
		{"true", ir.ImmU1(true)},
		{"void", ir.Value{}},
		{`"a \"b\""`, ir.StringValue(`a "b"`)},
		{"Param3", ir.AttributeValue(ir.AttrParam0 + 3)},
		{"InvocationId", ir.AttributeValue(ir.AttrInvocationId)},
		{"PatchGeneric7", ir.PatchValue(ir.PatchGeneric(7))},
		{"s12", ir.ScalarRegValue(12)},
		{"v3", ir.VectorRegValue(3)},
	} {
		p := NewParser(NewLexer(tc.text).Tokenize())

		v, fwd, err := p.operand()
		if assert.NoError(t, err, tc.text) {
			assert.False(t, fwd)
			assert.Equal(t, tc.want, v, tc.text)
			assert.Equal(t, tc.want.String(), v.String(), tc.text)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		line int
		msg  string
	}{
		{"directive", ".color red\n", 1, "unknown directive"},
		{"stage", ".stage xs\n", 1, "unknown stage"},
		{"opcode", "block0:\n\tFrobnicate #1\n", 2, "unknown opcode"},
		{"outside", "LaneId\n", 1, "outside of a block"},
		{"forward", "block0:\n\t%0 = IAdd32 %1, #1\n\t%1 = LaneId\n", 2, "used before definition"},
		{"undefined", "block0:\n\t%0 = Phi [block0, %5]\n", 2, "never defined"},
		{"block", "block0: -> block9\n", 1, "undefined block"},
		{"label", "block0:\nblock0:\n", 2, "redefined"},
		{"value", "block0:\n\t%0 = LaneId\n\t%0 = LaneId\n", 3, "redefined"},
		{"arity", "block0:\n\tLaneId #1, #2\n", 2, "arguments"},
		{"trailing", "block0: x\n", 1, "expected end of line"},
		{"immediate", "block0:\n\tSetPatch TessellationLodLeft, #1x\n", 2, "bad immediate"},
		{"char", "block0:\n\tLaneId $\n", 2, "expected operand"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			require.ErrorIs(t, err, ErrSyntax)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)

			assert.Equal(t, tc.line, perr.Token.Line)
			assert.Contains(t, perr.Message, tc.msg)
		})
	}
}
