package spirv

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/passes"
	"github.com/gogpu/recompiler/shader"
)

func emitText(t *testing.T, p *ir.Program, rt *shader.RuntimeInfo) (*Module, string) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, passes.ShaderInfoCollection(ctx, p, rt))

	m, err := Emit(ctx, DefaultProfile(), p, rt, nil)
	require.NoError(t, err)

	text, err := Disassemble(m.Binary)
	require.NoError(t, err)

	return m, text
}

// nameID returns the id an OpName gives name.
func nameID(t *testing.T, text, name string) string {
	t.Helper()

	m := regexp.MustCompile(`OpName (%_\d+) "` + regexp.QuoteMeta(name) + `"`).FindStringSubmatch(text)
	require.NotNil(t, m, "no OpName %q", name)

	return m[1]
}

func TestEmitComputeSharedMemory(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageCompute, PgmHash: 0xc0})
	e := ir.NewEmitter(p.NewBlock(), nil)

	lid := e.Inst(ir.OpGetAttributeU32, ir.AttributeValue(ir.AttrLocalInvocationId), ir.Imm32(0))
	addr := e.ShiftLeftLogical32(lid, ir.Imm32(2))
	e.WriteShared(32, addr, ir.Imm32(7))
	e.Inst(ir.OpBarrier)
	v := e.LoadShared(64, addr)
	e.Inst(ir.OpSharedAtomicIAdd32, addr, e.CompositeExtractU32(v, 2, 1))

	rt := shader.NewRuntimeInfo(shader.StageCompute)
	rt.Compute.WorkgroupSize = [3]uint32{64, 1, 1}

	m, text := emitText(t, p, rt)

	assert.Equal(t, shader.StageCompute, m.Stage)
	assert.Equal(t, uint64(0xc0), m.Hash)
	assert.Equal(t, "main", m.EntryPoint)

	assert.Contains(t, text, "OpEntryPoint GLCompute ")
	assert.Contains(t, text, " LocalSize 64 1 1\n")
	assert.Contains(t, text, "OpControlBarrier")
	assert.Contains(t, text, "OpAtomicIAdd")
	assert.Contains(t, text, "OpCompositeConstruct")

	shared := nameID(t, text, "shared_mem")
	assert.Regexp(t, `OpAccessChain %_\d+ `+shared+` `, text)

	assert.NotZero(t, lid.Inst().Definition())
	assert.NotZero(t, v.Inst().Definition())
}

func TestEmitVertexOutputs(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageVertex})
	e := ir.NewEmitter(p.NewBlock(), nil)

	vid := e.GetAttributeU32(ir.AttrVertexId)
	f := e.Inst(ir.OpConvertF32U32, vid)

	for comp := range uint32(4) {
		e.SetAttribute(ir.AttrPosition0, f, comp)
	}

	ud := e.Inst(ir.OpGetUserData, ir.ScalarRegValue(5))
	e.SetAttribute(ir.AttrParam0, e.BitCastF32U32(ud), 1)

	_, text := emitText(t, p, nil)

	assert.Contains(t, text, "OpEntryPoint Vertex ")
	assert.Contains(t, text, "BuiltIn Position\n")
	assert.Contains(t, text, "OpConvertUToF")
	assert.Contains(t, text, "OpBitcast")

	// user data register 5 lives in ud_regs1.y
	pd := nameID(t, text, "push_data")
	assert.Regexp(t, `OpAccessChain %_\d+ `+pd+` %_\d+ %_\d+\n`, text)

	out := nameID(t, text, "out_attr0")
	assert.Regexp(t, `OpAccessChain %_\d+ `+out+` %_\d+\n`, text)
	assert.Equal(t, 5, strings.Count(text, "OpStore"))
}

func TestEmitHullPipeline(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageHull, PgmHash: 0x4c})
	blk := p.NewBlock()
	e := ir.NewEmitter(blk, nil)

	rt := shader.NewRuntimeInfo(shader.StageHull)
	rt.Hull.NumInputControlPoints = 3
	rt.Hull.NumOutputControlPoints = 4
	rt.Hull.InputControlPointStride = 32
	rt.Hull.OutputControlPointStride = 16

	// #patches * 0x180 + InvocationId * 16 + 4
	patches := e.GetAttributeU32(ir.AttrTcsNumPatches)
	inv := e.GetAttributeU32(ir.AttrInvocationId)
	base := e.IAdd32(e.IMul32(patches, ir.Imm32(0x180)), e.IMul32(inv, ir.Imm32(16)))
	e.WriteShared(32, e.IAdd32(base, ir.Imm32(4)), e.BitCastU32F32(ir.ImmF32(0.25)))

	e.SetPatch(ir.PatchFactor(4), ir.ImmF32(2))
	e.SetPatch(ir.PatchGeneric(5), ir.ImmF32(3))
	e.Inst(ir.OpTcsOutputBarrier)

	ctx := context.Background()
	require.NoError(t, passes.Run(ctx, passes.Pipeline[:], p, rt, passes.Options{Verify: true}))

	m, err := Emit(ctx, DefaultProfile(), p, rt, nil)
	require.NoError(t, err)

	text, err := Disassemble(m.Binary)
	require.NoError(t, err)

	assert.Contains(t, text, "OpEntryPoint TessellationControl ")
	assert.Contains(t, text, " OutputVertices 4\n")
	assert.Contains(t, text, "OpControlBarrier")
	assert.Contains(t, text, "BuiltIn InvocationId\n")

	outs := nameID(t, text, "hs_out_attrs")
	assert.Regexp(t, `OpAccessChain %_\d+ `+outs+` %_\d+ %_\d+ %_\d+\n`, text)

	inner := nameID(t, text, "gl_TessLevelInner")
	assert.Regexp(t, `OpAccessChain %_\d+ `+inner+` %_\d+\n`, text)

	patch := nameID(t, text, "hs_patch_out")
	assert.Regexp(t, `OpAccessChain %_\d+ `+patch+` %_\d+ %_\d+\n`, text)
}

func TestEmitFragmentDiscardAndPhi(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageFragment})
	b0, b1 := p.NewBlock(), p.NewBlock()
	b0.AddBranch(b1)

	e := ir.NewEmitter(b0, nil)
	x := e.GetAttribute(ir.AttrFragCoord, 0, 0)
	e.Inst(ir.OpDiscardCond, e.Inst(ir.OpFPOrdLessThan32, x, ir.ImmF32(0)))

	e = ir.NewEmitter(b1, nil)
	phi := e.Phi()
	phi.AddPhiOperand(b0, x)
	e.SetAttribute(ir.AttrRenderTarget0, ir.ValueOf(phi), 0)

	_, text := emitText(t, p, nil)

	assert.Contains(t, text, "OpEntryPoint Fragment ")
	assert.Contains(t, text, " OriginUpperLeft\n")
	assert.Contains(t, text, "OpKill\n")

	merge := regexp.MustCompile(`OpSelectionMerge (%_\d+)`).FindStringSubmatch(text)
	require.NotNil(t, merge)

	// the phi's predecessor is the block b0 ends in, after the discard
	assert.Regexp(t, `OpPhi %_\d+ %_\d+ `+merge[1]+`\n`, text)
	assert.Regexp(t, `OpBranchConditional %_\d+ %_\d+ `+merge[1]+`\n`, text)
	assert.NotZero(t, phi.Definition())
}

func TestEmitGeometryModes(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageGeometry})
	e := ir.NewEmitter(p.NewBlock(), nil)

	e.SetAttribute(ir.AttrPosition0, e.GetAttribute(ir.AttrPosition0, 1, 2), 1)
	e.Inst(ir.OpEmitVertex)
	e.Inst(ir.OpEmitPrimitive)

	rt := shader.NewRuntimeInfo(shader.StageGeometry)
	rt.Geometry.InPrimitive = shader.PrimitiveTriangleList
	rt.Geometry.OutputVertices = 3

	_, text := emitText(t, p, rt)

	assert.Contains(t, text, "OpEntryPoint Geometry ")
	assert.Contains(t, text, " Invocations 1\n")
	assert.Contains(t, text, " Triangles\n")
	assert.Contains(t, text, " OutputVertices 3\n")
	assert.Contains(t, text, " OutputTriangleStrip\n")
	assert.Contains(t, text, "OpEmitVertex\n")
	assert.Contains(t, text, "OpEndPrimitive\n")

	in := nameID(t, text, "gl_in")
	assert.Regexp(t, `OpAccessChain %_\d+ `+in+` %_\d+ %_\d+ %_\d+\n`, text)
}

func TestEmitBuffers(t *testing.T) {
	info := ir.Info{
		Stage: shader.StageCompute,
		Buffers: []ir.BufferResource{
			{IsStorage: true, IsWritten: true},
			{NumDwords: 4},
		},
	}

	p := ir.NewProgram(info)
	e := ir.NewEmitter(p.NewBlock(), nil)

	flags := uint32(ir.NewBufferInstInfo(4, false, false))
	v := e.InstFlags(ir.OpLoadBufferU32x2, flags, ir.Imm32(1), ir.Imm32(0))
	e.StoreBuffer(2, ir.Imm32(0), ir.Imm32(8), v, 0)
	e.InstFlags(ir.OpBufferAtomicInc32, 0, ir.Imm32(0), ir.Imm32(0))

	_, text := emitText(t, p, nil)

	cbuf := nameID(t, text, "cbuf_1")
	ssbo := nameID(t, text, "ssbo_0")

	chains := func(base string) int {
		return len(regexp.MustCompile(`OpAccessChain %_\d+ ` + base + ` `).FindAllString(text, -1))
	}

	assert.Equal(t, 2, chains(cbuf))
	assert.Equal(t, 3, chains(ssbo))
	assert.Contains(t, text, "OpAtomicIIncrement")
	assert.Contains(t, text, "OpShiftRightLogical")
}

func TestEmitRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		op   ir.Opcode
		args []ir.Value
		kind error
	}{
		{"image", ir.OpImageRead, nil, ir.ErrNotImplemented},
		{"register", ir.OpGetScalarRegister, []ir.Value{ir.ScalarRegValue(0)}, ir.ErrLogic},
		{"uniform store", ir.OpStoreBufferU32, []ir.Value{ir.Imm32(0), ir.Imm32(0), ir.Imm32(0)}, ir.ErrInvalidArgument},
		{"dynamic handle", ir.OpLoadBufferU32, nil, ir.ErrNotImplemented},
		{"discard outside fragment", ir.OpDiscard, nil, ir.ErrInvalidArgument},
	} {
		t.Run(tc.name, func(t *testing.T) {
			info := ir.Info{Stage: shader.StageCompute, Buffers: []ir.BufferResource{{NumDwords: 4}}}

			p := ir.NewProgram(info)
			e := ir.NewEmitter(p.NewBlock(), nil)

			args := tc.args
			if args == nil && tc.op == ir.OpLoadBufferU32 {
				args = []ir.Value{e.GetAttributeU32(ir.AttrWorkgroupId), ir.Imm32(0)}
			}

			e.Inst(tc.op, args...)

			_, err := Emit(context.Background(), DefaultProfile(), p, nil, nil)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestEmitMultipleSuccessors(t *testing.T) {
	p := ir.NewProgram(ir.Info{Stage: shader.StageCompute})
	b0, b1, b2 := p.NewBlock(), p.NewBlock(), p.NewBlock()
	b0.AddBranch(b1)
	b0.AddBranch(b2)

	_, err := Emit(context.Background(), DefaultProfile(), p, nil, nil)
	assert.ErrorIs(t, err, ir.ErrNotImplemented)
}
