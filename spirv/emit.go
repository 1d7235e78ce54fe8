package spirv

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// Module is an emitted shader.
type Module struct {
	Stage      shader.Stage
	Hash       uint64
	EntryPoint string
	Binary     []byte
	Bindings   *BindingMap
}

// Emit translates p into a SPIR-V module for profile. Binding slots are
// allocated from bindings, which may be nil for a standalone shader.
//
// The program must be in SSA form with passes applied: register accesses,
// PhiMoves and unresolved resource handles are rejected.
func Emit(ctx context.Context, profile Profile, p *ir.Program, rt *shader.RuntimeInfo, bindings *Bindings) (m *Module, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "emit_spirv", "stage", p.Info.Stage, "hash", p.Info.PgmHash)
	defer tr.Finish("err", &err)

	c, err := NewEmitContext(profile, &p.Info, rt, bindings)
	if err != nil {
		return nil, errors.Wrap(err, "declare")
	}

	e := &emitter{EmitContext: c, p: p}

	err = e.run()
	if err != nil {
		return nil, errors.Wrap(err, "emit")
	}

	m = &Module{
		Stage:      p.Info.Stage,
		Hash:       p.Info.PgmHash,
		EntryPoint: entryPointName,
		Binary:     c.Build(),
		Bindings:   c.BindingMap,
	}

	if tlog.If("spirv") {
		tr.Printw("module emitted", "bound", c.Bound(), "bytes", len(m.Binary), "bindings", c.BindingMap.Len())
	}

	return m, nil
}

const entryPointName = "main"

type emitter struct {
	*EmitContext

	p  *ir.Program
	fn uint32

	labels []uint32 // first label of each block
	ends   []uint32 // label of the SPIR-V block a block ends in
	phis   []pendingPhi
}

type pendingPhi struct {
	slot int
	inst *ir.Inst
}

func (e *emitter) run() (err error) {
	defer ir.Recover(&err)

	for _, inst := range e.p.Instructions() {
		inst.SetDefinition(0)
	}

	e.fn = e.AddFunction(e.AddTypeFunction(e.Void), e.Void, FunctionControlNone)
	e.name(e.fn, entryPointName)

	if len(e.p.Blocks) == 0 {
		e.AddLabel()
		e.AddReturn()
	}

	e.labels = make([]uint32, len(e.p.Blocks))
	e.ends = make([]uint32, len(e.p.Blocks))

	for i := range e.p.Blocks {
		e.labels[i] = e.AllocID()
	}

	for i, blk := range e.p.Blocks {
		e.AddLabelID(e.labels[i])
		e.ends[i] = e.labels[i]

		for inst := range blk.Instructions() {
			e.inst(blk, inst)
		}

		switch succ := blk.Successors(); len(succ) {
		case 0:
			e.AddReturn()
		case 1:
			e.AddBranch(e.labels[succ[0].Index()])
		default:
			ir.Throw(ErrNotImplemented, "%v: %d successors", blk, len(succ))
		}
	}

	e.AddFunctionEnd()

	for _, ph := range e.phis {
		pairs := make([]uint32, 0, 2*ph.inst.NumArgs())

		for k := range ph.inst.NumArgs() {
			pairs = append(pairs, e.Def(ph.inst.Arg(k)), e.ends[ph.inst.PhiBlock(k).Index()])
		}

		e.SetPhiOperands(ph.slot, pairs...)
	}

	e.entryPoint()

	return nil
}

func (e *emitter) entryPoint() {
	ifaces := e.Interfaces
	if e.Version().AtLeast(Version1_4) {
		ifaces = e.Globals
	}

	e.AddEntryPoint(executionModel(e.Stage), e.fn, entryPointName, ifaces)

	rt := e.Runtime

	switch e.Stage {
	case shader.StageFragment:
		e.AddExecutionMode(e.fn, ExecutionModeOriginUpperLeft)

		if e.FragDepth != 0 {
			e.AddExecutionMode(e.fn, ExecutionModeDepthReplacing)
		}
	case shader.StageCompute:
		wg := rt.Compute.WorkgroupSize
		e.AddExecutionMode(e.fn, ExecutionModeLocalSize, max(1, wg[0]), max(1, wg[1]), max(1, wg[2]))
	case shader.StageGeometry:
		e.AddExecutionMode(e.fn, ExecutionModeInvocations, max(1, rt.Geometry.NumInvocations))
		e.AddExecutionMode(e.fn, inputPrimitiveMode(rt.Geometry.InPrimitive))
		e.AddExecutionMode(e.fn, ExecutionModeOutputVertices, rt.Geometry.OutputVertices)
		e.AddExecutionMode(e.fn, ExecutionModeOutputTriangleStrip)
	case shader.StageHull:
		e.AddExecutionMode(e.fn, ExecutionModeOutputVertices, e.HullOutputVertices)
	}
}

func executionModel(s shader.Stage) ExecutionModel {
	switch s {
	case shader.StageHull:
		return ExecutionModelTessellationControl
	case shader.StageGeometry:
		return ExecutionModelGeometry
	case shader.StageFragment:
		return ExecutionModelFragment
	case shader.StageCompute:
		return ExecutionModelGLCompute
	}

	return ExecutionModelVertex
}

func inputPrimitiveMode(p shader.PrimitiveType) ExecutionMode {
	switch p {
	case shader.PrimitivePointList:
		return ExecutionModeInputPoints
	case shader.PrimitiveLineList, shader.PrimitiveLineStrip:
		return ExecutionModeInputLines
	case shader.PrimitiveAdjTriangleList:
		return ExecutionModeInputTrianglesAdj
	}

	return ExecutionModeTriangles
}

var simpleOps = map[ir.Opcode]OpCode{
	ir.OpIAdd32:                 OpIAdd,
	ir.OpIAdd64:                 OpIAdd,
	ir.OpISub32:                 OpISub,
	ir.OpIMul32:                 OpIMul,
	ir.OpIMul64:                 OpIMul,
	ir.OpSDiv32:                 OpSDiv,
	ir.OpUDiv32:                 OpUDiv,
	ir.OpUMod32:                 OpUMod,
	ir.OpINeg32:                 OpSNegate,
	ir.OpShiftLeftLogical32:     OpShiftLeftLogical,
	ir.OpShiftRightLogical32:    OpShiftRightLogical,
	ir.OpShiftRightArithmetic32: OpShiftRightArithmetic,
	ir.OpBitwiseAnd32:           OpBitwiseAnd,
	ir.OpBitwiseOr32:            OpBitwiseOr,
	ir.OpBitwiseXor32:           OpBitwiseXor,
	ir.OpBitwiseNot32:           OpNot,
	ir.OpBitFieldInsert:         OpBitFieldInsert,
	ir.OpBitFieldSExtract:       OpBitFieldSExtract,
	ir.OpBitFieldUExtract:       OpBitFieldUExtract,
	ir.OpBitCount32:             OpBitCount,

	ir.OpFPAdd16:         OpFAdd,
	ir.OpFPAdd32:         OpFAdd,
	ir.OpFPAdd64:         OpFAdd,
	ir.OpFPSub32:         OpFSub,
	ir.OpFPMul32:         OpFMul,
	ir.OpFPMul64:         OpFMul,
	ir.OpFPNeg32:         OpFNegate,
	ir.OpFPOrdLessThan32: OpFOrdLessThan,
	ir.OpFPOrdEqual32:    OpFOrdEqual,

	ir.OpSLessThan:         OpSLessThan,
	ir.OpULessThan:         OpULessThan,
	ir.OpIEqual:            OpIEqual,
	ir.OpINotEqual:         OpINotEqual,
	ir.OpSGreaterThanEqual: OpSGreaterThanEqual,
	ir.OpUGreaterThanEqual: OpUGreaterThanEqual,
	ir.OpLogicalOr:         OpLogicalOr,
	ir.OpLogicalAnd:        OpLogicalAnd,
	ir.OpLogicalNot:        OpLogicalNot,
	ir.OpSelectU32:         OpSelect,
	ir.OpSelectF32:         OpSelect,

	ir.OpCompositeConstructU32x2: OpCompositeConstruct,
	ir.OpCompositeConstructU32x3: OpCompositeConstruct,
	ir.OpCompositeConstructU32x4: OpCompositeConstruct,
	ir.OpCompositeConstructF32x2: OpCompositeConstruct,
	ir.OpCompositeConstructF32x3: OpCompositeConstruct,
	ir.OpCompositeConstructF32x4: OpCompositeConstruct,

	ir.OpBitCastU16F16: OpBitcast,
	ir.OpBitCastU32F32: OpBitcast,
	ir.OpBitCastU64F64: OpBitcast,
	ir.OpBitCastF16U16: OpBitcast,
	ir.OpBitCastF32U32: OpBitcast,
	ir.OpBitCastF64U64: OpBitcast,

	ir.OpConvertF32F16: OpFConvert,
	ir.OpConvertF16F32: OpFConvert,
	ir.OpConvertF64F32: OpFConvert,
	ir.OpConvertF32F64: OpFConvert,
	ir.OpConvertS32F32: OpConvertFToS,
	ir.OpConvertU32F32: OpConvertFToU,
	ir.OpConvertF32S32: OpConvertSToF,
	ir.OpConvertF32U32: OpConvertUToF,
	ir.OpConvertU64U32: OpUConvert,
	ir.OpConvertU32U64: OpUConvert,
}

var glslOps = map[ir.Opcode]GLSLstd450{
	ir.OpFPAbs32:    GLSLstd450FAbs,
	ir.OpFPFma32:    GLSLstd450Fma,
	ir.OpFPMin32:    GLSLstd450FMin,
	ir.OpFPMax32:    GLSLstd450FMax,
	ir.OpFPSqrt32:   GLSLstd450Sqrt,
	ir.OpIAbs32:     GLSLstd450SAbs,
	ir.OpSMin32:     GLSLstd450SMin,
	ir.OpUMin32:     GLSLstd450UMin,
	ir.OpSMax32:     GLSLstd450SMax,
	ir.OpUMax32:     GLSLstd450UMax,
	ir.OpFindILsb32: GLSLstd450FindILsb,
}

var atomicOps = map[ir.Opcode]OpCode{
	ir.OpSharedAtomicIAdd32: OpAtomicIAdd,
	ir.OpSharedAtomicSMin32: OpAtomicSMin,
	ir.OpSharedAtomicUMin32: OpAtomicUMin,
	ir.OpSharedAtomicSMax32: OpAtomicSMax,
	ir.OpSharedAtomicUMax32: OpAtomicUMax,

	ir.OpBufferAtomicIAdd32: OpAtomicIAdd,
	ir.OpBufferAtomicSMin32: OpAtomicSMin,
	ir.OpBufferAtomicUMin32: OpAtomicUMin,
	ir.OpBufferAtomicSMax32: OpAtomicSMax,
	ir.OpBufferAtomicUMax32: OpAtomicUMax,
	ir.OpBufferAtomicAnd32:  OpAtomicAnd,
	ir.OpBufferAtomicOr32:   OpAtomicOr,
	ir.OpBufferAtomicXor32:  OpAtomicXor,
	ir.OpBufferAtomicSwap32: OpAtomicExchange,
	ir.OpBufferAtomicInc32:  OpAtomicIIncrement,
	ir.OpBufferAtomicDec32:  OpAtomicIDecrement,
}

func (e *emitter) inst(blk *ir.Block, inst *ir.Inst) {
	op := inst.Opcode()

	if sop, ok := simpleOps[op]; ok {
		inst.SetDefinition(e.AddOp(sop, e.resultType(inst), e.args(inst, 0)...))
		return
	}

	if gop, ok := glslOps[op]; ok {
		inst.SetDefinition(e.AddExtInst(e.resultType(inst), e.GLSL, uint32(gop), e.args(inst, 0)...))
		return
	}

	var id uint32

	switch op {
	case ir.OpVoid, ir.OpPrologue, ir.OpEpilogue, ir.OpConditionRef, ir.OpReference:
		return
	case ir.OpIdentity:
		id = e.Def(inst.Arg(0))
	case ir.OpPhi:
		t := ir.ValueOf(inst).Type()
		if t == ir.TypeOpaque {
			ir.Throw(ir.ErrLogic, "%v: phi %v has no typed operand", blk, inst.Ref())
		}

		var slot int
		id, slot = e.AddPhi(e.TypeID(t))
		e.phis = append(e.phis, pendingPhi{slot: slot, inst: inst})

	case ir.OpFPRecip32:
		id = e.AddBinaryOp(OpFDiv, e.F32[1], e.ConstF32(1), e.Def(inst.Arg(0)))

	case ir.OpCompositeExtractU32x2, ir.OpCompositeExtractU32x3, ir.OpCompositeExtractU32x4,
		ir.OpCompositeExtractF32x2, ir.OpCompositeExtractF32x3, ir.OpCompositeExtractF32x4:
		id = e.AddCompositeExtract(e.resultType(inst), e.Def(inst.Arg(0)), e.immU32(inst.Arg(1), "composite index"))

	case ir.OpGetUserData:
		id = e.userData(inst.Arg(0).ScalarReg())
	case ir.OpReadConst:
		id = e.readConst(inst)
	case ir.OpReadConstBuffer:
		id = e.readConstBuffer(inst)
	case ir.OpLaneId:
		id = e.AddLoad(e.U32[1], e.builtin(e.LaneID, "lane id"))

	case ir.OpGetAttribute:
		id = e.getAttribute(inst)
	case ir.OpGetAttributeU32:
		id = e.getAttributeU32(inst)
	case ir.OpSetAttribute:
		e.setAttribute(inst)
	case ir.OpGetPatch:
		id = e.AddLoad(e.F32[1], e.patchPointer(inst.Arg(0).Patch()))
	case ir.OpSetPatch:
		e.AddStore(e.patchPointer(inst.Arg(0).Patch()), e.Def(inst.Arg(1)))
	case ir.OpGetTessGenericAttribute:
		ptr := e.AddAccessChain(e.AddTypePointer(StorageClassInput, e.F32[1]), e.hull(e.TessInputs), e.args(inst, 0)...)
		id = e.AddLoad(e.F32[1], ptr)
	case ir.OpReadTcsGenericOuputAttribute:
		ptr := e.AddAccessChain(e.AddTypePointer(StorageClassOutput, e.F32[1]), e.hull(e.TessOutputs), e.args(inst, 0)...)
		id = e.AddLoad(e.F32[1], ptr)
	case ir.OpSetTcsGenericAttribute:
		ptr := e.tessOutput(e.Def(inst.Arg(1)), e.Def(inst.Arg(2)))
		e.AddStore(ptr, e.Def(inst.Arg(0)))

	case ir.OpLoadSharedU32:
		id = e.loadShared(inst, 1)
	case ir.OpLoadSharedU64:
		id = e.loadShared(inst, 2)
	case ir.OpLoadSharedU128:
		id = e.loadShared(inst, 4)
	case ir.OpWriteSharedU32:
		e.writeShared(inst, 1)
	case ir.OpWriteSharedU64:
		e.writeShared(inst, 2)
	case ir.OpWriteSharedU128:
		e.writeShared(inst, 4)
	case ir.OpSharedAtomicIAdd32, ir.OpSharedAtomicSMin32, ir.OpSharedAtomicUMin32,
		ir.OpSharedAtomicSMax32, ir.OpSharedAtomicUMax32:
		ptr := e.sharedPointer(e.dwordIndex(e.Def(inst.Arg(0)), 0))
		id = e.atomic(atomicOps[op], ptr, ScopeWorkgroup, e.Def(inst.Arg(1)))

	case ir.OpLoadBufferU32:
		id = e.loadBuffer(inst, 1)
	case ir.OpLoadBufferU32x2:
		id = e.loadBuffer(inst, 2)
	case ir.OpLoadBufferU32x3:
		id = e.loadBuffer(inst, 3)
	case ir.OpLoadBufferU32x4:
		id = e.loadBuffer(inst, 4)
	case ir.OpStoreBufferU32:
		e.storeBuffer(inst, 1)
	case ir.OpStoreBufferU32x2:
		e.storeBuffer(inst, 2)
	case ir.OpStoreBufferU32x3:
		e.storeBuffer(inst, 3)
	case ir.OpStoreBufferU32x4:
		e.storeBuffer(inst, 4)
	case ir.OpBufferAtomicIAdd32, ir.OpBufferAtomicSMin32, ir.OpBufferAtomicUMin32,
		ir.OpBufferAtomicSMax32, ir.OpBufferAtomicUMax32, ir.OpBufferAtomicAnd32,
		ir.OpBufferAtomicOr32, ir.OpBufferAtomicXor32, ir.OpBufferAtomicSwap32,
		ir.OpBufferAtomicInc32, ir.OpBufferAtomicDec32:
		id = e.bufferAtomic(inst)

	case ir.OpBarrier:
		e.AddOpVoid(OpControlBarrier, e.ConstU32(uint32(ScopeWorkgroup)), e.ConstU32(uint32(ScopeWorkgroup)),
			e.ConstU32(uint32(MemorySemanticsAcquireRelease|MemorySemanticsWorkgroupMemory)))
	case ir.OpWorkgroupMemoryBarrier:
		e.AddOpVoid(OpMemoryBarrier, e.ConstU32(uint32(ScopeWorkgroup)),
			e.ConstU32(uint32(MemorySemanticsAcquireRelease|MemorySemanticsWorkgroupMemory)))
	case ir.OpDeviceMemoryBarrier:
		e.AddOpVoid(OpMemoryBarrier, e.ConstU32(uint32(ScopeDevice)),
			e.ConstU32(uint32(MemorySemanticsAcquireRelease|MemorySemanticsUniformMemory|MemorySemanticsImageMemory)))
	case ir.OpTcsOutputBarrier:
		e.AddOpVoid(OpControlBarrier, e.ConstU32(uint32(ScopeWorkgroup)), e.ConstU32(uint32(ScopeInvocation)),
			e.ConstU32(uint32(MemorySemanticsNone)))

	case ir.OpEmitVertex, ir.OpEmitPrimitive:
		if e.Stage != shader.StageGeometry {
			ir.Throw(ir.ErrInvalidArgument, "%v outside a geometry shader", op)
		}

		if op == ir.OpEmitVertex {
			e.AddOpVoid(OpEmitVertex)
		} else {
			e.AddOpVoid(OpEndPrimitive)
		}

	case ir.OpDiscard:
		e.discard(blk, e.TrueValue)
	case ir.OpDiscardCond:
		e.discard(blk, e.Def(inst.Arg(0)))

	case ir.OpGetScalarRegister, ir.OpSetScalarRegister, ir.OpGetVectorRegister, ir.OpSetVectorRegister, ir.OpPhiMove:
		ir.Throw(ir.ErrLogic, "%v: %v survived SSA construction", blk, op)
	default:
		ir.Throw(ErrNotImplemented, "%v: opcode %v", blk, op)
	}

	inst.SetDefinition(id)
}

func (e *emitter) resultType(inst *ir.Inst) uint32 {
	return e.TypeID(inst.Type())
}

// args resolves the arguments of inst starting at from.
func (e *emitter) args(inst *ir.Inst, from int) []uint32 {
	ids := make([]uint32, 0, inst.NumArgs()-from)

	for i := from; i < inst.NumArgs(); i++ {
		ids = append(ids, e.Def(inst.Arg(i)))
	}

	return ids
}

func (e *emitter) immU32(v ir.Value, what string) uint32 {
	if !v.IsImmediate() {
		ir.Throw(ErrNotImplemented, "dynamic %s", what)
	}

	return v.Resolve().U32()
}

// builtin checks that an input variable was declared for this stage.
func (e *emitter) builtin(id uint32, what string) uint32 {
	if id == 0 {
		ir.Throw(ir.ErrInvalidArgument, "%s is not available in stage %v", what, e.Stage)
	}

	return id
}

func (e *emitter) hull(id uint32) uint32 {
	if e.Stage != shader.StageHull {
		ir.Throw(ir.ErrInvalidArgument, "tessellation attribute access in stage %v", e.Stage)
	}

	return id
}

func (e *emitter) chain(sc StorageClass, elem, base uint32, indices ...uint32) uint32 {
	return e.AddAccessChain(e.AddTypePointer(sc, elem), base, indices...)
}

func (e *emitter) userData(reg ir.ScalarReg) uint32 {
	if reg >= numPushUserRegs {
		ir.Throw(ErrNotImplemented, "user data register %v beyond push data", reg)
	}

	r := uint32(reg)
	ptr := e.chain(StorageClassPushConstant, e.U32[1], e.PushData, e.ConstU32(pushDataUserRegs+r/4), e.ConstU32(r%4))

	return e.AddLoad(e.U32[1], ptr)
}

func (e *emitter) readConst(inst *ir.Inst) uint32 {
	if e.FlatBuf == 0 {
		ir.Throw(ir.ErrLogic, "constant read without a flattened user data buffer")
	}

	ptr := e.chain(StorageClassUniform, e.U32[1], e.FlatBuf, e.U32Zero, e.Def(inst.Arg(1)))

	return e.AddLoad(e.U32[1], ptr)
}

func (e *emitter) buffer(v ir.Value) BufferDef {
	idx := e.immU32(v, "buffer handle")
	if int(idx) >= len(e.Buffers) {
		ir.Throw(ir.ErrInvalidArgument, "buffer %d of %d", idx, len(e.Buffers))
	}

	return e.Buffers[idx]
}

func (e *emitter) readConstBuffer(inst *ir.Inst) uint32 {
	b := e.buffer(inst.Arg(0))

	return e.loadDword(b, e.Def(inst.Arg(1)))
}

func (e *emitter) loadDword(b BufferDef, index uint32) uint32 {
	ptr := e.AddAccessChain(b.PointerType, b.ID, e.U32Zero, index)
	if !b.IsF32 {
		return e.AddLoad(e.U32[1], ptr)
	}

	return e.AddUnaryOp(OpBitcast, e.U32[1], e.AddLoad(e.F32[1], ptr))
}

// dwordIndex converts a byte address plus a constant offset to a dword index.
func (e *emitter) dwordIndex(addr, offset uint32) uint32 {
	if offset != 0 {
		addr = e.AddBinaryOp(OpIAdd, e.U32[1], addr, e.ConstU32(offset))
	}

	return e.AddBinaryOp(OpShiftRightLogical, e.U32[1], addr, e.ConstU32(2))
}

func (e *emitter) nextIndex(index uint32, i int) uint32 {
	if i == 0 {
		return index
	}

	return e.AddBinaryOp(OpIAdd, e.U32[1], index, e.ConstU32(uint32(i)))
}

// split returns the dwords of a value of n components.
func (e *emitter) split(v uint32, n int) []uint32 {
	if n == 1 {
		return []uint32{v}
	}

	parts := make([]uint32, n)
	for i := range parts {
		parts[i] = e.AddCompositeExtract(e.U32[1], v, uint32(i))
	}

	return parts
}

func (e *emitter) join(parts []uint32) uint32 {
	if len(parts) == 1 {
		return parts[0]
	}

	return e.AddCompositeConstruct(e.U32[len(parts)], parts...)
}

func (e *emitter) loadBuffer(inst *ir.Inst, n int) uint32 {
	b := e.buffer(inst.Arg(0))
	info := ir.FlagsAs[ir.BufferInstInfo](inst)
	index := e.dwordIndex(e.Def(inst.Arg(1)), info.InstOffset())

	parts := make([]uint32, n)
	for i := range parts {
		parts[i] = e.loadDword(b, e.nextIndex(index, i))
	}

	return e.join(parts)
}

func (e *emitter) storeBuffer(inst *ir.Inst, n int) {
	b := e.buffer(inst.Arg(0))
	if !b.IsStorage {
		ir.Throw(ir.ErrInvalidArgument, "store to uniform buffer %d", b.Slot)
	}

	info := ir.FlagsAs[ir.BufferInstInfo](inst)
	index := e.dwordIndex(e.Def(inst.Arg(1)), info.InstOffset())

	for i, v := range e.split(e.Def(inst.Arg(2)), n) {
		ptr := e.AddAccessChain(b.PointerType, b.ID, e.U32Zero, e.nextIndex(index, i))

		if b.IsF32 {
			v = e.AddUnaryOp(OpBitcast, e.F32[1], v)
		}

		e.AddStore(ptr, v)
	}
}

func (e *emitter) bufferAtomic(inst *ir.Inst) uint32 {
	b := e.buffer(inst.Arg(0))
	if !b.IsStorage || b.IsF32 {
		ir.Throw(ErrNotImplemented, "atomic on buffer %d: storage %v float %v", b.Slot, b.IsStorage, b.IsF32)
	}

	info := ir.FlagsAs[ir.BufferInstInfo](inst)
	index := e.dwordIndex(e.Def(inst.Arg(1)), info.InstOffset())
	ptr := e.AddAccessChain(b.PointerType, b.ID, e.U32Zero, index)

	op := atomicOps[inst.Opcode()]
	if op == OpAtomicIIncrement || op == OpAtomicIDecrement {
		return e.atomic(op, ptr, ScopeDevice)
	}

	return e.atomic(op, ptr, ScopeDevice, e.Def(inst.Arg(2)))
}

func (e *emitter) atomic(op OpCode, ptr uint32, scope Scope, value ...uint32) uint32 {
	operands := append([]uint32{ptr, e.ConstU32(uint32(scope)), e.U32Zero}, value...)

	return e.AddOp(op, e.U32[1], operands...)
}

func (e *emitter) sharedPointer(index uint32) uint32 {
	if e.SharedMemory == 0 {
		ir.Throw(ir.ErrLogic, "shared memory access without shared memory")
	}

	return e.chain(StorageClassWorkgroup, e.U32[1], e.SharedMemory, index)
}

func (e *emitter) loadShared(inst *ir.Inst, n int) uint32 {
	index := e.dwordIndex(e.Def(inst.Arg(0)), 0)

	parts := make([]uint32, n)
	for i := range parts {
		parts[i] = e.AddLoad(e.U32[1], e.sharedPointer(e.nextIndex(index, i)))
	}

	return e.join(parts)
}

func (e *emitter) writeShared(inst *ir.Inst, n int) {
	index := e.dwordIndex(e.Def(inst.Arg(0)), 0)

	for i, v := range e.split(e.Def(inst.Arg(1)), n) {
		e.AddStore(e.sharedPointer(e.nextIndex(index, i)), v)
	}
}

func (e *emitter) discard(blk *ir.Block, cond uint32) {
	if e.Stage != shader.StageFragment {
		ir.Throw(ir.ErrInvalidArgument, "discard in stage %v", e.Stage)
	}

	kill, merge := e.AllocID(), e.AllocID()

	e.AddSelectionMerge(merge)
	e.AddBranchConditional(cond, kill, merge)
	e.AddLabelID(kill)
	e.AddKill()
	e.AddLabelID(merge)

	e.ends[blk.Index()] = merge
}
