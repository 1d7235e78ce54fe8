package passes

import (
	"context"

	"github.com/oleiade/lane"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler/dump"
	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/ir/pattern"
	"github.com/gogpu/recompiler/shader"
)

// ErrUnresolvedAccess is returned when a shared memory access survives the
// hull transform.
var ErrUnresolvedAccess = errors.New("unresolved shared memory access")

// Idioms the hardware uses to unpack system values. They are replaced by
// symbolic attribute reads before any address is walked.
var (
	packedPrimitiveId = pattern.Inst(ir.OpBitFieldUExtract,
		pattern.AttributeRead(ir.AttrPackedHullInvocationInfo),
		pattern.U32(0), pattern.U32(8))

	packedInvocationId = pattern.Inst(ir.OpBitFieldUExtract,
		pattern.AttributeRead(ir.AttrPackedHullInvocationInfo),
		pattern.U32(8), pattern.U32(5))

	tessInputCpStride = pattern.Inst(ir.OpBitFieldSExtract,
		tessConstantRead(0),
		pattern.U32(19), pattern.U32(2))
)

// tessConstantRead matches a load of dword slot from the tessellation
// constant buffer, which the driver binds at offset zero.
func tessConstantRead(slot uint32) pattern.Matcher {
	return pattern.Inst(ir.OpReadConstBuffer,
		pattern.Ignore(),
		pattern.Inst(ir.OpIAdd32, pattern.U32(0), pattern.U32(slot)))
}

// HullShaderTransform resolves LDS accesses of a hull shader into attribute
// and patch constant accesses, and tessellation factor buffer stores into
// patch factor writes.
//
// Control point stores become SetAttribute and per-patch stores SetPatch.
// Loads become the matching reads. Stores to a globally coherent buffer
// are factor table writes and are split per dword by their static offset;
// the number of factors written is recorded in rt.Hull.NumFactors.
//
// It must run before constant propagation: the address idioms it matches
// would not survive folding. Any shared memory access left afterwards fails
// the pass with ErrUnresolvedAccess.
func HullShaderTransform(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) (err error) {
	if p.Info.Stage != shader.StageHull {
		return nil
	}

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "hull_shader_transform", "hash", p.Info.PgmHash)
	defer tr.Finish("err", &err)

	h := hullTransform{
		p:    p,
		rt:   rt,
		tr:   tr,
		ring: RingAddress{Passthrough: rt.Hull.Passthrough()},
	}

	h.canonicalize()

	dump.Checkpoint(ctx, p, "mid_hull_transform")

	for blk, inst := range p.Instructions() {
		e := ir.NewEmitter(blk, inst)

		switch op := inst.Opcode(); op {
		case ir.OpStoreBufferU32, ir.OpStoreBufferU32x2, ir.OpStoreBufferU32x3, ir.OpStoreBufferU32x4:
			h.factorStore(e, inst, int(op-ir.OpStoreBufferU32)+1)
		case ir.OpWriteSharedU32:
			h.sharedStore(e, inst, 1)
		case ir.OpWriteSharedU64:
			h.sharedStore(e, inst, 2)
		case ir.OpWriteSharedU128:
			h.sharedStore(e, inst, 4)
		case ir.OpLoadSharedU32:
			h.sharedLoad(e, inst, 1)
		case ir.OpLoadSharedU64:
			h.sharedLoad(e, inst, 2)
		case ir.OpLoadSharedU128:
			h.sharedLoad(e, inst, 4)
		}
	}

	dump.Checkpoint(ctx, p, "after_walk_ring_access")

	if tlog.If("passes") {
		tr.Printw("hull transform done", "factors", rt.Hull.NumFactors, "passthrough", h.ring.Passthrough)
	}

	return VerifyNoSharedAccess(p)
}

type hullTransform struct {
	p    *ir.Program
	rt   *shader.RuntimeInfo
	tr   tlog.Span
	ring RingAddress
}

// canonicalize replaces packed system value extracts with attribute reads.
// Address matching below relies on the symbolic forms.
func (h *hullTransform) canonicalize() {
	for blk, inst := range h.p.Instructions() {
		var attr ir.Attribute

		v := ir.ValueOf(inst)

		switch inst.Opcode() {
		case ir.OpBitFieldUExtract:
			switch {
			case packedPrimitiveId.Match(v):
				attr = ir.AttrPrimitiveId
			case packedInvocationId.Match(v):
				attr = ir.AttrInvocationId
			default:
				continue
			}
		case ir.OpBitFieldSExtract:
			if !tessInputCpStride.Match(v) {
				continue
			}

			attr = ir.AttrTcsInputCpStride
		default:
			continue
		}

		e := ir.NewEmitter(blk, inst)
		inst.ReplaceUsesWithAndRemove(e.GetAttributeU32(attr))
	}
}

func (h *hullTransform) factorStore(e *ir.Emitter, inst *ir.Inst, n int) {
	info := ir.FlagsAs[ir.BufferInstInfo](inst)
	if !info.GloballyCoherent() {
		return
	}

	idx := info.InstOffset() >> 2
	data := inst.Arg(2)

	comps := splitDwords(e, data, n)

	for i, v := range comps {
		e.SetPatch(ir.PatchFactor(idx+uint32(i)), factorValue(e, v))
	}

	inst.Invalidate()

	h.rt.Hull.NumFactors = max(h.rt.Hull.NumFactors, idx+uint32(n))
}

// factorValue returns v as F32, looking through a U32 bitcast of a float.
func factorValue(e *ir.Emitter, v ir.Value) ir.Value {
	if in := v.TryInstRecursive(); in != nil && in.Opcode() == ir.OpBitCastU32F32 {
		return in.Arg(0)
	}

	return e.BitCastF32U32(v)
}

// splitDwords returns the n dword components of data. Components of a
// composite construct are taken directly; anything else is extracted.
func splitDwords(e *ir.Emitter, data ir.Value, n int) []ir.Value {
	if n == 1 {
		return []ir.Value{data}
	}

	comps := make([]ir.Value, n)

	if in := data.TryInstRecursive(); in != nil && isCompositeConstruct(in.Opcode(), n) {
		for i := range comps {
			comps[i] = in.Arg(i)
		}

		return comps
	}

	for i := range comps {
		comps[i] = e.CompositeExtractU32(data, n, uint32(i))
	}

	return comps
}

func isCompositeConstruct(op ir.Opcode, n int) bool {
	switch n {
	case 2:
		return op == ir.OpCompositeConstructU32x2
	case 3:
		return op == ir.OpCompositeConstructU32x3
	case 4:
		return op == ir.OpCompositeConstructU32x4
	}

	return false
}

func (h *hullTransform) walk(inst *ir.Inst) bool {
	err := h.ring.Walk(inst)
	if err != nil {
		h.tr.Printw("ring access not resolved", "inst", inst.Ref(), "op", inst.Opcode(), "err", err)
		return false
	}

	if tlog.If("passes") {
		h.tr.Printw("ring access", "inst", inst.Ref(), "op", inst.Opcode(),
			"region", h.ring.RegionKind(), "offset", h.ring.AttributeByteOffset(), "index", h.ring.Index())
	}

	return true
}

func (h *hullTransform) sharedStore(e *ir.Emitter, inst *ir.Inst, n int) {
	if !h.walk(inst) {
		return
	}

	// Input control points are read only. A store without #patches terms
	// writes the shader's own output control point, which the passthrough
	// layout places over the input space.
	region := h.ring.RegionKind()
	if region == RegionInputCP {
		region = RegionOutputCP
	}

	offsetDw := h.ring.AttributeByteOffset() >> 2

	for i, v := range splitDwords(e, inst.Arg(1), n) {
		dw := offsetDw + uint32(i)
		data := e.BitCastF32U32(v)

		if region == RegionOutputCP {
			e.SetAttribute(ir.AttrParam0.Offset(dw>>2), data, dw&3)
		} else {
			e.SetPatch(ir.PatchGeneric(dw), data)
		}
	}

	inst.Invalidate()
}

func (h *hullTransform) sharedLoad(e *ir.Emitter, inst *ir.Inst, n int) {
	if !h.walk(inst) {
		return
	}

	region := h.ring.RegionKind()
	offset := h.ring.AttributeByteOffset()

	var cp ir.Value

	if region != RegionPatchOutput {
		var ok bool

		cp, offset, ok = h.controlPoint(e, inst, region)
		if !ok {
			h.tr.Printw("control point index not resolved", "inst", inst.Ref(), "region", region)
			return
		}
	}

	comps := make([]ir.Value, n)

	for i := range comps {
		dw := offset>>2 + uint32(i)

		var f ir.Value

		switch region {
		case RegionInputCP:
			f = e.GetTessGenericAttribute(cp, ir.Imm32(dw>>2), ir.Imm32(dw&3))
		case RegionOutputCP:
			f = e.ReadTcsGenericOuputAttribute(cp, ir.Imm32(dw>>2), ir.Imm32(dw&3))
		default:
			f = e.GetPatch(ir.PatchGeneric(dw))
		}

		comps[i] = e.BitCastU32F32(f)
	}

	res := comps[0]
	if n > 1 {
		res = e.CompositeConstructU32(comps...)
	}

	inst.ReplaceUsesWithAndRemove(res)
}

// controlPoint returns the control point index of the walked access and the
// byte offset within that control point.
//
// With a single dynamic factor the index is that factor. A constant address
// is split by the record stride. A compound index is divided by the stride,
// using the symbolic input stride when the address was built from it.
func (h *hullTransform) controlPoint(e *ir.Emitter, inst *ir.Inst, region Region) (ir.Value, uint32, bool) {
	offset := h.ring.AttributeByteOffset()

	if cp := h.ring.ControlPointIndex(); !cp.IsEmpty() {
		return cp, offset, true
	}

	stride := h.rt.Hull.OutputControlPointStride
	if region == RegionInputCP {
		stride = h.rt.Hull.InputControlPointStride
	}

	index := h.ring.Index()

	if index.IsEmpty() {
		if stride == 0 {
			return ir.Imm32(0), offset, true
		}

		return ir.Imm32(offset / stride), offset % stride, true
	}

	var sv ir.Value

	if region == RegionInputCP {
		sv = findInputCpStride(inst.Arg(0))
	}

	if sv.IsEmpty() {
		if stride == 0 {
			return ir.Value{}, 0, false
		}

		sv = ir.Imm32(stride)
	}

	return e.Inst(ir.OpUDiv32, index, sv), offset, true
}

// findInputCpStride searches the address expression breadth first for the
// symbolic input control point stride.
func findInputCpStride(addr ir.Value) ir.Value {
	q := lane.NewQueue()
	seen := map[*ir.Inst]bool{}

	q.Enqueue(addr)

	for !q.Empty() {
		v := q.Dequeue().(ir.Value)

		if inputCpStrideAttr.Match(v) {
			return v
		}

		in := v.TryInstRecursive()
		if in == nil || seen[in] || in.Opcode() == ir.OpPhi {
			continue
		}

		seen[in] = true

		for k := range in.NumArgs() {
			q.Enqueue(in.Arg(k))
		}
	}

	return ir.Value{}
}

// VerifyNoSharedAccess fails if any LDS load or store is left in p.
func VerifyNoSharedAccess(p *ir.Program) error {
	for blk, inst := range p.Instructions() {
		switch inst.Opcode() {
		case ir.OpLoadSharedU32, ir.OpLoadSharedU64, ir.OpLoadSharedU128,
			ir.OpWriteSharedU32, ir.OpWriteSharedU64, ir.OpWriteSharedU128:
			return errors.Wrap(ErrUnresolvedAccess, "%v in %v: %s", inst.Opcode(), blk, ir.FormatInst(inst))
		}
	}

	return nil
}
