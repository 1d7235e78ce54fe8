package spirv

import (
	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

func (e *emitter) getAttribute(inst *ir.Inst) uint32 {
	a := inst.Arg(0).Attribute()
	comp := e.immU32(inst.Arg(1), "attribute component")

	switch {
	case a.IsParam():
		p := e.InputParams[a-ir.AttrParam0]
		if p.ID == 0 {
			ir.Throw(ir.ErrInvalidArgument, "read of undeclared input %v", a)
		}

		if comp >= p.NumComponents {
			ir.Throw(ir.ErrInvalidArgument, "read of %v.%d: %d components", a, comp, p.NumComponents)
		}

		if p.IsDefault {
			return e.AddCompositeExtract(e.F32[1], p.ID, comp)
		}

		ptr := p.ID

		switch {
		case e.Stage == shader.StageGeometry:
			ptr = e.chain(StorageClassInput, p.ComponentType, p.ID, e.Def(inst.Arg(2)), e.ConstU32(comp))
		case p.NumComponents > 1:
			ptr = e.chain(StorageClassInput, p.ComponentType, p.ID, e.ConstU32(comp))
		}

		v := e.AddLoad(p.ComponentType, ptr)
		if p.IsInteger {
			v = e.AddUnaryOp(OpBitcast, e.F32[1], v)
		}

		return v

	case a == ir.AttrFragCoord:
		ptr := e.chain(StorageClassInput, e.F32[1], e.builtin(e.FragCoord, "FragCoord"), e.ConstU32(comp))
		return e.AddLoad(e.F32[1], ptr)

	case a == ir.AttrPosition0 && e.Stage == shader.StageGeometry:
		ptr := e.chain(StorageClassInput, e.F32[1], e.GeometryIn, e.Def(inst.Arg(2)), e.U32Zero, e.ConstU32(comp))
		return e.AddLoad(e.F32[1], ptr)
	}

	ir.Throw(ErrNotImplemented, "read of attribute %v in stage %v", a, e.Stage)

	return 0
}

func (e *emitter) getAttributeU32(inst *ir.Inst) uint32 {
	a := inst.Arg(0).Attribute()

	switch a {
	case ir.AttrVertexId:
		return e.AddLoad(e.U32[1], e.builtin(e.VertexIndex, "VertexId"))
	case ir.AttrInstanceId:
		return e.AddLoad(e.U32[1], e.builtin(e.InstanceIndex, "InstanceId"))
	case ir.AttrPrimitiveId:
		return e.AddLoad(e.U32[1], e.builtin(e.PrimitiveID, "PrimitiveId"))
	case ir.AttrInvocationId:
		return e.AddLoad(e.U32[1], e.builtin(e.InvocationID, "InvocationId"))
	case ir.AttrWorkgroupId, ir.AttrLocalInvocationId:
		id := e.WorkgroupID
		if a == ir.AttrLocalInvocationId {
			id = e.LocalInvocationID
		}

		ptr := e.chain(StorageClassInput, e.U32[1], e.builtin(id, a.String()), e.Def(inst.Arg(1)))

		return e.AddLoad(e.U32[1], ptr)
	case ir.AttrIsFrontFace:
		ff := e.AddLoad(e.U1[1], e.builtin(e.FrontFacing, "IsFrontFace"))
		return e.AddSelect(e.U32[1], ff, e.ConstU32(^uint32(0)), e.U32Zero)
	case ir.AttrPackedHullInvocationInfo:
		prim := e.AddLoad(e.U32[1], e.builtin(e.PrimitiveID, a.String()))
		inv := e.AddLoad(e.U32[1], e.builtin(e.InvocationID, a.String()))
		inv = e.AddBinaryOp(OpShiftLeftLogical, e.U32[1], inv, e.ConstU32(8))

		return e.AddBinaryOp(OpBitwiseOr, e.U32[1], prim, inv)
	case ir.AttrTcsInputCpStride:
		e.hull(0)
		return e.ConstU32(e.Runtime.Hull.InputControlPointStride)
	}

	ir.Throw(ErrNotImplemented, "read of attribute %v as u32 in stage %v", a, e.Stage)

	return 0
}

func (e *emitter) setAttribute(inst *ir.Inst) {
	a := inst.Arg(0).Attribute()
	v := e.Def(inst.Arg(1))
	comp := e.immU32(inst.Arg(2), "attribute component")

	var ptr uint32

	switch {
	case a == ir.AttrPosition0:
		ptr = e.chain(StorageClassOutput, e.F32[1], e.builtin(e.OutputPosition, "Position"), e.ConstU32(comp))

	case a.IsPosition():
		// Position1 fills clip distances 0-3, Position2 clip 4-7,
		// Position3 cull 0-3.
		arr, base := e.ClipDistances, uint32(a-ir.AttrPosition1)*4
		if a == ir.AttrPosition3 {
			arr, base = e.CullDistances, 0
		}

		ptr = e.chain(StorageClassOutput, e.F32[1], e.builtin(arr, a.String()), e.ConstU32(base+comp))

	case a.IsParam() && e.Stage == shader.StageHull:
		n := uint32(a - ir.AttrParam0)
		if n >= e.TessOutputAttrs {
			ir.Throw(ir.ErrInvalidArgument, "write of %v beyond the output control point stride", a)
		}

		ptr = e.tessOutput(e.ConstU32(n), e.ConstU32(comp))

	case a.IsParam():
		p := e.OutputParams[a-ir.AttrParam0]
		if p.ID == 0 {
			ir.Throw(ir.ErrInvalidArgument, "write of undeclared output %v", a)
		}

		ptr = p.ID
		if p.NumComponents > 1 {
			ptr = e.chain(StorageClassOutput, e.F32[1], p.ID, e.ConstU32(comp))
		}

	case a.IsMrt():
		fc := e.FragColors[a-ir.AttrRenderTarget0]
		if fc.ID == 0 {
			ir.Throw(ir.ErrInvalidArgument, "write of undeclared output %v", a)
		}

		if fc.IsInteger {
			v = e.AddUnaryOp(OpBitcast, fc.ComponentType, v)
		}

		ptr = e.chain(StorageClassOutput, fc.ComponentType, fc.ID, e.ConstU32(comp))

	case a == ir.AttrDepth:
		ptr = e.builtin(e.FragDepth, "Depth")

	default:
		ir.Throw(ErrNotImplemented, "write of attribute %v in stage %v", a, e.Stage)
	}

	e.AddStore(ptr, v)
}

// tessOutput points at a component of the current invocation's output
// control point.
func (e *emitter) tessOutput(attr, comp uint32) uint32 {
	inv := e.AddLoad(e.U32[1], e.hull(e.InvocationID))

	return e.chain(StorageClassOutput, e.F32[1], e.TessOutputs, inv, attr, comp)
}

// patchPointer maps tessellation factors to the tess level builtins and
// generic patch dwords to the vec4 patch output array.
func (e *emitter) patchPointer(p ir.Patch) uint32 {
	e.hull(0)

	switch {
	case p < ir.PatchTessellationLodInteriorU:
		return e.chain(StorageClassOutput, e.F32[1], e.TessLevelOuter, e.ConstU32(uint32(p)))
	case p.IsFactor():
		return e.chain(StorageClassOutput, e.F32[1], e.TessLevelInner, e.ConstU32(uint32(p-ir.PatchTessellationLodInteriorU)))
	case p.IsGeneric():
		g := p.GenericIndex()
		return e.chain(StorageClassOutput, e.F32[1], e.PatchOutputs, e.ConstU32(g/4), e.ConstU32(g%4))
	}

	ir.Throw(ir.ErrInvalidArgument, "patch %v", p)

	return 0
}
