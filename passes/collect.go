package passes

import (
	"context"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// ShaderInfoCollection recomputes the usage summary in p.Info from the
// instructions left after rewriting: attribute loads and stores per
// component, shared memory, lane id, flattened constant reads and the
// half and double precision type families.
func ShaderInfoCollection(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) error {
	info := &p.Info

	info.Loads = ir.AttributeFlags{}
	info.Stores = ir.AttributeFlags{}
	info.UsesShared = false
	info.UsesFP16 = false
	info.UsesFP64 = false
	info.UsesLaneID = false
	info.HasReadConst = false

	for _, inst := range p.Instructions() {
		switch inst.Opcode() {
		case ir.OpGetAttribute:
			info.Loads.Set(inst.Arg(0).Attribute(), immComponent(inst.Arg(1)))
		case ir.OpGetAttributeU32:
			info.Loads.Set(inst.Arg(0).Attribute(), immComponent(inst.Arg(1)))
		case ir.OpSetAttribute:
			info.Stores.Set(inst.Arg(0).Attribute(), immComponent(inst.Arg(2)))
		case ir.OpLoadSharedU32, ir.OpLoadSharedU64, ir.OpLoadSharedU128,
			ir.OpWriteSharedU32, ir.OpWriteSharedU64, ir.OpWriteSharedU128,
			ir.OpSharedAtomicIAdd32, ir.OpSharedAtomicSMin32, ir.OpSharedAtomicUMin32,
			ir.OpSharedAtomicSMax32, ir.OpSharedAtomicUMax32:
			info.UsesShared = true
		case ir.OpLaneId:
			info.UsesLaneID = true
		case ir.OpReadConst:
			info.HasReadConst = true
		}

		t := inst.Type()

		for k := range inst.NumArgs() {
			if a := inst.Arg(k); a.IsImmediate() {
				t |= a.Type()
			}
		}

		info.UsesFP16 = info.UsesFP16 || t.IsF16()
		info.UsesFP64 = info.UsesFP64 || t.IsF64()
	}

	return nil
}

// immComponent returns the component index of an attribute access. A
// dynamic component marks component 0.
func immComponent(v ir.Value) uint32 {
	if !v.IsImmediate() || v.Type() != ir.TypeU32 {
		return 0
	}

	return v.U32() & 3
}
