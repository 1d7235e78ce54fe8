package passes

import (
	"context"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// IdentityRemoval points every argument past Identity chains and erases the
// identities and retired (Void) instructions.
func IdentityRemoval(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) error {
	var dead []*ir.Inst

	for _, inst := range p.Instructions() {
		switch inst.Opcode() {
		case ir.OpIdentity, ir.OpVoid:
			dead = append(dead, inst)
			continue
		}

		for k := range inst.NumArgs() {
			a := inst.Arg(k)
			if a.IsIdentity() {
				inst.SetArg(k, a.Resolve())
			}
		}
	}

	// identities may still feed each other until all of them are cleared
	for _, inst := range dead {
		if inst.Opcode() == ir.OpIdentity {
			inst.ClearArgs()
		}
	}

	for _, inst := range dead {
		inst.Block().Erase(inst)
	}

	return nil
}
