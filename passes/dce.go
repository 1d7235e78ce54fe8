package passes

import (
	"context"

	"github.com/oleiade/lane"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// DeadCodeElimination erases instructions that have no users and no side
// effects, following the operands of each erased instruction to find the
// ones it kept alive.
func DeadCodeElimination(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) error {
	q := lane.NewQueue()
	queued := map[*ir.Inst]bool{}

	push := func(inst *ir.Inst) {
		if queued[inst] {
			return
		}

		queued[inst] = true
		q.Enqueue(inst)
	}

	for _, inst := range p.Instructions() {
		push(inst)
	}

	for !q.Empty() {
		inst := q.Dequeue().(*ir.Inst)
		queued[inst] = false

		if inst.Block() == nil || inst.HasUses() || inst.MayHaveSideEffects() {
			continue
		}

		var producers []*ir.Inst

		for k := range inst.NumArgs() {
			if a := inst.Arg(k); a.IsInst() && a.Inst() != inst {
				producers = append(producers, a.Inst())
			}
		}

		inst.Block().Erase(inst)

		for _, in := range producers {
			if in.Block() != nil {
				push(in)
			}
		}
	}

	return nil
}
