package ir

import (
	"fmt"
	"strings"
)

// Dump renders p as text. The format is stable and can be read back by
// package irasm; retired (Void) instructions are omitted.
func Dump(p *Program) string {
	var b strings.Builder

	fmt.Fprintf(&b, ".stage %v\n", p.Info.Stage)
	fmt.Fprintf(&b, ".hash 0x%016x\n", p.Info.PgmHash)

	for _, r := range p.Info.Buffers {
		fmt.Fprintf(&b, ".buffer %d", r.SharpIdx)

		if r.IsStorage {
			b.WriteString(" storage")
		}

		if r.IsWritten {
			b.WriteString(" written")
		}

		if r.UsedTypes.Has(TypeF32) {
			b.WriteString(" f32")
		}

		if r.NumDwords != 0 {
			fmt.Fprintf(&b, " dwords=%d", r.NumDwords)
		}

		b.WriteByte('\n')
	}

	for _, r := range p.Info.Samplers {
		fmt.Fprintf(&b, ".sampler %d\n", r.SharpIdx)
	}

	for _, blk := range p.Blocks {
		b.WriteByte('\n')
		DumpBlock(&b, blk)
	}

	return b.String()
}

// DumpBlock writes one block: its label, successor list and instructions.
func DumpBlock(b *strings.Builder, blk *Block) {
	b.WriteString(blk.String())
	b.WriteByte(':')

	for i, s := range blk.succs {
		if i == 0 {
			b.WriteString(" ->")
		} else {
			b.WriteByte(',')
		}

		b.WriteByte(' ')
		b.WriteString(s.String())
	}

	b.WriteByte('\n')

	for inst := range blk.Instructions() {
		if inst.op == OpVoid {
			continue
		}

		b.WriteByte('\t')
		b.WriteString(FormatInst(inst))
		b.WriteByte('\n')
	}
}

// FormatInst renders a single instruction line without indentation.
func FormatInst(inst *Inst) string {
	var b strings.Builder

	defines := inst.Type() != TypeVoid || inst.HasUses()
	if defines {
		fmt.Fprintf(&b, "%%%d = ", inst.ref)
	}

	b.WriteString(inst.op.String())

	if inst.flags != 0 {
		fmt.Fprintf(&b, "<%#x>", inst.flags)
	}

	for k := range inst.NumArgs() {
		if k == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}

		if inst.op == OpPhi {
			fmt.Fprintf(&b, "[%v, %v]", inst.phi[k].Pred, inst.phi[k].Value)
			continue
		}

		b.WriteString(inst.args[k].String())
	}

	if defines {
		fmt.Fprintf(&b, " ; uses=%d", inst.users.numUses)
	}

	return b.String()
}
