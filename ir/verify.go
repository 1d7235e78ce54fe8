package ir

import (
	"math/bits"

	"tlog.app/go/errors"
)

// ErrUseDef reports a mismatch between arguments and user lists.
var ErrUseDef = errors.New("use-def mismatch")

// CheckUseDef verifies that every argument edge of every instruction in p
// is mirrored in the producer's user list and that no user list entry
// lacks a matching argument.
func CheckUseDef(p *Program) error {
	expect := make(map[*Inst]int)

	for _, inst := range p.Instructions() {
		for k := range inst.NumArgs() {
			a := inst.Arg(k)
			if a.typ != TypeOpaque {
				continue
			}

			if !a.inst.users.has(inst.ref, k) {
				return errors.Wrap(ErrUseDef, "%%%d (%v) operand %d refers to %%%d, which does not list it", inst.ref, inst.op, k, a.inst.ref)
			}

			if a.inst.released {
				return errors.Wrap(ErrUseDef, "%%%d (%v) operand %d refers to released %%%d", inst.ref, inst.op, k, a.inst.ref)
			}

			expect[a.inst]++
		}
	}

	for _, inst := range p.Instructions() {
		if got := inst.users.numUses; got != expect[inst] {
			return errors.Wrap(ErrUseDef, "%%%d (%v) records %d uses, arguments show %d", inst.ref, inst.op, got, expect[inst])
		}

		n := 0
		for _, node := range inst.users.nodes {
			if node.mask == 0 {
				return errors.Wrap(ErrUseDef, "%%%d has an empty user node", inst.ref)
			}

			user := p.pool.Get(node.user)
			n += bits.OnesCount32(node.mask)

			if user.released {
				return errors.Wrap(ErrUseDef, "%%%d is used by released %%%d", inst.ref, user.ref)
			}
		}

		if n != inst.users.numUses {
			return errors.Wrap(ErrUseDef, "%%%d user masks count %d uses, counter says %d", inst.ref, n, inst.users.numUses)
		}
	}

	return nil
}
