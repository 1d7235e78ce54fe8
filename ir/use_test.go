package ir

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectUses(inst *Inst) (r []Use) {
	for it := inst.UseIter(); !it.Done(); it.Next() {
		r = append(r, it.Use())
	}

	return r
}

func TestUseIteratorEmpty(t *testing.T) {
	_, blk := newTestBlock()
	x := blk.Append(OpLaneId, 0)

	it := x.UseIter()
	assert.True(t, it.Done())

	for range x.Uses() {
		t.Fatal("unexpected use")
	}
}

func TestUseIteratorOneUser(t *testing.T) {
	_, blk := newTestBlock()
	x := blk.Append(OpLaneId, 0)
	neg := blk.Append(OpINeg32, 0, ValueOf(x))

	assert.Equal(t, []Use{{User: neg, Operand: 0}}, collectUses(x))
}

func TestUseIteratorFanOut(t *testing.T) {
	_, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	v := blk.Append(OpCompositeConstructU32x4, 0, ValueOf(x), Imm32(0), ValueOf(x), ValueOf(x))
	add := blk.Append(OpIAdd32, 0, Imm32(1), ValueOf(x))
	sel := blk.Append(OpSelectU32, 0, ImmU1(true), ValueOf(x), ValueOf(x))

	want := []Use{
		{User: v, Operand: 0},
		{User: v, Operand: 2},
		{User: v, Operand: 3},
		{User: add, Operand: 1},
		{User: sel, Operand: 1},
		{User: sel, Operand: 2},
	}

	assert.Equal(t, want, collectUses(x))
	assert.Equal(t, len(want), x.UseCount())

	var users []*Inst
	for u := range x.Users() {
		users = append(users, u)
	}

	assert.Equal(t, []*Inst{v, add, sel}, users)
}

func TestUsesSnapshotAllowsRewrite(t *testing.T) {
	p, blk := newTestBlock()

	x := blk.Append(OpLaneId, 0)
	y := blk.Append(OpLaneId, 0)

	for range 4 {
		blk.Append(OpIAdd32, 0, ValueOf(x), ValueOf(x))
	}

	n := 0
	for u := range x.Uses() {
		u.User.SetArg(u.Operand, ValueOf(y))
		n++
	}

	assert.Equal(t, 8, n)
	assert.False(t, x.HasUses())
	assert.Equal(t, 8, y.UseCount())
	require.NoError(t, CheckUseDef(p))
}

func TestUseDefRandomEdits(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		r := rand.New(rand.NewPCG(seed, 0x5eed))
		p := NewProgram(Info{})
		blk := p.NewBlock()

		var live []*Inst

		pick := func() Value {
			if len(live) == 0 || r.IntN(4) == 0 {
				return Imm32(r.Uint32())
			}

			return ValueOf(live[r.IntN(len(live))])
		}

		for range 8 {
			live = append(live, blk.Append(OpLaneId, 0))
		}

		for step := range 400 {
			switch r.IntN(6) {
			case 0:
				live = append(live, blk.Append(OpCompositeConstructU32x4, 0, pick(), pick(), pick(), pick()))
			case 1:
				phi := NewEmitter(blk, nil).Phi()
				for range r.IntN(4) {
					phi.AddPhiOperand(blk, pick())
				}

				live = append(live, phi)
			case 2:
				inst := live[r.IntN(len(live))]
				if n := inst.NumArgs(); n != 0 {
					inst.SetArg(r.IntN(n), pick())
				}
			case 3:
				inst := live[r.IntN(len(live))]
				if inst.Opcode() == OpPhi && inst.NumArgs() < maxUseOperand {
					inst.AddPhiOperand(blk, pick())
				}
			case 4:
				i := r.IntN(len(live))
				inst := live[i]
				repl := pick()

				if repl.typ == TypeOpaque && repl.inst == inst {
					continue
				}

				inst.ReplaceUsesWith(repl, r.IntN(2) == 0)

				if inst.Opcode() == OpVoid {
					blk.Erase(inst)
					live = append(live[:i], live[i+1:]...)
				}
			case 5:
				i := r.IntN(len(live))
				inst := live[i]

				if !inst.HasUses() {
					blk.Erase(inst)
					live = append(live[:i], live[i+1:]...)
				}
			}

			if len(live) == 0 {
				live = append(live, blk.Append(OpLaneId, 0))
			}

			require.NoError(t, CheckUseDef(p), "seed %d step %d", seed, step)
		}

		for _, inst := range live {
			n := 0
			for u := range inst.Uses() {
				assert.Same(t, inst, u.User.Arg(u.Operand).Inst())
				n++
			}

			assert.Equal(t, inst.UseCount(), n)
		}
	}
}
