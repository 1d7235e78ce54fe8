package ir

import (
	"iter"
	"strconv"
)

// Block is a basic block: an ordered list of instructions owned by one
// Program.
type Block struct {
	index int
	pool  *Pool

	first, last *Inst
	n           int

	preds []*Block
	succs []*Block
}

func (b *Block) Index() int  { return b.index }
func (b *Block) Len() int    { return b.n }
func (b *Block) Front() *Inst { return b.first }
func (b *Block) Back() *Inst  { return b.last }

func (b *Block) String() string {
	return "block" + strconv.Itoa(b.index)
}

// Predecessors returns the blocks branching to b.
func (b *Block) Predecessors() []*Block { return b.preds }

// Successors returns the blocks b branches to.
func (b *Block) Successors() []*Block { return b.succs }

// AddBranch records a control-flow edge from b to succ.
func (b *Block) AddBranch(succ *Block) {
	b.succs = append(b.succs, succ)
	succ.preds = append(succ.preds, b)
}

// Append adds a new instruction at the end of b.
func (b *Block) Append(op Opcode, flags uint32, args ...Value) *Inst {
	return b.InsertBefore(nil, op, flags, args...)
}

// InsertBefore adds a new instruction before pos, or at the end if pos is nil.
func (b *Block) InsertBefore(pos *Inst, op Opcode, flags uint32, args ...Value) *Inst {
	if op == OpPhi && len(args) != 0 {
		throw(ErrInvalidArgument, "phi operands must be added with AddPhiOperand")
	}

	if op != OpPhi && len(args) > NumArgsOf(op) {
		throw(ErrInvalidArgument, "%d arguments for opcode %v taking %d", len(args), op, NumArgsOf(op))
	}

	inst := b.pool.alloc(op, flags)

	for k, a := range args {
		inst.SetArg(k, a)
	}

	b.link(pos, inst)

	return inst
}

// InsertClone copies src before pos. The copy gets the same opcode, flags
// and arguments, each registered as a fresh use; it has no users itself.
// Copying a phi is not supported.
func (b *Block) InsertClone(pos, src *Inst) *Inst {
	if src.op == OpPhi {
		throw(ErrNotImplemented, "copying phi node")
	}

	inst := b.pool.alloc(src.op, src.flags)

	for k := range NumArgsOf(src.op) {
		inst.SetArg(k, src.args[k])
	}

	b.link(pos, inst)

	return inst
}

// Erase retires inst and removes it from b. inst must have no users.
func (b *Block) Erase(inst *Inst) {
	assertf(inst.block == b, "%v is not in %v", inst.op, b)

	if inst.op != OpVoid {
		inst.Invalidate()
	}

	b.unlink(inst)
	b.pool.release(inst)
}

// Instructions iterates b in program order. The current instruction may be
// erased or have instructions inserted before it during the loop.
func (b *Block) Instructions() iter.Seq[*Inst] {
	return func(yield func(*Inst) bool) {
		for inst := b.first; inst != nil; {
			next := inst.next

			if !yield(inst) {
				return
			}

			inst = next
		}
	}
}

// Phis iterates the phi instructions at the head of b.
func (b *Block) Phis() iter.Seq[*Inst] {
	return func(yield func(*Inst) bool) {
		for inst := b.first; inst != nil && inst.op == OpPhi; inst = inst.next {
			if !yield(inst) {
				return
			}
		}
	}
}

func (b *Block) link(pos, inst *Inst) {
	inst.block = b
	b.n++

	if pos == nil {
		inst.prev = b.last

		if b.last != nil {
			b.last.next = inst
		} else {
			b.first = inst
		}

		b.last = inst

		return
	}

	assertf(pos.block == b, "insert position is not in %v", b)

	inst.prev = pos.prev
	inst.next = pos

	if pos.prev != nil {
		pos.prev.next = inst
	} else {
		b.first = inst
	}

	pos.prev = inst
}

func (b *Block) unlink(inst *Inst) {
	if inst.prev != nil {
		inst.prev.next = inst.next
	} else {
		b.first = inst.next
	}

	if inst.next != nil {
		inst.next.prev = inst.prev
	} else {
		b.last = inst.prev
	}

	inst.prev, inst.next = nil, nil
	inst.block = nil
	b.n--
}
