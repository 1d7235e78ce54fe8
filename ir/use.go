package ir

import (
	"iter"
	"math/bits"
	"slices"
)

// maxUseOperand bounds operand indices representable in a user mask.
const maxUseOperand = 31

// Use is one reference to an instruction: the consumer and the argument
// index holding the reference.
type Use struct {
	User    *Inst
	Operand int
}

type userNode struct {
	user InstRef
	mask uint32
}

// userList keeps one node per distinct consumer, sorted by ref. Operand
// positions of a consumer are packed into the node mask.
type userList struct {
	nodes   []userNode
	numUses int
}

func (l *userList) find(user InstRef) (int, bool) {
	return slices.BinarySearchFunc(l.nodes, user, func(n userNode, r InstRef) int {
		return int(n.user) - int(r)
	})
}

func (l *userList) add(user InstRef, operand int) {
	assertf(operand < maxUseOperand, "operand %d does not fit a use mask", operand)

	bit := uint32(1) << operand

	i, ok := l.find(user)
	if !ok {
		l.nodes = slices.Insert(l.nodes, i, userNode{user: user, mask: bit})
	} else {
		assertf(l.nodes[i].mask&bit == 0, "use of %%%d at operand %d recorded twice", user, operand)
		l.nodes[i].mask |= bit
	}

	l.numUses++
}

func (l *userList) remove(user InstRef, operand int) {
	bit := uint32(1) << operand

	i, ok := l.find(user)
	assertf(ok, "no use by %%%d to remove", user)
	assertf(l.nodes[i].mask&bit != 0, "no use by %%%d at operand %d to remove", user, operand)

	l.nodes[i].mask &^= bit
	if l.nodes[i].mask == 0 {
		l.nodes = slices.Delete(l.nodes, i, i+1)
	}

	l.numUses--
}

func (l *userList) has(user InstRef, operand int) bool {
	i, ok := l.find(user)
	return ok && l.nodes[i].mask&(1<<operand) != 0
}

// UseIterator walks (user, operand) pairs of a user list, visiting operand
// bits of one consumer before moving to the next.
type UseIterator struct {
	pool  *Pool
	nodes []userNode
	i     int
	pos   uint32
}

func newUseIterator(pool *Pool, nodes []userNode) UseIterator {
	it := UseIterator{pool: pool, nodes: nodes}

	if len(nodes) != 0 {
		assertf(nodes[0].mask != 0, "empty user mask")
		it.pos = uint32(bits.TrailingZeros32(nodes[0].mask))
	}

	return it
}

// Done reports whether the iterator is past the last use.
func (it *UseIterator) Done() bool {
	return it.i >= len(it.nodes)
}

// Use returns the current use.
func (it *UseIterator) Use() Use {
	return Use{User: it.pool.Get(it.nodes[it.i].user), Operand: int(it.pos)}
}

// Next advances to the next operand bit, or to the next consumer when the
// current mask is exhausted.
func (it *UseIterator) Next() {
	mask := uint32(1) << (it.pos + 1)
	rest := it.nodes[it.i].mask &^ (mask - 1)

	if rest == 0 {
		it.i++
		if it.i == len(it.nodes) {
			it.pos = 0
			return
		}

		rest = it.nodes[it.i].mask
		assertf(rest != 0, "empty user mask")
	}

	it.pos = uint32(bits.TrailingZeros32(rest))
}

// UseIter returns an iterator over the live user list of i. The list must
// not be modified while iterating; use Uses for that.
func (i *Inst) UseIter() UseIterator {
	return newUseIterator(i.pool, i.users.nodes)
}

// Uses iterates over a snapshot of the users of i, so consumers may be
// rewritten during the loop.
func (i *Inst) Uses() iter.Seq[Use] {
	snapshot := slices.Clone(i.users.nodes)

	return func(yield func(Use) bool) {
		for it := newUseIterator(i.pool, snapshot); !it.Done(); it.Next() {
			if !yield(it.Use()) {
				return
			}
		}
	}
}

// Users iterates over the distinct consumers of i.
func (i *Inst) Users() iter.Seq[*Inst] {
	snapshot := slices.Clone(i.users.nodes)

	return func(yield func(*Inst) bool) {
		for _, n := range snapshot {
			if !yield(i.pool.Get(n.user)) {
				return
			}
		}
	}
}

// UseCount returns the number of (user, operand) references to i.
func (i *Inst) UseCount() int { return i.users.numUses }

// HasUses reports whether anything references i.
func (i *Inst) HasUses() bool { return i.users.numUses > 0 }
