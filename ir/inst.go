package ir

// PhiArg is one incoming edge of a phi instruction.
type PhiArg struct {
	Pred  *Block
	Value Value
}

// Inst is one node of the data-flow graph.
//
// A non-phi instruction keeps its operands in args, sized for the widest
// opcode; a phi keeps them in phi. Only the member matching the opcode is
// ever populated. Every operand that refers to another instruction is
// mirrored in that instruction's user list, and all mutation goes through
// SetArg, AddPhiOperand, ClearArgs and Invalidate to keep both directions
// in sync.
type Inst struct {
	op    Opcode
	flags uint32
	def   uint32

	ref      InstRef
	pool     *Pool
	block    *Block
	released bool

	prev, next *Inst

	args [MaxArgs]Value
	phi  []PhiArg

	users userList
}

func (i *Inst) Opcode() Opcode { return i.op }
func (i *Inst) Ref() InstRef   { return i.ref }
func (i *Inst) Block() *Block  { return i.block }
func (i *Inst) Type() Type     { return TypeOf(i.op) }

// Prev and Next walk the owning block in program order.
func (i *Inst) Prev() *Inst { return i.prev }
func (i *Inst) Next() *Inst { return i.next }

// Flags returns the raw opcode-specific flags word. See FlagsAs.
func (i *Inst) Flags() uint32 { return i.flags }

func (i *Inst) SetFlags(f uint32) { i.flags = f }

// FlagsAs reinterprets the flags word of inst as T.
func FlagsAs[T ~uint32](inst *Inst) T { return T(inst.flags) }

// SetFlagsAs stores a typed flags view into inst.
func SetFlagsAs[T ~uint32](inst *Inst, f T) { inst.flags = uint32(f) }

// Definition returns the backend handle recorded for the result of i.
func (i *Inst) Definition() uint32 { return i.def }

func (i *Inst) SetDefinition(def uint32) { i.def = def }

// NumArgs is the opcode arity, or the operand count for a phi.
func (i *Inst) NumArgs() int {
	if i.op == OpPhi {
		return len(i.phi)
	}

	return NumArgsOf(i.op)
}

// Arg returns argument index.
func (i *Inst) Arg(index int) Value {
	if index < 0 || index >= i.NumArgs() {
		throw(ErrInvalidArgument, "out of bounds argument index %d in opcode %v", index, i.op)
	}

	if i.op == OpPhi {
		return i.phi[index].Value
	}

	return i.args[index]
}

// SetArg replaces argument index, moving the use edge from the old
// producer to the new one.
func (i *Inst) SetArg(index int, v Value) {
	if index < 0 || index >= i.NumArgs() {
		throw(ErrInvalidArgument, "out of bounds argument index %d in opcode %v", index, i.op)
	}

	old := i.Arg(index)
	if old.typ == TypeOpaque {
		i.undoUse(old.inst, index)
	}

	if v.typ == TypeOpaque {
		i.use(v.inst, index)
	}

	if i.op == OpPhi {
		i.phi[index].Value = v
	} else {
		i.args[index] = v
	}
}

// PhiBlock returns the predecessor of phi operand index.
func (i *Inst) PhiBlock(index int) *Block {
	if i.op != OpPhi {
		throw(ErrLogic, "%v is not a phi instruction", i.op)
	}

	if index < 0 || index >= len(i.phi) {
		throw(ErrInvalidArgument, "out of bounds argument index %d in phi instruction", index)
	}

	return i.phi[index].Pred
}

// AddPhiOperand appends an incoming edge to a phi.
func (i *Inst) AddPhiOperand(pred *Block, v Value) {
	if i.op != OpPhi {
		throw(ErrLogic, "%v is not a phi instruction", i.op)
	}

	if v.typ == TypeOpaque {
		i.use(v.inst, len(i.phi))
	}

	i.phi = append(i.phi, PhiArg{Pred: pred, Value: v})
}

// ClearArgs drops every operand and its use edge.
func (i *Inst) ClearArgs() {
	if i.op == OpPhi {
		for k, a := range i.phi {
			if a.Value.typ == TypeOpaque {
				i.undoUse(a.Value.inst, k)
			}
		}

		i.phi = nil

		return
	}

	for k, a := range i.args {
		if a.typ == TypeOpaque {
			i.undoUse(a.inst, k)
		}
	}

	i.args = [MaxArgs]Value{}
}

// Invalidate retires i: operands are cleared and the opcode becomes Void.
// Nothing may still use i.
func (i *Inst) Invalidate() {
	i.ClearArgs()
	assertf(i.users.numUses == 0, "invalidating %v with %d uses", i.op, i.users.numUses)
	i.ReplaceOpcode(OpVoid)
}

// ReplaceUsesWith points every user of i at repl and retires i. When
// preserve is set, i stays behind as Identity(repl) so handles to it still
// resolve to the replacement.
func (i *Inst) ReplaceUsesWith(repl Value, preserve bool) {
	for u := range i.Uses() {
		assertf(u.User.Arg(u.Operand).inst == i, "stale use %%%d:%d", u.User.ref, u.Operand)
		u.User.SetArg(u.Operand, repl)
	}

	i.Invalidate()

	if preserve {
		i.ReplaceOpcode(OpIdentity)
		i.SetArg(0, repl)
	}
}

// ReplaceUsesWithAndRemove is ReplaceUsesWith without the identity.
func (i *Inst) ReplaceUsesWithAndRemove(repl Value) {
	i.ReplaceUsesWith(repl, false)
}

// ReplaceOpcode changes the opcode in place. Turning an instruction into a
// phi is not allowed; leaving phi drops the phi operands first.
func (i *Inst) ReplaceOpcode(op Opcode) {
	if op == OpPhi {
		throw(ErrLogic, "cannot transition %v into phi", i.op)
	}

	if i.op == OpPhi {
		i.ClearArgs()
		i.args = [MaxArgs]Value{}
	}

	i.op = op
}

// MayHaveSideEffects reports whether i must be kept even without uses.
func (i *Inst) MayHaveSideEffects() bool {
	return sideEffects[i.op]
}

// AreAllArgsImmediates reports whether every operand resolves to an
// immediate.
func (i *Inst) AreAllArgsImmediates() bool {
	if i.op == OpPhi {
		throw(ErrLogic, "testing for immediate arguments on a phi instruction")
	}

	for k := range NumArgsOf(i.op) {
		if !i.args[k].IsImmediate() {
			return false
		}
	}

	return true
}

func (i *Inst) use(used *Inst, operand int) {
	used.users.add(i.ref, operand)
}

func (i *Inst) undoUse(used *Inst, operand int) {
	used.users.remove(i.ref, operand)
}

var sideEffects = func() (t [numOpcodes]bool) {
	for _, op := range []Opcode{
		OpBarrier, OpWorkgroupMemoryBarrier, OpDeviceMemoryBarrier, OpTcsOutputBarrier,
		OpConditionRef, OpReference, OpPhiMove, OpPrologue, OpEpilogue,
		OpDiscard, OpDiscardCond,
		OpSetAttribute, OpSetPatch, OpSetTcsGenericAttribute,
		OpSetScalarRegister, OpSetVectorRegister,
		OpStoreBufferU32, OpStoreBufferU32x2, OpStoreBufferU32x3, OpStoreBufferU32x4,
		OpStoreBufferFormatF32,
		OpBufferAtomicIAdd32, OpBufferAtomicSMin32, OpBufferAtomicUMin32,
		OpBufferAtomicSMax32, OpBufferAtomicUMax32, OpBufferAtomicInc32,
		OpBufferAtomicDec32, OpBufferAtomicAnd32, OpBufferAtomicOr32,
		OpBufferAtomicXor32, OpBufferAtomicSwap32,
		OpDataAppend, OpDataConsume,
		OpWriteSharedU32, OpWriteSharedU64, OpWriteSharedU128,
		OpSharedAtomicIAdd32, OpSharedAtomicSMin32, OpSharedAtomicUMin32,
		OpSharedAtomicSMax32, OpSharedAtomicUMax32,
		OpImageWrite,
		OpImageAtomicIAdd32, OpImageAtomicSMin32, OpImageAtomicUMin32,
		OpImageAtomicSMax32, OpImageAtomicUMax32, OpImageAtomicInc32,
		OpImageAtomicDec32, OpImageAtomicAnd32, OpImageAtomicOr32,
		OpImageAtomicXor32, OpImageAtomicExchange32,
		OpDebugPrint,
		OpEmitVertex, OpEmitPrimitive,
	} {
		t[op] = true
	}

	return t
}()
