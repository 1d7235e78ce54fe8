package ir

// Emitter creates instructions at a fixed position of a block. New
// instructions go before pos, or at the end of the block when pos is nil.
type Emitter struct {
	block *Block
	pos   *Inst
}

func NewEmitter(b *Block, pos *Inst) *Emitter {
	return &Emitter{block: b, pos: pos}
}

// Block returns the block the emitter inserts into.
func (e *Emitter) Block() *Block { return e.block }

// Inst emits op with args and returns its result.
func (e *Emitter) Inst(op Opcode, args ...Value) Value {
	return ValueOf(e.block.InsertBefore(e.pos, op, 0, args...))
}

// InstFlags emits op with a flags word.
func (e *Emitter) InstFlags(op Opcode, flags uint32, args ...Value) Value {
	return ValueOf(e.block.InsertBefore(e.pos, op, flags, args...))
}

// Phi emits an empty phi at the head of the block.
func (e *Emitter) Phi() *Inst {
	return e.block.InsertBefore(e.block.first, OpPhi, 0)
}

func (e *Emitter) Identity(v Value) Value { return e.Inst(OpIdentity, v) }

func (e *Emitter) GetAttributeU32(a Attribute) Value {
	return e.Inst(OpGetAttributeU32, AttributeValue(a), Imm32(0))
}

func (e *Emitter) GetAttribute(a Attribute, comp, index uint32) Value {
	return e.Inst(OpGetAttribute, AttributeValue(a), Imm32(comp), Imm32(index))
}

func (e *Emitter) SetAttribute(a Attribute, v Value, comp uint32) {
	e.Inst(OpSetAttribute, AttributeValue(a), v, Imm32(comp))
}

func (e *Emitter) GetPatch(p Patch) Value {
	return e.Inst(OpGetPatch, PatchValue(p))
}

func (e *Emitter) SetPatch(p Patch, v Value) {
	e.Inst(OpSetPatch, PatchValue(p), v)
}

func (e *Emitter) GetTessGenericAttribute(vertex, attr, comp Value) Value {
	return e.Inst(OpGetTessGenericAttribute, vertex, attr, comp)
}

func (e *Emitter) ReadTcsGenericOuputAttribute(vertex, attr, comp Value) Value {
	return e.Inst(OpReadTcsGenericOuputAttribute, vertex, attr, comp)
}

// BitCastF32U32 reinterprets a U32 as F32.
func (e *Emitter) BitCastF32U32(v Value) Value { return e.Inst(OpBitCastF32U32, v) }

// BitCastU32F32 reinterprets an F32 as U32.
func (e *Emitter) BitCastU32F32(v Value) Value { return e.Inst(OpBitCastU32F32, v) }

func (e *Emitter) IAdd32(a, b Value) Value             { return e.Inst(OpIAdd32, a, b) }
func (e *Emitter) IMul32(a, b Value) Value             { return e.Inst(OpIMul32, a, b) }
func (e *Emitter) ShiftLeftLogical32(a, b Value) Value { return e.Inst(OpShiftLeftLogical32, a, b) }

func (e *Emitter) BitFieldSExtract(base, offset, count Value) Value {
	return e.Inst(OpBitFieldSExtract, base, offset, count)
}

func (e *Emitter) BitFieldUExtract(base, offset, count Value) Value {
	return e.Inst(OpBitFieldUExtract, base, offset, count)
}

// CompositeConstructU32 packs 2 to 4 dwords into a vector.
func (e *Emitter) CompositeConstructU32(parts ...Value) Value {
	switch len(parts) {
	case 2:
		return e.Inst(OpCompositeConstructU32x2, parts...)
	case 3:
		return e.Inst(OpCompositeConstructU32x3, parts...)
	case 4:
		return e.Inst(OpCompositeConstructU32x4, parts...)
	}

	throw(ErrInvalidArgument, "composite of %d components", len(parts))

	return Value{}
}

// CompositeExtractU32 reads dword index from a vector of n components.
func (e *Emitter) CompositeExtractU32(v Value, n int, index uint32) Value {
	switch n {
	case 2:
		return e.Inst(OpCompositeExtractU32x2, v, Imm32(index))
	case 3:
		return e.Inst(OpCompositeExtractU32x3, v, Imm32(index))
	case 4:
		return e.Inst(OpCompositeExtractU32x4, v, Imm32(index))
	}

	throw(ErrInvalidArgument, "composite of %d components", n)

	return Value{}
}

func (e *Emitter) ReadConstBuffer(handle, index Value) Value {
	return e.Inst(OpReadConstBuffer, handle, index)
}

func (e *Emitter) LoadShared(bits int, addr Value) Value {
	switch bits {
	case 32:
		return e.Inst(OpLoadSharedU32, addr)
	case 64:
		return e.Inst(OpLoadSharedU64, addr)
	case 128:
		return e.Inst(OpLoadSharedU128, addr)
	}

	throw(ErrInvalidArgument, "shared load of %d bits", bits)

	return Value{}
}

func (e *Emitter) WriteShared(bits int, addr, data Value) {
	switch bits {
	case 32:
		e.Inst(OpWriteSharedU32, addr, data)
	case 64:
		e.Inst(OpWriteSharedU64, addr, data)
	case 128:
		e.Inst(OpWriteSharedU128, addr, data)
	default:
		throw(ErrInvalidArgument, "shared write of %d bits", bits)
	}
}

// StoreBuffer emits a dword store of 1 to 4 components.
func (e *Emitter) StoreBuffer(n int, handle, addr, data Value, info BufferInstInfo) {
	ops := [...]Opcode{OpStoreBufferU32, OpStoreBufferU32x2, OpStoreBufferU32x3, OpStoreBufferU32x4}
	if n < 1 || n > len(ops) {
		throw(ErrInvalidArgument, "buffer store of %d dwords", n)
	}

	e.InstFlags(ops[n-1], uint32(info), handle, addr, data)
}
