package ir

// InstRef is the stable index of an instruction within its Pool.
type InstRef uint32

const poolChunk = 256

// Pool owns every instruction of a Program. Instructions are allocated in
// fixed chunks so their addresses and refs never move.
type Pool struct {
	chunks [][]Inst
	n      int
	live   int
}

func NewPool() *Pool {
	return &Pool{}
}

func (p *Pool) alloc(op Opcode, flags uint32) *Inst {
	if p.n%poolChunk == 0 {
		p.chunks = append(p.chunks, make([]Inst, poolChunk))
	}

	inst := &p.chunks[p.n/poolChunk][p.n%poolChunk]
	*inst = Inst{
		op:    op,
		flags: flags,
		ref:   InstRef(p.n),
		pool:  p,
	}

	p.n++
	p.live++

	return inst
}

func (p *Pool) release(inst *Inst) {
	assertf(inst.pool == p, "releasing %v into a foreign pool", inst.op)
	assertf(!inst.released, "double release of %%%d", inst.ref)

	inst.released = true
	p.live--
}

// Get returns the instruction for ref.
func (p *Pool) Get(ref InstRef) *Inst {
	i := int(ref)
	if i >= p.n {
		throw(ErrInvalidArgument, "instruction ref %d out of range", ref)
	}

	return &p.chunks[i/poolChunk][i%poolChunk]
}

// Len returns the number of instructions ever allocated.
func (p *Pool) Len() int { return p.n }

// Live returns the number of instructions not yet released by their block.
func (p *Pool) Live() int { return p.live }
