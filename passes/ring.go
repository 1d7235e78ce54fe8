package passes

import (
	"tlog.app/go/errors"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/ir/pattern"
)

// Region is one of the LDS zones a hull shader addresses.
//
// The LDS layout is input control points of every patch, then output
// control points of every patch, then per-patch outputs of every patch.
// When the shader writes no new control points the input and output spaces
// overlap and only two regions exist.
type Region uint32

const (
	RegionInputCP Region = iota
	RegionOutputCP
	RegionPatchOutput
)

func (r Region) String() string {
	switch r {
	case RegionInputCP:
		return "input_cp"
	case RegionOutputCP:
		return "output_cp"
	case RegionPatchOutput:
		return "patch_output"
	default:
		return "region?"
	}
}

// ErrAddressShape is returned when an LDS address cannot be decomposed.
var ErrAddressShape = errors.New("unrecognized ring address")

var (
	numPatchesRead = pattern.Inst(ir.OpReadConstBuffer,
		pattern.Ignore(),
		pattern.Inst(ir.OpIAdd32, pattern.U32(0), pattern.U32(2)))

	numPatchesAttr    = pattern.AttributeRead(ir.AttrTcsNumPatches)
	primitiveIdAttr   = pattern.AttributeRead(ir.AttrPrimitiveId)
	inputCpStrideAttr = pattern.AttributeRead(ir.AttrTcsInputCpStride)
)

// RingAddress decomposes an LDS address into a sum of products.
//
// An address is expected to look like one of
//
//	input cp:     PrimitiveId * in_patch_stride + cp * in_cp_stride + attr_offset
//	output cp:    #patches * in_patch_size + PrimitiveId * out_patch_stride + InvocationId * out_cp_stride + attr_offset
//	patch output: #patches * in_patch_size + #patches * out_patch_size + PrimitiveId * patch_stride + attr_offset
//
// Each #patches term moves the address one region further. PrimitiveId
// terms are dropped. At most one term may contain a dynamic factor: it is
// the control point index. The remaining constant terms add up to the byte
// offset of the attribute inside its record.
type RingAddress struct {
	// Passthrough selects the two-region layout.
	Passthrough bool

	// terms[i] is the expression of the i-th summand; products[i] its factors.
	terms    []ir.Value
	products [][]ir.Value

	withinMul bool

	region  uint32
	offset  uint32
	index   ir.Value
	cpIndex ir.Value
}

// Walk decomposes the address operand of a shared memory access.
func (r *RingAddress) Walk(access *ir.Inst) error {
	addr := access.Arg(0)

	r.terms = append(r.terms[:0], addr)
	r.products = append(r.products[:0], nil)
	r.withinMul = false

	r.visit(addr)

	if len(r.terms) != len(r.products) {
		ir.Throw(ir.ErrLogic, "ring address has %d terms and %d products", len(r.terms), len(r.products))
	}

	return r.gather()
}

// RegionKind returns the region the address points into.
func (r *RingAddress) RegionKind() Region {
	if r.Passthrough {
		if r.region == 1 {
			return RegionPatchOutput
		}

		return RegionInputCP
	}

	return Region(r.region)
}

// Index is the summand holding the dynamic part of the address, as it
// appears in the program. It is empty when the address is constant.
func (r *RingAddress) Index() ir.Value { return r.index }

// ControlPointIndex is the single dynamic factor of Index, such as
// InvocationId in InvocationId * stride. It is empty when the index term
// has no such factor.
func (r *RingAddress) ControlPointIndex() ir.Value { return r.cpIndex }

// AttributeByteOffset is the constant byte offset of the access within its
// control point or patch record.
func (r *RingAddress) AttributeByteOffset() uint32 { return r.offset }

// Products returns the decomposed summands.
func (r *RingAddress) Products() [][]ir.Value { return r.products }

func (r *RingAddress) factor(v ir.Value) {
	last := len(r.products) - 1
	r.products[last] = append(r.products[last], v)
}

func (r *RingAddress) newTerm(v ir.Value) {
	r.terms = append(r.terms, v)
	r.products = append(r.products, nil)
}

func (r *RingAddress) mul(a, b ir.Value) {
	saved := r.withinMul
	r.withinMul = true

	r.visit(a)
	r.visit(b)

	r.withinMul = saved
}

func (r *RingAddress) visit(node ir.Value) {
	var a, b, c ir.Value

	switch {
	case pattern.IMad(pattern.Value(&a), pattern.Value(&b), pattern.Value(&c)).Match(node):
		// v_mad_i32_i24
		if r.withinMul {
			r.factor(node)
			return
		}

		r.terms[len(r.terms)-1] = node.InstRecursive().Arg(0)
		r.mul(a, b)

		r.newTerm(c)
		r.visit(c)

	case pattern.IMul24(pattern.Value(&a), pattern.Value(&b)).Match(node),
		pattern.Inst(ir.OpIMul32, pattern.Value(&a), pattern.Value(&b)).Match(node):
		r.mul(a, b)

	case pattern.Inst(ir.OpIAdd32, pattern.Value(&a), pattern.Value(&b)).Match(node):
		if r.withinMul {
			// (x + y) * z does not distribute into terms
			r.factor(node)
			return
		}

		r.terms[len(r.terms)-1] = a
		r.visit(a)

		r.newTerm(b)
		r.visit(b)

	case pattern.Inst(ir.OpShiftLeftLogical32, pattern.Value(&a), pattern.Imm(&b)).Match(node):
		saved := r.withinMul
		r.withinMul = true

		r.factor(ir.Imm32(1 << (b.U32() & 31)))
		r.visit(a)

		r.withinMul = saved

	case numPatchesRead.Match(node), numPatchesAttr.Match(node):
		r.factor(ir.AttributeValue(ir.AttrTcsNumPatches))

	case primitiveIdAttr.Match(node):
		r.factor(ir.AttributeValue(ir.AttrPrimitiveId))

	case pattern.Inst(ir.OpBitCastF32U32, pattern.Value(&a)).Match(node),
		pattern.Inst(ir.OpBitCastU32F32, pattern.Value(&a)).Match(node):
		r.visit(a)

	default:
		r.factor(node)
	}
}

func (r *RingAddress) gather() error {
	r.region = 0
	r.offset = 0
	r.index = ir.Value{}
	r.cpIndex = ir.Value{}

	dynamic := -1

terms:
	for i, term := range r.products {
		for _, f := range term {
			if f.Type() != ir.TypeAttribute {
				continue
			}

			switch f.Attribute() {
			case ir.AttrTcsNumPatches:
				r.region++
				continue terms
			case ir.AttrPrimitiveId:
				continue terms
			}
		}

		if isDynamic(term) {
			if dynamic >= 0 {
				return errors.Wrap(ErrAddressShape, "more than one dynamic term: %v and %v", r.terms[dynamic], r.terms[i])
			}

			dynamic = i
			r.index = r.terms[i]
			r.cpIndex = controlPointFactor(term)

			continue
		}

		if len(term) == 0 {
			continue
		}

		product := uint32(1)

		for _, f := range term {
			if f.Type() != ir.TypeU32 {
				return errors.Wrap(ErrAddressShape, "constant factor %v of type %v", f, f.Type())
			}

			product *= f.U32()
		}

		r.offset += product
	}

	if r.Passthrough && r.region > 1 {
		return errors.Wrap(ErrAddressShape, "passthrough shader address crosses %d regions", r.region)
	}

	if r.region > uint32(RegionPatchOutput) {
		return errors.Wrap(ErrAddressShape, "address crosses %d regions", r.region)
	}

	return nil
}

func isDynamic(term []ir.Value) bool {
	for _, f := range term {
		if !f.IsImmediate() {
			return true
		}
	}

	return false
}

// controlPointFactor returns the only dynamic factor of term, not counting
// the input control point stride.
func controlPointFactor(term []ir.Value) (cp ir.Value) {
	for _, f := range term {
		if f.IsImmediate() || inputCpStrideAttr.Match(f) {
			continue
		}

		if !cp.IsEmpty() {
			return ir.Value{}
		}

		cp = f
	}

	return cp
}
