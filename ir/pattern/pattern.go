// Package pattern matches the shape of IR expression trees.
//
// A Matcher tests one Value. Composite matchers built with Inst test the
// producing instruction and recurse into its operands, so multi-level idioms
// read like the expression they match:
//
//	var a, b, c ir.Value
//	mad := pattern.Inst(ir.OpIAdd32,
//		pattern.Inst(ir.OpIMul32, pattern.Value(&a), pattern.Value(&b)),
//		pattern.Value(&c))
//
//	if mad.Match(v) {
//		// a, b, c are bound
//	}
//
// Matching never modifies the program. Bindings made by a failed match may
// be partially written and must not be used.
package pattern

import (
	"github.com/gogpu/recompiler/ir"
)

// Matcher reports whether a value has the expected shape, binding captured
// sub-values on success.
type Matcher interface {
	Match(v ir.Value) bool
}

// Func adapts a function to Matcher.
type Func func(v ir.Value) bool

func (f Func) Match(v ir.Value) bool { return f(v) }

type (
	value struct{ dst *ir.Value }
	ignore struct{}
	imm struct{ dst *ir.Value }
	attr struct{ a ir.Attribute }
	u32 struct{ n uint32 }

	inst struct {
		op   ir.Opcode
		args []Matcher
	}
)

// Value matches anything and stores it into dst.
func Value(dst *ir.Value) Matcher { return value{dst: dst} }

// Ignore matches anything.
func Ignore() Matcher { return ignore{} }

// Imm matches an immediate, looking through identities, and stores it into dst.
func Imm(dst *ir.Value) Matcher { return imm{dst: dst} }

// Attribute matches the attribute immediate a.
func Attribute(a ir.Attribute) Matcher { return attr{a: a} }

// U32 matches the 32-bit immediate n.
func U32(n uint32) Matcher { return u32{n: n} }

// Inst matches a value produced by an op instruction whose operands match
// args in order. The number of args must equal the opcode arity.
func Inst(op ir.Opcode, args ...Matcher) Matcher {
	if len(args) != ir.NumArgsOf(op) {
		ir.Throw(ir.ErrInvalidArgument, "pattern for %v has %d operands, opcode takes %d", op, len(args), ir.NumArgsOf(op))
	}

	return inst{op: op, args: args}
}

func (m value) Match(v ir.Value) bool {
	*m.dst = v
	return true
}

func (ignore) Match(ir.Value) bool { return true }

func (m imm) Match(v ir.Value) bool {
	if !v.IsImmediate() {
		return false
	}

	*m.dst = v.Resolve()

	return true
}

func (m attr) Match(v ir.Value) bool {
	return v.IsImmediate() && v.Type() == ir.TypeAttribute && v.Attribute() == m.a
}

func (m u32) Match(v ir.Value) bool {
	return v.IsImmediate() && v.Type() == ir.TypeU32 && v.U32() == m.n
}

func (m inst) Match(v ir.Value) bool {
	in := v.TryInstRecursive()
	if in == nil || in.Opcode() != m.op {
		return false
	}

	for k, sub := range m.args {
		if !sub.Match(in.Arg(k)) {
			return false
		}
	}

	return true
}
