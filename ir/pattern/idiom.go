package pattern

import "github.com/gogpu/recompiler/ir"

// SExt24 matches the low 24 bits of x sign-extended, the operand form of
// the 24-bit multiply instructions.
func SExt24(x Matcher) Matcher {
	return Inst(ir.OpBitFieldSExtract, x, U32(0), U32(24))
}

// IMul24 matches a 24-bit signed multiply a * b.
func IMul24(a, b Matcher) Matcher {
	return Inst(ir.OpIMul32, SExt24(a), SExt24(b))
}

// IMad matches a 24-bit signed multiply-add a * b + c.
func IMad(a, b, c Matcher) Matcher {
	return Inst(ir.OpIAdd32, IMul24(a, b), c)
}

// AttributeRead matches GetAttributeU32(a, _).
func AttributeRead(a ir.Attribute) Matcher {
	return Inst(ir.OpGetAttributeU32, Attribute(a), Ignore())
}
