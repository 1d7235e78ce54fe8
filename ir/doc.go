// Package ir defines the SSA intermediate representation of the recompiler.
//
// A Program is a list of Blocks; a Block is an ordered list of Insts. Every
// instruction is allocated from the Program's Pool and is addressed by a
// stable InstRef, so user lists can record consumers without holding
// pointers into the graph.
//
// # Values
//
// A Value is either an immediate (U1..F64, string, attribute, patch,
// register) or an opaque reference to the instruction producing it. Values
// are cheap to copy and never own what they point to.
//
// # Use-def graph
//
// Each instruction keeps a user list: one entry per distinct consumer with
// a bit per operand position. The forward edges (arguments) and reverse
// edges (users) are kept equal by routing every mutation through
// Inst.SetArg, Inst.AddPhiOperand, Inst.ClearArgs and Inst.Invalidate.
//
//	prod := blk.Append(ir.OpIAdd32, 0, a, b)
//	cons := blk.Append(ir.OpIMul32, 0, ir.ValueOf(prod), ir.ValueOf(prod))
//
//	for u := range prod.Uses() {
//		fmt.Println(u.User.Opcode(), u.Operand) // IMul32 0, IMul32 1
//	}
//
// # Identity
//
// Inst.ReplaceUsesWith with preserve keeps the replaced instruction as an
// Identity pointing at the replacement. Value accessors look through
// Identity chains transparently; passes collapse them later.
//
// # Errors
//
// Malformed input (bad argument index, phi misuse, double-counted uses)
// panics with an *Error. Hosts that compile many variants recover with
// Recover and treat the variant as failed.
package ir
