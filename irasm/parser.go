package irasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("syntax error")

// ParseError is a parse failure at a source position.
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// Parser builds a Program from tokens.
type Parser struct {
	tokens  []Token
	current int

	prog   *ir.Program
	blocks map[string]*ir.Block
	values map[uint64]ir.Value
	phis   []pendingPhi

	blk *ir.Block
}

type pendingPhi struct {
	inst *ir.Inst
	ops  []phiOperand
}

type phiOperand struct {
	pred *ir.Block
	val  ir.Value
	ref  Token // TokenValue for forward references
}

// Parse reads a program in the form written by ir.Dump.
func Parse(src string) (*ir.Program, error) {
	return NewParser(NewLexer(src).Tokenize()).Parse()
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		blocks: make(map[string]*ir.Block),
		values: make(map[uint64]ir.Value),
	}
}

// Parse parses the tokens. Blocks are created in the order their labels
// appear; values may be referenced before definition only by phi nodes.
func (p *Parser) Parse() (prog *ir.Program, err error) {
	p.prog = ir.NewProgram(ir.Info{})

	if err = p.declareBlocks(); err != nil {
		return nil, err
	}

	for !p.check(TokenEOF) {
		if p.match(TokenNewline) {
			continue
		}

		switch {
		case p.check(TokenDirective):
			err = p.directive()
		case p.check(TokenIdent) && p.checkNext(TokenColon):
			err = p.blockHeader()
		default:
			err = p.instruction()
		}

		if err != nil {
			return nil, err
		}
	}

	if err = p.resolvePhis(); err != nil {
		return nil, err
	}

	return p.prog, nil
}

func (p *Parser) declareBlocks() error {
	lineStart := true

	for i, t := range p.tokens {
		if lineStart && t.Kind == TokenIdent && i+1 < len(p.tokens) && p.tokens[i+1].Kind == TokenColon {
			if _, ok := p.blocks[t.Lexeme]; ok {
				return p.errorAt(t, "block %s redefined", t.Lexeme)
			}

			p.blocks[t.Lexeme] = p.prog.NewBlock()
		}

		lineStart = t.Kind == TokenNewline
	}

	return nil
}

func (p *Parser) directive() error {
	t := p.advance()

	switch t.Lexeme {
	case "stage":
		name, err := p.consume(TokenIdent, "stage name")
		if err != nil {
			return err
		}

		st, ok := shader.ParseStage(name.Lexeme)
		if !ok {
			return p.errorAt(name, "unknown stage %q", name.Lexeme)
		}

		p.prog.Info.Stage = st
	case "hash":
		h, err := p.number(64)
		if err != nil {
			return err
		}

		p.prog.Info.PgmHash = h
	case "buffer":
		idx, err := p.number(32)
		if err != nil {
			return err
		}

		r := ir.BufferResource{SharpIdx: uint32(idx)}

		for p.check(TokenIdent) {
			attr := p.advance()

			switch attr.Lexeme {
			case "storage":
				r.IsStorage = true
			case "written":
				r.IsWritten = true
			case "f32":
				r.UsedTypes |= ir.TypeF32
			case "dwords":
				if _, err = p.consume(TokenEqual, "'=' after dwords"); err != nil {
					return err
				}

				n, err := p.number(32)
				if err != nil {
					return err
				}

				r.NumDwords = uint32(n)
			default:
				return p.errorAt(attr, "unknown buffer attribute %q", attr.Lexeme)
			}
		}

		p.prog.Info.Buffers = append(p.prog.Info.Buffers, r)
	case "sampler":
		idx, err := p.number(32)
		if err != nil {
			return err
		}

		p.prog.Info.Samplers = append(p.prog.Info.Samplers, ir.SamplerResource{SharpIdx: uint32(idx)})
	default:
		return p.errorAt(t, "unknown directive .%s", t.Lexeme)
	}

	return p.endOfLine()
}

func (p *Parser) blockHeader() error {
	name := p.advance()
	p.advance() // ':'

	p.blk = p.blocks[name.Lexeme]

	if p.match(TokenArrow) {
		for {
			succ, err := p.blockRef()
			if err != nil {
				return err
			}

			p.blk.AddBranch(succ)

			if !p.match(TokenComma) {
				break
			}
		}
	}

	return p.endOfLine()
}

func (p *Parser) instruction() (err error) {
	var def *Token

	if p.check(TokenValue) {
		t := p.advance()
		def = &t

		if _, err = p.consume(TokenEqual, "'=' after result"); err != nil {
			return err
		}
	}

	name, err := p.consume(TokenIdent, "opcode")
	if err != nil {
		return err
	}

	if p.blk == nil {
		return p.errorAt(name, "instruction outside of a block")
	}

	op, ok := ir.LookupOpcode(name.Lexeme)
	if !ok {
		return p.errorAt(name, "unknown opcode %q", name.Lexeme)
	}

	var flags uint64

	if p.match(TokenLess) {
		if flags, err = p.number(32); err != nil {
			return err
		}

		if _, err = p.consume(TokenGreater, "'>' after flags"); err != nil {
			return err
		}
	}

	var inst *ir.Inst

	if op == ir.OpPhi {
		inst, err = p.phi(uint32(flags))
	} else {
		inst, err = p.plain(name, op, uint32(flags))
	}

	if err != nil {
		return err
	}

	if def != nil {
		ref, err := p.valueRef(*def)
		if err != nil {
			return err
		}

		if _, ok := p.values[ref]; ok {
			return p.errorAt(*def, "%%%d redefined", ref)
		}

		p.values[ref] = ir.ValueOf(inst)
	}

	return p.endOfLine()
}

func (p *Parser) plain(name Token, op ir.Opcode, flags uint32) (inst *ir.Inst, err error) {
	var args []ir.Value

	for !p.check(TokenNewline) && !p.check(TokenEOF) {
		if len(args) != 0 {
			if _, err = p.consume(TokenComma, "',' between arguments"); err != nil {
				return nil, err
			}
		}

		t := p.peek()

		v, fwd, err := p.operand()
		if err != nil {
			return nil, err
		}

		if fwd {
			return nil, p.errorAt(t, "%%%s used before definition", t.Lexeme)
		}

		args = append(args, v)
	}

	defer func() {
		if err != nil {
			err = p.errorAt(name, "%v", err)
		}
	}()
	defer ir.Recover(&err)

	return p.blk.Append(op, flags, args...), nil
}

func (p *Parser) phi(flags uint32) (*ir.Inst, error) {
	pending := pendingPhi{inst: p.blk.Append(ir.OpPhi, flags)}

	for !p.check(TokenNewline) && !p.check(TokenEOF) {
		if len(pending.ops) != 0 {
			if _, err := p.consume(TokenComma, "',' between phi operands"); err != nil {
				return nil, err
			}
		}

		if _, err := p.consume(TokenLBracket, "'[' before phi operand"); err != nil {
			return nil, err
		}

		pred, err := p.blockRef()
		if err != nil {
			return nil, err
		}

		if _, err = p.consume(TokenComma, "',' after predecessor"); err != nil {
			return nil, err
		}

		t := p.peek()

		v, fwd, err := p.operand()
		if err != nil {
			return nil, err
		}

		o := phiOperand{pred: pred, val: v}
		if fwd {
			o.ref = t
		}

		pending.ops = append(pending.ops, o)

		if _, err = p.consume(TokenRBracket, "']' after phi operand"); err != nil {
			return nil, err
		}
	}

	p.phis = append(p.phis, pending)

	return pending.inst, nil
}

func (p *Parser) resolvePhis() (err error) {
	defer ir.Recover(&err)

	for _, ph := range p.phis {
		for _, o := range ph.ops {
			if o.ref.Kind == TokenValue {
				ref, _ := p.valueRef(o.ref)

				v, ok := p.values[ref]
				if !ok {
					return p.errorAt(o.ref, "%%%d is never defined", ref)
				}

				o.val = v
			}

			ph.inst.AddPhiOperand(o.pred, o.val)
		}
	}

	return nil
}

// operand parses one argument. fwd reports a reference to a value not yet
// defined.
func (p *Parser) operand() (v ir.Value, fwd bool, err error) {
	t := p.advance()

	switch t.Kind {
	case TokenValue:
		ref, err := p.valueRef(t)
		if err != nil {
			return v, false, err
		}

		v, ok := p.values[ref]

		return v, !ok, nil
	case TokenImmediate:
		v, err = p.immediate(t)
	case TokenString:
		s, uerr := strconv.Unquote(t.Lexeme)
		if uerr != nil {
			return v, false, p.errorAt(t, "bad string literal")
		}

		v = ir.StringValue(s)
	case TokenIdent:
		v, err = p.named(t)
	default:
		err = p.errorAt(t, "expected operand, got %v", t.Kind)
	}

	return v, false, err
}

func (p *Parser) immediate(t Token) (ir.Value, error) {
	s := t.Lexeme

	for _, sfx := range []struct {
		suffix string
		bits   int
		value  func(uint64) ir.Value
	}{
		{"u8", 8, func(x uint64) ir.Value { return ir.Imm8(uint8(x)) }},
		{"u16", 16, func(x uint64) ir.Value { return ir.Imm16(uint16(x)) }},
		{"u64", 64, ir.Imm64},
	} {
		if digits, ok := strings.CutSuffix(s, sfx.suffix); ok {
			x, err := strconv.ParseUint(digits, 10, sfx.bits)
			if err != nil {
				return ir.Value{}, p.errorAt(t, "bad immediate #%s", s)
			}

			return sfx.value(x), nil
		}
	}

	if digits, ok := strings.CutSuffix(s, "f"); ok {
		f, err := strconv.ParseFloat(digits, 32)
		if err != nil {
			return ir.Value{}, p.errorAt(t, "bad float immediate #%s", s)
		}

		return ir.ImmF32(float32(f)), nil
	}

	if digits, ok := strings.CutSuffix(s, "d"); ok {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return ir.Value{}, p.errorAt(t, "bad double immediate #%s", s)
		}

		return ir.ImmF64(f), nil
	}

	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return ir.Value{}, p.errorAt(t, "bad immediate #%s", s)
	}

	return ir.Imm32(uint32(x)), nil
}

// named resolves identifiers used as operands: booleans, void, attributes,
// patches, registers and raw float bit patterns like f32(0x7fc00000).
func (p *Parser) named(t Token) (ir.Value, error) {
	s := t.Lexeme

	switch s {
	case "true", "false":
		return ir.ImmU1(s == "true"), nil
	case "void":
		return ir.Value{}, nil
	case "f16", "f32", "f64":
		return p.rawFloat(t)
	}

	if a, ok := ir.ParseAttribute(s); ok {
		return ir.AttributeValue(a), nil
	}

	if pt, ok := ir.ParsePatch(s); ok {
		return ir.PatchValue(pt), nil
	}

	if len(s) > 1 && (s[0] == 's' || s[0] == 'v') {
		if n, err := strconv.ParseUint(s[1:], 10, 32); err == nil {
			if s[0] == 's' {
				return ir.ScalarRegValue(ir.ScalarReg(n)), nil
			}

			return ir.VectorRegValue(ir.VectorReg(n)), nil
		}
	}

	return ir.Value{}, p.errorAt(t, "unknown operand %q", s)
}

func (p *Parser) rawFloat(t Token) (ir.Value, error) {
	if _, err := p.consume(TokenLParen, "'(' after "+t.Lexeme); err != nil {
		return ir.Value{}, err
	}

	bits := 16
	switch t.Lexeme {
	case "f32":
		bits = 32
	case "f64":
		bits = 64
	}

	x, err := p.number(bits)
	if err != nil {
		return ir.Value{}, err
	}

	if _, err = p.consume(TokenRParen, "')'"); err != nil {
		return ir.Value{}, err
	}

	switch bits {
	case 16:
		return ir.ImmF16Bits(uint16(x)), nil
	case 32:
		return ir.ImmF32Bits(uint32(x)), nil
	default:
		return ir.ImmF64(math.Float64frombits(x)), nil
	}
}

func (p *Parser) blockRef() (*ir.Block, error) {
	t, err := p.consume(TokenIdent, "block label")
	if err != nil {
		return nil, err
	}

	b, ok := p.blocks[t.Lexeme]
	if !ok {
		return nil, p.errorAt(t, "undefined block %s", t.Lexeme)
	}

	return b, nil
}

func (p *Parser) valueRef(t Token) (uint64, error) {
	ref, err := strconv.ParseUint(t.Lexeme, 10, 32)
	if err != nil {
		return 0, p.errorAt(t, "bad value reference %%%s", t.Lexeme)
	}

	return ref, nil
}

func (p *Parser) number(bits int) (uint64, error) {
	t, err := p.consume(TokenNumber, "number")
	if err != nil {
		return 0, err
	}

	x, err := strconv.ParseUint(t.Lexeme, 0, bits)
	if err != nil {
		return 0, p.errorAt(t, "bad number %s", t.Lexeme)
	}

	return x, nil
}

func (p *Parser) endOfLine() error {
	if p.check(TokenEOF) {
		return nil
	}

	_, err := p.consume(TokenNewline, "end of line")

	return err
}

func (p *Parser) consume(kind TokenKind, what string) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	t := p.peek()

	return t, p.errorAt(t, "expected %s, got %v %q", what, t.Kind, t.Lexeme)
}

func (p *Parser) errorAt(t Token, format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Token: t}
}

func (p *Parser) match(kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}

	p.advance()

	return true
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkNext(kind TokenKind) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}

	return p.tokens[p.current+1].Kind == kind
}

func (p *Parser) advance() Token {
	t := p.peek()

	if t.Kind != TokenEOF {
		p.current++
	}

	return t
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}
