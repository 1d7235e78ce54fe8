package spirv

import (
	"encoding/binary"
	"fmt"
	"strings"

	"tlog.app/go/errors"
)

// ErrMalformed is returned by Disassemble for truncated or corrupt input.
var ErrMalformed = errors.New("malformed module")

// Operand kinds, one letter each:
//
//	i id         n literal     s string
//	c capability S storage     m model     M mode
//	D dim        d decoration (consumes a BuiltIn operand)
//	a addressing y memory      F function control
//
// '*' repeats the previous kind. Operands past the end are literals.
var operandFormats = map[OpCode]string{
	OpSource:            "nn",
	OpName:              "is",
	OpMemberName:        "ins",
	OpString:            "s",
	OpExtension:         "s",
	OpExtInstImport:     "s",
	OpExtInst:           "ini*",
	OpMemoryModel:       "ay",
	OpEntryPoint:        "misi*",
	OpExecutionMode:     "iM",
	OpCapability:        "c",
	OpTypeInt:           "n",
	OpTypeFloat:         "n",
	OpTypeVector:        "in",
	OpTypeImage:         "iD",
	OpTypeArray:         "ii",
	OpTypePointer:       "Si",
	OpConstant:          "n",
	OpFunction:          "Fi",
	OpVariable:          "S",
	OpDecorate:          "id",
	OpMemberDecorate:    "ind",
	OpCompositeExtract:  "in*",
	OpSelectionMerge:    "in",
	OpLabel:             "",
	OpReturn:            "",
	OpKill:              "",
	OpFunctionEnd:       "",
	OpBranchConditional: "iii",
}

// Disassemble renders a module in the textual form of spirv-dis, with ids
// printed as %_N.
func Disassemble(bin []byte) (string, error) {
	if len(bin) < 20 || len(bin)%4 != 0 {
		return "", errors.Wrap(ErrMalformed, "size %d", len(bin))
	}

	word := func(i int) uint32 { return binary.LittleEndian.Uint32(bin[4*i:]) }

	if m := word(0); m != MagicNumber {
		return "", errors.Wrap(ErrMalformed, "magic 0x%08X", m)
	}

	var b strings.Builder

	version := word(1)
	fmt.Fprintf(&b, "; SPIR-V\n")
	fmt.Fprintf(&b, "; Version: %d.%d\n", version>>16&0xff, version>>8&0xff)
	fmt.Fprintf(&b, "; Generator: 0x%08X\n", word(2))
	fmt.Fprintf(&b, "; Bound: %d\n", word(3))
	fmt.Fprintf(&b, "; Schema: %d\n\n", word(4))

	words := len(bin) / 4

	for off := 5; off < words; {
		n := int(word(off) >> 16)
		op := OpCode(word(off) & 0xffff)

		if n == 0 || off+n > words {
			return "", errors.Wrap(ErrMalformed, "%v at word %d: %d words", op, off, n)
		}

		ops := make([]uint32, n-1)
		for i := range ops {
			ops[i] = word(off + 1 + i)
		}

		disasmInst(&b, op, ops)

		off += n
	}

	return b.String(), nil
}

func disasmInst(b *strings.Builder, op OpCode, ops []uint32) {
	info, ok := opInfos[op]
	if !ok {
		info = opInfo{name: op.String()}
	}

	var typ uint32

	if info.resultType && len(ops) != 0 {
		typ, ops = ops[0], ops[1:]
	}

	if info.result && len(ops) != 0 {
		fmt.Fprintf(b, "%*s = %s", 14, id(ops[0]), info.name)
		ops = ops[1:]
	} else {
		fmt.Fprintf(b, "%*s%s", 17, "", info.name)
	}

	if info.resultType {
		fmt.Fprintf(b, " %s", id(typ))
	}

	format, ok := operandFormats[op]
	if !ok {
		format = "i*"
	}

	pos := 0
	kind := byte('n')

	for len(ops) != 0 {
		switch {
		case pos >= len(format):
			kind = 'n'
		case format[pos] != '*':
			kind = format[pos]
			pos++
		}

		b.WriteByte(' ')
		ops = writeOperand(b, kind, ops)
	}

	b.WriteByte('\n')
}

func writeOperand(b *strings.Builder, kind byte, ops []uint32) []uint32 {
	v := ops[0]

	switch kind {
	case 'i':
		b.WriteString(id(v))
	case 's':
		s, n := decodeString(ops)
		fmt.Fprintf(b, "%q", s)

		return ops[n:]
	case 'c':
		b.WriteString(Capability(v).String())
	case 'S':
		b.WriteString(StorageClass(v).String())
	case 'm':
		b.WriteString(ExecutionModel(v).String())
	case 'M':
		b.WriteString(ExecutionMode(v).String())
	case 'D':
		b.WriteString(Dim(v).String())
	case 'd':
		b.WriteString(Decoration(v).String())

		if Decoration(v) == DecorationBuiltIn && len(ops) > 1 {
			fmt.Fprintf(b, " %v", BuiltIn(ops[1]))
			return ops[2:]
		}
	case 'a':
		if AddressingModel(v) == AddressingModelLogical {
			b.WriteString("Logical")
		} else {
			fmt.Fprintf(b, "%d", v)
		}
	case 'y':
		if MemoryModel(v) == MemoryModelGLSL450 {
			b.WriteString("GLSL450")
		} else {
			fmt.Fprintf(b, "%d", v)
		}
	case 'F':
		if FunctionControl(v) == FunctionControlNone {
			b.WriteString("None")
		} else {
			fmt.Fprintf(b, "%d", v)
		}
	default:
		fmt.Fprintf(b, "%d", v)
	}

	return ops[1:]
}

func id(n uint32) string {
	return fmt.Sprintf("%%_%d", n)
}

// decodeString reads a nul terminated literal and reports the words used.
func decodeString(ops []uint32) (string, int) {
	var buf []byte

	for i, w := range ops {
		for k := range 4 {
			c := byte(w >> (8 * k))
			if c == 0 {
				return string(buf), i + 1
			}

			buf = append(buf, c)
		}
	}

	return string(buf), len(ops)
}
