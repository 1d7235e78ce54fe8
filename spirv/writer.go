package spirv

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// Instruction represents a SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		words: make([]uint32, 0, 8),
	}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords adds several words to the instruction.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString adds a null-terminated UTF-8 string.
func (b *InstructionBuilder) AddString(s string) {
	b.words = appendString(b.words, s)
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{
		Opcode: opcode,
		Words:  b.words,
	}
}

// Encode encodes the instruction to binary.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1) // +1 for opcode word
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

func appendString(words []uint32, s string) []uint32 {
	bytes := append([]byte(s), 0)

	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	for i := 0; i < len(bytes); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(bytes[i:]))
	}

	return words
}

// ModuleBuilder builds complete SPIR-V modules.
//
// Type and constant declarations are de-duplicated: declaring the same
// non-aggregate type or the same constant twice returns the first ID.
// Structs are always declared fresh since they carry their own decorations.
type ModuleBuilder struct {
	// Header
	version   Version
	generator uint32
	bound     uint32 // max ID + 1
	schema    uint32

	// Sections (ordered per SPIR-V spec)
	capabilities   []Instruction
	extensions     []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction // OpString
	debugNames     []Instruction // OpName, OpMemberName
	annotations    []Instruction // OpDecorate, OpMemberDecorate
	types          []Instruction // OpType*, OpConstant*
	globalVars     []Instruction // OpVariable (global)
	functions      []Instruction // OpFunction...OpFunctionEnd

	declared map[string]uint32
	caps     map[Capability]bool
	exts     map[string]bool

	// ID allocation
	nextID uint32
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		schema:    0,
		declared:  make(map[string]uint32),
		caps:      make(map[Capability]bool),
		exts:      make(map[string]bool),
		nextID:    1,
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound is one more than the highest ID allocated so far.
func (b *ModuleBuilder) Bound() uint32 { return b.nextID }

// Version is the SPIR-V version the module is built for.
func (b *ModuleBuilder) Version() Version { return b.version }

// AddCapability adds a capability once.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	if b.caps[capability] {
		return
	}

	b.caps[capability] = true

	builder := NewInstructionBuilder()
	builder.AddWord(uint32(capability))
	b.capabilities = append(b.capabilities, builder.Build(OpCapability))
}

// HasCapability reports whether the capability was declared.
func (b *ModuleBuilder) HasCapability(capability Capability) bool {
	return b.caps[capability]
}

// AddExtension adds an extension once.
func (b *ModuleBuilder) AddExtension(name string) {
	if b.exts[name] {
		return
	}

	b.exts[name] = true

	builder := NewInstructionBuilder()
	builder.AddString(name)
	b.extensions = append(b.extensions, builder.Build(OpExtension))
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.extInstImports = append(b.extInstImports, builder.Build(OpExtInstImport))
	return id
}

// SetMemoryModel sets the memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(addressing))
	builder.AddWord(uint32(memory))
	inst := builder.Build(OpMemoryModel)
	b.memoryModel = &inst
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(execModel))
	builder.AddWord(funcID)
	builder.AddString(name)
	builder.AddWords(interfaces...)
	b.entryPoints = append(b.entryPoints, builder.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(entryPoint)
	builder.AddWord(uint32(mode))
	builder.AddWords(params...)
	b.executionModes = append(b.executionModes, builder.Build(OpExecutionMode))
}

// AddString adds a debug string. Equal strings share one ID.
func (b *ModuleBuilder) AddString(text string) uint32 {
	key := "str:" + text
	if id, ok := b.declared[key]; ok {
		return id
	}

	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(text)
	b.debugStrings = append(b.debugStrings, builder.Build(OpString))
	b.declared[key] = id
	return id
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpName))
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(structID)
	builder.AddWord(member)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpMemberName))
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddWord(uint32(decoration))
	builder.AddWords(params...)
	b.annotations = append(b.annotations, builder.Build(OpDecorate))
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(structID)
	builder.AddWord(member)
	builder.AddWord(uint32(decoration))
	builder.AddWords(params...)
	b.annotations = append(b.annotations, builder.Build(OpMemberDecorate))
}

// declare appends a type or constant declaration. With a result type the
// layout is (type, id, operands...), otherwise (id, operands...).
func (b *ModuleBuilder) declare(op OpCode, resultType uint32, operands ...uint32) uint32 {
	var key strings.Builder

	key.WriteString(strconv.Itoa(int(op)))

	if resultType != 0 {
		key.WriteByte(':')
		key.WriteString(strconv.FormatUint(uint64(resultType), 10))
	}

	for _, w := range operands {
		key.WriteByte(',')
		key.WriteString(strconv.FormatUint(uint64(w), 10))
	}

	if id, ok := b.declared[key.String()]; ok {
		return id
	}

	id := b.AllocID()
	builder := NewInstructionBuilder()

	if resultType != 0 {
		builder.AddWord(resultType)
	}

	builder.AddWord(id)
	builder.AddWords(operands...)
	b.types = append(b.types, builder.Build(op))
	b.declared[key.String()] = id

	return id
}

// AddTypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) AddTypeVoid() uint32 { return b.declare(OpTypeVoid, 0) }

// AddTypeBool adds OpTypeBool.
func (b *ModuleBuilder) AddTypeBool() uint32 { return b.declare(OpTypeBool, 0) }

// AddTypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 { return b.declare(OpTypeFloat, 0, width) }

// AddTypeInt adds OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	var s uint32
	if signed {
		s = 1
	}

	return b.declare(OpTypeInt, 0, width, s)
}

// AddTypeVector adds OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	return b.declare(OpTypeVector, 0, componentType, count)
}

// AddTypeArray adds OpTypeArray. length is a constant ID.
func (b *ModuleBuilder) AddTypeArray(elementType uint32, length uint32) uint32 {
	return b.declare(OpTypeArray, 0, elementType, length)
}

// AddTypeRuntimeArray adds OpTypeRuntimeArray.
func (b *ModuleBuilder) AddTypeRuntimeArray(elementType uint32) uint32 {
	return b.declare(OpTypeRuntimeArray, 0, elementType)
}

// AddTypePointer adds OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	return b.declare(OpTypePointer, 0, uint32(storageClass), baseType)
}

// AddTypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	return b.declare(OpTypeFunction, 0, append([]uint32{returnType}, paramTypes...)...)
}

// AddTypeImage adds OpTypeImage. sampled is 1 for sampled images and 2 for
// storage images.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, ms bool, sampled uint32, format ImageFormat) uint32 {
	return b.declare(OpTypeImage, 0, sampledType, uint32(dim), b2w(depth), b2w(arrayed), b2w(ms), sampled, uint32(format))
}

// AddTypeSampler adds OpTypeSampler.
func (b *ModuleBuilder) AddTypeSampler() uint32 { return b.declare(OpTypeSampler, 0) }

// AddTypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	return b.declare(OpTypeSampledImage, 0, imageType)
}

// AddTypeStruct adds OpTypeStruct. Every call declares a new struct.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddWords(memberTypes...)
	b.types = append(b.types, builder.Build(OpTypeStruct))
	return id
}

// AddConstant adds OpConstant.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	return b.declare(OpConstant, typeID, values...)
}

// AddConstantFloat32 adds a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	bits := math.Float32bits(value)
	return b.AddConstant(typeID, bits)
}

// AddConstantFloat64 adds a 64-bit float constant.
func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	lowBits := uint32(bits & 0xFFFFFFFF)
	highBits := uint32(bits >> 32)
	return b.AddConstant(typeID, lowBits, highBits)
}

// AddConstantBool adds OpConstantTrue or OpConstantFalse.
func (b *ModuleBuilder) AddConstantBool(typeID uint32, value bool) uint32 {
	if value {
		return b.declare(OpConstantTrue, typeID)
	}

	return b.declare(OpConstantFalse, typeID)
}

// AddConstantComposite adds OpConstantComposite.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	return b.declare(OpConstantComposite, typeID, constituents...)
}

// AddVariable adds a global OpVariable.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(pointerType)
	builder.AddWord(id)
	builder.AddWord(uint32(storageClass))
	b.globalVars = append(b.globalVars, builder.Build(OpVariable))
	return id
}

// AddFunction adds a function definition.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(returnType)
	builder.AddWord(id)
	builder.AddWord(uint32(control))
	builder.AddWord(funcType)
	b.functions = append(b.functions, builder.Build(OpFunction))
	return id
}

// AddLabel adds a label with a fresh ID.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	b.AddLabelID(id)
	return id
}

// AddLabelID adds a label whose ID was allocated earlier.
func (b *ModuleBuilder) AddLabelID(id uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	b.functions = append(b.functions, builder.Build(OpLabel))
}

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() { b.AddOpVoid(OpReturn) }

// AddFunctionEnd adds OpFunctionEnd.
func (b *ModuleBuilder) AddFunctionEnd() { b.AddOpVoid(OpFunctionEnd) }

// AddBranch adds OpBranch.
func (b *ModuleBuilder) AddBranch(target uint32) { b.AddOpVoid(OpBranch, target) }

// AddKill adds OpKill (fragment shader discard).
func (b *ModuleBuilder) AddKill() { b.AddOpVoid(OpKill) }

// AddOp adds a function-body instruction producing a result.
func (b *ModuleBuilder) AddOp(opcode OpCode, resultType uint32, operands ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWords(operands...)
	b.functions = append(b.functions, builder.Build(opcode))
	return resultID
}

// AddOpVoid adds a function-body instruction without a result.
func (b *ModuleBuilder) AddOpVoid(opcode OpCode, operands ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWords(operands...)
	b.functions = append(b.functions, builder.Build(opcode))
}

// AddBinaryOp adds a binary operation instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	return b.AddOp(opcode, resultType, left, right)
}

// AddUnaryOp adds a unary operation instruction.
func (b *ModuleBuilder) AddUnaryOp(opcode OpCode, resultType uint32, operand uint32) uint32 {
	return b.AddOp(opcode, resultType, operand)
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	return b.AddOp(OpLoad, resultType, pointer)
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	b.AddOpVoid(OpStore, pointer, value)
}

// AddAccessChain adds OpAccessChain.
func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	return b.AddOp(OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.AddOp(OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract adds OpCompositeExtract with literal indices.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indices ...uint32) uint32 {
	return b.AddOp(OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddSelect adds OpSelect.
func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	return b.AddOp(OpSelect, resultType, condition, accept, reject)
}

// AddSelectionMerge adds OpSelectionMerge with no control hints.
func (b *ModuleBuilder) AddSelectionMerge(mergeLabel uint32) {
	b.AddOpVoid(OpSelectionMerge, mergeLabel, 0)
}

// AddBranchConditional adds OpBranchConditional.
func (b *ModuleBuilder) AddBranchConditional(condition uint32, trueLabel uint32, falseLabel uint32) {
	b.AddOpVoid(OpBranchConditional, condition, trueLabel, falseLabel)
}

// AddExtInst adds OpExtInst (extended instruction).
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	return b.AddOp(OpExtInst, resultType, append([]uint32{extSet, instruction}, operands...)...)
}

// AddPhi reserves an OpPhi whose operands are filled in later with
// SetPhiOperands, once every incoming value and block label is known.
func (b *ModuleBuilder) AddPhi(resultType uint32) (id uint32, slot int) {
	id = b.AddOp(OpPhi, resultType)
	return id, len(b.functions) - 1
}

// SetPhiOperands fills a phi reserved by AddPhi with (value, label) pairs.
func (b *ModuleBuilder) SetPhiOperands(slot int, pairs ...uint32) {
	inst := &b.functions[slot]
	inst.Words = append(inst.Words[:2:2], pairs...)
}

// Build generates the final SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	// Update bound to max ID
	b.bound = b.nextID

	sections := [][]Instruction{
		b.capabilities,
		b.extensions,
		b.extInstImports,
		nil,
		b.entryPoints,
		b.executionModes,
		b.debugStrings,
		b.debugNames,
		b.annotations,
		b.types,
		b.globalVars,
		b.functions,
	}

	if b.memoryModel != nil {
		sections[3] = []Instruction{*b.memoryModel}
	}

	totalWords := 5 // header
	for _, s := range sections {
		totalWords += countWords(s)
	}

	buffer := make([]byte, totalWords*4)
	offset := 0

	for _, w := range []uint32{MagicNumber, versionToWord(b.version), b.generator, b.bound, b.schema} {
		binary.LittleEndian.PutUint32(buffer[offset:], w)
		offset += 4
	}

	for _, s := range sections {
		offset = writeInstructions(buffer, offset, s)
	}

	return buffer
}

// countWords counts total words in instructions.
func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Words) + 1
	}
	return count
}

// writeInstructions writes instructions to buffer.
func writeInstructions(buffer []byte, offset int, instructions []Instruction) int {
	for _, inst := range instructions {
		offset = writeInstruction(buffer, offset, inst)
	}
	return offset
}

// writeInstruction writes a single instruction to buffer.
func writeInstruction(buffer []byte, offset int, inst Instruction) int {
	words := inst.Encode()
	for _, word := range words {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return offset
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

func b2w(v bool) uint32 {
	if v {
		return 1
	}

	return 0
}
