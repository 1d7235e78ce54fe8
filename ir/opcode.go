package ir

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

// Opcode identifies the operation an instruction performs.
type Opcode uint16

// MaxArgs is the argument capacity of every non-phi instruction.
const MaxArgs = 6

const (
	// meta
	OpVoid Opcode = iota
	OpPhi
	OpIdentity
	OpConditionRef
	OpReference
	OpPhiMove
	OpPrologue
	OpEpilogue
	OpDiscard
	OpDiscardCond
	OpDebugPrint

	// barriers
	OpBarrier
	OpWorkgroupMemoryBarrier
	OpDeviceMemoryBarrier
	OpTcsOutputBarrier

	// geometry
	OpEmitVertex
	OpEmitPrimitive

	// registers
	OpGetUserData
	OpGetScalarRegister
	OpSetScalarRegister
	OpGetVectorRegister
	OpSetVectorRegister
	OpLaneId
	OpReadConst
	OpReadConstBuffer

	// attributes
	OpGetAttribute
	OpGetAttributeU32
	OpSetAttribute
	OpGetPatch
	OpSetPatch
	OpGetTessGenericAttribute
	OpSetTcsGenericAttribute
	OpReadTcsGenericOuputAttribute

	// shared memory
	OpLoadSharedU32
	OpLoadSharedU64
	OpLoadSharedU128
	OpWriteSharedU32
	OpWriteSharedU64
	OpWriteSharedU128
	OpSharedAtomicIAdd32
	OpSharedAtomicSMin32
	OpSharedAtomicUMin32
	OpSharedAtomicSMax32
	OpSharedAtomicUMax32

	// buffers
	OpLoadBufferU32
	OpLoadBufferU32x2
	OpLoadBufferU32x3
	OpLoadBufferU32x4
	OpLoadBufferFormatF32
	OpStoreBufferU32
	OpStoreBufferU32x2
	OpStoreBufferU32x3
	OpStoreBufferU32x4
	OpStoreBufferFormatF32
	OpBufferAtomicIAdd32
	OpBufferAtomicSMin32
	OpBufferAtomicUMin32
	OpBufferAtomicSMax32
	OpBufferAtomicUMax32
	OpBufferAtomicInc32
	OpBufferAtomicDec32
	OpBufferAtomicAnd32
	OpBufferAtomicOr32
	OpBufferAtomicXor32
	OpBufferAtomicSwap32
	OpDataAppend
	OpDataConsume

	// composites
	OpCompositeConstructU32x2
	OpCompositeConstructU32x3
	OpCompositeConstructU32x4
	OpCompositeExtractU32x2
	OpCompositeExtractU32x3
	OpCompositeExtractU32x4
	OpCompositeConstructF32x2
	OpCompositeConstructF32x3
	OpCompositeConstructF32x4
	OpCompositeExtractF32x2
	OpCompositeExtractF32x3
	OpCompositeExtractF32x4

	// bitcasts and conversions
	OpBitCastU16F16
	OpBitCastU32F32
	OpBitCastU64F64
	OpBitCastF16U16
	OpBitCastF32U32
	OpBitCastF64U64
	OpConvertF32F16
	OpConvertF16F32
	OpConvertF64F32
	OpConvertF32F64
	OpConvertS32F32
	OpConvertU32F32
	OpConvertF32S32
	OpConvertF32U32
	OpConvertU64U32
	OpConvertU32U64

	// floating point
	OpFPAbs32
	OpFPNeg32
	OpFPAdd16
	OpFPAdd32
	OpFPAdd64
	OpFPSub32
	OpFPMul32
	OpFPMul64
	OpFPFma32
	OpFPMin32
	OpFPMax32
	OpFPRecip32
	OpFPSqrt32
	OpFPOrdLessThan32
	OpFPOrdEqual32

	// integer
	OpIAdd32
	OpIAdd64
	OpISub32
	OpIMul32
	OpIMul64
	OpSDiv32
	OpUDiv32
	OpUMod32
	OpINeg32
	OpIAbs32
	OpShiftLeftLogical32
	OpShiftRightLogical32
	OpShiftRightArithmetic32
	OpBitwiseAnd32
	OpBitwiseOr32
	OpBitwiseXor32
	OpBitwiseNot32
	OpBitFieldInsert
	OpBitFieldSExtract
	OpBitFieldUExtract
	OpBitCount32
	OpFindILsb32
	OpSMin32
	OpUMin32
	OpSMax32
	OpUMax32
	OpSLessThan
	OpULessThan
	OpIEqual
	OpINotEqual
	OpSGreaterThanEqual
	OpUGreaterThanEqual
	OpLogicalOr
	OpLogicalAnd
	OpLogicalNot
	OpSelectU32
	OpSelectF32

	// images
	OpImageRead
	OpImageWrite
	OpImageAtomicIAdd32
	OpImageAtomicSMin32
	OpImageAtomicUMin32
	OpImageAtomicSMax32
	OpImageAtomicUMax32
	OpImageAtomicInc32
	OpImageAtomicDec32
	OpImageAtomicAnd32
	OpImageAtomicOr32
	OpImageAtomicXor32
	OpImageAtomicExchange32

	numOpcodes
)

type opcodeMeta struct {
	name string
	typ  Type
	args []Type
}

const (
	tVoid   = TypeVoid
	tOpaque = TypeOpaque
	tSReg   = TypeScalarReg
	tVReg   = TypeVectorReg
	tAttr   = TypeAttribute
	tPatch  = TypePatch
	tU1     = TypeU1
	tU16    = TypeU16
	tU32    = TypeU32
	tU64    = TypeU64
	tF16    = TypeF16
	tF32    = TypeF32
	tF64    = TypeF64
	tU32x2  = TypeU32x2
	tU32x3  = TypeU32x3
	tU32x4  = TypeU32x4
	tF32x2  = TypeF32x2
	tF32x3  = TypeF32x3
	tF32x4  = TypeF32x4
	tString = TypeStringLiteral
)

var opcodes = [numOpcodes]opcodeMeta{
	OpVoid:                         {"Void", tVoid, nil},
	OpPhi:                          {"Phi", tOpaque, nil},
	OpIdentity:                     {"Identity", tOpaque, []Type{tOpaque}},
	OpConditionRef:                 {"ConditionRef", tVoid, []Type{tU1}},
	OpReference:                    {"Reference", tVoid, []Type{tOpaque}},
	OpPhiMove:                      {"PhiMove", tVoid, []Type{tOpaque, tOpaque}},
	OpPrologue:                     {"Prologue", tVoid, nil},
	OpEpilogue:                     {"Epilogue", tVoid, nil},
	OpDiscard:                      {"Discard", tVoid, nil},
	OpDiscardCond:                  {"DiscardCond", tVoid, []Type{tU1}},
	OpDebugPrint:                   {"DebugPrint", tVoid, []Type{tString, tOpaque, tOpaque, tOpaque, tOpaque}},
	OpBarrier:                      {"Barrier", tVoid, nil},
	OpWorkgroupMemoryBarrier:       {"WorkgroupMemoryBarrier", tVoid, nil},
	OpDeviceMemoryBarrier:          {"DeviceMemoryBarrier", tVoid, nil},
	OpTcsOutputBarrier:             {"TcsOutputBarrier", tVoid, nil},
	OpEmitVertex:                   {"EmitVertex", tVoid, nil},
	OpEmitPrimitive:                {"EmitPrimitive", tVoid, nil},
	OpGetUserData:                  {"GetUserData", tU32, []Type{tSReg}},
	OpGetScalarRegister:            {"GetScalarRegister", tU32, []Type{tSReg}},
	OpSetScalarRegister:            {"SetScalarRegister", tVoid, []Type{tSReg, tU32}},
	OpGetVectorRegister:            {"GetVectorRegister", tU32, []Type{tVReg}},
	OpSetVectorRegister:            {"SetVectorRegister", tVoid, []Type{tVReg, tU32}},
	OpLaneId:                       {"LaneId", tU32, nil},
	OpReadConst:                    {"ReadConst", tU32, []Type{tU32x2, tU32}},
	OpReadConstBuffer:              {"ReadConstBuffer", tU32, []Type{tOpaque, tU32}},
	OpGetAttribute:                 {"GetAttribute", tF32, []Type{tAttr, tU32, tU32}},
	OpGetAttributeU32:              {"GetAttributeU32", tU32, []Type{tAttr, tU32}},
	OpSetAttribute:                 {"SetAttribute", tVoid, []Type{tAttr, tF32, tU32}},
	OpGetPatch:                     {"GetPatch", tF32, []Type{tPatch}},
	OpSetPatch:                     {"SetPatch", tVoid, []Type{tPatch, tF32}},
	OpGetTessGenericAttribute:      {"GetTessGenericAttribute", tF32, []Type{tU32, tU32, tU32}},
	OpSetTcsGenericAttribute:       {"SetTcsGenericAttribute", tVoid, []Type{tF32, tU32, tU32}},
	OpReadTcsGenericOuputAttribute: {"ReadTcsGenericOuputAttribute", tF32, []Type{tU32, tU32, tU32}},
	OpLoadSharedU32:                {"LoadSharedU32", tU32, []Type{tU32}},
	OpLoadSharedU64:                {"LoadSharedU64", tU32x2, []Type{tU32}},
	OpLoadSharedU128:               {"LoadSharedU128", tU32x4, []Type{tU32}},
	OpWriteSharedU32:               {"WriteSharedU32", tVoid, []Type{tU32, tU32}},
	OpWriteSharedU64:               {"WriteSharedU64", tVoid, []Type{tU32, tU32x2}},
	OpWriteSharedU128:              {"WriteSharedU128", tVoid, []Type{tU32, tU32x4}},
	OpSharedAtomicIAdd32:           {"SharedAtomicIAdd32", tU32, []Type{tU32, tU32}},
	OpSharedAtomicSMin32:           {"SharedAtomicSMin32", tU32, []Type{tU32, tU32}},
	OpSharedAtomicUMin32:           {"SharedAtomicUMin32", tU32, []Type{tU32, tU32}},
	OpSharedAtomicSMax32:           {"SharedAtomicSMax32", tU32, []Type{tU32, tU32}},
	OpSharedAtomicUMax32:           {"SharedAtomicUMax32", tU32, []Type{tU32, tU32}},
	OpLoadBufferU32:                {"LoadBufferU32", tU32, []Type{tOpaque, tOpaque}},
	OpLoadBufferU32x2:              {"LoadBufferU32x2", tU32x2, []Type{tOpaque, tOpaque}},
	OpLoadBufferU32x3:              {"LoadBufferU32x3", tU32x3, []Type{tOpaque, tOpaque}},
	OpLoadBufferU32x4:              {"LoadBufferU32x4", tU32x4, []Type{tOpaque, tOpaque}},
	OpLoadBufferFormatF32:          {"LoadBufferFormatF32", tF32x4, []Type{tOpaque, tOpaque}},
	OpStoreBufferU32:               {"StoreBufferU32", tVoid, []Type{tOpaque, tOpaque, tU32}},
	OpStoreBufferU32x2:             {"StoreBufferU32x2", tVoid, []Type{tOpaque, tOpaque, tU32x2}},
	OpStoreBufferU32x3:             {"StoreBufferU32x3", tVoid, []Type{tOpaque, tOpaque, tU32x3}},
	OpStoreBufferU32x4:             {"StoreBufferU32x4", tVoid, []Type{tOpaque, tOpaque, tU32x4}},
	OpStoreBufferFormatF32:         {"StoreBufferFormatF32", tVoid, []Type{tOpaque, tOpaque, tF32x4}},
	OpBufferAtomicIAdd32:           {"BufferAtomicIAdd32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicSMin32:           {"BufferAtomicSMin32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicUMin32:           {"BufferAtomicUMin32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicSMax32:           {"BufferAtomicSMax32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicUMax32:           {"BufferAtomicUMax32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicInc32:            {"BufferAtomicInc32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicDec32:            {"BufferAtomicDec32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicAnd32:            {"BufferAtomicAnd32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicOr32:             {"BufferAtomicOr32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicXor32:            {"BufferAtomicXor32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpBufferAtomicSwap32:           {"BufferAtomicSwap32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpDataAppend:                   {"DataAppend", tU32, []Type{tU32, tU32}},
	OpDataConsume:                  {"DataConsume", tU32, []Type{tU32, tU32}},
	OpCompositeConstructU32x2:      {"CompositeConstructU32x2", tU32x2, []Type{tU32, tU32}},
	OpCompositeConstructU32x3:      {"CompositeConstructU32x3", tU32x3, []Type{tU32, tU32, tU32}},
	OpCompositeConstructU32x4:      {"CompositeConstructU32x4", tU32x4, []Type{tU32, tU32, tU32, tU32}},
	OpCompositeExtractU32x2:        {"CompositeExtractU32x2", tU32, []Type{tU32x2, tU32}},
	OpCompositeExtractU32x3:        {"CompositeExtractU32x3", tU32, []Type{tU32x3, tU32}},
	OpCompositeExtractU32x4:        {"CompositeExtractU32x4", tU32, []Type{tU32x4, tU32}},
	OpCompositeConstructF32x2:      {"CompositeConstructF32x2", tF32x2, []Type{tF32, tF32}},
	OpCompositeConstructF32x3:      {"CompositeConstructF32x3", tF32x3, []Type{tF32, tF32, tF32}},
	OpCompositeConstructF32x4:      {"CompositeConstructF32x4", tF32x4, []Type{tF32, tF32, tF32, tF32}},
	OpCompositeExtractF32x2:        {"CompositeExtractF32x2", tF32, []Type{tF32x2, tU32}},
	OpCompositeExtractF32x3:        {"CompositeExtractF32x3", tF32, []Type{tF32x3, tU32}},
	OpCompositeExtractF32x4:        {"CompositeExtractF32x4", tF32, []Type{tF32x4, tU32}},
	OpBitCastU16F16:                {"BitCastU16F16", tU16, []Type{tF16}},
	OpBitCastU32F32:                {"BitCastU32F32", tU32, []Type{tF32}},
	OpBitCastU64F64:                {"BitCastU64F64", tU64, []Type{tF64}},
	OpBitCastF16U16:                {"BitCastF16U16", tF16, []Type{tU16}},
	OpBitCastF32U32:                {"BitCastF32U32", tF32, []Type{tU32}},
	OpBitCastF64U64:                {"BitCastF64U64", tF64, []Type{tU64}},
	OpConvertF32F16:                {"ConvertF32F16", tF32, []Type{tF16}},
	OpConvertF16F32:                {"ConvertF16F32", tF16, []Type{tF32}},
	OpConvertF64F32:                {"ConvertF64F32", tF64, []Type{tF32}},
	OpConvertF32F64:                {"ConvertF32F64", tF32, []Type{tF64}},
	OpConvertS32F32:                {"ConvertS32F32", tU32, []Type{tF32}},
	OpConvertU32F32:                {"ConvertU32F32", tU32, []Type{tF32}},
	OpConvertF32S32:                {"ConvertF32S32", tF32, []Type{tU32}},
	OpConvertF32U32:                {"ConvertF32U32", tF32, []Type{tU32}},
	OpConvertU64U32:                {"ConvertU64U32", tU64, []Type{tU32}},
	OpConvertU32U64:                {"ConvertU32U64", tU32, []Type{tU64}},
	OpFPAbs32:                      {"FPAbs32", tF32, []Type{tF32}},
	OpFPNeg32:                      {"FPNeg32", tF32, []Type{tF32}},
	OpFPAdd16:                      {"FPAdd16", tF16, []Type{tF16, tF16}},
	OpFPAdd32:                      {"FPAdd32", tF32, []Type{tF32, tF32}},
	OpFPAdd64:                      {"FPAdd64", tF64, []Type{tF64, tF64}},
	OpFPSub32:                      {"FPSub32", tF32, []Type{tF32, tF32}},
	OpFPMul32:                      {"FPMul32", tF32, []Type{tF32, tF32}},
	OpFPMul64:                      {"FPMul64", tF64, []Type{tF64, tF64}},
	OpFPFma32:                      {"FPFma32", tF32, []Type{tF32, tF32, tF32}},
	OpFPMin32:                      {"FPMin32", tF32, []Type{tF32, tF32}},
	OpFPMax32:                      {"FPMax32", tF32, []Type{tF32, tF32}},
	OpFPRecip32:                    {"FPRecip32", tF32, []Type{tF32}},
	OpFPSqrt32:                     {"FPSqrt32", tF32, []Type{tF32}},
	OpFPOrdLessThan32:              {"FPOrdLessThan32", tU1, []Type{tF32, tF32}},
	OpFPOrdEqual32:                 {"FPOrdEqual32", tU1, []Type{tF32, tF32}},
	OpIAdd32:                       {"IAdd32", tU32, []Type{tU32, tU32}},
	OpIAdd64:                       {"IAdd64", tU64, []Type{tU64, tU64}},
	OpISub32:                       {"ISub32", tU32, []Type{tU32, tU32}},
	OpIMul32:                       {"IMul32", tU32, []Type{tU32, tU32}},
	OpIMul64:                       {"IMul64", tU64, []Type{tU64, tU64}},
	OpSDiv32:                       {"SDiv32", tU32, []Type{tU32, tU32}},
	OpUDiv32:                       {"UDiv32", tU32, []Type{tU32, tU32}},
	OpUMod32:                       {"UMod32", tU32, []Type{tU32, tU32}},
	OpINeg32:                       {"INeg32", tU32, []Type{tU32}},
	OpIAbs32:                       {"IAbs32", tU32, []Type{tU32}},
	OpShiftLeftLogical32:           {"ShiftLeftLogical32", tU32, []Type{tU32, tU32}},
	OpShiftRightLogical32:          {"ShiftRightLogical32", tU32, []Type{tU32, tU32}},
	OpShiftRightArithmetic32:       {"ShiftRightArithmetic32", tU32, []Type{tU32, tU32}},
	OpBitwiseAnd32:                 {"BitwiseAnd32", tU32, []Type{tU32, tU32}},
	OpBitwiseOr32:                  {"BitwiseOr32", tU32, []Type{tU32, tU32}},
	OpBitwiseXor32:                 {"BitwiseXor32", tU32, []Type{tU32, tU32}},
	OpBitwiseNot32:                 {"BitwiseNot32", tU32, []Type{tU32}},
	OpBitFieldInsert:               {"BitFieldInsert", tU32, []Type{tU32, tU32, tU32, tU32}},
	OpBitFieldSExtract:             {"BitFieldSExtract", tU32, []Type{tU32, tU32, tU32}},
	OpBitFieldUExtract:             {"BitFieldUExtract", tU32, []Type{tU32, tU32, tU32}},
	OpBitCount32:                   {"BitCount32", tU32, []Type{tU32}},
	OpFindILsb32:                   {"FindILsb32", tU32, []Type{tU32}},
	OpSMin32:                       {"SMin32", tU32, []Type{tU32, tU32}},
	OpUMin32:                       {"UMin32", tU32, []Type{tU32, tU32}},
	OpSMax32:                       {"SMax32", tU32, []Type{tU32, tU32}},
	OpUMax32:                       {"UMax32", tU32, []Type{tU32, tU32}},
	OpSLessThan:                    {"SLessThan", tU1, []Type{tU32, tU32}},
	OpULessThan:                    {"ULessThan", tU1, []Type{tU32, tU32}},
	OpIEqual:                       {"IEqual", tU1, []Type{tU32, tU32}},
	OpINotEqual:                    {"INotEqual", tU1, []Type{tU32, tU32}},
	OpSGreaterThanEqual:            {"SGreaterThanEqual", tU1, []Type{tU32, tU32}},
	OpUGreaterThanEqual:            {"UGreaterThanEqual", tU1, []Type{tU32, tU32}},
	OpLogicalOr:                    {"LogicalOr", tU1, []Type{tU1, tU1}},
	OpLogicalAnd:                   {"LogicalAnd", tU1, []Type{tU1, tU1}},
	OpLogicalNot:                   {"LogicalNot", tU1, []Type{tU1}},
	OpSelectU32:                    {"SelectU32", tU32, []Type{tU1, tU32, tU32}},
	OpSelectF32:                    {"SelectF32", tF32, []Type{tU1, tF32, tF32}},
	OpImageRead:                    {"ImageRead", tU32x4, []Type{tOpaque, tOpaque}},
	OpImageWrite:                   {"ImageWrite", tVoid, []Type{tOpaque, tOpaque, tU32x4}},
	OpImageAtomicIAdd32:            {"ImageAtomicIAdd32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicSMin32:            {"ImageAtomicSMin32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicUMin32:            {"ImageAtomicUMin32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicSMax32:            {"ImageAtomicSMax32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicUMax32:            {"ImageAtomicUMax32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicInc32:             {"ImageAtomicInc32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicDec32:             {"ImageAtomicDec32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicAnd32:             {"ImageAtomicAnd32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicOr32:              {"ImageAtomicOr32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicXor32:             {"ImageAtomicXor32", tU32, []Type{tOpaque, tOpaque, tU32}},
	OpImageAtomicExchange32:        {"ImageAtomicExchange32", tU32, []Type{tOpaque, tOpaque, tU32}},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op := Opcode(0); op < numOpcodes; op++ {
		m[opcodes[op].name] = op
	}
	return m
}()

// LookupOpcode finds an opcode by its name.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

func (op Opcode) String() string {
	if op < numOpcodes {
		return opcodes[op].name
	}

	return fmt.Sprintf("Opcode(%d)", uint16(op))
}

func (op Opcode) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, op.String())
}

// TypeOf returns the result type of op.
func TypeOf(op Opcode) Type {
	return opcodes[op].typ
}

// NumArgsOf returns the fixed arity of op. Phi reports zero; its operand
// count lives on the instruction.
func NumArgsOf(op Opcode) int {
	return len(opcodes[op].args)
}

// ArgTypeOf returns the accepted types of argument index of op.
func ArgTypeOf(op Opcode, index int) Type {
	return opcodes[op].args[index]
}
