package spirv

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/gogpu/recompiler/ir"
)

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_1 = Version{1, 1}
	Version1_2 = Version{1, 2}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// ParseVersion parses a version written as major.minor, like "1.5".
func ParseVersion(s string) (Version, error) {
	for _, v := range []Version{Version1_0, Version1_1, Version1_2, Version1_3, Version1_4, Version1_5, Version1_6} {
		if v.String() == s {
			return v, nil
		}
	}

	return Version{}, errors.New("unsupported SPIR-V version %q", s)
}

// AtLeast reports whether v is w or newer.
func (v Version) AtLeast(w Version) bool {
	return v.Major > w.Major || v.Major == w.Major && v.Minor >= w.Minor
}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// ErrNotImplemented is returned for IR the backend cannot translate.
var ErrNotImplemented = ir.ErrNotImplemented

// OpCode represents a SPIR-V opcode.
type OpCode uint16

const (
	OpNop                  OpCode = 0
	OpUndef                OpCode = 1
	OpSource               OpCode = 3
	OpName                 OpCode = 5
	OpMemberName           OpCode = 6
	OpString               OpCode = 7
	OpExtension            OpCode = 10
	OpExtInstImport        OpCode = 11
	OpExtInst              OpCode = 12
	OpMemoryModel          OpCode = 14
	OpEntryPoint           OpCode = 15
	OpExecutionMode        OpCode = 16
	OpCapability           OpCode = 17
	OpTypeVoid             OpCode = 19
	OpTypeBool             OpCode = 20
	OpTypeInt              OpCode = 21
	OpTypeFloat            OpCode = 22
	OpTypeVector           OpCode = 23
	OpTypeImage            OpCode = 25
	OpTypeSampler          OpCode = 26
	OpTypeSampledImage     OpCode = 27
	OpTypeArray            OpCode = 28
	OpTypeRuntimeArray     OpCode = 29
	OpTypeStruct           OpCode = 30
	OpTypePointer          OpCode = 32
	OpTypeFunction         OpCode = 33
	OpConstantTrue         OpCode = 41
	OpConstantFalse        OpCode = 42
	OpConstant             OpCode = 43
	OpConstantComposite    OpCode = 44
	OpFunction             OpCode = 54
	OpFunctionParameter    OpCode = 55
	OpFunctionEnd          OpCode = 56
	OpVariable             OpCode = 59
	OpImageTexelPointer    OpCode = 60
	OpLoad                 OpCode = 61
	OpStore                OpCode = 62
	OpAccessChain          OpCode = 65
	OpDecorate             OpCode = 71
	OpMemberDecorate       OpCode = 72
	OpCompositeConstruct   OpCode = 80
	OpCompositeExtract     OpCode = 81
	OpImageRead            OpCode = 98
	OpImageWrite           OpCode = 99
	OpConvertFToU          OpCode = 109
	OpConvertFToS          OpCode = 110
	OpConvertSToF          OpCode = 111
	OpConvertUToF          OpCode = 112
	OpUConvert             OpCode = 113
	OpFConvert             OpCode = 115
	OpBitcast              OpCode = 124
	OpSNegate              OpCode = 126
	OpFNegate              OpCode = 127
	OpIAdd                 OpCode = 128
	OpFAdd                 OpCode = 129
	OpISub                 OpCode = 130
	OpFSub                 OpCode = 131
	OpIMul                 OpCode = 132
	OpFMul                 OpCode = 133
	OpUDiv                 OpCode = 134
	OpSDiv                 OpCode = 135
	OpFDiv                 OpCode = 136
	OpUMod                 OpCode = 137
	OpLogicalOr            OpCode = 166
	OpLogicalAnd           OpCode = 167
	OpLogicalNot           OpCode = 168
	OpSelect               OpCode = 169
	OpIEqual               OpCode = 170
	OpINotEqual            OpCode = 171
	OpUGreaterThanEqual    OpCode = 174
	OpSGreaterThanEqual    OpCode = 175
	OpULessThan            OpCode = 176
	OpSLessThan            OpCode = 177
	OpFOrdEqual            OpCode = 180
	OpFOrdLessThan         OpCode = 184
	OpShiftRightLogical    OpCode = 194
	OpShiftRightArithmetic OpCode = 195
	OpShiftLeftLogical     OpCode = 196
	OpBitwiseOr            OpCode = 197
	OpBitwiseXor           OpCode = 198
	OpBitwiseAnd           OpCode = 199
	OpNot                  OpCode = 200
	OpBitFieldInsert       OpCode = 201
	OpBitFieldSExtract     OpCode = 202
	OpBitFieldUExtract     OpCode = 203
	OpBitCount             OpCode = 205
	OpEmitVertex           OpCode = 218
	OpEndPrimitive         OpCode = 219
	OpControlBarrier       OpCode = 224
	OpMemoryBarrier        OpCode = 225
	OpAtomicExchange       OpCode = 229
	OpAtomicIIncrement     OpCode = 232
	OpAtomicIDecrement     OpCode = 233
	OpAtomicIAdd           OpCode = 234
	OpAtomicSMin           OpCode = 236
	OpAtomicUMin           OpCode = 237
	OpAtomicSMax           OpCode = 238
	OpAtomicUMax           OpCode = 239
	OpAtomicAnd            OpCode = 240
	OpAtomicOr             OpCode = 241
	OpAtomicXor            OpCode = 242
	OpPhi                  OpCode = 245
	OpSelectionMerge       OpCode = 247
	OpLabel                OpCode = 248
	OpBranch               OpCode = 249
	OpBranchConditional    OpCode = 250
	OpKill                 OpCode = 252
	OpReturn               OpCode = 253
)

// opInfo describes the operand shape of an opcode for the disassembler.
type opInfo struct {
	name       string
	resultType bool
	result     bool
}

var opInfos = map[OpCode]opInfo{
	OpNop:                  {"OpNop", false, false},
	OpUndef:                {"OpUndef", true, true},
	OpSource:               {"OpSource", false, false},
	OpName:                 {"OpName", false, false},
	OpMemberName:           {"OpMemberName", false, false},
	OpString:               {"OpString", false, true},
	OpExtension:            {"OpExtension", false, false},
	OpExtInstImport:        {"OpExtInstImport", false, true},
	OpExtInst:              {"OpExtInst", true, true},
	OpMemoryModel:          {"OpMemoryModel", false, false},
	OpEntryPoint:           {"OpEntryPoint", false, false},
	OpExecutionMode:        {"OpExecutionMode", false, false},
	OpCapability:           {"OpCapability", false, false},
	OpTypeVoid:             {"OpTypeVoid", false, true},
	OpTypeBool:             {"OpTypeBool", false, true},
	OpTypeInt:              {"OpTypeInt", false, true},
	OpTypeFloat:            {"OpTypeFloat", false, true},
	OpTypeVector:           {"OpTypeVector", false, true},
	OpTypeImage:            {"OpTypeImage", false, true},
	OpTypeSampler:          {"OpTypeSampler", false, true},
	OpTypeSampledImage:     {"OpTypeSampledImage", false, true},
	OpTypeArray:            {"OpTypeArray", false, true},
	OpTypeRuntimeArray:     {"OpTypeRuntimeArray", false, true},
	OpTypeStruct:           {"OpTypeStruct", false, true},
	OpTypePointer:          {"OpTypePointer", false, true},
	OpTypeFunction:         {"OpTypeFunction", false, true},
	OpConstantTrue:         {"OpConstantTrue", true, true},
	OpConstantFalse:        {"OpConstantFalse", true, true},
	OpConstant:             {"OpConstant", true, true},
	OpConstantComposite:    {"OpConstantComposite", true, true},
	OpFunction:             {"OpFunction", true, true},
	OpFunctionParameter:    {"OpFunctionParameter", true, true},
	OpFunctionEnd:          {"OpFunctionEnd", false, false},
	OpVariable:             {"OpVariable", true, true},
	OpImageTexelPointer:    {"OpImageTexelPointer", true, true},
	OpLoad:                 {"OpLoad", true, true},
	OpStore:                {"OpStore", false, false},
	OpAccessChain:          {"OpAccessChain", true, true},
	OpDecorate:             {"OpDecorate", false, false},
	OpMemberDecorate:       {"OpMemberDecorate", false, false},
	OpCompositeConstruct:   {"OpCompositeConstruct", true, true},
	OpCompositeExtract:     {"OpCompositeExtract", true, true},
	OpImageRead:            {"OpImageRead", true, true},
	OpImageWrite:           {"OpImageWrite", false, false},
	OpConvertFToU:          {"OpConvertFToU", true, true},
	OpConvertFToS:          {"OpConvertFToS", true, true},
	OpConvertSToF:          {"OpConvertSToF", true, true},
	OpConvertUToF:          {"OpConvertUToF", true, true},
	OpUConvert:             {"OpUConvert", true, true},
	OpFConvert:             {"OpFConvert", true, true},
	OpBitcast:              {"OpBitcast", true, true},
	OpSNegate:              {"OpSNegate", true, true},
	OpFNegate:              {"OpFNegate", true, true},
	OpIAdd:                 {"OpIAdd", true, true},
	OpFAdd:                 {"OpFAdd", true, true},
	OpISub:                 {"OpISub", true, true},
	OpFSub:                 {"OpFSub", true, true},
	OpIMul:                 {"OpIMul", true, true},
	OpFMul:                 {"OpFMul", true, true},
	OpUDiv:                 {"OpUDiv", true, true},
	OpSDiv:                 {"OpSDiv", true, true},
	OpFDiv:                 {"OpFDiv", true, true},
	OpUMod:                 {"OpUMod", true, true},
	OpLogicalOr:            {"OpLogicalOr", true, true},
	OpLogicalAnd:           {"OpLogicalAnd", true, true},
	OpLogicalNot:           {"OpLogicalNot", true, true},
	OpSelect:               {"OpSelect", true, true},
	OpIEqual:               {"OpIEqual", true, true},
	OpINotEqual:            {"OpINotEqual", true, true},
	OpUGreaterThanEqual:    {"OpUGreaterThanEqual", true, true},
	OpSGreaterThanEqual:    {"OpSGreaterThanEqual", true, true},
	OpULessThan:            {"OpULessThan", true, true},
	OpSLessThan:            {"OpSLessThan", true, true},
	OpFOrdEqual:            {"OpFOrdEqual", true, true},
	OpFOrdLessThan:         {"OpFOrdLessThan", true, true},
	OpShiftRightLogical:    {"OpShiftRightLogical", true, true},
	OpShiftRightArithmetic: {"OpShiftRightArithmetic", true, true},
	OpShiftLeftLogical:     {"OpShiftLeftLogical", true, true},
	OpBitwiseOr:            {"OpBitwiseOr", true, true},
	OpBitwiseXor:           {"OpBitwiseXor", true, true},
	OpBitwiseAnd:           {"OpBitwiseAnd", true, true},
	OpNot:                  {"OpNot", true, true},
	OpBitFieldInsert:       {"OpBitFieldInsert", true, true},
	OpBitFieldSExtract:     {"OpBitFieldSExtract", true, true},
	OpBitFieldUExtract:     {"OpBitFieldUExtract", true, true},
	OpBitCount:             {"OpBitCount", true, true},
	OpEmitVertex:           {"OpEmitVertex", false, false},
	OpEndPrimitive:         {"OpEndPrimitive", false, false},
	OpControlBarrier:       {"OpControlBarrier", false, false},
	OpMemoryBarrier:        {"OpMemoryBarrier", false, false},
	OpAtomicExchange:       {"OpAtomicExchange", true, true},
	OpAtomicIIncrement:     {"OpAtomicIIncrement", true, true},
	OpAtomicIDecrement:     {"OpAtomicIDecrement", true, true},
	OpAtomicIAdd:           {"OpAtomicIAdd", true, true},
	OpAtomicSMin:           {"OpAtomicSMin", true, true},
	OpAtomicUMin:           {"OpAtomicUMin", true, true},
	OpAtomicSMax:           {"OpAtomicSMax", true, true},
	OpAtomicUMax:           {"OpAtomicUMax", true, true},
	OpAtomicAnd:            {"OpAtomicAnd", true, true},
	OpAtomicOr:             {"OpAtomicOr", true, true},
	OpAtomicXor:            {"OpAtomicXor", true, true},
	OpPhi:                  {"OpPhi", true, true},
	OpSelectionMerge:       {"OpSelectionMerge", false, false},
	OpLabel:                {"OpLabel", false, true},
	OpBranch:               {"OpBranch", false, false},
	OpBranchConditional:    {"OpBranchConditional", false, false},
	OpKill:                 {"OpKill", false, false},
	OpReturn:               {"OpReturn", false, false},
}

func (op OpCode) String() string {
	if i, ok := opInfos[op]; ok {
		return i.name
	}

	return fmt.Sprintf("Op%d", uint16(op))
}

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix                         Capability = 0
	CapabilityShader                         Capability = 1
	CapabilityGeometry                       Capability = 2
	CapabilityTessellation                   Capability = 3
	CapabilityFloat16                        Capability = 9
	CapabilityFloat64                        Capability = 10
	CapabilityInt64                          Capability = 11
	CapabilityInt64Atomics                   Capability = 12
	CapabilityInt16                          Capability = 22
	CapabilityClipDistance                   Capability = 32
	CapabilityCullDistance                   Capability = 33
	CapabilityImageCubeArray                 Capability = 34
	CapabilitySampled1D                      Capability = 43
	CapabilityImage1D                        Capability = 44
	CapabilitySampledBuffer                  Capability = 46
	CapabilityImageBuffer                    Capability = 47
	CapabilityStorageImageExtendedFormats    Capability = 49
	CapabilityImageQuery                     Capability = 50
	CapabilityStorageImageReadWithoutFormat  Capability = 55
	CapabilityStorageImageWriteWithoutFormat Capability = 56
	CapabilityGroupNonUniform                Capability = 61
	CapabilityDrawParameters                 Capability = 4427
)

var capabilityNames = map[Capability]string{
	CapabilityMatrix:                         "Matrix",
	CapabilityShader:                         "Shader",
	CapabilityGeometry:                       "Geometry",
	CapabilityTessellation:                   "Tessellation",
	CapabilityFloat16:                        "Float16",
	CapabilityFloat64:                        "Float64",
	CapabilityInt64:                          "Int64",
	CapabilityInt64Atomics:                   "Int64Atomics",
	CapabilityInt16:                          "Int16",
	CapabilityClipDistance:                   "ClipDistance",
	CapabilityCullDistance:                   "CullDistance",
	CapabilityImageCubeArray:                 "ImageCubeArray",
	CapabilitySampled1D:                      "Sampled1D",
	CapabilityImage1D:                        "Image1D",
	CapabilitySampledBuffer:                  "SampledBuffer",
	CapabilityImageBuffer:                    "ImageBuffer",
	CapabilityStorageImageExtendedFormats:    "StorageImageExtendedFormats",
	CapabilityImageQuery:                     "ImageQuery",
	CapabilityStorageImageReadWithoutFormat:  "StorageImageReadWithoutFormat",
	CapabilityStorageImageWriteWithoutFormat: "StorageImageWriteWithoutFormat",
	CapabilityGroupNonUniform:                "GroupNonUniform",
	CapabilityDrawParameters:                 "DrawParameters",
}

func (c Capability) String() string { return lookupName(capabilityNames, c) }

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock         Decoration = 2
	DecorationArrayStride   Decoration = 6
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationPatch         Decoration = 15
	DecorationNonWritable   Decoration = 24
	DecorationNonReadable   Decoration = 25
	DecorationLocation      Decoration = 30
	DecorationComponent     Decoration = 31
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

var decorationNames = map[Decoration]string{
	DecorationBlock:         "Block",
	DecorationArrayStride:   "ArrayStride",
	DecorationBuiltIn:       "BuiltIn",
	DecorationNoPerspective: "NoPerspective",
	DecorationFlat:          "Flat",
	DecorationPatch:         "Patch",
	DecorationNonWritable:   "NonWritable",
	DecorationNonReadable:   "NonReadable",
	DecorationLocation:      "Location",
	DecorationComponent:     "Component",
	DecorationBinding:       "Binding",
	DecorationDescriptorSet: "DescriptorSet",
	DecorationOffset:        "Offset",
}

func (d Decoration) String() string { return lookupName(decorationNames, d) }

// BuiltIn identifies a built-in interface variable.
type BuiltIn uint32

const (
	BuiltInPosition                  BuiltIn = 0
	BuiltInPointSize                 BuiltIn = 1
	BuiltInClipDistance              BuiltIn = 3
	BuiltInCullDistance              BuiltIn = 4
	BuiltInPrimitiveId               BuiltIn = 7
	BuiltInInvocationId              BuiltIn = 8
	BuiltInTessLevelOuter            BuiltIn = 11
	BuiltInTessLevelInner            BuiltIn = 12
	BuiltInPatchVertices             BuiltIn = 14
	BuiltInFragCoord                 BuiltIn = 15
	BuiltInFrontFacing               BuiltIn = 17
	BuiltInFragDepth                 BuiltIn = 22
	BuiltInWorkgroupId               BuiltIn = 26
	BuiltInLocalInvocationId         BuiltIn = 27
	BuiltInSubgroupLocalInvocationId BuiltIn = 41
	BuiltInVertexIndex               BuiltIn = 42
	BuiltInInstanceIndex             BuiltIn = 43
	BuiltInBaseVertex                BuiltIn = 4424
)

var builtInNames = map[BuiltIn]string{
	BuiltInPosition:                  "Position",
	BuiltInPointSize:                 "PointSize",
	BuiltInClipDistance:              "ClipDistance",
	BuiltInCullDistance:              "CullDistance",
	BuiltInPrimitiveId:               "PrimitiveId",
	BuiltInInvocationId:              "InvocationId",
	BuiltInTessLevelOuter:            "TessLevelOuter",
	BuiltInTessLevelInner:            "TessLevelInner",
	BuiltInPatchVertices:             "PatchVertices",
	BuiltInFragCoord:                 "FragCoord",
	BuiltInFrontFacing:               "FrontFacing",
	BuiltInFragDepth:                 "FragDepth",
	BuiltInWorkgroupId:               "WorkgroupId",
	BuiltInLocalInvocationId:         "LocalInvocationId",
	BuiltInSubgroupLocalInvocationId: "SubgroupLocalInvocationId",
	BuiltInVertexIndex:               "VertexIndex",
	BuiltInInstanceIndex:             "InstanceIndex",
	BuiltInBaseVertex:                "BaseVertex",
}

func (b BuiltIn) String() string { return lookupName(builtInNames, b) }

// StorageClass is the address space of a pointer or variable.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassImage           StorageClass = 11
	StorageClassStorageBuffer   StorageClass = 12
)

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant: "UniformConstant",
	StorageClassInput:           "Input",
	StorageClassUniform:         "Uniform",
	StorageClassOutput:          "Output",
	StorageClassWorkgroup:       "Workgroup",
	StorageClassPrivate:         "Private",
	StorageClassFunction:        "Function",
	StorageClassPushConstant:    "PushConstant",
	StorageClassImage:           "Image",
	StorageClassStorageBuffer:   "StorageBuffer",
}

func (s StorageClass) String() string { return lookupName(storageClassNames, s) }

// ExecutionModel is the pipeline stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
)

var executionModelNames = map[ExecutionModel]string{
	ExecutionModelVertex:                 "Vertex",
	ExecutionModelTessellationControl:    "TessellationControl",
	ExecutionModelTessellationEvaluation: "TessellationEvaluation",
	ExecutionModelGeometry:               "Geometry",
	ExecutionModelFragment:               "Fragment",
	ExecutionModelGLCompute:              "GLCompute",
}

func (m ExecutionModel) String() string { return lookupName(executionModelNames, m) }

// ExecutionMode configures an entry point.
type ExecutionMode uint32

const (
	ExecutionModeInvocations         ExecutionMode = 0
	ExecutionModeOriginUpperLeft     ExecutionMode = 7
	ExecutionModeDepthReplacing      ExecutionMode = 12
	ExecutionModeLocalSize           ExecutionMode = 17
	ExecutionModeInputPoints         ExecutionMode = 19
	ExecutionModeInputLines          ExecutionMode = 20
	ExecutionModeTriangles           ExecutionMode = 22
	ExecutionModeInputTrianglesAdj   ExecutionMode = 23
	ExecutionModeOutputVertices      ExecutionMode = 26
	ExecutionModeOutputPoints        ExecutionMode = 27
	ExecutionModeOutputLineStrip     ExecutionMode = 28
	ExecutionModeOutputTriangleStrip ExecutionMode = 29
)

var executionModeNames = map[ExecutionMode]string{
	ExecutionModeInvocations:         "Invocations",
	ExecutionModeOriginUpperLeft:     "OriginUpperLeft",
	ExecutionModeDepthReplacing:      "DepthReplacing",
	ExecutionModeLocalSize:           "LocalSize",
	ExecutionModeInputPoints:         "InputPoints",
	ExecutionModeInputLines:          "InputLines",
	ExecutionModeTriangles:           "Triangles",
	ExecutionModeInputTrianglesAdj:   "InputTrianglesAdjacency",
	ExecutionModeOutputVertices:      "OutputVertices",
	ExecutionModeOutputPoints:        "OutputPoints",
	ExecutionModeOutputLineStrip:     "OutputLineStrip",
	ExecutionModeOutputTriangleStrip: "OutputTriangleStrip",
}

func (m ExecutionMode) String() string { return lookupName(executionModeNames, m) }

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const AddressingModelLogical AddressingModel = 0

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const MemoryModelGLSL450 MemoryModel = 1

// FunctionControl holds function hints.
type FunctionControl uint32

const FunctionControlNone FunctionControl = 0

// Dim is the dimensionality of an image type.
type Dim uint32

const (
	Dim1D     Dim = 0
	Dim2D     Dim = 1
	Dim3D     Dim = 2
	DimCube   Dim = 3
	DimBuffer Dim = 5
)

var dimNames = map[Dim]string{
	Dim1D:     "1D",
	Dim2D:     "2D",
	Dim3D:     "3D",
	DimCube:   "Cube",
	DimBuffer: "Buffer",
}

func (d Dim) String() string { return lookupName(dimNames, d) }

// ImageFormat is the texel format of a storage image.
type ImageFormat uint32

const (
	ImageFormatUnknown      ImageFormat = 0
	ImageFormatRgba32f      ImageFormat = 1
	ImageFormatRgba16f      ImageFormat = 2
	ImageFormatR32f         ImageFormat = 3
	ImageFormatRgba8        ImageFormat = 4
	ImageFormatRg32f        ImageFormat = 6
	ImageFormatRg16f        ImageFormat = 7
	ImageFormatR11fG11fB10f ImageFormat = 8
	ImageFormatR16f         ImageFormat = 9
	ImageFormatRgba16       ImageFormat = 10
	ImageFormatRg8          ImageFormat = 13
	ImageFormatR8           ImageFormat = 15
	ImageFormatRg16Snorm    ImageFormat = 17
	ImageFormatR32i         ImageFormat = 24
	ImageFormatRgba32ui     ImageFormat = 30
	ImageFormatRgba8ui      ImageFormat = 32
	ImageFormatR32ui        ImageFormat = 33
	ImageFormatRg32ui       ImageFormat = 35
	ImageFormatR16ui        ImageFormat = 38
)

// Scope is the execution or memory scope of barriers and atomics.
type Scope uint32

const (
	ScopeDevice     Scope = 1
	ScopeWorkgroup  Scope = 2
	ScopeInvocation Scope = 4
)

// MemorySemantics is a bit set of memory ordering and storage classes.
type MemorySemantics uint32

const (
	MemorySemanticsNone            MemorySemantics = 0
	MemorySemanticsAcquireRelease  MemorySemantics = 0x8
	MemorySemanticsUniformMemory   MemorySemantics = 0x40
	MemorySemanticsWorkgroupMemory MemorySemantics = 0x100
	MemorySemanticsImageMemory     MemorySemantics = 0x800
)

func lookupName[K ~uint32](m map[K]string, v K) string {
	if s, ok := m[v]; ok {
		return s
	}

	return fmt.Sprintf("%d", uint32(v))
}

// GLSLstd450 is an instruction of the GLSL.std.450 extended set.
type GLSLstd450 uint32

const (
	GLSLstd450FAbs     GLSLstd450 = 4
	GLSLstd450SAbs     GLSLstd450 = 5
	GLSLstd450Sqrt     GLSLstd450 = 31
	GLSLstd450FMin     GLSLstd450 = 37
	GLSLstd450UMin     GLSLstd450 = 38
	GLSLstd450SMin     GLSLstd450 = 39
	GLSLstd450FMax     GLSLstd450 = 40
	GLSLstd450UMax     GLSLstd450 = 41
	GLSLstd450SMax     GLSLstd450 = 42
	GLSLstd450Fma      GLSLstd450 = 50
	GLSLstd450FindILsb GLSLstd450 = 73
)
