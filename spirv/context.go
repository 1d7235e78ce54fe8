package spirv

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// maxPatchVertices sizes the per-vertex input arrays of a hull shader.
const maxPatchVertices = 32

// Attr is a declared shader input or output.
type Attr struct {
	ID            uint32 // variable, or the constant vector of a default input
	ComponentType uint32
	NumComponents uint32
	IsInteger     bool
	IsSigned      bool
	IsDefault     bool
}

// BufferDef is a declared uniform or storage buffer.
type BufferDef struct {
	ID           uint32
	Slot         uint32
	DataType     uint32
	PointerType  uint32
	StorageClass StorageClass
	IsF32        bool
	IsStorage    bool
}

// TextureBufferDef is a declared texel buffer.
type TextureBufferDef struct {
	ID          uint32
	Slot        uint32
	ImageType   uint32
	SampledType uint32
	IsStorage   bool
}

// ImageDef is a declared image.
type ImageDef struct {
	ID          uint32
	Slot        uint32
	ImageType   uint32
	SampledType uint32
	IsStorage   bool
}

// EmitContext holds the declarations of one module: the types, interface
// variables and resources a program needs. It is built in a fixed order by
// NewEmitContext; instruction emission then resolves operands with Def.
type EmitContext struct {
	*ModuleBuilder

	Profile    Profile
	Info       *ir.Info
	Runtime    *shader.RuntimeInfo
	Stage      shader.Stage
	Bindings   *Bindings
	BindingMap *BindingMap

	// Scalar and vector types indexed by component count; [1] is the scalar.
	Void uint32
	U1   [5]uint32
	U16  uint32
	U32  [5]uint32
	S32  [5]uint32
	U64  uint32
	F16  [5]uint32
	F32  [5]uint32
	F64  [5]uint32

	TrueValue  uint32
	FalseValue uint32
	U32Zero    uint32
	U32One     uint32
	F32Zero    uint32

	GLSL uint32 // GLSL.std.450 import

	// Interfaces lists Input and Output variables. Globals lists every
	// global variable; SPIR-V 1.4 entry points name all of them.
	Interfaces []uint32
	Globals    []uint32

	PushData uint32

	LaneID            uint32
	VertexIndex       uint32
	BaseVertex        uint32
	InstanceIndex     uint32
	FragCoord         uint32
	FragDepth         uint32
	FrontFacing       uint32
	WorkgroupID       uint32
	LocalInvocationID uint32
	PrimitiveID       uint32
	InvocationID      uint32

	OutputPosition uint32
	ClipDistances  uint32
	CullDistances  uint32

	InputParams  [ir.NumParams]Attr
	OutputParams [ir.NumParams]Attr
	FragColors   [shader.MaxColorBuffers]Attr

	GeometryIn       uint32 // gl_in
	GeometryVertices uint32

	TessInputs         uint32
	TessOutputs        uint32
	TessInputAttrs     uint32
	TessOutputAttrs    uint32
	TessLevelOuter     uint32
	TessLevelInner     uint32
	PatchOutputs       uint32
	HullOutputVertices uint32

	FlatBuf        uint32
	Buffers        []BufferDef
	TextureBuffers []TextureBufferDef
	Images         []ImageDef
	Samplers       []uint32
	ImageU32       uint32

	SharedMemory uint32
	SharedDwords uint32

	strided map[uint32]bool
}

// NewEmitContext declares everything p needs, in order: arithmetic types,
// push data, inputs, outputs, buffers, texture buffers, images and
// samplers, then workgroup memory. Binding slots are taken from bindings.
func NewEmitContext(profile Profile, info *ir.Info, rt *shader.RuntimeInfo, bindings *Bindings) (c *EmitContext, err error) {
	defer func() {
		if err != nil {
			c = nil
		}
	}()
	defer ir.Recover(&err)

	if rt == nil {
		rt = shader.NewRuntimeInfo(info.Stage)
	}

	if bindings == nil {
		bindings = &Bindings{}
	}

	c = &EmitContext{
		ModuleBuilder: NewModuleBuilder(profile.Version),
		Profile:       profile,
		Info:          info,
		Runtime:       rt,
		Stage:         info.Stage,
		Bindings:      bindings,
		BindingMap:    NewBindingMap(),
		strided:       make(map[uint32]bool),
	}

	c.AddCapability(CapabilityShader)
	c.GLSL = c.AddExtInstImport("GLSL.std.450")
	c.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	c.defineArithmeticTypes()
	c.definePushDataBlock()
	c.defineInputs()
	c.defineOutputs()
	c.defineBuffers()
	c.defineTextureBuffers()
	c.defineImagesAndSamplers()
	c.defineSharedMemory()

	return c, nil
}

// Def returns the ID of v. Instruction results must have been emitted
// already; immediates are materialized as constants.
func (c *EmitContext) Def(v ir.Value) uint32 {
	if !v.IsImmediate() {
		inst := v.InstRecursive()
		if inst.Definition() == 0 {
			ir.Throw(ir.ErrLogic, "%v used before it was emitted", inst.Opcode())
		}

		return inst.Definition()
	}

	v = v.Resolve()

	switch v.Type() {
	case ir.TypeVoid:
		return 0
	case ir.TypeU1:
		if v.U1() {
			return c.TrueValue
		}

		return c.FalseValue
	case ir.TypeU32:
		return c.ConstU32(v.U32())
	case ir.TypeU64:
		return c.AddConstant(c.U64, uint32(v.U64()), uint32(v.U64()>>32))
	case ir.TypeF32:
		return c.AddConstant(c.F32[1], v.F32Bits())
	case ir.TypeF64:
		return c.AddConstant(c.TypeID(ir.TypeF64), uint32(v.F64Bits()), uint32(v.F64Bits()>>32))
	case ir.TypeStringLiteral:
		return c.AddString(v.StringLiteral())
	}

	ir.Throw(ErrNotImplemented, "immediate of type %v", v.Type())
	panic("unreachable")
}

// TypeID returns the declared type for an IR value type.
func (c *EmitContext) TypeID(t ir.Type) uint32 {
	var id uint32

	switch t {
	case ir.TypeU1:
		id = c.U1[1]
	case ir.TypeU16:
		id = c.U16
	case ir.TypeU32:
		id = c.U32[1]
	case ir.TypeU64:
		id = c.U64
	case ir.TypeF16:
		id = c.F16[1]
	case ir.TypeF32:
		id = c.F32[1]
	case ir.TypeF64:
		id = c.F64[1]
	case ir.TypeU32x2, ir.TypeU32x3, ir.TypeU32x4:
		id = c.U32[2+vectorIndex(t, ir.TypeU32x2)]
	case ir.TypeF16x2, ir.TypeF16x3, ir.TypeF16x4:
		id = c.F16[2+vectorIndex(t, ir.TypeF16x2)]
	case ir.TypeF32x2, ir.TypeF32x3, ir.TypeF32x4:
		id = c.F32[2+vectorIndex(t, ir.TypeF32x2)]
	case ir.TypeF64x2, ir.TypeF64x3, ir.TypeF64x4:
		id = c.F64[2+vectorIndex(t, ir.TypeF64x2)]
	}

	if id == 0 {
		ir.Throw(ErrNotImplemented, "type %v", t)
	}

	return id
}

// vectorIndex is the distance of vector type t from the two component
// type of its family.
func vectorIndex(t, base ir.Type) int {
	return bits.TrailingZeros32(uint32(t)) - bits.TrailingZeros32(uint32(base))
}

// ConstU32 returns the ID of a 32-bit unsigned constant.
func (c *EmitContext) ConstU32(v uint32) uint32 { return c.AddConstant(c.U32[1], v) }

// ConstF32 returns the ID of a 32-bit float constant.
func (c *EmitContext) ConstF32(v float32) uint32 { return c.AddConstantFloat32(c.F32[1], v) }

func (c *EmitContext) name(id uint32, format string, args ...any) {
	if c.Profile.Debug {
		c.AddName(id, fmt.Sprintf(format, args...))
	}
}

func (c *EmitContext) defineArithmeticTypes() {
	c.Void = c.AddTypeVoid()
	c.U1[1] = c.AddTypeBool()

	if c.Info.UsesFP16 {
		if !c.Profile.SupportsFloat16 {
			ir.Throw(ErrNotImplemented, "half precision arithmetic without Float16 support")
		}

		c.AddCapability(CapabilityFloat16)
		c.AddCapability(CapabilityInt16)
		c.F16[1] = c.AddTypeFloat(16)
		c.U16 = c.AddTypeInt(16, false)
	}

	if c.Info.UsesFP64 {
		if !c.Profile.SupportsFloat64 {
			ir.Throw(ErrNotImplemented, "double precision arithmetic without Float64 support")
		}

		c.AddCapability(CapabilityFloat64)
		c.F64[1] = c.AddTypeFloat(64)
	}

	c.F32[1] = c.AddTypeFloat(32)
	c.S32[1] = c.AddTypeInt(32, true)
	c.U32[1] = c.AddTypeInt(32, false)

	c.AddCapability(CapabilityInt64)
	c.U64 = c.AddTypeInt(64, false)

	for n := uint32(2); n <= 4; n++ {
		c.U1[n] = c.AddTypeVector(c.U1[1], n)
		c.F32[n] = c.AddTypeVector(c.F32[1], n)
		c.S32[n] = c.AddTypeVector(c.S32[1], n)
		c.U32[n] = c.AddTypeVector(c.U32[1], n)

		if c.F16[1] != 0 {
			c.F16[n] = c.AddTypeVector(c.F16[1], n)
		}

		if c.F64[1] != 0 {
			c.F64[n] = c.AddTypeVector(c.F64[1], n)
		}
	}

	c.TrueValue = c.AddConstantBool(c.U1[1], true)
	c.FalseValue = c.AddConstantBool(c.U1[1], false)
	c.U32One = c.ConstU32(1)
	c.U32Zero = c.ConstU32(0)
	c.F32Zero = c.ConstF32(0)
}

// Push constant block layout. User data registers are four uvec4s
// starting at member pushDataUserRegs.
var pushDataMembers = [...]struct {
	name   string
	offset uint32
}{
	{"sr0", 0},
	{"sr1", 4},
	{"buf_offsets0", 8},
	{"buf_offsets1", 24},
	{"ud_regs0", 40},
	{"ud_regs1", 56},
	{"ud_regs2", 72},
	{"ud_regs3", 88},
}

const (
	pushDataUserRegs = 4
	numPushUserRegs  = 16
)

func (c *EmitContext) definePushDataBlock() {
	u32x4 := c.U32[4]

	st := c.AddTypeStruct(c.U32[1], c.U32[1], u32x4, u32x4, u32x4, u32x4, u32x4, u32x4)
	c.AddDecorate(st, DecorationBlock)
	c.name(st, "AuxData")

	for i, m := range pushDataMembers {
		c.AddMemberDecorate(st, uint32(i), DecorationOffset, m.offset)

		if c.Profile.Debug {
			c.AddMemberName(st, uint32(i), m.name)
		}
	}

	c.PushData = c.defineVar(st, StorageClassPushConstant)
	c.name(c.PushData, "push_data")
}

func (c *EmitContext) defineVar(typ uint32, sc StorageClass) uint32 {
	id := c.AddVariable(c.AddTypePointer(sc, typ), sc)

	c.Globals = append(c.Globals, id)

	if sc == StorageClassInput || sc == StorageClassOutput {
		c.Interfaces = append(c.Interfaces, id)
	}

	return id
}

func (c *EmitContext) defineBuiltIn(typ uint32, sc StorageClass, b BuiltIn) uint32 {
	id := c.defineVar(typ, sc)
	c.AddDecorate(id, DecorationBuiltIn, uint32(b))
	c.name(id, "gl_%v", b)

	return id
}

func (c *EmitContext) defineLocation(typ uint32, sc StorageClass, location uint32) uint32 {
	id := c.defineVar(typ, sc)
	c.AddDecorate(id, DecorationLocation, location)

	return id
}

// attrType picks the component type an attribute of format nf is read as.
func (c *EmitContext) attrType(nf shader.NumberFormat, n uint32) Attr {
	switch nf {
	case shader.NumberFormatUint:
		return Attr{ComponentType: c.U32[1], NumComponents: n, IsInteger: true}
	case shader.NumberFormatSint:
		return Attr{ComponentType: c.S32[1], NumComponents: n, IsInteger: true, IsSigned: true}
	default:
		return Attr{ComponentType: c.F32[1], NumComponents: n}
	}
}

// vectorOf returns the type of an n-component vector of a's component type.
func (c *EmitContext) vectorOf(a Attr) uint32 {
	switch a.ComponentType {
	case c.U32[1]:
		return c.U32[a.NumComponents]
	case c.S32[1]:
		return c.S32[a.NumComponents]
	default:
		return c.F32[a.NumComponents]
	}
}

func (c *EmitContext) arrayOf(elem, n uint32) uint32 {
	return c.AddTypeArray(elem, c.ConstU32(n))
}

// defaultVector is one of the four constants a fragment input reads when it
// is not interpolated: (0,0,0,0), (0,0,0,1), (1,1,1,0) or (1,1,1,1).
func (c *EmitContext) defaultVector(sel uint32) uint32 {
	xyz, w := float32(0), float32(0)

	if sel&2 != 0 {
		xyz = 1
	}

	if sel&1 != 0 {
		w = 1
	}

	x := c.ConstF32(xyz)

	return c.AddConstantComposite(c.F32[4], x, x, x, c.ConstF32(w))
}

func checkParam(i uint32) {
	if i >= ir.NumParams {
		ir.Throw(ir.ErrInvalidArgument, "parameter index %d out of range", i)
	}
}

func (c *EmitContext) defineInputs() {
	rt := c.Runtime

	if c.Info.UsesLaneID {
		c.AddCapability(CapabilityGroupNonUniform)
		c.LaneID = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInSubgroupLocalInvocationId)

		if c.Stage == shader.StageFragment {
			c.AddDecorate(c.LaneID, DecorationFlat)
		}
	}

	switch {
	case c.Stage.IsVertexLike():
		c.AddCapability(CapabilityDrawParameters)

		c.VertexIndex = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInVertexIndex)
		c.BaseVertex = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInBaseVertex)
		c.InstanceIndex = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInInstanceIndex)

		for _, in := range c.Info.VSInputs {
			checkParam(in.Binding)

			// step rates other than plain are fetched from instance buffers
			if in.InstanceStepRate == ir.StepRateOver0 || in.InstanceStepRate == ir.StepRateOver1 {
				continue
			}

			a := c.attrType(in.Format, 4)
			a.ID = c.defineLocation(c.vectorOf(a), StorageClassInput, in.Binding)

			if in.InstanceStepRate == ir.StepRatePlain {
				c.name(a.ID, "vs_instance_attr%d", in.Binding)
			} else {
				c.name(a.ID, "vs_in_attr%d", in.Binding)
			}

			c.InputParams[in.Binding] = a
		}

	case c.Stage == shader.StageFragment:
		c.FragCoord = c.defineBuiltIn(c.F32[4], StorageClassInput, BuiltInFragCoord)
		c.FrontFacing = c.defineBuiltIn(c.U1[1], StorageClassInput, BuiltInFrontFacing)

		for _, in := range rt.Fragment.Inputs {
			semantic := in.ParamIndex
			checkParam(semantic)

			if in.IsDefault && !in.IsFlat {
				c.InputParams[semantic] = Attr{
					ID:            c.defaultVector(in.DefaultValue),
					ComponentType: c.F32[1],
					NumComponents: 4,
					IsDefault:     true,
				}

				continue
			}

			n := c.Info.Loads.NumComponents(ir.AttrParam0.Offset(semantic))
			if n == 0 {
				continue
			}

			id := c.defineLocation(c.F32[n], StorageClassInput, semantic)
			if in.IsFlat {
				c.AddDecorate(id, DecorationFlat)
			}

			c.name(id, "fs_in_attr%d", semantic)

			c.InputParams[semantic] = Attr{ID: id, ComponentType: c.F32[1], NumComponents: n}
		}

	case c.Stage == shader.StageCompute:
		c.WorkgroupID = c.defineBuiltIn(c.U32[3], StorageClassInput, BuiltInWorkgroupId)
		c.LocalInvocationID = c.defineBuiltIn(c.U32[3], StorageClassInput, BuiltInLocalInvocationId)

	case c.Stage == shader.StageGeometry:
		n, ok := shader.NumVertices(rt.Geometry.InPrimitive)
		if !ok {
			ir.Throw(ErrNotImplemented, "geometry input primitive %d", rt.Geometry.InPrimitive)
		}

		c.GeometryVertices = n
		c.PrimitiveID = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInPrimitiveId)

		perVertex := c.AddTypeStruct(c.F32[4])
		c.AddDecorate(perVertex, DecorationBlock)
		c.AddMemberDecorate(perVertex, 0, DecorationBuiltIn, uint32(BuiltInPosition))
		c.name(perVertex, "gl_PerVertex")

		c.GeometryIn = c.defineVar(c.arrayOf(perVertex, n), StorageClassInput)
		c.name(c.GeometryIn, "gl_in")

		if rt.Geometry.InVertexDataSize > 4 {
			for i := range rt.Geometry.InVertexDataSize/4 - 1 {
				checkParam(i)

				id := c.defineLocation(c.arrayOf(c.F32[4], n), StorageClassInput, i)
				c.name(id, "gs_in_attr%d", i)

				c.InputParams[i] = Attr{ID: id, ComponentType: c.F32[1], NumComponents: 4}
			}
		}

	case c.Stage == shader.StageHull:
		c.AddCapability(CapabilityTessellation)

		c.InvocationID = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInInvocationId)
		c.PrimitiveID = c.defineBuiltIn(c.U32[1], StorageClassInput, BuiltInPrimitiveId)

		c.TessInputAttrs = max(1, rt.Hull.InputControlPointStride/16)

		perVertex := c.arrayOf(c.F32[4], c.TessInputAttrs)
		c.TessInputs = c.defineLocation(c.arrayOf(perVertex, maxPatchVertices), StorageClassInput, 0)
		c.name(c.TessInputs, "hs_in_attrs")
	}
}

func (c *EmitContext) defineOutputs() {
	rt := c.Runtime
	stores := &c.Info.Stores

	switch {
	case c.Stage.IsVertexLike():
		c.OutputPosition = c.defineBuiltIn(c.F32[4], StorageClassOutput, BuiltInPosition)

		if stores.GetAny(ir.AttrPosition1) || stores.GetAny(ir.AttrPosition2) || stores.GetAny(ir.AttrPosition3) {
			c.AddCapability(CapabilityClipDistance)
			c.AddCapability(CapabilityCullDistance)

			arr := c.arrayOf(c.F32[1], 8)
			c.ClipDistances = c.defineBuiltIn(arr, StorageClassOutput, BuiltInClipDistance)
			c.CullDistances = c.defineBuiltIn(arr, StorageClassOutput, BuiltInCullDistance)
		}

		for i := range uint32(ir.NumParams) {
			a := ir.AttrParam0.Offset(i)
			if !stores.GetAny(a) {
				continue
			}

			n := stores.NumComponents(a)

			id := c.defineLocation(c.F32[n], StorageClassOutput, i)
			c.name(id, "out_attr%d", i)

			c.OutputParams[i] = Attr{ID: id, ComponentType: c.F32[1], NumComponents: n}
		}

	case c.Stage == shader.StageFragment:
		if stores.GetAny(ir.AttrDepth) {
			c.FragDepth = c.defineBuiltIn(c.F32[1], StorageClassOutput, BuiltInFragDepth)
		}

		for i := range uint32(shader.MaxColorBuffers) {
			if !stores.GetAny(ir.AttrRenderTarget0.Offset(i)) {
				continue
			}

			a := c.attrType(rt.Fragment.ColorBuffers[i].NumFormat, 4)
			a.ID = c.defineLocation(c.vectorOf(a), StorageClassOutput, i)
			c.name(a.ID, "frag_color%d", i)

			c.FragColors[i] = a
		}

	case c.Stage == shader.StageGeometry:
		c.AddCapability(CapabilityGeometry)

		c.OutputPosition = c.defineBuiltIn(c.F32[4], StorageClassOutput, BuiltInPosition)

		for i := range c.Info.GSCopyNumAttrs {
			checkParam(i)

			id := c.defineLocation(c.F32[4], StorageClassOutput, i)
			c.name(id, "out_attr%d", i)

			c.OutputParams[i] = Attr{ID: id, ComponentType: c.F32[1], NumComponents: 4}
		}

	case c.Stage == shader.StageHull:
		cps, stride := rt.Hull.NumOutputControlPoints, rt.Hull.OutputControlPointStride
		if rt.Hull.Passthrough() {
			cps, stride = rt.Hull.NumInputControlPoints, rt.Hull.InputControlPointStride
		}

		c.HullOutputVertices = max(1, cps)
		c.TessOutputAttrs = max(1, stride/16)

		perVertex := c.arrayOf(c.F32[4], c.TessOutputAttrs)
		c.TessOutputs = c.defineLocation(c.arrayOf(perVertex, c.HullOutputVertices), StorageClassOutput, 0)
		c.name(c.TessOutputs, "hs_out_attrs")

		c.TessLevelOuter = c.defineBuiltIn(c.arrayOf(c.F32[1], 4), StorageClassOutput, BuiltInTessLevelOuter)
		c.AddDecorate(c.TessLevelOuter, DecorationPatch)

		c.TessLevelInner = c.defineBuiltIn(c.arrayOf(c.F32[1], 2), StorageClassOutput, BuiltInTessLevelInner)
		c.AddDecorate(c.TessLevelInner, DecorationPatch)

		c.PatchOutputs = c.defineLocation(c.arrayOf(c.F32[4], ir.NumPatchGenerics/4), StorageClassOutput, c.TessOutputAttrs)
		c.AddDecorate(c.PatchOutputs, DecorationPatch)
		c.name(c.PatchOutputs, "hs_patch_out")
	}
}

// dataBlock declares struct { data arr } decorated as a Block.
func (c *EmitContext) dataBlock(arr uint32) uint32 {
	if !c.strided[arr] {
		c.AddDecorate(arr, DecorationArrayStride, 4)
		c.strided[arr] = true
	}

	st := c.AddTypeStruct(arr)
	c.AddDecorate(st, DecorationBlock)
	c.AddMemberDecorate(st, 0, DecorationOffset, 0)

	if c.Profile.Debug {
		c.AddMemberName(st, 0, "data")
	}

	return st
}

func (c *EmitContext) bind(id uint32, b Binding) uint32 {
	b.Slot = c.Bindings.Unified
	c.Bindings.Unified++

	c.AddDecorate(id, DecorationBinding, b.Slot)
	c.AddDecorate(id, DecorationDescriptorSet, 0)

	c.BindingMap.Set(b)

	return b.Slot
}

func (c *EmitContext) defineBuffers() {
	if c.Info.HasReadConst {
		arr := c.arrayOf(c.U32[1], max(1, c.Info.FlattenedUDBufSize))

		c.FlatBuf = c.defineVar(c.dataBlock(arr), StorageClassUniform)
		c.name(c.FlatBuf, "srt_flatbuf_ubo")

		c.bind(c.FlatBuf, Binding{Kind: ResourceFlatBuffer})
	}

	for i, buf := range c.Info.Buffers {
		d := BufferDef{
			DataType:  c.U32[1],
			IsF32:     buf.UsedTypes.Has(ir.TypeF32),
			IsStorage: buf.IsStorage,
		}

		if d.IsF32 {
			d.DataType = c.F32[1]
		}

		var arr uint32

		if buf.IsStorage {
			if !c.Version().AtLeast(Version1_3) {
				c.AddExtension("SPV_KHR_storage_buffer_storage_class")
			}

			arr = c.AddTypeRuntimeArray(d.DataType)
			d.StorageClass = StorageClassStorageBuffer
		} else {
			n := buf.NumDwords
			if n == 0 {
				n = c.Profile.MaxUboDwords()
			}

			arr = c.arrayOf(d.DataType, n)
			d.StorageClass = StorageClassUniform
		}

		d.ID = c.defineVar(c.dataBlock(arr), d.StorageClass)
		d.PointerType = c.AddTypePointer(d.StorageClass, d.DataType)

		if buf.IsStorage && !buf.IsWritten {
			c.AddDecorate(d.ID, DecorationNonWritable)
		}

		if buf.IsStorage {
			c.name(d.ID, "ssbo_%d", i)
		} else {
			c.name(d.ID, "cbuf_%d", i)
		}

		d.Slot = c.bind(d.ID, Binding{
			Kind:     ResourceBuffer,
			SharpIdx: buf.SharpIdx,
			Index:    uint32(i),
			Storage:  buf.IsStorage,
			Written:  buf.IsWritten,
		})
		c.Bindings.Buffer++

		c.Buffers = append(c.Buffers, d)
	}
}

func (c *EmitContext) sampledType(nf shader.NumberFormat) uint32 {
	return c.attrType(nf, 1).ComponentType
}

func (c *EmitContext) defineTextureBuffers() {
	for i, tb := range c.Info.TextureBuffers {
		d := TextureBufferDef{
			SampledType: c.sampledType(tb.NumFormat),
			IsStorage:   tb.IsWritten,
		}

		sampled := uint32(1)
		if tb.IsWritten {
			sampled = 2
			c.AddCapability(CapabilityImageBuffer)
			c.AddCapability(CapabilityStorageImageReadWithoutFormat)
			c.AddCapability(CapabilityStorageImageWriteWithoutFormat)
		} else {
			c.AddCapability(CapabilitySampledBuffer)
		}

		d.ImageType = c.AddTypeImage(d.SampledType, DimBuffer, false, false, false, sampled, ImageFormatUnknown)
		d.ID = c.defineVar(d.ImageType, StorageClassUniformConstant)

		if tb.IsWritten {
			c.name(d.ID, "imgbuf_%d", i)
		} else {
			c.name(d.ID, "texbuf_%d", i)
		}

		d.Slot = c.bind(d.ID, Binding{
			Kind:     ResourceTextureBuffer,
			SharpIdx: tb.SharpIdx,
			Index:    uint32(i),
			Storage:  tb.IsWritten,
			Written:  tb.IsWritten,
		})

		c.TextureBuffers = append(c.TextureBuffers, d)
	}
}

func imageDim(t ir.ImageType) (dim Dim, arrayed, ms bool) {
	switch t {
	case ir.ImageColor1D:
		return Dim1D, false, false
	case ir.ImageColor1DArray:
		return Dim1D, true, false
	case ir.ImageColor2D:
		return Dim2D, false, false
	case ir.ImageColor2DArray:
		return Dim2D, true, false
	case ir.ImageColor2DMsaa:
		return Dim2D, false, true
	case ir.ImageColor3D:
		return Dim3D, false, false
	case ir.ImageCube:
		return DimCube, false, false
	}

	ir.Throw(ErrNotImplemented, "image type %d", t)
	panic("unreachable")
}

type formatKey struct {
	df shader.DataFormat
	nf shader.NumberFormat
}

// storage formats usable with image atomics and typed storage access
var imageFormats = map[formatKey]ImageFormat{
	{shader.DataFormat8, shader.NumberFormatUnorm}:           ImageFormatR8,
	{shader.DataFormat8_8, shader.NumberFormatUnorm}:         ImageFormatRg8,
	{shader.DataFormat8_8_8_8, shader.NumberFormatUnorm}:     ImageFormatRgba8,
	{shader.DataFormat8_8_8_8, shader.NumberFormatUint}:      ImageFormatRgba8ui,
	{shader.DataFormat16, shader.NumberFormatFloat}:          ImageFormatR16f,
	{shader.DataFormat16, shader.NumberFormatUint}:           ImageFormatR16ui,
	{shader.DataFormat16_16, shader.NumberFormatFloat}:       ImageFormatRg16f,
	{shader.DataFormat16_16, shader.NumberFormatSnorm}:       ImageFormatRg16Snorm,
	{shader.DataFormat16_16_16_16, shader.NumberFormatFloat}: ImageFormatRgba16f,
	{shader.DataFormat16_16_16_16, shader.NumberFormatUnorm}: ImageFormatRgba16,
	{shader.DataFormat11_11_10, shader.NumberFormatFloat}:    ImageFormatR11fG11fB10f,
	{shader.DataFormat32, shader.NumberFormatFloat}:          ImageFormatR32f,
	{shader.DataFormat32, shader.NumberFormatUint}:           ImageFormatR32ui,
	{shader.DataFormat32, shader.NumberFormatSint}:           ImageFormatR32i,
	{shader.DataFormat32_32, shader.NumberFormatFloat}:       ImageFormatRg32f,
	{shader.DataFormat32_32, shader.NumberFormatUint}:        ImageFormatRg32ui,
	{shader.DataFormat32_32_32_32, shader.NumberFormatFloat}: ImageFormatRgba32f,
	{shader.DataFormat32_32_32_32, shader.NumberFormatUint}:  ImageFormatRgba32ui,
}

// core storage image formats; anything else needs the extended formats capability
var coreImageFormats = map[ImageFormat]bool{
	ImageFormatRgba32f:  true,
	ImageFormatRgba16f:  true,
	ImageFormatR32f:     true,
	ImageFormatRgba8:    true,
	ImageFormatRgba32ui: true,
	ImageFormatRgba8ui:  true,
	ImageFormatR32ui:    true,
	ImageFormatR32i:     true,
}

func (c *EmitContext) imageFormat(im ir.ImageResource) ImageFormat {
	f, ok := imageFormats[formatKey{im.DataFormat, im.NumFormat}]
	if !ok {
		ir.Throw(ErrNotImplemented, "atomic image format %d/%v", im.DataFormat, im.NumFormat)
	}

	if !coreImageFormats[f] {
		c.AddCapability(CapabilityStorageImageExtendedFormats)
	}

	return f
}

func (c *EmitContext) defineImagesAndSamplers() {
	for i, im := range c.Info.Images {
		d := ImageDef{
			SampledType: c.sampledType(im.NumFormat),
			IsStorage:   im.IsStorage,
		}

		dim, arrayed, ms := imageDim(im.Type)

		if dim == Dim1D {
			if im.IsStorage {
				c.AddCapability(CapabilityImage1D)
			} else {
				c.AddCapability(CapabilitySampled1D)
			}
		}

		sampled := uint32(1)
		format := ImageFormatUnknown

		if im.IsStorage {
			sampled = 2
		}

		switch {
		case im.IsAtomic:
			format = c.imageFormat(im)
		case im.IsStorage:
			c.AddCapability(CapabilityStorageImageReadWithoutFormat)
			c.AddCapability(CapabilityStorageImageWriteWithoutFormat)
		}

		d.ImageType = c.AddTypeImage(d.SampledType, dim, false, arrayed, ms, sampled, format)

		typ := d.ImageType
		if !im.IsStorage {
			typ = c.AddTypeSampledImage(d.ImageType)
		}

		d.ID = c.defineVar(typ, StorageClassUniformConstant)
		c.name(d.ID, "%v_img%d", c.Stage, i)

		d.Slot = c.bind(d.ID, Binding{
			Kind:     ResourceImage,
			SharpIdx: im.SharpIdx,
			Index:    uint32(i),
			Storage:  im.IsStorage,
			Written:  im.IsStorage,
		})

		if im.IsAtomic {
			c.ImageU32 = c.AddTypePointer(StorageClassImage, c.U32[1])
		}

		c.Images = append(c.Images, d)
	}

	for i, s := range c.Info.Samplers {
		id := c.defineVar(c.AddTypeSampler(), StorageClassUniformConstant)
		c.name(id, "%v_samp%d", c.Stage, i)

		c.bind(id, Binding{Kind: ResourceSampler, SharpIdx: s.SharpIdx, Index: uint32(i)})

		c.Samplers = append(c.Samplers, id)
	}
}

func (c *EmitContext) defineSharedMemory() {
	if !c.Info.UsesShared {
		return
	}

	if c.Stage != shader.StageCompute {
		ir.Throw(ErrNotImplemented, "workgroup memory in stage %v", c.Stage)
	}

	size := c.Runtime.Compute.SharedMemorySize
	if size == 0 {
		size = c.Profile.SharedMemoryDefault
	}

	if size == 0 {
		size = 2 << 10
	}

	c.SharedDwords = (size + 3) / 4

	c.SharedMemory = c.defineVar(c.arrayOf(c.U32[1], c.SharedDwords), StorageClassWorkgroup)
	c.name(c.SharedMemory, "shared_mem")
}
