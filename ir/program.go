package ir

import (
	"iter"

	"github.com/gogpu/recompiler/shader"
)

// BufferResource is a buffer descriptor referenced by the shader.
type BufferResource struct {
	SharpIdx       uint32
	UsedTypes      Type
	NumDwords      uint32 // zero for unbounded storage buffers
	IsStorage      bool
	IsWritten      bool
	IsInstanceData bool
}

// TextureBufferResource is a typed buffer accessed through format conversion.
type TextureBufferResource struct {
	SharpIdx  uint32
	NumFormat shader.NumberFormat
	IsWritten bool
}

// ImageType is the dimensionality of an image resource.
type ImageType uint8

const (
	ImageColor1D ImageType = iota
	ImageColor1DArray
	ImageColor2D
	ImageColor2DArray
	ImageColor2DMsaa
	ImageColor3D
	ImageCube
)

// ImageResource is an image descriptor referenced by the shader.
type ImageResource struct {
	SharpIdx   uint32
	Type       ImageType
	NumFormat  shader.NumberFormat
	DataFormat shader.DataFormat
	IsStorage  bool
	IsArray    bool
	IsAtomic   bool
}

// SamplerResource is a sampler descriptor referenced by the shader.
type SamplerResource struct {
	SharpIdx uint32
}

// InstanceStepRate selects how a vertex input advances per instance.
type InstanceStepRate uint8

const (
	StepRateNone InstanceStepRate = iota
	StepRateOver0
	StepRateOver1
	StepRatePlain
)

// VSInput is one fetched vertex attribute.
type VSInput struct {
	Binding          uint32
	NumComponents    uint32
	Format           shader.NumberFormat
	InstanceStepRate InstanceStepRate
	InstanceDataBuf  uint32
}

// Info is the per-program resource-usage summary the backend consumes.
type Info struct {
	Stage   shader.Stage
	PgmHash uint64

	Buffers        []BufferResource
	TextureBuffers []TextureBufferResource
	Images         []ImageResource
	Samplers       []SamplerResource
	VSInputs       []VSInput

	Loads  AttributeFlags
	Stores AttributeFlags

	UsesShared   bool
	UsesFP16     bool
	UsesFP64     bool
	UsesLaneID   bool
	HasReadConst bool

	FlattenedUDBufSize uint32 // dwords
	GSCopyNumAttrs     uint32
}

// Program is one shader variant in SSA form.
type Program struct {
	Blocks []*Block
	Info   Info

	pool *Pool
}

func NewProgram(info Info) *Program {
	return &Program{
		Info: info,
		pool: NewPool(),
	}
}

// NewBlock appends a new empty block.
func (p *Program) NewBlock() *Block {
	b := &Block{
		index: len(p.Blocks),
		pool:  p.pool,
	}

	p.Blocks = append(p.Blocks, b)

	return b
}

func (p *Program) Pool() *Pool { return p.pool }

// Instructions iterates every instruction of every block in order.
func (p *Program) Instructions() iter.Seq2[*Block, *Inst] {
	return func(yield func(*Block, *Inst) bool) {
		for _, b := range p.Blocks {
			for inst := range b.Instructions() {
				if !yield(b, inst) {
					return
				}
			}
		}
	}
}
