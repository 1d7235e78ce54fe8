package shader

// MaxColorBuffers is the number of render targets a fragment shader can export to.
const MaxColorBuffers = 8

// HullRuntimeInfo describes the tessellation control configuration of a draw.
type HullRuntimeInfo struct {
	NumInputControlPoints    uint32
	NumOutputControlPoints   uint32
	InputControlPointStride  uint32
	OutputControlPointStride uint32

	// ForcePassthrough marks a shader that writes no new control points even
	// though the draw declares an output patch.
	ForcePassthrough bool

	// NumFactors is written back by the hull transform: one more than the
	// highest tessellation factor index the shader stores.
	NumFactors uint32
}

// Passthrough reports whether input and output control point spaces overlap.
func (h *HullRuntimeInfo) Passthrough() bool {
	return h.ForcePassthrough || h.NumOutputControlPoints == 0
}

// PixelInput describes one interpolated fragment input.
type PixelInput struct {
	ParamIndex   uint32
	IsDefault    bool
	IsFlat       bool
	DefaultValue uint32 // 0..3, selects one of the constant default vectors
}

// ColorBuffer is the part of a render target the shader needs to know about.
type ColorBuffer struct {
	NumFormat NumberFormat
}

// FragmentRuntimeInfo describes fragment inputs and bound render targets.
type FragmentRuntimeInfo struct {
	Inputs       []PixelInput
	ColorBuffers [MaxColorBuffers]ColorBuffer
}

// GeometryRuntimeInfo describes the geometry stage configuration.
type GeometryRuntimeInfo struct {
	InPrimitive      PrimitiveType
	InVertexDataSize uint32 // in dwords, including the position
	OutputVertices   uint32
	NumInvocations   uint32
}

// ComputeRuntimeInfo describes the dispatch configuration.
type ComputeRuntimeInfo struct {
	SharedMemorySize uint32 // in bytes; zero means the backend default
	WorkgroupSize    [3]uint32
}

// RuntimeInfo carries stage-specific parameters that are not encoded in the
// shader binary itself.
type RuntimeInfo struct {
	Stage       Stage
	NumUserData uint32

	Hull     HullRuntimeInfo
	Fragment FragmentRuntimeInfo
	Geometry GeometryRuntimeInfo
	Compute  ComputeRuntimeInfo
}

// NewRuntimeInfo returns RuntimeInfo for stage with defaults that describe a
// single-invocation shader.
func NewRuntimeInfo(stage Stage) *RuntimeInfo {
	rt := &RuntimeInfo{Stage: stage}
	rt.Compute.WorkgroupSize = [3]uint32{1, 1, 1}
	rt.Geometry.NumInvocations = 1

	return rt
}
