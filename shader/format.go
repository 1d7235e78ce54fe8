package shader

import "fmt"

// NumberFormat is the numeric interpretation of a resource or attribute.
type NumberFormat uint8

const (
	NumberFormatUnorm NumberFormat = iota
	NumberFormatSnorm
	NumberFormatUscaled
	NumberFormatSscaled
	NumberFormatUint
	NumberFormatSint
	NumberFormatSnormNz
	NumberFormatFloat
	_
	NumberFormatSrgb
)

var numberFormatNames = map[NumberFormat]string{
	NumberFormatUnorm:   "Unorm",
	NumberFormatSnorm:   "Snorm",
	NumberFormatUscaled: "Uscaled",
	NumberFormatSscaled: "Sscaled",
	NumberFormatUint:    "Uint",
	NumberFormatSint:    "Sint",
	NumberFormatSnormNz: "SnormNz",
	NumberFormatFloat:   "Float",
	NumberFormatSrgb:    "Srgb",
}

func (f NumberFormat) String() string {
	if n, ok := numberFormatNames[f]; ok {
		return n
	}

	return fmt.Sprintf("NumberFormat(%d)", uint8(f))
}

// IsInteger reports whether values are read as raw integers.
func (f NumberFormat) IsInteger() bool {
	return f == NumberFormatUint || f == NumberFormatSint
}

// IsFloatLike reports whether values are converted to floats on read.
func (f NumberFormat) IsFloatLike() bool {
	_, ok := numberFormatNames[f]
	return ok && !f.IsInteger()
}

// DataFormat is the memory layout of a texel.
type DataFormat uint8

const (
	DataFormatInvalid DataFormat = iota
	DataFormat8
	DataFormat16
	DataFormat8_8
	DataFormat32
	DataFormat16_16
	DataFormat10_11_11
	DataFormat11_11_10
	DataFormat10_10_10_2
	DataFormat2_10_10_10
	DataFormat8_8_8_8
	DataFormat32_32
	DataFormat16_16_16_16
	DataFormat32_32_32
	DataFormat32_32_32_32
)

// PrimitiveType is the input assembly topology of a draw.
type PrimitiveType uint8

const (
	PrimitiveNone PrimitiveType = iota
	PrimitivePointList
	PrimitiveLineList
	PrimitiveLineStrip
	PrimitiveTriangleList
	PrimitiveTriangleFan
	PrimitiveTriangleStrip
	PrimitivePatch
	PrimitiveAdjLineList
	PrimitiveAdjLineStrip
	PrimitiveAdjTriangleList
	PrimitiveAdjTriangleStrip
	PrimitiveRectList
	PrimitiveQuadList
)

// NumVertices returns how many vertices a geometry shader sees per input
// primitive. ok is false for topologies a geometry shader cannot consume.
func NumVertices(p PrimitiveType) (n uint32, ok bool) {
	switch p {
	case PrimitivePointList:
		return 1, true
	case PrimitiveLineList, PrimitiveLineStrip:
		return 2, true
	case PrimitiveTriangleList, PrimitiveTriangleStrip:
		return 3, true
	case PrimitiveAdjTriangleList:
		return 6, true
	default:
		return 0, false
	}
}
