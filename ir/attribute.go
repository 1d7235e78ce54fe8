package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Attribute names a shader input or output slot, or a system value.
type Attribute uint32

const (
	AttrRenderTarget0 Attribute = 0
	AttrDepth         Attribute = 8
	AttrNull          Attribute = 9
	AttrPosition0     Attribute = 12
	AttrPosition1     Attribute = 13
	AttrPosition2     Attribute = 14
	AttrPosition3     Attribute = 15
	AttrParam0        Attribute = 32

	AttrVertexId Attribute = 64 + iota - 8
	AttrInstanceId
	AttrPrimitiveId
	AttrFragCoord
	AttrIsFrontFace
	AttrWorkgroupId
	AttrLocalInvocationId
	AttrInvocationId
	AttrPackedHullInvocationInfo
	AttrTcsNumPatches
	AttrTcsInputCpStride

	NumAttributes
)

const (
	NumRenderTargets = 8
	NumParams        = 32
)

var systemAttributeNames = map[Attribute]string{
	AttrDepth:                    "Depth",
	AttrNull:                     "Null",
	AttrVertexId:                 "VertexId",
	AttrInstanceId:               "InstanceId",
	AttrPrimitiveId:              "PrimitiveId",
	AttrFragCoord:                "FragCoord",
	AttrIsFrontFace:              "IsFrontFace",
	AttrWorkgroupId:              "WorkgroupId",
	AttrLocalInvocationId:        "LocalInvocationId",
	AttrInvocationId:             "InvocationId",
	AttrPackedHullInvocationInfo: "PackedHullInvocationInfo",
	AttrTcsNumPatches:            "TcsNumPatches",
	AttrTcsInputCpStride:         "TcsInputCpStride",
}

// Offset returns the attribute n slots after a, as in Param0.Offset(3).
func (a Attribute) Offset(n uint32) Attribute {
	return a + Attribute(n)
}

func (a Attribute) IsParam() bool    { return a >= AttrParam0 && a < AttrParam0+NumParams }
func (a Attribute) IsPosition() bool { return a >= AttrPosition0 && a <= AttrPosition3 }
func (a Attribute) IsMrt() bool      { return a < AttrRenderTarget0+NumRenderTargets }

func (a Attribute) String() string {
	switch {
	case a.IsMrt():
		return "RenderTarget" + strconv.Itoa(int(a-AttrRenderTarget0))
	case a.IsPosition():
		return "Position" + strconv.Itoa(int(a-AttrPosition0))
	case a.IsParam():
		return "Param" + strconv.Itoa(int(a-AttrParam0))
	}

	if n, ok := systemAttributeNames[a]; ok {
		return n
	}

	return fmt.Sprintf("Attribute(%d)", uint32(a))
}

// ParseAttribute is the inverse of Attribute.String.
func ParseAttribute(s string) (Attribute, bool) {
	for a, n := range systemAttributeNames {
		if n == s {
			return a, true
		}
	}

	for _, r := range []struct {
		prefix string
		base   Attribute
		count  int
	}{
		{"RenderTarget", AttrRenderTarget0, NumRenderTargets},
		{"Position", AttrPosition0, 4},
		{"Param", AttrParam0, NumParams},
	} {
		rest, ok := strings.CutPrefix(s, r.prefix)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n >= r.count {
			return 0, false
		}

		return r.base + Attribute(n), true
	}

	return 0, false
}

// AttributeFlags records which components of which attributes are accessed.
type AttributeFlags [(NumAttributes*4 + 63) / 64]uint64

func (f *AttributeFlags) Set(a Attribute, comp uint32) {
	i := uint32(a)*4 + comp
	f[i/64] |= 1 << (i % 64)
}

func (f *AttributeFlags) Get(a Attribute, comp uint32) bool {
	i := uint32(a)*4 + comp
	return f[i/64]&(1<<(i%64)) != 0
}

// GetAny reports whether any component of a is set.
func (f *AttributeFlags) GetAny(a Attribute) bool {
	return f.mask(a) != 0
}

// NumComponents returns one more than the highest set component of a.
func (f *AttributeFlags) NumComponents(a Attribute) uint32 {
	m := f.mask(a)

	for n := uint32(4); n > 0; n-- {
		if m&(1<<(n-1)) != 0 {
			return n
		}
	}

	return 0
}

func (f *AttributeFlags) mask(a Attribute) uint32 {
	i := uint32(a) * 4
	return uint32(f[i/64]>>(i%64)) & 0xf
}
