package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageNames(t *testing.T) {
	for st := StageVertex; st <= StageCompute; st++ {
		back, ok := ParseStage(st.String())
		require.True(t, ok, "stage %d", st)
		assert.Equal(t, st, back)
	}

	assert.Equal(t, "hs", StageHull.String())
	assert.Equal(t, "stage42", Stage(42).String())

	_, ok := ParseStage("xs")
	assert.False(t, ok)
}

func TestNumVertices(t *testing.T) {
	for _, tc := range []struct {
		p  PrimitiveType
		n  uint32
		ok bool
	}{
		{PrimitivePointList, 1, true},
		{PrimitiveLineList, 2, true},
		{PrimitiveTriangleList, 3, true},
		{PrimitiveTriangleStrip, 3, true},
		{PrimitiveAdjTriangleList, 6, true},
		{PrimitiveQuadList, 0, false},
	} {
		n, ok := NumVertices(tc.p)
		assert.Equal(t, tc.ok, ok, "prim %d", tc.p)
		assert.Equal(t, tc.n, n, "prim %d", tc.p)
	}
}

func TestHullPassthrough(t *testing.T) {
	rt := NewRuntimeInfo(StageHull)
	assert.True(t, rt.Hull.Passthrough())

	rt.Hull.NumOutputControlPoints = 3
	assert.False(t, rt.Hull.Passthrough())

	rt.Hull.ForcePassthrough = true
	assert.True(t, rt.Hull.Passthrough())
}

func TestNumberFormat(t *testing.T) {
	assert.True(t, NumberFormatUint.IsInteger())
	assert.True(t, NumberFormatSint.IsInteger())
	assert.False(t, NumberFormatFloat.IsInteger())
	assert.True(t, NumberFormatSrgb.IsFloatLike())
	assert.False(t, NumberFormat(8).IsFloatLike())
	assert.Equal(t, "Unorm", NumberFormatUnorm.String())
}
