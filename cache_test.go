package recompiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

func module(hash uint64, n int) *spirv.Module {
	bin := make([]byte, n)
	for i := range bin {
		bin[i] = byte(i * 7)
	}

	return &spirv.Module{Stage: shader.StageVertex, Hash: hash, EntryPoint: "main", Binary: bin}
}

func TestCacheGetPut(t *testing.T) {
	c := NewCache(0)

	_, _, ok := c.Get(1)
	assert.False(t, ok)

	in := module(10, 1000)
	require.NoError(t, c.Put(1, in, Writeback{Bindings: spirv.Bindings{Unified: 3}}))

	out, after, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, in, out)
	assert.Equal(t, uint32(3), after.Bindings.Unified)

	// the copy is independent of the stored entry
	out.Binary[0] = 0xff

	again, _, _ := c.Get(1)
	assert.Equal(t, in.Binary, again.Binary)

	require.NoError(t, c.Put(1, module(11, 10), Writeback{}))

	st := c.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestCacheEviction(t *testing.T) {
	sizer := NewCache(0)
	require.NoError(t, sizer.Put(0, module(0, 4096), Writeback{}))

	entry := sizer.Stats().Size

	c := NewCache(2*entry + entry/2)

	for key := range uint64(4) {
		require.NoError(t, c.Put(key, module(key, 4096), Writeback{}))
	}

	st := c.Stats()
	assert.Equal(t, 2, st.Entries)
	assert.LessOrEqual(t, st.Size, 2*entry+entry/2)

	_, _, ok := c.Get(0)
	assert.False(t, ok, "oldest is evicted first")

	_, _, ok = c.Get(3)
	assert.True(t, ok)
}

func TestVariantKey(t *testing.T) {
	rt := shader.NewRuntimeInfo(shader.StageCompute)

	k1 := VariantKey(parse(t, computeText), rt, spirv.Bindings{})
	assert.Equal(t, k1, VariantKey(parse(t, computeText), rt, spirv.Bindings{}))
	assert.NotEqual(t, k1, VariantKey(parse(t, computeText), rt, spirv.Bindings{Unified: 1}))
	assert.NotEqual(t, k1, VariantKey(parse(t, brokenText), rt, spirv.Bindings{}))

	rt2 := shader.NewRuntimeInfo(shader.StageCompute)
	rt2.Compute.WorkgroupSize[0] = 64

	assert.NotEqual(t, k1, VariantKey(parse(t, computeText), rt2, spirv.Bindings{}))
}
