package recompiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/irasm"
	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

const computeText = `.stage cs
.hash 0x0000000000000001
.buffer 0 storage written

block0:
	%0 = GetAttributeU32 LocalInvocationId, #0
	%1 = ShiftLeftLogical32 %0, #2
	%2 = LaneId
	WriteSharedU32 %1, #7
	StoreBufferU32 #0, %1, #9
`

const brokenText = `.stage cs
.hash 0x0000000000000002

block0:
	%0 = GetScalarRegister s3
	WriteSharedU32 #0, %0
`

// factorText stores a tessellation factor at byte offset 8 of the globally
// coherent factor buffer.
const factorText = `.stage hs
.hash 0x0000000000000003

block0:
	%0 = BitCastU32F32 #1f
	StoreBufferU32<0x808> #0, #0, %0
`

func parse(t testing.TB, text string) *ir.Program {
	t.Helper()

	p, err := irasm.Parse(text)
	require.NoError(t, err)

	return p
}

func TestCompile(t *testing.T) {
	m, err := Compile(context.Background(), parse(t, computeText), nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, shader.StageCompute, m.Stage)
	assert.Equal(t, uint64(1), m.Hash)

	text, err := spirv.Disassemble(m.Binary)
	require.NoError(t, err)

	assert.Contains(t, text, "OpEntryPoint GLCompute")
	assert.Contains(t, text, `"shared_mem"`)
	assert.Contains(t, text, "LocalSize 1 1 1")
	assert.NotContains(t, text, "GroupNonUniform", "dead LaneId is removed")

	b, ok := m.Bindings.Find(spirv.ResourceBuffer, 0)
	require.True(t, ok)
	assert.True(t, b.Storage)
}

func TestCompileError(t *testing.T) {
	_, err := Compile(context.Background(), parse(t, brokenText), nil, DefaultOptions())
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)

	assert.Equal(t, shader.StageCompute, cerr.Stage)
	assert.Equal(t, uint64(2), cerr.Hash)
	assert.ErrorIs(t, err, ir.ErrLogic)
	assert.Contains(t, err.Error(), "compile cs 0x0000000000000002")
}

func TestCompileCache(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, c.Cache())

	var b1, b2 spirv.Bindings

	m1, err := c.Compile(context.Background(), parse(t, computeText), nil, &b1)
	require.NoError(t, err)

	m2, err := c.Compile(context.Background(), parse(t, computeText), nil, &b2)
	require.NoError(t, err)

	assert.Equal(t, m1.Binary, m2.Binary)
	assert.Equal(t, b1, b2)
	assert.Equal(t, uint32(1), b2.Unified)

	st := c.Cache().Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Positive(t, st.Size)

	// a different starting binding is a different variant
	b3 := spirv.Bindings{Unified: 4}

	_, err = c.Compile(context.Background(), parse(t, computeText), nil, &b3)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), b3.Unified)
	assert.Equal(t, 2, c.Cache().Stats().Entries)
}

func TestCompileCacheRestoresRuntimeWriteback(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	for i := range 2 {
		rt := shader.NewRuntimeInfo(shader.StageHull)
		rt.Hull.NumInputControlPoints = 3
		rt.Hull.NumOutputControlPoints = 3

		_, err := c.Compile(context.Background(), parse(t, factorText), rt, nil)
		require.NoError(t, err)

		assert.Equal(t, uint32(3), rt.Hull.NumFactors, "compile %d", i)
	}

	st := c.Cache().Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestCompileVariants(t *testing.T) {
	opts := DefaultOptions()
	opts.Parallelism = 2

	c, err := New(opts)
	require.NoError(t, err)

	vs := []Variant{
		{Program: parse(t, computeText)},
		{Program: parse(t, brokenText)},
		{Program: parse(t, computeText), Runtime: shader.NewRuntimeInfo(shader.StageCompute)},
	}

	res, err := c.CompileVariants(context.Background(), vs)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, uint64(2), cerr.Hash)

	require.Len(t, res, 3)
	assert.NotNil(t, res[0])
	assert.Nil(t, res[1])
	assert.NotNil(t, res[2])
}

func TestCompileVariantsCanceled(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.CompileVariants(ctx, []Variant{{Program: parse(t, computeText)}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res[0])
}

func TestCompileDump(t *testing.T) {
	opts := DefaultOptions()
	opts.DumpDir = t.TempDir()
	opts.DumpCompression = "lz4"

	_, err := Compile(context.Background(), parse(t, computeText), nil, opts)
	require.NoError(t, err)

	for _, name := range []string{
		"cs_0x0000000000000001.initial.ir.txt.lz4",
		"cs_0x0000000000000001.dead_code_elimination.ir.txt.lz4",
		"cs_0x0000000000000001.meta.txt",
	} {
		_, err := os.Stat(filepath.Join(opts.DumpDir, name))
		assert.NoError(t, err, name)
	}
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.SharedMemoryDefault = "4KiB"

	p, err := opts.profile()
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), p.SharedMemoryDefault)

	for _, bad := range []string{"lots", "3", "1MiB"} {
		opts.SharedMemoryDefault = bad

		_, err = New(opts)
		assert.Error(t, err, bad)
	}

	opts = DefaultOptions()
	opts.CacheLimit = "12 parsecs"

	_, err = New(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.DumpDir = t.TempDir()
	opts.DumpCompression = "zip"

	_, err = New(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.CacheLimit = ""

	c, err := New(opts)
	require.NoError(t, err)
	assert.Nil(t, c.Cache())
	assert.Positive(t, opts.parallelism())
}
