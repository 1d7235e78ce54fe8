package recompiler

import (
	"context"
	"runtime"
	"testing"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/irasm"
	"github.com/gogpu/recompiler/passes"
	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

// ---------------------------------------------------------------------------
// Test programs at different complexity levels
// ---------------------------------------------------------------------------

// programSmallVertex writes the vertex index as position and one user data
// register as a parameter.
const programSmallVertex = `.stage vs
.hash 0x0000000000000010

block0:
	%0 = GetAttributeU32 VertexId, #0
	%1 = ConvertF32U32 %0
	SetAttribute Position0, %1, #0
	SetAttribute Position0, %1, #1
	SetAttribute Position0, #0f, #2
	SetAttribute Position0, #1f, #3
	%2 = GetUserData s5
	%3 = BitCastF32U32 %2
	SetAttribute Param0, %3, #1
`

// programMediumHull passes control points through LDS and writes tess
// factors, exercising the hull transform.
const programMediumHull = `.stage hs
.hash 0x0000000000000020

block0:
	%0 = GetAttributeU32 TcsNumPatches, #0
	%1 = GetAttributeU32 InvocationId, #0
	%2 = IMul32 %0, #384
	%3 = IMul32 %1, #16
	%4 = IAdd32 %2, %3
	%5 = IAdd32 %4, #4
	%6 = BitCastU32F32 #0.25f
	WriteSharedU32 %5, %6
	%7 = IAdd32 %4, #8
	%8 = BitCastU32F32 #0.5f
	WriteSharedU32 %7, %8
	SetPatch TessellationLodLeft, #1f
	SetPatch TessellationLodTop, #1f
	SetPatch TessellationLodRight, #1f
	SetPatch TessellationLodInteriorU, #2f
	SetPatch PatchGeneric5, #3f
	TcsOutputBarrier
`

var programsByComplexity = []struct {
	name string
	text string
	rt   func() *shader.RuntimeInfo
}{
	{"small_vertex", programSmallVertex, func() *shader.RuntimeInfo { return nil }},
	{"small_compute", computeText, func() *shader.RuntimeInfo { return nil }},
	{"medium_hull", programMediumHull, hullRuntime},
}

func hullRuntime() *shader.RuntimeInfo {
	rt := shader.NewRuntimeInfo(shader.StageHull)
	rt.Hull.NumInputControlPoints = 3
	rt.Hull.NumOutputControlPoints = 4
	rt.Hull.InputControlPointStride = 32
	rt.Hull.OutputControlPointStride = 16

	return rt
}

func TestCompileBenchmarkPrograms(t *testing.T) {
	for _, pc := range programsByComplexity {
		t.Run(pc.name, func(t *testing.T) {
			_, err := Compile(context.Background(), parse(t, pc.text), pc.rt(), DefaultOptions())
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// End-to-end: text to SPIR-V
// ---------------------------------------------------------------------------

// BenchmarkCompile benchmarks parsing, passes and emission grouped by
// program complexity.
func BenchmarkCompile(b *testing.B) {
	opts := DefaultOptions()
	opts.CacheLimit = ""
	opts.Verify = false

	c, err := New(opts)
	if err != nil {
		b.Fatalf("new: %v", err)
	}

	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(pc.text)))

			var m *spirv.Module
			for b.Loop() {
				p, err := irasm.Parse(pc.text)
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}

				m, err = c.Compile(context.Background(), p, pc.rt(), nil)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(m)
		})
	}
}

// BenchmarkCompileWithVerification measures the use-def check run after
// every pass.
func BenchmarkCompileWithVerification(b *testing.B) {
	opts := DefaultOptions()
	opts.CacheLimit = ""

	c, err := New(opts)
	if err != nil {
		b.Fatalf("new: %v", err)
	}

	for b.Loop() {
		_, err := c.Compile(context.Background(), parse(b, programMediumHull), hullRuntime(), nil)
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
}

// BenchmarkCompileCached measures parsing plus a cache hit, which hashes
// the program text.
func BenchmarkCompileCached(b *testing.B) {
	c, err := New(DefaultOptions())
	if err != nil {
		b.Fatalf("new: %v", err)
	}

	b.ReportAllocs()

	for b.Loop() {
		_, err := c.Compile(context.Background(), parse(b, programMediumHull), hullRuntime(), nil)
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Individual stage benchmarks
// ---------------------------------------------------------------------------

func BenchmarkParse(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(pc.text)))

			var p *ir.Program
			for b.Loop() {
				var err error
				p, err = irasm.Parse(pc.text)
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}
			}
			runtime.KeepAlive(p)
		})
	}
}

func BenchmarkPasses(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		p := parse(b, programMediumHull)
		b.StartTimer()

		err := passes.Run(context.Background(), passes.Pipeline[:], p, hullRuntime(), passes.Options{})
		if err != nil {
			b.Fatalf("passes failed: %v", err)
		}
	}
}

func BenchmarkEmit(b *testing.B) {
	p := parse(b, programMediumHull)
	rt := hullRuntime()

	err := passes.Run(context.Background(), passes.Pipeline[:], p, rt, passes.Options{})
	if err != nil {
		b.Fatalf("passes failed: %v", err)
	}

	b.ReportAllocs()

	var m *spirv.Module
	for b.Loop() {
		m, err = spirv.Emit(context.Background(), spirv.DefaultProfile(), p, rt, nil)
		if err != nil {
			b.Fatalf("emit failed: %v", err)
		}
	}
	runtime.KeepAlive(m)
}
