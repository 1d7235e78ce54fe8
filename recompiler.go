// Package recompiler translates shader programs in SSA form into SPIR-V.
//
// A Compiler runs the pass pipeline over a Program and hands the result to
// the SPIR-V backend:
//
//	c, err := recompiler.New(recompiler.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	m, err := c.Compile(ctx, prog, rt, nil)
//	if err != nil {
//	    return err // *recompiler.CompileError
//	}
//
// Programs can be built with the ir package directly or read from their
// text form with irasm.Parse. Independent variants of one shader compile
// in parallel with CompileVariants; finished modules are kept in a Cache
// keyed by the variant hash.
package recompiler

import (
	"runtime"

	"github.com/docker/go-units"
	"tlog.app/go/errors"

	"github.com/gogpu/recompiler/dump"
	"github.com/gogpu/recompiler/spirv"
)

// Options configures a Compiler.
type Options struct {
	// Profile describes the target device.
	Profile spirv.Profile

	// DumpDir enables IR checkpoints after every pass when not empty.
	DumpDir string

	// DumpCompression is one of none, lz4 or xz.
	DumpCompression string

	// Verify checks use-def consistency after every pass.
	Verify bool

	// SharedMemoryDefault overrides Profile.SharedMemoryDefault when set,
	// as a human readable size like "2KiB".
	SharedMemoryDefault string

	// Parallelism bounds the variants CompileVariants runs at once.
	// Zero means GOMAXPROCS.
	Parallelism int

	// CacheLimit bounds the compressed size of cached modules, like "64MiB".
	// Empty disables the cache.
	CacheLimit string
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Profile:         spirv.DefaultProfile(),
		DumpCompression: string(dump.None),
		Verify:          true,
		CacheLimit:      "64MiB",
	}
}

// profile applies SharedMemoryDefault to the profile.
func (o Options) profile() (spirv.Profile, error) {
	p := o.Profile

	if o.SharedMemoryDefault == "" {
		return p, nil
	}

	n, err := units.RAMInBytes(o.SharedMemoryDefault)
	if err != nil {
		return p, errors.Wrap(err, "shared memory default")
	}

	if n <= 0 || n > 64<<10 || n%4 != 0 {
		return p, errors.New("shared memory default %v: want a dword multiple up to 64KiB", units.BytesSize(float64(n)))
	}

	p.SharedMemoryDefault = uint32(n)

	return p, nil
}

func (o Options) cacheLimit() (int64, error) {
	if o.CacheLimit == "" {
		return 0, nil
	}

	n, err := units.RAMInBytes(o.CacheLimit)
	if err != nil {
		return 0, errors.Wrap(err, "cache limit")
	}

	return n, nil
}

func (o Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}

	return runtime.GOMAXPROCS(0)
}
