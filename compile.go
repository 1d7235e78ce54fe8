package recompiler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler/dump"
	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/passes"
	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

// CompileError is a failure of one shader variant.
type CompileError struct {
	Stage shader.Stage
	Hash  uint64
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %v 0x%016x: %v", e.Stage, e.Hash, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Variant is one program to compile along with its runtime parameters.
// Bindings, when set, is advanced by the compilation; otherwise each
// variant starts from zero.
type Variant struct {
	Program  *ir.Program
	Runtime  *shader.RuntimeInfo
	Bindings *spirv.Bindings
}

// Compiler runs the pass pipeline and the SPIR-V backend. It is safe for
// concurrent use as long as no Program or Bindings is shared between calls.
type Compiler struct {
	opts    Options
	profile spirv.Profile
	sink    *dump.Sink
	cache   *Cache
}

// New validates opts and returns a Compiler.
func New(opts Options) (*Compiler, error) {
	profile, err := opts.profile()
	if err != nil {
		return nil, err
	}

	limit, err := opts.cacheLimit()
	if err != nil {
		return nil, err
	}

	c := &Compiler{
		opts:    opts,
		profile: profile,
	}

	if opts.DumpDir != "" {
		comp, err := dump.ParseCompression(opts.DumpCompression)
		if err != nil {
			return nil, err
		}

		c.sink, err = dump.New(opts.DumpDir, comp)
		if err != nil {
			return nil, err
		}
	}

	if opts.CacheLimit != "" {
		c.cache = NewCache(limit)
	}

	return c, nil
}

// Cache returns the module cache, or nil when caching is off.
func (c *Compiler) Cache() *Cache { return c.cache }

// Compile transforms p in place and emits it. rt may be nil, in which case
// stage defaults are used. A failure is returned as *CompileError.
func (c *Compiler) Compile(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo, bindings *spirv.Bindings) (m *spirv.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "stage", p.Info.Stage, "hash", p.Info.PgmHash)
	defer tr.Finish("err", &err)

	defer func() {
		if err != nil {
			err = &CompileError{Stage: p.Info.Stage, Hash: p.Info.PgmHash, Err: err}
		}
	}()

	defer ir.Recover(&err)

	if rt == nil {
		rt = shader.NewRuntimeInfo(p.Info.Stage)
	}

	if bindings == nil {
		bindings = &spirv.Bindings{}
	}

	var key uint64

	if c.cache != nil {
		key = VariantKey(p, rt, *bindings)

		if m, after, ok := c.cache.Get(key); ok {
			after.Apply(rt, bindings)

			if tlog.If("cache") {
				tr.Printw("cache hit", "key", tlog.FormatNext("%#x"), key)
			}

			return m, nil
		}
	}

	if c.sink != nil {
		ctx = dump.NewContext(ctx, c.sink)

		if _, err := c.sink.Meta(p, rt); err != nil {
			tr.Printw("meta dump failed", "err", err)
		}

		dump.Checkpoint(ctx, p, "initial")
	}

	err = passes.Run(ctx, passes.Pipeline[:], p, rt, passes.Options{Verify: c.opts.Verify})
	if err != nil {
		return nil, errors.Wrap(err, "passes")
	}

	m, err = spirv.Emit(ctx, c.profile, p, rt, bindings)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		err = c.cache.Put(key, m, Writeback{Bindings: *bindings, Hull: rt.Hull})
		if err != nil {
			tr.Printw("cache store failed", "err", err)
		}
	}

	return m, nil
}

// CompileVariants compiles vs concurrently, at most Options.Parallelism at
// a time. Every variant is attempted: the result holds nil for the ones
// that failed and the error is the first failure in vs order. Only context
// cancellation stops the remaining work.
func (c *Compiler) CompileVariants(ctx context.Context, vs []Variant) ([]*spirv.Module, error) {
	res := make([]*spirv.Module, len(vs))
	errs := make([]error, len(vs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.parallelism())

	for i, v := range vs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res[i], errs[i] = c.Compile(gctx, v.Program, v.Runtime, v.Bindings)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, err := range errs {
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// Compile compiles one program with opts.
func Compile(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo, opts Options) (*spirv.Module, error) {
	opts.CacheLimit = ""

	c, err := New(opts)
	if err != nil {
		return nil, err
	}

	return c.Compile(ctx, p, rt, nil)
}
