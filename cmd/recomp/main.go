// Command recomp compiles shader programs in text form to SPIR-V.
//
// Usage:
//
//	recomp compile [flags] <program.ir>...
//	recomp dump <checkpoint>...
//	recomp dis <module.spv>...
//	recomp watch [flags] <dir>
//
// Examples:
//
//	recomp compile shader.ir                  # writes shader.spv
//	recomp compile -dump-dir /tmp/d hs.ir     # keep IR after every pass
//	recomp dis shader.spv                     # print the module as text
//	recomp dump /tmp/d/hs_0x*.ir.txt.lz4      # print a compressed checkpoint
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler"
	"github.com/gogpu/recompiler/dump"
	"github.com/gogpu/recompiler/irasm"
	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

func main() {
	compileFlags := []*cli.Flag{
		cli.NewFlag("output,o", "", "output directory (default: next to the input)"),
		cli.NewFlag("dump-dir", "", "write IR checkpoints into this directory"),
		cli.NewFlag("dump-compression", "none", "checkpoint compression: none, lz4 or xz"),
		cli.NewFlag("verify", true, "check use-def consistency after every pass"),
		cli.NewFlag("shared-memory", "", "default workgroup memory size, like 2KiB"),
		cli.NewFlag("spirv", "1.5", "target SPIR-V version"),
		cli.NewFlag("jobs,j", 0, "programs compiled in parallel (default: GOMAXPROCS)"),
		cli.NewFlag("hs-input-cp", 3, "hull shader input control points"),
		cli.NewFlag("hs-output-cp", 3, "hull shader output control points"),
		cli.NewFlag("hs-input-stride", 0, "hull shader input control point stride in bytes"),
		cli.NewFlag("hs-output-stride", 0, "hull shader output control point stride in bytes"),
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile programs to SPIR-V",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags:       compileFlags,
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print IR checkpoints, decompressing them if needed",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	disCmd := &cli.Command{
		Name:        "dis",
		Description: "disassemble SPIR-V modules",
		Action:      disAct,
		Args:        cli.Args{},
	}

	watchCmd := &cli.Command{
		Name:        "watch",
		Description: "recompile programs in a directory when they change",
		Action:      watchAct,
		Args:        cli.Args{},
		Flags:       compileFlags,
	}

	app := &cli.Command{
		Name:        "recomp",
		Description: "recomp translates shader programs to SPIR-V",
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity filter, like passes,spirv"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			dumpCmd,
			disCmd,
			watchCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) (context.Context, context.CancelFunc) {
	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx, cancel
}

func compileAct(c *cli.Command) (err error) {
	ctx, cancel := setup(c)
	defer cancel()

	rc, err := newCompiler(c)
	if err != nil {
		return err
	}

	vs := make([]recompiler.Variant, len(c.Args))

	for i, a := range c.Args {
		vs[i], err = loadVariant(c, a)
		if err != nil {
			return err
		}
	}

	ms, err := rc.CompileVariants(ctx, vs)

	for i, m := range ms {
		if m == nil {
			continue
		}

		out, werr := writeModule(c, c.Args[i], m)
		if werr != nil {
			return werr
		}

		fmt.Printf("%s: %v 0x%016x -> %s (%d bytes)\n", c.Args[i], m.Stage, m.Hash, out, len(m.Binary))
	}

	return err
}

func dumpAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		data, err := dump.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		// round trip through the parser to check the text is well formed
		if strings.Contains(a, ".ir.txt") {
			_, err = irasm.Parse(string(data))
			if err != nil {
				return errors.Wrap(err, "%v", a)
			}
		}

		fmt.Printf("%s", data)
	}

	return nil
}

func disAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		bin, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		text, err := spirv.Disassemble(bin)
		if err != nil {
			return errors.Wrap(err, "%v", a)
		}

		fmt.Printf("%s", text)
	}

	return nil
}

func watchAct(c *cli.Command) (err error) {
	if len(c.Args) != 1 {
		return errors.New("expected one directory")
	}

	ctx, cancel := setup(c)
	defer cancel()

	rc, err := newCompiler(c)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watcher")
	}

	defer w.Close()

	err = w.Add(c.Args[0])
	if err != nil {
		return errors.Wrap(err, "watch %v", c.Args[0])
	}

	tlog.Printw("watching", "dir", c.Args[0])

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			return errors.Wrap(err, "watch")
		case ev := <-w.Events:
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) || filepath.Ext(ev.Name) != ".ir" {
				continue
			}

			v, err := loadVariant(c, ev.Name)
			if err != nil {
				tlog.Printw("load failed", "file", ev.Name, "err", err)
				continue
			}

			m, err := rc.Compile(ctx, v.Program, v.Runtime, nil)
			if err != nil {
				tlog.Printw("compile failed", "file", ev.Name, "err", err)
				continue
			}

			out, err := writeModule(c, ev.Name, m)
			if err != nil {
				return err
			}

			tlog.Printw("compiled", "file", ev.Name, "out", out, "size", len(m.Binary))
		}
	}
}

func newCompiler(c *cli.Command) (*recompiler.Compiler, error) {
	opts := recompiler.DefaultOptions()

	opts.DumpDir = c.String("dump-dir")
	opts.DumpCompression = c.String("dump-compression")
	opts.Verify = c.Bool("verify")
	opts.SharedMemoryDefault = c.String("shared-memory")
	opts.Parallelism = c.Int("jobs")

	v, err := spirv.ParseVersion(c.String("spirv"))
	if err != nil {
		return nil, err
	}

	opts.Profile.Version = v

	return recompiler.New(opts)
}

func loadVariant(c *cli.Command, path string) (v recompiler.Variant, err error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return v, errors.Wrap(err, "read %v", path)
	}

	p, err := irasm.Parse(string(text))
	if err != nil {
		return v, errors.Wrap(err, "%v", path)
	}

	rt := shader.NewRuntimeInfo(p.Info.Stage)

	if p.Info.Stage == shader.StageHull {
		rt.Hull.NumInputControlPoints = uint32(c.Int("hs-input-cp"))
		rt.Hull.NumOutputControlPoints = uint32(c.Int("hs-output-cp"))
		rt.Hull.InputControlPointStride = uint32(c.Int("hs-input-stride"))
		rt.Hull.OutputControlPointStride = uint32(c.Int("hs-output-stride"))
	}

	return recompiler.Variant{Program: p, Runtime: rt}, nil
}

func writeModule(c *cli.Command, input string, m *spirv.Module) (string, error) {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".spv"

	dir := c.String("output")
	if dir == "" {
		dir = filepath.Dir(input)
	}

	out := filepath.Join(dir, name)

	err := os.WriteFile(out, m.Binary, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "write %v", out)
	}

	return out, nil
}
