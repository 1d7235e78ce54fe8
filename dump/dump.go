// Package dump writes textual IR checkpoints for postmortem diagnosis.
//
// A Sink is carried in the context so passes can record checkpoints
// without knowing whether dumping is enabled:
//
//	ctx = dump.NewContext(ctx, sink)
//	...
//	dump.Checkpoint(ctx, prog, "mid_hull_transform")
//
// Files are named {stage}_0x{hash:016x}.{phase}.ir.txt, with .lz4 or .xz
// appended when compression is on. Checkpoints are never read back by the
// compiler.
package dump

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// Compression selects how checkpoint files are stored.
type Compression string

const (
	None Compression = "none"
	LZ4  Compression = "lz4"
	XZ   Compression = "xz"
)

// ErrCompression is returned for an unknown compression name.
var ErrCompression = errors.New("unknown dump compression")

// ParseCompression accepts "", "none", "lz4" and "xz".
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(s)); c {
	case "", None:
		return None, nil
	case LZ4, XZ:
		return c, nil
	}

	return "", errors.Wrap(ErrCompression, "%q", s)
}

// Ext is the file name suffix for c, including the dot.
func (c Compression) Ext() string {
	switch c {
	case LZ4:
		return ".lz4"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// Sink writes checkpoints into a directory.
type Sink struct {
	Dir         string
	Compression Compression
}

// New creates dir if needed and returns a Sink writing into it.
func New(dir string, c Compression) (*Sink, error) {
	if _, err := ParseCompression(string(c)); err != nil {
		return nil, err
	}

	if c == "" {
		c = None
	}

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, errors.Wrap(err, "create dump dir")
	}

	return &Sink{Dir: dir, Compression: c}, nil
}

// FileName returns the checkpoint file name without directory.
func FileName(stage shader.Stage, hash uint64, phase string, c Compression) string {
	return fmt.Sprintf("%v_0x%016x.%s.ir.txt%s", stage, hash, phase, c.Ext())
}

// Checkpoint writes the current text of p under phase and returns the path.
func (s *Sink) Checkpoint(p *ir.Program, phase string) (path string, err error) {
	path = filepath.Join(s.Dir, FileName(p.Info.Stage, p.Info.PgmHash, phase, s.Compression))

	err = s.write(path, []byte(ir.Dump(p)))
	if err != nil {
		return "", err
	}

	return path, nil
}

// Meta writes a structure dump of the program summary and runtime parameters
// next to the checkpoints of p.
func (s *Sink) Meta(p *ir.Program, rt *shader.RuntimeInfo) (path string, err error) {
	path = filepath.Join(s.Dir, fmt.Sprintf("%v_0x%016x.meta.txt", p.Info.Stage, p.Info.PgmHash))

	cfg := spew.ConfigState{Indent: "\t", DisablePointerAddresses: true, SortKeys: true}
	text := cfg.Sdump(p.Info) + cfg.Sdump(rt)

	err = os.WriteFile(path, []byte(text), 0o644)
	if err != nil {
		return "", errors.Wrap(err, "write meta")
	}

	return path, nil
}

func (s *Sink) write(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dump")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close dump")
		}
	}()

	w, err := Compress(f, s.Compression)
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	if err != nil {
		return errors.Wrap(err, "write dump")
	}

	err = w.Close()
	if err != nil {
		return errors.Wrap(err, "flush dump")
	}

	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Compress wraps w with the c encoder. Closing the result flushes the
// encoder but does not close w.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case "", None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, "xz writer")
		}

		return xw, nil
	}

	return nil, errors.Wrap(ErrCompression, "%q", c)
}

// Decompress wraps r with the decoder for c.
func Decompress(r io.Reader, c Compression) (io.Reader, error) {
	switch c {
	case "", None:
		return r, nil
	case LZ4:
		return lz4.NewReader(r), nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "xz reader")
		}

		return xr, nil
	}

	return nil, errors.Wrap(ErrCompression, "%q", c)
}

// ReadFile reads a checkpoint, choosing the decoder by file extension.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	c := None

	switch filepath.Ext(path) {
	case LZ4.Ext():
		c = LZ4
	case XZ.Ext():
		c = XZ
	}

	r, err := Decompress(f, c)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", path)
	}

	return data, nil
}

type sinkKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, s)
}

// FromContext returns the Sink carried by ctx, or nil.
func FromContext(ctx context.Context) *Sink {
	s, _ := ctx.Value(sinkKey{}).(*Sink)
	return s
}

// Checkpoint dumps p under phase if ctx carries a Sink. Failures are logged
// and otherwise ignored.
func Checkpoint(ctx context.Context, p *ir.Program, phase string) {
	s := FromContext(ctx)
	if s == nil {
		return
	}

	path, err := s.Checkpoint(p, phase)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("ir dump failed", "phase", phase, "err", err)
		return
	}

	if tlog.If("dump") {
		tlog.SpanFromContext(ctx).Printw("ir dump", "phase", phase, "path", path)
	}
}
