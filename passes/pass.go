// Package passes holds the transformations run over a Program between
// translation and code generation.
//
// Every pass has the signature of Pass. Passes mutate the Program in place
// and may write back into RuntimeInfo; they never keep state between
// invocations, so separate variants can be transformed concurrently.
package passes

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/recompiler/dump"
	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
)

// Pass transforms p in place.
type Pass func(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) error

// Descriptor names a pass in a pipeline.
type Descriptor struct {
	Name string
	Pass Pass
}

// Pipeline is the default pass order.
var Pipeline = [...]Descriptor{
	{Name: "hull_shader_transform", Pass: HullShaderTransform},
	{Name: "identity_removal", Pass: IdentityRemoval},
	{Name: "dead_code_elimination", Pass: DeadCodeElimination},
	{Name: "shader_info_collection", Pass: ShaderInfoCollection},
}

// Options control Run.
type Options struct {
	// Verify checks use-def consistency after every pass.
	Verify bool
}

// Run applies ps in order. A panic raised by the IR inside a pass is
// returned as an error naming the pass. A dump checkpoint named after each
// pass is written when ctx carries a dump sink.
func Run(ctx context.Context, ps []Descriptor, p *ir.Program, rt *shader.RuntimeInfo, opts Options) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "passes", "stage", p.Info.Stage, "hash", p.Info.PgmHash)
	defer tr.Finish("err", &err)

	for _, d := range ps {
		err = runOne(ctx, d, p, rt)
		if err != nil {
			return errors.Wrap(err, "%v", d.Name)
		}

		dump.Checkpoint(ctx, p, d.Name)

		if opts.Verify {
			err = VerifyUseDef(ctx, p, rt)
			if err != nil {
				return errors.Wrap(err, "after %v", d.Name)
			}
		}
	}

	return nil
}

func runOne(ctx context.Context, d Descriptor, p *ir.Program, rt *shader.RuntimeInfo) (err error) {
	defer ir.Recover(&err)

	if tlog.If("passes") {
		tlog.SpanFromContext(ctx).Printw("run pass", "name", d.Name)
	}

	return d.Pass(ctx, p, rt)
}

// VerifyUseDef is a Pass checking that argument edges and user lists agree.
func VerifyUseDef(ctx context.Context, p *ir.Program, rt *shader.RuntimeInfo) error {
	return ir.CheckUseDef(p)
}

// ErrUseDef is the error VerifyUseDef reports.
var ErrUseDef = ir.ErrUseDef
