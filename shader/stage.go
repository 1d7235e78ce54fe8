// Package shader holds the stage and runtime parameters that the command
// processor hands to the recompiler for one shader variant.
//
// The types here are shared by the IR, the passes and the SPIR-V backend.
// RuntimeInfo is the one structure passes may write back into: the hull
// transform records the tessellation factor table layout it discovered.
package shader

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

// Stage identifies the hardware shader stage a program runs on.
type Stage uint32

const (
	StageVertex Stage = iota
	StageLocal
	StageExport
	StageHull
	StageGeometry
	StageFragment
	StageCompute
)

// String returns the short stage name used in dump file names.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vs"
	case StageLocal:
		return "ls"
	case StageExport:
		return "es"
	case StageHull:
		return "hs"
	case StageGeometry:
		return "gs"
	case StageFragment:
		return "fs"
	case StageCompute:
		return "cs"
	default:
		return fmt.Sprintf("stage%d", uint32(s))
	}
}

// ParseStage is the inverse of Stage.String.
func ParseStage(s string) (Stage, bool) {
	for st := StageVertex; st <= StageCompute; st++ {
		if st.String() == s {
			return st, true
		}
	}

	return 0, false
}

// IsVertexLike reports whether the stage consumes vertex attributes.
func (s Stage) IsVertexLike() bool {
	return s == StageVertex || s == StageExport || s == StageLocal
}

func (s Stage) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, s.String())
}
