package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Patch names a per-patch tessellation output: either a tessellation factor
// or a generic patch constant dword.
type Patch uint32

const (
	PatchTessellationLodLeft Patch = iota
	PatchTessellationLodTop
	PatchTessellationLodRight
	PatchTessellationLodBottom
	PatchTessellationLodInteriorU
	PatchTessellationLodInteriorV
	PatchComponent0

	NumPatchFactors  = int(PatchComponent0)
	NumPatchGenerics = 128
)

var patchFactorNames = [NumPatchFactors]string{
	"TessellationLodLeft",
	"TessellationLodTop",
	"TessellationLodRight",
	"TessellationLodBottom",
	"TessellationLodInteriorU",
	"TessellationLodInteriorV",
}

// PatchFactor returns the tessellation factor at index i.
func PatchFactor(i uint32) Patch {
	if i >= uint32(NumPatchFactors) {
		throw(ErrInvalidArgument, "tessellation factor index %d out of range", i)
	}

	return Patch(i)
}

// PatchGeneric returns the generic patch constant dword i.
func PatchGeneric(i uint32) Patch {
	if i >= NumPatchGenerics {
		throw(ErrInvalidArgument, "patch constant index %d out of range", i)
	}

	return PatchComponent0 + Patch(i)
}

func (p Patch) IsFactor() bool  { return p < PatchComponent0 }
func (p Patch) IsGeneric() bool { return p >= PatchComponent0 && p < PatchComponent0+NumPatchGenerics }

// GenericIndex returns the dword index of a generic patch constant.
func (p Patch) GenericIndex() uint32 {
	return uint32(p - PatchComponent0)
}

func (p Patch) String() string {
	switch {
	case p.IsFactor():
		return patchFactorNames[p]
	case p.IsGeneric():
		return "PatchGeneric" + strconv.Itoa(int(p.GenericIndex()))
	default:
		return fmt.Sprintf("Patch(%d)", uint32(p))
	}
}

// ParsePatch is the inverse of Patch.String.
func ParsePatch(s string) (Patch, bool) {
	for i, n := range patchFactorNames {
		if n == s {
			return Patch(i), true
		}
	}

	rest, ok := strings.CutPrefix(s, "PatchGeneric")
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || n >= NumPatchGenerics {
		return 0, false
	}

	return PatchComponent0 + Patch(n), true
}
