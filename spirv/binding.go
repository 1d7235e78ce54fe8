package spirv

import (
	"fmt"
	"iter"

	"github.com/google/btree"
)

// ResourceKind is the kind of descriptor a binding slot holds.
type ResourceKind uint8

const (
	ResourceBuffer ResourceKind = iota
	ResourceFlatBuffer
	ResourceTextureBuffer
	ResourceImage
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceBuffer:
		return "buffer"
	case ResourceFlatBuffer:
		return "flatbuf"
	case ResourceTextureBuffer:
		return "texbuf"
	case ResourceImage:
		return "image"
	case ResourceSampler:
		return "sampler"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// Binding maps a logical resource to its descriptor slot in set 0.
type Binding struct {
	Slot     uint32
	Kind     ResourceKind
	SharpIdx uint32
	Index    uint32 // position in the program's resource list of this kind

	Storage bool
	Written bool
}

func (b Binding) String() string {
	s := fmt.Sprintf("%d: %v#%d sharp=%d", b.Slot, b.Kind, b.Index, b.SharpIdx)

	if b.Storage {
		s += " storage"
	}

	if b.Written {
		s += " written"
	}

	return s
}

// BindingMap is the set of bindings of a module ordered by slot.
// The zero value is ready to use.
type BindingMap struct {
	t *btree.BTreeG[Binding]
}

func NewBindingMap() *BindingMap {
	m := &BindingMap{}
	m.init()

	return m
}

func (m *BindingMap) init() {
	if m.t == nil {
		m.t = btree.NewG(8, func(a, b Binding) bool { return a.Slot < b.Slot })
	}
}

// Set records b, replacing any binding in the same slot. It reports whether
// one was replaced.
func (m *BindingMap) Set(b Binding) bool {
	m.init()

	_, replaced := m.t.ReplaceOrInsert(b)

	return replaced
}

// Get returns the binding in slot.
func (m *BindingMap) Get(slot uint32) (Binding, bool) {
	if m.t == nil {
		return Binding{}, false
	}

	return m.t.Get(Binding{Slot: slot})
}

// Find returns the lowest slot holding the resource of kind at index.
func (m *BindingMap) Find(kind ResourceKind, index uint32) (Binding, bool) {
	for b := range m.All() {
		if b.Kind == kind && b.Index == index {
			return b, true
		}
	}

	return Binding{}, false
}

func (m *BindingMap) Len() int {
	if m.t == nil {
		return 0
	}

	return m.t.Len()
}

// All iterates bindings in slot order.
func (m *BindingMap) All() iter.Seq[Binding] {
	return m.Range(0, ^uint32(0))
}

// Range iterates bindings with from <= slot < to.
func (m *BindingMap) Range(from, to uint32) iter.Seq[Binding] {
	return func(yield func(Binding) bool) {
		if m.t == nil {
			return
		}

		m.t.AscendRange(Binding{Slot: from}, Binding{Slot: to}, func(b Binding) bool {
			return yield(b)
		})
	}
}
