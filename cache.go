package recompiler

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/launix-de/NonLockingReadMap"
	"github.com/pierrec/lz4/v4"
	"tlog.app/go/errors"

	"github.com/gogpu/recompiler/ir"
	"github.com/gogpu/recompiler/shader"
	"github.com/gogpu/recompiler/spirv"
)

// Cache keeps compiled modules keyed by variant hash. Lookups never block;
// stores rebuild the index and are meant to be rare compared to lookups.
// Binaries are held lz4 compressed. When the total compressed size passes
// the limit the oldest entries are dropped.
type Cache struct {
	entries NonLockingReadMap.NonLockingReadMap[cacheEntry, uint64]

	limit int64
	size  atomic.Int64
	seq   atomic.Uint64

	evict sync.Mutex

	hits, misses atomic.Int64
}

type cacheEntry struct {
	key uint64
	seq uint64

	stage      shader.Stage
	hash       uint64
	entryPoint string
	binary     []byte // lz4
	rawSize    int
	bindingMap *spirv.BindingMap
	after      Writeback
}

func (e cacheEntry) GetKey() uint64 { return e.key }

func (e cacheEntry) ComputeSize() uint { return uint(len(e.binary)) + 128 }

// Writeback is the state a compilation leaves in its caller's arguments:
// the binding counters following the module and the hull parameters the
// passes wrote back into the runtime info.
type Writeback struct {
	Bindings spirv.Bindings
	Hull     shader.HullRuntimeInfo
}

// Apply stores w into the caller's arguments.
func (w Writeback) Apply(rt *shader.RuntimeInfo, b *spirv.Bindings) {
	if rt != nil {
		rt.Hull = w.Hull
	}

	if b != nil {
		*b = w.Bindings
	}
}

// CacheStats are counters of a Cache.
type CacheStats struct {
	Entries int
	Size    int64 // compressed bytes
	Hits    int64
	Misses  int64
}

// NewCache returns a cache holding up to limit compressed bytes.
// Zero means no limit.
func NewCache(limit int64) *Cache {
	return &Cache{
		entries: NonLockingReadMap.New[cacheEntry, uint64](),
		limit:   limit,
	}
}

// VariantKey identifies a compilation: the program text, its runtime
// parameters and the binding state it starts from.
func VariantKey(p *ir.Program, rt *shader.RuntimeInfo, b spirv.Bindings) uint64 {
	h := fnv.New64a()

	fmt.Fprintf(h, "%v %#x\n", p.Info.Stage, p.Info.PgmHash)
	io.WriteString(h, ir.Dump(p))

	cfg := spew.ConfigState{DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	cfg.Fprint(h, rt, b)

	return h.Sum64()
}

// Get returns a copy of the module stored under key and the state its
// compilation ended with.
func (c *Cache) Get(key uint64) (*spirv.Module, Writeback, bool) {
	e := c.entries.Get(key)
	if e == nil {
		c.misses.Add(1)
		return nil, Writeback{}, false
	}

	bin := make([]byte, e.rawSize)

	_, err := io.ReadFull(lz4.NewReader(bytes.NewReader(e.binary)), bin)
	if err != nil {
		// entries are written by Put only
		panic(errors.Wrap(err, "cache entry %#x", key))
	}

	c.hits.Add(1)

	return &spirv.Module{
		Stage:      e.stage,
		Hash:       e.hash,
		EntryPoint: e.entryPoint,
		Binary:     bin,
		Bindings:   e.bindingMap,
	}, e.after, true
}

// Put stores m under key along with the state its compilation ended with.
func (c *Cache) Put(key uint64, m *spirv.Module, after Writeback) error {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)

	_, err := w.Write(m.Binary)
	if err != nil {
		return errors.Wrap(err, "compress")
	}

	err = w.Close()
	if err != nil {
		return errors.Wrap(err, "compress")
	}

	if c.limit > 0 && int64(buf.Len()) > c.limit {
		return nil
	}

	e := &cacheEntry{
		key:        key,
		seq:        c.seq.Add(1),
		stage:      m.Stage,
		hash:       m.Hash,
		entryPoint: m.EntryPoint,
		binary:     buf.Bytes(),
		rawSize:    len(m.Binary),
		bindingMap: m.Bindings,
		after:      after,
	}

	c.size.Add(int64(len(e.binary)))

	if old := c.entries.Set(e); old != nil {
		c.size.Add(-int64(len(old.binary)))
	}

	c.trim()

	return nil
}

func (c *Cache) trim() {
	if c.limit <= 0 || c.size.Load() <= c.limit {
		return
	}

	c.evict.Lock()
	defer c.evict.Unlock()

	for c.size.Load() > c.limit {
		var oldest *cacheEntry

		for _, e := range c.entries.GetAll() {
			if oldest == nil || e.seq < oldest.seq {
				oldest = e
			}
		}

		if oldest == nil {
			return
		}

		if e := c.entries.Remove(oldest.key); e != nil {
			c.size.Add(-int64(len(e.binary)))
		}
	}
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries: len(c.entries.GetAll()),
		Size:    c.size.Load(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
