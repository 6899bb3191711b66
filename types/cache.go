package types

import (
	. "github.com/puzpuzpuz/xsync"
)

// vecKey is the cache key for a canonicalized simple-bit-vector: a two-state
// Bit or four-state Logic/Reg packed vector of a given width and signedness.
// Two vectors built with an identical key are the same object (spec.md §4.5
// P4); reg is folded in as a boolean since Logic and Reg differ in identity
// even though they match each other under isMatching.
type vecKey struct {
	width     int
	signed    bool
	fourState bool
	reg       bool
}

// vecCache is the process-lifetime canonical-vector cache, reader-biased
// since lookups vastly outnumber insertions once a compilation warms up.
// Grounded directly on the teacher's Nmap (nummap.go): an RBMutex-guarded
// plain map, the shape this xsync version actually exposes (no built-in
// concurrent Map type here).
type vecCache struct {
	RBMutex
	m map[vecKey]*Type
}

var canonCache = &vecCache{m: make(map[vecKey]*Type)}

func (c *vecCache) get(k vecKey) (*Type, bool) {
	tk := c.RLock()
	t, ok := c.m[k]
	c.RUnlock(tk)
	return t, ok
}

func (c *vecCache) getOrCreate(k vecKey) *Type {
	if t, ok := c.get(k); ok {
		return t
	}
	c.Lock()
	defer c.Unlock()
	if t, ok := c.m[k]; ok {
		return t
	}
	kind := Logic
	if k.reg {
		kind = Reg
	}
	if !k.fourState {
		kind = Bit
	}
	var t *Type
	if k.width == 1 {
		t = NewScalar(kind, k.signed)
	} else {
		t = NewPackedArray(Dim{Left: k.width - 1, Right: 0}, NewScalar(kind, k.signed))
		t.FourState = k.fourState
		t.Signed = k.signed
		t.Width = k.width
	}
	c.m[k] = t
	return t
}
