package types

import (
	"svfront/diagnostics"
	"svfront/source"
)

// Model is the per-compilation entry point for relation queries and
// construction helpers (spec.md §6: "TypeModel: get(kind) ... isMatching
// ..."). The canonical simple-bit-vector cache it reads through is
// process-wide (types.canonCache); everything else here is stateless.
type Model struct {
	diags *diagnostics.Bag
}

func NewModel(diags *diagnostics.Bag) *Model {
	return &Model{diags: diags}
}

// Get returns the shared predefined-integer singleton for kind (spec.md §6
// "get(kind) for predefined types"). Because the family's signedness is
// fixed per kind rather than caller-supplied, two calls with the same kind
// always return the same pointer, matching §3's "canonical forms … are
// shared" invariant for predefined types the way GetVector already does for
// cached simple vectors.
func (m *Model) Get(kind IntegerKind) *Type {
	return predefinedInts[kind]
}

// GetScalar returns the canonical Bit/Logic/Reg type for the given flags
// (spec.md §6 "getScalar(flags)").
func (m *Model) GetScalar(kind ScalarKind, signed bool) *Type {
	return canonCache.getOrCreate(vecKey{width: 1, signed: signed, fourState: kind != Bit, reg: kind == Reg})
}

// GetVector returns the canonical packed simple-bit-vector type for
// (bitWidth, signed, fourState, reg) — spec.md §6 "get(bitWidth, flags)",
// P4's pointer-identity guarantee.
func (m *Model) GetVector(width int, signed, fourState, reg bool) *Type {
	if width == 1 {
		kind := Logic
		if reg {
			kind = Reg
		} else if !fourState {
			kind = Bit
		}
		return m.GetScalar(kind, signed)
	}
	return canonCache.getOrCreate(vecKey{width: width, signed: signed, fourState: fourState, reg: reg})
}

// Canonical follows TypeAlias.Target (and NetType.Target) to a fixed point
// (spec.md §4.5). A cycle collapses to Error rather than looping forever —
// Model.ResolveNetType is where that cycle is actually diagnosed;
// Canonical just needs to not hang if callers bypass that check.
func Canonical(t *Type) *Type {
	seen := map[*Type]bool{}
	for (t.Kind == KindTypeAlias || t.Kind == KindNetType) && t.Target != nil {
		if seen[t] {
			return ErrType
		}
		seen[t] = true
		t = t.Target
	}
	return t
}

// ResolveNetType walks a chain of NetType aliases to its underlying data
// type, detecting cycles with a visited-set and reporting
// TypeCircularNetTypeAlias (spec.md §9 open question, resolved per the
// recommendation; SPEC_FULL.md §6 supplement).
func (m *Model) ResolveNetType(t *Type, loc source.Location) *Type {
	seen := map[*Type]bool{}
	cur := t
	for cur.Kind == KindNetType {
		if seen[cur] {
			m.diags.Add(diagnostics.Errorf(diagnostics.TypeCircularNetTypeAlias, loc, cur.Name))
			return NewErrorFrom(t)
		}
		seen[cur] = true
		if cur.Target == nil {
			return NewErrorFrom(t)
		}
		cur = cur.Target
	}
	return cur
}

// IsMatching implements spec.md §4.5's Matching relation (SV §6.22.1).
func (m *Model) IsMatching(a, b *Type) bool {
	a, b = Canonical(a), Canonical(b)
	if a == b {
		return true
	}
	if a.Kind == KindScalar && b.Kind == KindScalar {
		return synonymScalar(a.ScalarKind) && synonymScalar(b.ScalarKind)
	}
	if a.Kind == KindFloating && b.Kind == KindFloating {
		if synonymFloat(a.FloatKind) && synonymFloat(b.FloatKind) {
			return true
		}
		return false
	}
	if a.IsSimpleBitVector() && b.IsSimpleBitVector() && !(a.Kind == KindPredefinedInt && b.Kind == KindPredefinedInt) {
		return a.IsSigned() == b.IsSigned() && a.IsFourState() == b.IsFourState() && a.BitWidth() == b.BitWidth()
	}
	if a.Kind == KindPackedArray && b.Kind == KindPackedArray {
		return a.Dim == b.Dim && m.IsMatching(a.Element, b.Element)
	}
	if a.Kind == KindUnpackedArray && b.Kind == KindUnpackedArray {
		return a.Dim == b.Dim && m.IsMatching(a.Element, b.Element)
	}
	return false
}

func synonymScalar(k ScalarKind) bool { return k == Logic || k == Reg }
func synonymFloat(k FloatKind) bool   { return k == Real || k == RealTime }

// IsEquivalent implements spec.md §4.5's Equivalence relation (SV §6.22.2).
func (m *Model) IsEquivalent(a, b *Type) bool {
	if m.IsMatching(a, b) {
		return true
	}
	a, b = Canonical(a), Canonical(b)
	if a.IsIntegral() && !a.IsEnum() && b.IsIntegral() && !b.IsEnum() {
		return a.IsSigned() == b.IsSigned() && a.IsFourState() == b.IsFourState() && a.BitWidth() == b.BitWidth()
	}
	if a.Kind == KindUnpackedArray && b.Kind == KindUnpackedArray {
		return a.Dim.Width() == b.Dim.Width() && m.IsEquivalent(a.Element, b.Element)
	}
	return false
}

// IsAssignmentCompatible implements spec.md §4.5's Assignment compatibility
// (SV §6.22.3).
func (m *Model) IsAssignmentCompatible(lhs, rhs *Type) bool {
	if m.IsEquivalent(lhs, rhs) {
		return true
	}
	l, r := Canonical(lhs), Canonical(rhs)
	lhsOK := (l.IsIntegral() && !l.IsEnum()) || l.IsFloating()
	rhsOK := r.IsIntegral() || r.IsFloating()
	return lhsOK && rhsOK
}

// IsCastCompatible implements spec.md §4.5's Cast compatibility (SV §6.22.4).
func (m *Model) IsCastCompatible(lhs, rhs *Type) bool {
	if m.IsAssignmentCompatible(lhs, rhs) {
		return true
	}
	l, r := Canonical(lhs), Canonical(rhs)
	if l.IsEnum() && (r.IsIntegral() || r.IsFloating()) {
		return true
	}
	return false
}

// ApplyPackedDims folds dims right-to-left, wrapping base in nested
// PackedArrays (spec.md §4.5). Applying a packed dimension to a non-integral
// base is an error.
func (m *Model) ApplyPackedDims(base *Type, dims []Dim, loc source.Location) *Type {
	if len(dims) == 0 {
		return base
	}
	if !Canonical(base).IsIntegral() {
		m.diags.Add(diagnostics.Errorf(diagnostics.TypePackedDimsOnPredefined, loc))
		return NewErrorFrom(base)
	}
	t := base
	for i := len(dims) - 1; i >= 0; i-- {
		t = NewPackedArray(dims[i], t)
	}
	return t
}

// ApplyUnpackedDims folds dims right-to-left into nested UnpackedArrays;
// unlike packed dims, any element type is legal.
func (m *Model) ApplyUnpackedDims(base *Type, dims []Dim) *Type {
	t := base
	for i := len(dims) - 1; i >= 0; i-- {
		t = NewUnpackedArray(dims[i], t)
	}
	return t
}

// NewPackedStruct builds a packed struct, accumulating bitWidth over members
// laid out MSB-first and rejecting non-integral members (spec.md §4.5).
// Member initializers aren't legal in a packed struct declaration; callers
// that parsed one should have already turned it into a diagnostic before
// reaching here.
func (m *Model) NewPackedStruct(name string, members []Field, loc source.Location) *Type {
	total := 0
	for _, f := range members {
		if !Canonical(f.Type).IsIntegral() {
			m.diags.Add(diagnostics.Errorf(diagnostics.TypePackedMemberNotIntegral, loc, f.Name))
			return NewErrorFrom(nil)
		}
		total += f.Type.BitWidth()
	}
	return &Type{Kind: KindPackedStruct, Name: name, Members: members, Width: total, FourState: anyFourState(members)}
}

func (m *Model) NewPackedUnion(name string, members []Field, loc source.Location) *Type {
	maxWidth := 0
	for _, f := range members {
		if !Canonical(f.Type).IsIntegral() {
			m.diags.Add(diagnostics.Errorf(diagnostics.TypePackedMemberNotIntegral, loc, f.Name))
			return NewErrorFrom(nil)
		}
		if w := f.Type.BitWidth(); w > maxWidth {
			maxWidth = w
		}
	}
	return &Type{Kind: KindPackedUnion, Name: name, Members: members, Width: maxWidth, FourState: anyFourState(members)}
}

func anyFourState(members []Field) bool {
	for _, f := range members {
		if f.Type.IsFourState() {
			return true
		}
	}
	return false
}

// NewUnpackedStruct assigns members sequential field indices implicitly via
// slice order; no width accumulation (unpacked members aren't required to
// be integral).
func (m *Model) NewUnpackedStruct(name string, members []Field) *Type {
	return &Type{Kind: KindUnpackedStruct, Name: name, Members: members}
}

func (m *Model) NewUnpackedUnion(name string, members []Field) *Type {
	return &Type{Kind: KindUnpackedUnion, Name: name, Members: members}
}

// NewEnum builds an enum type over base, assigning each name a value:
// sequential from the previous member (or 0 for the first) unless an
// explicit initializer is supplied, mirroring C's enum rule (spec.md §4.5
// scenario 5). initializers[i] may be nil for "no explicit value".
func (m *Model) NewEnum(name string, base *Type, names []string, initializers []*int64, loc source.Location) *Type {
	if !Canonical(base).IsIntegral() {
		m.diags.Add(diagnostics.Errorf(diagnostics.TypeInvalidEnumBase, loc, name))
		return NewErrorFrom(base)
	}
	values := make([]int64, len(names))
	var next int64
	for i := range names {
		if i < len(initializers) && initializers[i] != nil {
			next = *initializers[i]
		}
		values[i] = next
		next++
	}
	return &Type{Kind: KindEnum, Name: name, EnumBase: base, EnumNames: names, EnumValues: values}
}
