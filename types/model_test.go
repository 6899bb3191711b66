package types

import (
	"testing"

	"svfront/diagnostics"
	"svfront/source"
)

func newTestModel() (*Model, *diagnostics.Bag) {
	diags := diagnostics.NewBag()
	return NewModel(diags), diags
}

// P4: two vectors requested with identical (width, signed, fourState, reg)
// are the same pointer.
func TestCanonicalCachePointerIdentity(t *testing.T) {
	m, _ := newTestModel()
	a := m.GetVector(8, true, true, false)
	b := m.GetVector(8, true, true, false)
	if a != b {
		t.Fatalf("expected identical pointers for identical vector keys, got %p and %p", a, b)
	}
	c := m.GetVector(8, false, true, false)
	if a == c {
		t.Fatalf("expected distinct pointers for distinct signedness")
	}
}

// P5: canonicalizing an already-canonical type is idempotent.
func TestCanonicalIdempotent(t *testing.T) {
	base := NewPredefinedInt(Int, true)
	alias := NewAlias("my_int", base)
	net := NewNetType("my_wire", alias)

	once := Canonical(net)
	twice := Canonical(once)
	if once != twice {
		t.Fatalf("Canonical should be a fixed point: once=%v twice=%v", once, twice)
	}
	if once != base {
		t.Fatalf("expected Canonical to resolve through alias and net type to base, got %v", once)
	}
}

func TestCanonicalDetectsCycle(t *testing.T) {
	a := &Type{Kind: KindTypeAlias, Name: "a"}
	b := &Type{Kind: KindTypeAlias, Name: "b", Target: a}
	a.Target = b
	if got := Canonical(a); got != ErrType {
		t.Fatalf("expected cyclic alias chain to canonicalize to ErrType, got %v", got)
	}
}

// Scenario 4: logic and reg match each other; bit and logic do not match but
// are assignment-compatible (both simple bit vectors of equal width).
func TestScenario4LogicRegMatchBitAssignmentCompatible(t *testing.T) {
	m, _ := newTestModel()
	logic := m.GetScalar(Logic, false)
	reg := m.GetScalar(Reg, false)
	bit := m.GetScalar(Bit, false)

	if !m.IsMatching(logic, reg) {
		t.Errorf("expected logic and reg to match (synonym scalar kinds)")
	}
	if m.IsMatching(bit, logic) {
		t.Errorf("expected bit and logic not to match (different four-stateness)")
	}
	if !m.IsAssignmentCompatible(bit, logic) {
		t.Errorf("expected bit and logic to be assignment-compatible")
	}
	if !m.IsAssignmentCompatible(logic, bit) {
		t.Errorf("expected logic and bit to be assignment-compatible symmetrically for this pair")
	}
}

// P3: the implication chain Matching => Equivalent => AssignmentCompatible => CastCompatible.
func TestP3ImplicationChain(t *testing.T) {
	m, _ := newTestModel()
	a := m.GetVector(16, true, true, false)
	b := m.GetVector(16, true, true, false)

	if !m.IsMatching(a, b) {
		t.Fatalf("precondition: a and b should match")
	}
	if !m.IsEquivalent(a, b) {
		t.Errorf("Matching should imply Equivalent")
	}
	if !m.IsAssignmentCompatible(a, b) {
		t.Errorf("Equivalent should imply AssignmentCompatible")
	}
	if !m.IsCastCompatible(a, b) {
		t.Errorf("AssignmentCompatible should imply CastCompatible")
	}

	real := NewFloating(Real)
	intT := NewPredefinedInt(Int, true)
	if m.IsMatching(real, intT) || m.IsEquivalent(real, intT) {
		t.Fatalf("real and int should not match or be equivalent")
	}
	if !m.IsAssignmentCompatible(real, intT) {
		t.Errorf("real and int should be assignment-compatible")
	}
	if !m.IsCastCompatible(real, intT) {
		t.Errorf("AssignmentCompatible should imply CastCompatible for real/int")
	}
}

func TestIsMatchingReflexiveSymmetric(t *testing.T) {
	m, _ := newTestModel()
	types := []*Type{
		m.GetScalar(Bit, false),
		m.GetScalar(Logic, true),
		NewFloating(ShortReal),
		NewPredefinedInt(Byte, true),
		StringT,
		Void,
	}
	for _, a := range types {
		if !m.IsMatching(a, a) {
			t.Errorf("IsMatching(%v, %v) should be reflexive", a.Kind, a.Kind)
		}
	}
	for _, a := range types {
		for _, b := range types {
			if m.IsMatching(a, b) != m.IsMatching(b, a) {
				t.Errorf("IsMatching should be symmetric for %v/%v", a.Kind, b.Kind)
			}
		}
	}
}

// Scenario 5: enum values are sequential unless an initializer is supplied.
func TestScenario5EnumSequentialValues(t *testing.T) {
	m, _ := newTestModel()
	base := NewPredefinedInt(Int, false)

	plain := m.NewEnum("color", base, []string{"RED", "GREEN", "BLUE"}, nil, source.NoLocation)
	if plain.IsError() {
		t.Fatalf("unexpected error building plain enum")
	}
	want := []int64{0, 1, 2}
	for i, v := range plain.EnumValues {
		if v != want[i] {
			t.Errorf("enum value %d: got %d, want %d", i, v, want[i])
		}
	}

	five := int64(5)
	withInit := m.NewEnum("code", base, []string{"A", "B", "C"}, []*int64{nil, &five, nil}, source.NoLocation)
	wantInit := []int64{0, 5, 6}
	for i, v := range withInit.EnumValues {
		if v != wantInit[i] {
			t.Errorf("enum value %d: got %d, want %d", i, v, wantInit[i])
		}
	}
}

func TestNewEnumRejectsNonIntegralBase(t *testing.T) {
	m, diags := newTestModel()
	bad := m.NewEnum("e", StringT, []string{"A"}, nil, source.NoLocation)
	if !bad.IsError() {
		t.Fatalf("expected error type for non-integral enum base")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for invalid enum base")
	}
}

func TestNewPackedStructAccumulatesWidth(t *testing.T) {
	m, diags := newTestModel()
	fields := []Field{
		{Name: "flags", Type: m.GetVector(4, false, false, false)},
		{Name: "value", Type: NewPredefinedInt(Int, true)},
	}
	st := m.NewPackedStruct("header", fields, source.NoLocation)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics building a valid packed struct")
	}
	if st.Width != 36 {
		t.Errorf("expected packed struct width 4+32=36, got %d", st.Width)
	}
}

func TestNewPackedStructRejectsNonIntegralMember(t *testing.T) {
	m, diags := newTestModel()
	fields := []Field{{Name: "s", Type: StringT}}
	st := m.NewPackedStruct("bad", fields, source.NoLocation)
	if !st.IsError() {
		t.Fatalf("expected error type for non-integral packed member")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for non-integral packed member")
	}
}

func TestApplyPackedDimsOnNonIntegralErrors(t *testing.T) {
	m, diags := newTestModel()
	got := m.ApplyPackedDims(StringT, []Dim{{Left: 7, Right: 0}}, source.NoLocation)
	if !got.IsError() {
		t.Fatalf("expected error applying packed dims to a non-integral base")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic")
	}
}

func TestApplyPackedDimsFoldsRightToLeft(t *testing.T) {
	m, _ := newTestModel()
	base := m.GetScalar(Logic, false)
	got := m.ApplyPackedDims(base, []Dim{{Left: 3, Right: 0}, {Left: 7, Right: 0}}, source.NoLocation)
	if got.Kind != KindPackedArray || got.Dim != (Dim{Left: 3, Right: 0}) {
		t.Fatalf("expected outer dim [3:0], got %+v", got)
	}
	if got.Element.Kind != KindPackedArray || got.Element.Dim != (Dim{Left: 7, Right: 0}) {
		t.Fatalf("expected inner dim [7:0], got %+v", got.Element)
	}
}

// Scalar matching (spec.md §4.5 rule 2) is signedness-independent: any
// logic/reg pair matches regardless of sign, unlike rule 4's simple-bit-vector
// comparison which does test signedness.
func TestLogicRegMatchIgnoresSignedness(t *testing.T) {
	m, _ := newTestModel()
	unsignedLogic := m.GetScalar(Logic, false)
	signedReg := m.GetScalar(Reg, true)
	if !m.IsMatching(unsignedLogic, signedReg) {
		t.Errorf("expected logic/reg to match regardless of signedness")
	}
}

// spec.md §6's `get(kind)` returns the same pointer every time, the
// predefined-type analogue of GetVector's P4 guarantee.
func TestGetPredefinedSingleton(t *testing.T) {
	m, _ := newTestModel()
	a := m.Get(Int)
	b := m.Get(Int)
	if a != b {
		t.Fatalf("expected Get(Int) to return a shared singleton, got %p and %p", a, b)
	}
	if a.IsSigned() != true {
		t.Errorf("expected int to be signed")
	}
	if tm := m.Get(Time); tm.IsSigned() {
		t.Errorf("expected time to be unsigned")
	}
	if !m.IsMatching(m.Get(Int), m.Get(Int)) {
		t.Errorf("expected two Get(Int) results to match via pointer identity")
	}
}

func TestDerivedAttributes(t *testing.T) {
	m, _ := newTestModel()
	vec := m.GetVector(8, false, false, false)
	if !vec.IsSimpleBitVector() {
		t.Errorf("expected an 8-bit packed vector to be a simple bit vector")
	}
	if !vec.IsNumeric() {
		t.Errorf("expected an integral type to be numeric")
	}
	if vec.IsAggregate() {
		t.Errorf("a simple packed vector should not be an aggregate")
	}

	arr := m.ApplyUnpackedDims(NewPredefinedInt(Int, true), []Dim{{Left: 3, Right: 0}})
	if !arr.IsAggregate() {
		t.Errorf("expected an unpacked array to be an aggregate")
	}
	if arr.IsSimpleBitVector() {
		t.Errorf("an unpacked array should not be a simple bit vector")
	}

	st := m.NewPackedStruct("s", []Field{{Name: "a", Type: m.GetScalar(Bit, false)}}, source.NoLocation)
	if !st.IsAggregate() {
		t.Errorf("expected a packed struct to be an aggregate")
	}
	if !st.IsIntegral() {
		t.Errorf("expected a packed struct to be integral (fixed overall bit width)")
	}
	if !st.IsNumeric() {
		t.Errorf("expected a packed struct to be numeric via IsIntegral")
	}
}

// spec.md §4.5's default-value rules.
func TestGetDefaultValueIntegral(t *testing.T) {
	m, _ := newTestModel()
	logic := m.GetScalar(Logic, false)
	dv := m.GetDefaultValue(logic)
	if dv.Int == nil || !dv.Int.IsUnknown() {
		t.Fatalf("expected a four-state scalar's default to be all-x, got %+v", dv.Int)
	}

	bit := m.GetScalar(Bit, false)
	dv = m.GetDefaultValue(bit)
	if dv.Int == nil || dv.Int.IsUnknown() {
		t.Fatalf("expected a two-state scalar's default to be zero, not x")
	}
	if dv.Int.Bits.Sign() != 0 {
		t.Errorf("expected a zero-valued default, got %v", dv.Int.Bits)
	}
}

func TestGetDefaultValueFloatingAndPlaceholders(t *testing.T) {
	m, _ := newTestModel()
	if dv := m.GetDefaultValue(NewFloating(Real)); dv.Real != 0.0 {
		t.Errorf("expected real default 0.0, got %v", dv.Real)
	}
	if dv := m.GetDefaultValue(NullT); !dv.IsNull {
		t.Errorf("expected null type default to be a null placeholder")
	}
	if dv := m.GetDefaultValue(CHandle); !dv.IsNull {
		t.Errorf("expected chandle default to be a null placeholder")
	}
	if dv := m.GetDefaultValue(Event); !dv.IsNull {
		t.Errorf("expected event default to be a null placeholder")
	}
	if dv := m.GetDefaultValue(StringT); dv.Str != "" {
		t.Errorf("expected string default to be empty, got %q", dv.Str)
	}
}

func TestGetDefaultValueEnumDefersToBase(t *testing.T) {
	m, _ := newTestModel()
	base := NewPredefinedInt(Int, true)
	e := m.NewEnum("e", base, []string{"A", "B"}, nil, source.NoLocation)
	dv := m.GetDefaultValue(e)
	if dv.Int == nil || dv.Int.IsUnknown() {
		t.Fatalf("expected enum default to defer to its two-state base, got %+v", dv.Int)
	}
	if dv.Int.Width != 32 {
		t.Errorf("expected enum default width to match base width 32, got %d", dv.Int.Width)
	}
}

func TestGetDefaultValueAggregateElementwise(t *testing.T) {
	m, _ := newTestModel()
	arr := m.ApplyUnpackedDims(m.GetScalar(Logic, false), []Dim{{Left: 2, Right: 0}})
	dv := m.GetDefaultValue(arr)
	if len(dv.Elements) != 3 {
		t.Fatalf("expected 3 elementwise defaults for a [2:0] unpacked array, got %d", len(dv.Elements))
	}
	for i, e := range dv.Elements {
		if e.Int == nil || !e.Int.IsUnknown() {
			t.Errorf("element %d: expected all-x default, got %+v", i, e.Int)
		}
	}

	st := m.NewUnpackedStruct("s", []Field{
		{Name: "a", Type: m.GetScalar(Bit, false)},
		{Name: "b", Type: NewFloating(Real)},
	})
	dv = m.GetDefaultValue(st)
	if len(dv.Elements) != 2 {
		t.Fatalf("expected 2 elementwise defaults for a 2-field unpacked struct, got %d", len(dv.Elements))
	}
	if dv.Elements[0].Int == nil || dv.Elements[1].Real != 0.0 {
		t.Errorf("expected field defaults to match each field's own type, got %+v", dv.Elements)
	}
}
