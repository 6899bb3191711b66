package types

// Dim is a declared packed/unpacked dimension, e.g. [3:0] → {Left: 3, Right: 0}.
type Dim struct {
	Left, Right int
}

// Width returns the number of elements the dimension spans, MSB-first order
// preserved by Left/Right rather than assuming Left > Right.
func (d Dim) Width() int {
	if d.Left >= d.Right {
		return d.Left - d.Right + 1
	}
	return d.Right - d.Left + 1
}

// Field is one member of a struct or union.
type Field struct {
	Name string
	Type *Type
}

// Type is the tagged-variant node spec.md §9 calls for: one Kind tag plus the
// fields relevant to that family. Only fields for the active Kind are
// meaningful; the rest are the zero value.
type Type struct {
	Kind Kind

	// Scalar / Floating / PredefinedInt / PackedArray / Enum's representation.
	Signed    bool
	FourState bool
	Width     int // bitWidth for scalar-family kinds; element count doesn't apply here

	ScalarKind  ScalarKind
	FloatKind   FloatKind
	IntegerKind IntegerKind

	// PackedArray / UnpackedArray.
	Dim     Dim
	Element *Type

	// PackedStruct / UnpackedStruct / PackedUnion / UnpackedUnion.
	Members []Field
	Name    string // declared struct/union/enum/typedef/nettype name, if any

	// Enum.
	EnumBase   *Type
	EnumNames  []string
	EnumValues []int64

	// TypeAlias / NetType.
	Target *Type

	// ErrorCause is the type an Error replaced (nil if none); when that type
	// is itself an Error, following ErrorCause walks back to the root cause.
	ErrorCause *Type
}

// Predefined singleton types (spec.md §9: "process-wide, immutable").
var (
	Void    = &Type{Kind: KindVoid}
	ErrType = &Type{Kind: KindError}
	StringT = &Type{Kind: KindString}
	CHandle = &Type{Kind: KindCHandle}
	Event   = &Type{Kind: KindEvent}
	NullT   = &Type{Kind: KindNull}
)

// NewErrorFrom builds an Error type that remembers what it replaced, so a
// later diagnostic pass can report the root cause instead of re-deriving it.
func NewErrorFrom(cause *Type) *Type {
	return &Type{Kind: KindError, ErrorCause: cause}
}

func (t *Type) IsError() bool { return t.Kind == KindError }

// IsIntegral reports whether t has a single fixed overall bit width and
// four-stateness: a predefined integer, a scalar, a packed array (of an
// integral element), a packed struct or union (both carry a fixed overall
// width the same way a packed array does), or an enum (whose representation
// is its base type) — spec.md §4.5.
func (t *Type) IsIntegral() bool {
	switch t.Kind {
	case KindPredefinedInt, KindScalar, KindPackedStruct, KindPackedUnion:
		return true
	case KindPackedArray:
		return t.Element != nil && t.Element.IsIntegral()
	case KindEnum:
		return true
	}
	return false
}

func (t *Type) IsFloating() bool { return t.Kind == KindFloating }

func (t *Type) IsEnum() bool { return t.Kind == KindEnum }

// IsAggregate reports whether t is a composite of other types: an array,
// struct, or union, packed or unpacked (spec.md §3's derived attributes). A
// packed array that is a simple bit vector is a plain vector, not an
// aggregate.
func (t *Type) IsAggregate() bool {
	switch t.Kind {
	case KindPackedArray:
		return !t.IsSimpleBitVector()
	case KindUnpackedArray, KindPackedStruct, KindUnpackedStruct, KindPackedUnion, KindUnpackedUnion:
		return true
	}
	return false
}

// IsNumeric reports whether t participates in arithmetic: integral or
// floating (spec.md §3's derived attributes).
func (t *Type) IsNumeric() bool { return t.IsIntegral() || t.IsFloating() }

// IsSimpleBitVector reports whether t is a predefined integer, a scalar, or
// a packed array of scalars all the way down (spec.md's "Simple bit vector"
// glossary entry).
func (t *Type) IsSimpleBitVector() bool {
	switch t.Kind {
	case KindPredefinedInt, KindScalar:
		return true
	case KindPackedArray:
		return t.Element != nil && t.Element.Kind != KindPredefinedInt && t.Element.IsSimpleBitVector()
	}
	return false
}

// IsSigned, IsFourState and BitWidth read through Enum to its base type,
// since an enum's representation is entirely inherited from EnumBase.
func (t *Type) IsSigned() bool {
	if t.Kind == KindEnum && t.EnumBase != nil {
		return t.EnumBase.IsSigned()
	}
	return t.Signed
}

func (t *Type) IsFourState() bool {
	if t.Kind == KindEnum && t.EnumBase != nil {
		return t.EnumBase.IsFourState()
	}
	return t.FourState
}

func (t *Type) BitWidth() int {
	switch t.Kind {
	case KindEnum:
		if t.EnumBase != nil {
			return t.EnumBase.BitWidth()
		}
		return 0
	case KindPackedArray:
		if t.Element == nil {
			return 0
		}
		return t.Dim.Width() * t.Element.BitWidth()
	default:
		return t.Width
	}
}

// NewScalar builds a one-bit Bit/Logic/Reg type. Logic and Reg are
// automatically four-state; Bit is two-state (SV §6.11).
func NewScalar(kind ScalarKind, signed bool) *Type {
	return &Type{
		Kind: KindScalar, ScalarKind: kind, Width: 1, Signed: signed,
		FourState: kind != Bit,
	}
}

func NewFloating(kind FloatKind) *Type {
	return &Type{Kind: KindFloating, FloatKind: kind}
}

// predefinedIntWidths mirrors SV's fixed-size integer types (SV §6.11).
var predefinedIntWidths = map[IntegerKind]int{
	Byte: 8, ShortInt: 16, Int: 32, Integer: 32, LongInt: 64, Time: 64,
}

// predefinedIntFourState marks the four-state predefined integers (integer,
// time); the rest are two-state.
var predefinedIntFourState = map[IntegerKind]bool{Integer: true, Time: true}

// predefinedIntSigned fixes each predefined integer kind's signedness (SV
// §6.11): every predefined integer is signed except time.
var predefinedIntSigned = map[IntegerKind]bool{
	Byte: true, ShortInt: true, Int: true, LongInt: true, Integer: true, Time: false,
}

func NewPredefinedInt(kind IntegerKind, signed bool) *Type {
	return &Type{
		Kind: KindPredefinedInt, IntegerKind: kind, Signed: signed,
		Width: predefinedIntWidths[kind], FourState: predefinedIntFourState[kind],
	}
}

// predefinedInts holds the one shared instance per predefined integer kind
// (spec.md §3: "canonical forms … are shared"; §6's `get(kind)`). Kind alone
// determines signedness for this family, so these are built once at package
// init rather than cached lazily like the width-parameterized vector cache.
var predefinedInts = map[IntegerKind]*Type{
	Byte:     NewPredefinedInt(Byte, predefinedIntSigned[Byte]),
	ShortInt: NewPredefinedInt(ShortInt, predefinedIntSigned[ShortInt]),
	Int:      NewPredefinedInt(Int, predefinedIntSigned[Int]),
	LongInt:  NewPredefinedInt(LongInt, predefinedIntSigned[LongInt]),
	Integer:  NewPredefinedInt(Integer, predefinedIntSigned[Integer]),
	Time:     NewPredefinedInt(Time, predefinedIntSigned[Time]),
}

func NewPackedArray(dim Dim, element *Type) *Type {
	return &Type{Kind: KindPackedArray, Dim: dim, Element: element}
}

func NewUnpackedArray(dim Dim, element *Type) *Type {
	return &Type{Kind: KindUnpackedArray, Dim: dim, Element: element}
}

func NewAlias(name string, target *Type) *Type {
	return &Type{Kind: KindTypeAlias, Name: name, Target: target}
}

func NewNetType(name string, target *Type) *Type {
	return &Type{Kind: KindNetType, Name: name, Target: target}
}
