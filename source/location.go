package source

// BufferID identifies one entry in the Manager's buffer table: either a file
// buffer or a macro expansion buffer. Zero is the invalid ID.
type BufferID uint32

func (b BufferID) Valid() bool { return b != 0 }

// Location is an opaque (BufferID, byte offset) pair. All cross-component
// code passes these around without interpreting them; only the Manager that
// minted a Location knows how to turn it back into raw file/line/column or
// walk its expansion chain.
type Location struct {
	buffer BufferID
	offset uint32
}

// NoLocation is the zero value, used for synthetic tokens the preprocessor
// manufactures itself (e.g. the EndOfFile sentinel) that have no real source
// position.
var NoLocation = Location{}

func NewLocation(buf BufferID, offset uint32) Location {
	return Location{buffer: buf, offset: offset}
}

func (l Location) Buffer() BufferID { return l.buffer }
func (l Location) Offset() uint32   { return l.offset }
func (l Location) Valid() bool      { return l.buffer.Valid() }

// WithOffset returns a copy of l advanced by delta bytes within the same
// buffer. Used when a token's location needs to point partway into a range
// (e.g. the nth character of a literal for a sub-diagnostic).
func (l Location) WithOffset(delta int) Location {
	return Location{buffer: l.buffer, offset: uint32(int(l.offset) + delta)}
}

// Range is a half-open [Start, End) pair of locations in the same buffer,
// used for macro use-site ranges and parameter-occurrence ranges.
type Range struct {
	Start Location
	End   Location
}

func NewRange(start, end Location) Range { return Range{Start: start, End: end} }
