package preprocess

// BranchFrame is the state of one nested `ifdef/`else/`endif (spec.md §3).
// Invariant: at most one sibling branch may observe CurrentActive=true; once
// AnyTaken is set, no later sibling in the same frame may activate.
type BranchFrame struct {
	AnyTaken      bool
	CurrentActive bool
	HasElse       bool
}
