package macro

// Table is the process-local (per-compilation) mapping from macro name to
// its current definition (spec.md §4.3). Last `define wins; `undef removes;
// `resetall/`undefineall clear everything. Names are case-sensitive.
type Table struct {
	defs map[string]*Definition
}

func NewTable() *Table {
	return &Table{defs: make(map[string]*Definition)}
}

// Define installs def, overwriting any prior definition of the same name
// (spec.md §4.3: "last define wins"). Illegal-redefinition diagnostics (e.g.
// redefining a macro with an incompatible body under strict modes) are the
// preprocessor's concern, not the table's; the table itself never refuses a
// Define.
func (t *Table) Define(def *Definition) {
	t.defs[def.Name] = def
}

func (t *Table) Undef(name string) bool {
	if _, ok := t.defs[name]; !ok {
		return false
	}
	delete(t.defs, name)
	return true
}

func (t *Table) UndefineAll() {
	t.defs = make(map[string]*Definition)
}

// Resetall clears the macro table. The preprocess package's `resetall
// handling also clears its recorded `timescale and `default_nettype text;
// `line directives already recorded in the source manager are not reset.
func (t *Table) Resetall() {
	t.UndefineAll()
}

func (t *Table) Lookup(name string) (*Definition, bool) {
	d, ok := t.defs[name]
	return d, ok
}

func (t *Table) IsDefined(name string) bool {
	_, ok := t.defs[name]
	return ok
}
