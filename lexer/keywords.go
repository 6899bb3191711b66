package lexer

// LanguageVersion selects which keyword set is active, per spec.md §4.2
// ("Identifier lexemes are looked up in a keyword table keyed by current
// language-version keyword set").
type LanguageVersion int

const (
	V1800_2005 LanguageVersion = iota
	V1800_2009
	V1800_2012
	V1800_2017
)

// keywordSets is process-wide and immutable after init, per spec.md §9
// ("Global state. The keyword table and directive table are process-wide,
// immutable after build").
var keywordSets = map[LanguageVersion]map[string]struct{}{}

// baseKeywords are reserved from 1800-2005 onward.
var baseKeywords = []string{
	"always", "and", "assign", "automatic", "begin", "buf", "bufif0", "bufif1",
	"case", "casex", "casez", "cell", "cmos", "config", "deassign", "default",
	"defparam", "design", "disable", "edge", "else", "end", "endcase",
	"endconfig", "endfunction", "endgenerate", "endmodule", "endprimitive",
	"endspecify", "endtable", "endtask", "event", "for", "force", "forever",
	"fork", "function", "generate", "genvar", "highz0", "highz1", "if",
	"ifnone", "incdir", "initial", "inout", "input", "instance", "integer",
	"join", "large", "liblist", "library", "localparam", "macromodule",
	"medium", "module", "nand", "negedge", "nmos", "nor", "noshowcancelled",
	"not", "notif0", "notif1", "or", "output", "parameter", "pmos", "posedge",
	"primitive", "pull0", "pull1", "pulldown", "pullup", "pulsestyle_onevent",
	"pulsestyle_ondetect", "rcmos", "real", "realtime", "reg", "release",
	"repeat", "rnmos", "rpmos", "rtran", "rtranif0", "rtranif1", "scalared",
	"showcancelled", "signed", "small", "specify", "specparam", "strong0",
	"strong1", "supply0", "supply1", "table", "task", "time", "tran",
	"tranif0", "tranif1", "tri", "tri0", "tri1", "triand", "trior", "trireg",
	"unsigned", "uwire", "vectored", "wait", "wand", "weak0", "weak1", "while",
	"wire", "wor", "xnor", "xor",
}

// sv2005Plus were added in the 1800-2005 merger of Verilog and SystemVerilog.
var sv2005Plus = []string{
	"alias", "always_comb", "always_ff", "always_latch", "assert", "assume",
	"before", "bind", "bins", "binsof", "bit", "break", "byte", "chandle",
	"class", "clocking", "const", "constraint", "context", "continue",
	"cover", "covergroup", "coverpoint", "cross", "dist", "do", "endclass",
	"endclocking", "endgroup", "endinterface", "endpackage", "endprogram",
	"endproperty", "endsequence", "enum", "expect", "export", "extends",
	"extern", "final", "first_match", "foreach", "forkjoin", "iff",
	"ignore_bins", "illegal_bins", "import", "inside", "int", "interface",
	"intersect", "join_any", "join_none", "local", "logic", "longint",
	"matches", "modport", "new", "null", "package", "packed", "priority",
	"program", "property", "protected", "pure", "rand", "randc",
	"randcase", "randsequence", "ref", "return", "sequence", "shortint",
	"shortreal", "solve", "static", "string", "struct", "super",
	"tagged", "this", "throughout", "timeprecision", "timeunit", "type",
	"typedef", "union", "unique", "var", "virtual", "void", "wait_order",
	"wildcard", "with", "within",
}

var sv2009Plus = []string{"accept_on", "checker", "endchecker", "eventually",
	"global", "implies", "let", "nexttime", "reject_on", "restrict",
	"s_always", "s_eventually", "s_nexttime", "s_until", "s_until_with",
	"strong", "sync_accept_on", "sync_reject_on", "unique0", "until",
	"until_with", "untyped", "weak"}

var sv2012Plus = []string{"implements", "interconnect", "nettype", "soft"}

var sv2017Plus []string // no new reserved words over 2012

func buildSet(groups ...[]string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, g := range groups {
		for _, w := range g {
			m[w] = struct{}{}
		}
	}
	return m
}

func init() {
	keywordSets[V1800_2005] = buildSet(baseKeywords, sv2005Plus)
	keywordSets[V1800_2009] = buildSet(baseKeywords, sv2005Plus, sv2009Plus)
	keywordSets[V1800_2012] = buildSet(baseKeywords, sv2005Plus, sv2009Plus, sv2012Plus)
	keywordSets[V1800_2017] = buildSet(baseKeywords, sv2005Plus, sv2009Plus, sv2012Plus, sv2017Plus)
}

// KeywordTable is the immutable, version-selected view an identifier is
// checked against before falling back to plain Identifier.
type KeywordTable struct {
	version LanguageVersion
	set     map[string]struct{}
	// extra, when non-nil, overrides the process-wide set per name (true:
	// keyword, false: not). `begin_keywords/`end_keywords do not use it; they
	// swap whole tables via PushVersion.
	extra map[string]bool
}

func NewKeywordTable(v LanguageVersion) *KeywordTable {
	return &KeywordTable{version: v, set: keywordSets[v]}
}

func (k *KeywordTable) IsKeyword(word string) bool {
	if k.extra != nil {
		if on, ok := k.extra[word]; ok {
			return on
		}
	}
	_, ok := k.set[word]
	return ok
}

// PushVersion returns a new table for version v, for `begin_keywords
// "1800-2005" style directives. The receiver is left unchanged; the caller
// keeps it to restore on `end_keywords.
func (k *KeywordTable) PushVersion(v LanguageVersion) *KeywordTable {
	return &KeywordTable{version: v, set: keywordSets[v]}
}
