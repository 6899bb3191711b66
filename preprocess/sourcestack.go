package preprocess

import (
	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/macro"
	"svfront/source"
)

// MaxSourceDepth bounds the preprocessor's source stack, the sole
// termination guarantee against pathological include/expansion recursion
// (spec.md §3, §4.4).
const MaxSourceDepth = 8192

type sourceKind int

const (
	sourceKindLexer sourceKind = iota
	sourceKindMacro
)

// sourceEntry is the tagged variant the source stack pushes/pops: either a
// file/argument Lexer or a macro Expander (spec.md §3 "SourceStack entry").
type sourceEntry struct {
	kind      sourceKind
	lexer     *lexer.Lexer
	expander  *macro.Expander
	bufferID  source.BufferID
	macroName string // set for sourceKindMacro, used for the re-entrancy guard
}

func (p *Preprocessor) pushLexer(lx *lexer.Lexer, buf source.BufferID) bool {
	if len(p.stack) >= MaxSourceDepth {
		p.diags.Add(diagnostics.Errorf(diagnostics.IncludeDepthLimit, p.lastLoc))
		return false
	}
	p.stack = append(p.stack, sourceEntry{kind: sourceKindLexer, lexer: lx, bufferID: buf})
	return true
}

func (p *Preprocessor) pushExpander(exp *macro.Expander, name string) bool {
	if len(p.stack) >= MaxSourceDepth {
		return false
	}
	p.stack = append(p.stack, sourceEntry{kind: sourceKindMacro, expander: exp, macroName: name})
	return true
}

func (p *Preprocessor) popSource() {
	p.stack = p.stack[:len(p.stack)-1]
}

// expandingMacro reports whether name already has a live expander frame on
// the source stack, the re-entrancy guard spec.md §4.3 calls for.
func (p *Preprocessor) expandingMacro(name string) bool {
	for _, e := range p.stack {
		if e.kind == sourceKindMacro && e.macroName == name {
			return true
		}
	}
	return false
}
