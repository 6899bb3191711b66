package preprocess

import (
	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/token"
)

// handleInclude resolves an `include "path" or `include <path> against the
// source manager and, on success, pushes a new Lexer onto the source stack
// (spec.md §4.4). A missing include is recoverable: it is reported as
// IncludeNotFound and the directive is dropped.
func (p *Preprocessor) handleInclude(tok token.Token) {
	lx := p.topLexer()
	if lx == nil {
		p.skipToEndOfDirective()
		return
	}
	path, isSystem, ok := lx.ScanIncludePath()
	p.skipToEndOfDirective()
	if !ok {
		return
	}
	if p.suppressed() {
		return
	}

	buf, err := p.mgr.ReadHeader(path, tok.Location, isSystem)
	if err != nil {
		p.diags.Add(diagnostics.Errorf(diagnostics.IncludeNotFound, tok.Location, path))
		return
	}
	p.pushLexer(lexer.New(p.mgr, buf, p.kw, p.diags), buf.ID)
}
