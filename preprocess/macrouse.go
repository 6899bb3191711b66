package preprocess

import (
	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/macro"
	"svfront/source"
	"svfront/token"
)

// handleMacroUse looks name up in the macro table and, if found, parses an
// actual-argument list for function-like macros and pushes an Expander
// frame (spec.md §4.4's NAME row). It refuses a name that already has a live
// expander on the source stack (re-entrancy); arity and argument binding are
// the macro package's concern, and this function only gathers the raw
// actual-argument token sequences and the use-site range for them.
func (p *Preprocessor) handleMacroUse(name string, tok token.Token) {
	def, ok := p.macros.Lookup(name)
	if !ok {
		p.diags.Add(diagnostics.Errorf(diagnostics.MacroUndefined, tok.Location, name))
		return
	}
	if p.expandingMacro(name) {
		p.diags.Add(diagnostics.Errorf(diagnostics.MacroRecursiveExpansion, tok.Location, name))
		return
	}

	useEnd := tok.Location
	var actuals [][]token.Token
	if def.IsFunctionLike {
		if !p.peekUseSiteParen() {
			p.diags.Add(diagnostics.Errorf(diagnostics.MacroArityMismatch, tok.Location, name, "expected '(' after function-like macro use"))
			return
		}
		p.nextRaw(lexer.Normal) // consume '('
		var end token.Token
		actuals, end = p.parseMacroArgs()
		useEnd = end.Location
		if len(actuals) == 1 && len(actuals[0]) == 0 && len(def.Params) == 0 {
			actuals = nil
		}
	}

	useRange := source.NewRange(tok.Location, useEnd)
	exp := macro.Expand(p.mgr, p.diags, def, actuals, useRange)
	p.pushExpander(exp, name)
}

// peekUseSiteParen reports whether the next raw token is a '(', the
// function-like-macro-use test (spec.md §4.3/§4.4). Unlike the `define`-site
// test, whitespace before the paren is insignificant here — `` `FOO (a, b)``
// is still a function-like use; adjacency only matters when recognizing the
// formal-parameter list at the definition site.
func (p *Preprocessor) peekUseSiteParen() bool {
	lx := p.topLexer()
	if lx == nil {
		return false
	}
	save := *lx
	tok := lx.Next(lexer.Normal)
	*lx = save
	return tok.Kind == token.Punctuation && tok.RawText == "("
}

// parseMacroArgs collects actual-argument token sequences up to the matching
// close paren, tracking nested (), [], {} and begin/end pairs so a comma
// inside a nested construct doesn't split an argument (spec.md §4.4
// "Delimiter pair tracking"). The caller has already consumed the opening
// '('. Returns the closing ')' token too, for the use-site range end.
func (p *Preprocessor) parseMacroArgs() ([][]token.Token, token.Token) {
	var args [][]token.Token
	var current []token.Token
	depth := 1

	for {
		tok := p.nextRaw(lexer.Normal)
		if tok.Kind == token.EOF {
			p.diags.Add(diagnostics.Errorf(diagnostics.MacroUnmatchedDelimiter, tok.Location))
			args = append(args, current)
			return args, tok
		}

		if tok.Kind == token.Keyword && tok.RawText == "begin" {
			depth++
			current = append(current, tok)
			continue
		}
		if tok.Kind == token.Keyword && tok.RawText == "end" {
			depth--
			current = append(current, tok)
			continue
		}

		if tok.Kind == token.Punctuation {
			switch tok.RawText {
			case "(", "[", "{":
				depth++
				current = append(current, tok)
				continue
			case ")":
				depth--
				if depth == 0 {
					args = append(args, current)
					return args, tok
				}
				current = append(current, tok)
				continue
			case "]", "}":
				depth--
				if depth < 0 {
					p.diags.Add(diagnostics.Errorf(diagnostics.MacroUnmatchedDelimiter, tok.Location))
					depth = 0
				}
				current = append(current, tok)
				continue
			case ",":
				if depth == 1 {
					args = append(args, current)
					current = nil
					continue
				}
				current = append(current, tok)
				continue
			}
		}

		current = append(current, tok)
	}
}
