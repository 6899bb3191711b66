package preprocess

import (
	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/macro"
	"svfront/token"
)

// handleDefine parses `define NAME(args?) body in Directive mode and, unless
// the current region is inactive, installs it (spec.md §4.4).
func (p *Preprocessor) handleDefine() {
	nameTok := p.nextRaw(lexer.Directive)
	if nameTok.Kind != token.Identifier && nameTok.Kind != token.Keyword {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, nameTok.Location, "expected macro name after `define"))
		p.skipToEndOfDirective()
		return
	}

	def := &macro.Definition{Name: nameTok.RawText, DefinitionLoc: nameTok.Location}

	// Function-like iff '(' immediately follows the name with no space.
	if p.peekDirectiveFunctionLikeParen() {
		def.IsFunctionLike = true
		p.nextRaw(lexer.Directive) // consume '('
		if !p.parseFormalParams(def) {
			p.skipToEndOfDirective()
			return
		}
	}

	for {
		tok := p.nextRaw(lexer.Directive)
		if tok.Kind == token.EndOfDirective || tok.Kind == token.EOF {
			break
		}
		def.Body = append(def.Body, tok)
	}

	if !p.suppressed() {
		p.macros.Define(def)
	}
}

// peekDirectiveFunctionLikeParen reports whether the immediately following
// raw byte is '(' with no preceding whitespace, by peeking one token ahead
// without consuming it beyond what the lexer already buffers. Since this
// package has no lookahead buffer of its own, it relies on the lexer's
// HasSpace flag: a following '(' token with HasSpace==false is adjacent.
func (p *Preprocessor) peekDirectiveFunctionLikeParen() bool {
	lx := p.topLexer()
	if lx == nil {
		return false
	}
	save := *lx
	tok := lx.Next(lexer.Directive)
	*lx = save
	return tok.Kind == token.Punctuation && tok.RawText == "(" && !tok.HasSpace
}

// parseFormalParams parses a function-like macro's parameter list, already
// past the opening '(': NAME(=default)?, NAME(=default)?, ... ')'.
func (p *Preprocessor) parseFormalParams(def *macro.Definition) bool {
	for {
		tok := p.nextRaw(lexer.Directive)
		if tok.Kind == token.Punctuation && tok.RawText == ")" {
			return true
		}
		if tok.Kind != token.Identifier {
			p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, tok.Location, "expected formal parameter name"))
			return false
		}
		param := macro.Param{Name: tok.RawText}

		peek := p.nextRaw(lexer.Directive)
		terminator := peek
		if peek.Kind == token.Punctuation && peek.RawText == "=" {
			var ok bool
			param.Default, terminator, ok = p.scanFormalDefault()
			if !ok {
				return false
			}
		}

		def.Params = append(def.Params, param)
		switch {
		case terminator.Kind == token.Punctuation && terminator.RawText == ")":
			return true
		case terminator.Kind == token.Punctuation && terminator.RawText == ",":
			continue
		default:
			p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, terminator.Location, "expected ',' or ')' in formal parameter list"))
			return false
		}
	}
}

// scanFormalDefault scans a formal parameter's default token sequence up to
// (but not including) the comma or close-paren that ends it, respecting
// nested delimiter pairs so a default like `(a,b)` doesn't look like two
// parameters.
func (p *Preprocessor) scanFormalDefault() ([]token.Token, token.Token, bool) {
	var out []token.Token
	depth := 0
	for {
		dt := p.nextRaw(lexer.Directive)
		if dt.Kind == token.EOF || dt.Kind == token.EndOfDirective {
			p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, dt.Location, "unterminated formal parameter default"))
			return nil, dt, false
		}
		if dt.Kind == token.Punctuation {
			switch dt.RawText {
			case "(", "[", "{":
				depth++
			case ")":
				if depth == 0 {
					return out, dt, true
				}
				depth--
			case "]", "}":
				depth--
			case ",":
				if depth == 0 {
					return out, dt, true
				}
			}
		}
		out = append(out, dt)
	}
}

func (p *Preprocessor) handleUndef() {
	nameTok := p.nextRaw(lexer.Directive)
	if !p.suppressed() && (nameTok.Kind == token.Identifier || nameTok.Kind == token.Keyword) {
		p.macros.Undef(nameTok.RawText)
	}
	p.skipToEndOfDirective()
}

// handleLine parses `line N "file" level and records it via the source
// manager (spec.md §4.1, §4.4).
func (p *Preprocessor) handleLine() {
	numTok := p.nextRaw(lexer.Directive)
	nameTok := p.nextRaw(lexer.Directive)
	levelTok := p.nextRaw(lexer.Directive)
	p.skipToEndOfDirective()

	if p.suppressed() {
		return
	}
	if numTok.Kind != token.IntLiteral || nameTok.Kind != token.StringLiteral || levelTok.Kind != token.IntLiteral {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, numTok.Location, "malformed `line directive"))
		return
	}
	lineNum := uint32(0)
	if numTok.Value.Int != nil {
		lineNum = uint32(numTok.Value.Int.Bits.Uint64())
	}
	level := uint8(0)
	if levelTok.Value.Int != nil {
		level = uint8(levelTok.Value.Int.Bits.Uint64())
	}
	p.mgr.AddLineDirective(numTok.Location, lineNum, nameTok.Value.Str, level)
}

func (p *Preprocessor) handleBeginKeywords(tok token.Token) {
	verTok := p.nextRaw(lexer.Directive)
	p.skipToEndOfDirective()
	if p.suppressed() {
		return
	}
	if verTok.Kind != token.StringLiteral {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, tok.Location, "expected a version string after `begin_keywords"))
		return
	}
	if !versionStringPattern.NewMatcherString(verTok.Value.Str, 0).Matches {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, verTok.Location, verTok.Value.Str))
		return
	}
	v, ok := versionsByName[verTok.Value.Str]
	if !ok {
		v = p.kwBase
	}
	p.kwPrevious = append(p.kwPrevious, p.kw)
	p.kw = p.kw.PushVersion(v)
	if lx := p.topLexer(); lx != nil {
		lx.SetKeywordTable(p.kw)
	}
}

func (p *Preprocessor) handleEndKeywords(tok token.Token) {
	p.skipToEndOfDirective()
	if p.suppressed() {
		return
	}
	if len(p.kwPrevious) == 0 {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, tok.Location, "`end_keywords without matching `begin_keywords"))
		return
	}
	p.kw = p.kwPrevious[len(p.kwPrevious)-1]
	p.kwPrevious = p.kwPrevious[:len(p.kwPrevious)-1]
	if lx := p.topLexer(); lx != nil {
		lx.SetKeywordTable(p.kw)
	}
}
