// Package preprocess implements C4: the top-level token source that
// multiplexes lexers and macro expanders, drives conditional compilation and
// include stacking, and never lets a directive escape to the caller
// (spec.md §4.4).
package preprocess

import (
	"fmt"

	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/macro"
	"svfront/source"
	"svfront/token"

	pcre "github.com/GRbit/go-pcre"
)

// versionStringPattern validates the `begin_keywords argument against the
// LRM's version-string grammar (SPEC_FULL.md §3, domain-stack wiring of
// go-pcre in the directive layer as well as the lexer).
var versionStringPattern = pcre.MustCompile(`^1800-(1995|2001|2005|2009|2012|2017)$`, 0)

var versionsByName = map[string]lexer.LanguageVersion{
	"1800-2005": lexer.V1800_2005,
	"1800-2009": lexer.V1800_2009,
	"1800-2012": lexer.V1800_2012,
	"1800-2017": lexer.V1800_2017,
}

// Preprocessor is the next()-driven token source spec.md §4.4 describes. One
// Preprocessor serves one compilation unit; it is not safe for concurrent
// use.
type Preprocessor struct {
	mgr        *source.Manager
	diags      *diagnostics.Bag
	macros     *macro.Table
	kwBase     lexer.LanguageVersion
	kw         *lexer.KeywordTable
	kwPrevious []*lexer.KeywordTable // push/pop stack for `begin_keywords/`end_keywords

	stack    []sourceEntry
	branches []BranchFrame

	lastLoc source.Location

	defaultNettype string
	timescale      string

	emittedEOF bool
}

// NewFromConfig builds a Preprocessor wired from cfg: include directories
// registered with mgr, predefined macros installed before the first token is
// pulled, and the keyword table pinned to cfg.LanguageVersion.
func NewFromConfig(cfg Config, mgr *source.Manager, diags *diagnostics.Bag) (*Preprocessor, error) {
	for _, d := range cfg.UserIncludeDirs {
		mgr.AddUserDirectory(d)
	}
	for _, d := range cfg.SystemIncludeDirs {
		mgr.AddSystemDirectory(d)
	}

	v, ok := versionsByName[cfg.LanguageVersion]
	if !ok {
		return nil, fmt.Errorf("preprocess: unknown language_version %q", cfg.LanguageVersion)
	}

	p := &Preprocessor{
		mgr:    mgr,
		diags:  diags,
		macros: macro.NewTable(),
		kwBase: v,
		kw:     lexer.NewKeywordTable(v),
	}

	for name, body := range cfg.PredefinedMacros {
		p.macros.Define(&macro.Definition{
			Name: name,
			Body: []token.Token{token.New(token.Unknown, body, source.NoLocation)},
		})
	}
	return p, nil
}

// New builds a bare Preprocessor over an already-constructed Manager, for
// callers (tests, tools) that don't need a Config.
func New(mgr *source.Manager, diags *diagnostics.Bag, v lexer.LanguageVersion) *Preprocessor {
	return &Preprocessor{
		mgr:    mgr,
		diags:  diags,
		macros: macro.NewTable(),
		kwBase: v,
		kw:     lexer.NewKeywordTable(v),
	}
}

// PushSource pushes buf as the bottom (or next) source on the stack, the
// entry point for both the top-level compilation unit and `include.
func (p *Preprocessor) PushSource(buf source.Buffer) bool {
	return p.pushLexer(lexer.New(p.mgr, buf, p.kw, p.diags), buf.ID)
}

// Macros exposes the macro table read-only callers (e.g. a REPL or `ifdef
// probe) may want to inspect.
func (p *Preprocessor) Macros() *macro.Table { return p.macros }

func (p *Preprocessor) suppressed() bool {
	for _, b := range p.branches {
		if !b.CurrentActive {
			return true
		}
	}
	return false
}

// Next yields the next user-visible token, per spec.md §4.4's contract:
// directives are intercepted and never leave the preprocessor; inactive
// `ifdef regions are silently discarded.
func (p *Preprocessor) Next() token.Token {
	for {
		tok := p.nextRaw(lexer.Normal)
		p.lastLoc = tok.Location

		if tok.Kind == token.EOF {
			if len(p.branches) > 0 {
				p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveUnterminatedCond, tok.Location))
				p.branches = nil
			}
			if !p.emittedEOF {
				p.emittedEOF = true
			}
			return tok
		}

		if tok.Kind == token.Directive {
			if produced, ok := p.handleDirective(tok); ok {
				return produced
			}
			continue
		}

		if p.suppressed() {
			continue
		}
		return tok
	}
}

// nextRaw pulls the next raw token from the top of the source stack,
// transparently popping exhausted entries (a drained Expander, or an
// included/argument Lexer hitting its own EOF) until one yields a token or
// the whole stack is empty.
func (p *Preprocessor) nextRaw(mode lexer.Mode) token.Token {
	for {
		if len(p.stack) == 0 {
			return token.Token{Kind: token.EOF}
		}
		top := &p.stack[len(p.stack)-1]

		if top.kind == sourceKindMacro {
			if !top.expander.IsActive() {
				p.popSource()
				continue
			}
			return top.expander.Next()
		}

		tok := top.lexer.Next(mode)
		if tok.Kind == token.EOF {
			if len(p.stack) == 1 {
				return tok
			}
			p.popSource()
			continue
		}
		return tok
	}
}

// handleDirective dispatches a Directive-kind token (either a known
// directive name or a macro use) and reports whether it produced a token the
// caller should return immediately (only possible for a macro use whose
// expansion is itself empty and falls through to more input — in practice
// this always returns ok=false; the signature exists so future directives
// with direct token output, e.g. a builtin like __LINE__, have a seam).
func (p *Preprocessor) handleDirective(tok token.Token) (token.Token, bool) {
	name := tok.RawText[1:]
	switch name {
	case "define":
		p.handleDefine()
	case "undef":
		p.handleUndef()
	case "undefineall":
		if !p.suppressed() {
			p.macros.UndefineAll()
		}
		p.skipToEndOfDirective()
	case "resetall":
		if !p.suppressed() {
			p.macros.Resetall()
			p.defaultNettype = ""
			p.timescale = ""
		}
		p.skipToEndOfDirective()
	case "include":
		p.handleInclude(tok)
	case "ifdef":
		p.handleIfdef(tok, false)
	case "ifndef":
		p.handleIfdef(tok, true)
	case "elsif":
		p.handleElsif(tok)
	case "else":
		p.handleElse(tok)
	case "endif":
		p.handleEndif(tok)
	case "line":
		p.handleLine()
	case "timescale":
		text := p.captureDirectiveText()
		if !p.suppressed() {
			p.timescale = text
		}
	case "default_nettype":
		text := p.captureDirectiveText()
		if !p.suppressed() {
			p.defaultNettype = text
		}
	case "begin_keywords":
		p.handleBeginKeywords(tok)
	case "end_keywords":
		p.handleEndKeywords(tok)
	default:
		if !p.suppressed() {
			p.handleMacroUse(name, tok)
		}
	}
	return token.Token{}, false
}

// skipToEndOfDirective discards tokens in Directive mode up to and including
// the EndOfDirective sentinel, for directives whose own grammar this
// preprocessor doesn't otherwise need to inspect.
func (p *Preprocessor) skipToEndOfDirective() {
	for {
		tok := p.nextRaw(lexer.Directive)
		if tok.Kind == token.EndOfDirective || tok.Kind == token.EOF {
			return
		}
	}
}

// captureDirectiveText concatenates the raw text of a directive's remaining
// tokens, for `timescale/`default_nettype which this core only needs to
// record, not interpret (spec.md §4.4, §9 open question).
func (p *Preprocessor) captureDirectiveText() string {
	var out string
	for {
		tok := p.nextRaw(lexer.Directive)
		if tok.Kind == token.EndOfDirective || tok.Kind == token.EOF {
			return out
		}
		if out != "" {
			out += " "
		}
		out += tok.RawText
	}
}

func (p *Preprocessor) topLexer() *lexer.Lexer {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].kind == sourceKindLexer {
			return p.stack[i].lexer
		}
	}
	return nil
}
