package macro

import (
	"strings"

	"svfront/diagnostics"
	"svfront/source"
	"svfront/token"
)

// Expander drives one macro-use expansion (spec.md §4.3). It fills its
// token buffer eagerly in Expand, then Next/IsActive stream it out one
// token at a time, matching the slang MacroExpander this module is
// grounded on (its `expand` method populates a Buffer<Token*> up front;
// `next()` just walks it).
type Expander struct {
	macroName string
	tokens    []token.Token
	idx       int
}

func (e *Expander) Next() token.Token {
	if e.idx >= len(e.tokens) {
		return token.Token{Kind: token.EOF}
	}
	t := e.tokens[e.idx]
	e.idx++
	return t
}

func (e *Expander) IsActive() bool { return e.idx < len(e.tokens) }

func (e *Expander) MacroName() string { return e.macroName }

// Expand validates arity, substitutes formal-parameter references, performs
// `` ` ` `` concatenation and `` `" `` stringification, and rewrites every
// produced token's location through mgr.CreateExpansionLoc.
//
// useRange is the [start,end] span of the macro-use site (the `NAME or
// `NAME(args) text); it becomes expansionStart/expansionEnd for MacroBody
// entries. Substituted-argument entries instead record the location of the
// parameter reference in the body as their expansionStart/expansionEnd.
func Expand(mgr *source.Manager, diags *diagnostics.Bag, def *Definition, actuals [][]token.Token, useRange source.Range) *Expander {
	bound, ok := bindArguments(diags, def, actuals, useRange)
	if !ok {
		return &Expander{macroName: def.Name}
	}

	substituted := substituteAndGlue(def.Body, bound)

	out := make([]token.Token, 0, len(substituted))
	for _, st := range substituted {
		var rewritten token.Token
		if st.fromArg {
			// MacroArg: originalLoc is the argument site; [start,end] is the
			// parameter occurrence inside the body.
			rewritten = st.tok
			rewritten.Location = mgr.CreateExpansionLoc(st.tok.Location, st.paramUseStart, st.paramUseEnd, def.Name, source.MacroArg)
		} else {
			// MacroBody: originalLoc is inside the definition; [start,end]
			// is the use-site range.
			rewritten = st.tok
			rewritten.Location = mgr.CreateExpansionLoc(st.tok.Location, useRange.Start, useRange.End, def.Name, source.MacroBody)
		}
		out = append(out, rewritten)
	}

	return &Expander{macroName: def.Name, tokens: out}
}

// bindArguments validates arity and fills missing trailing arguments from
// formal defaults (spec.md §4.3 step 1).
func bindArguments(diags *diagnostics.Bag, def *Definition, actuals [][]token.Token, useRange source.Range) (map[string][]token.Token, bool) {
	bound := make(map[string][]token.Token, len(def.Params))
	if !def.IsFunctionLike {
		return bound, true
	}
	if len(actuals) > len(def.Params) {
		diags.Add(diagnostics.Errorf(diagnostics.MacroArityMismatch, useRange.Start, def.Name))
		return nil, false
	}
	for i, p := range def.Params {
		if i < len(actuals) {
			bound[p.Name] = actuals[i]
			continue
		}
		if p.Default != nil {
			bound[p.Name] = p.Default
			continue
		}
		diags.Add(diagnostics.Errorf(diagnostics.MacroArityMismatch, useRange.Start, def.Name, p.Name))
		return nil, false
	}
	return bound, true
}

// substitutedToken tags each output token with where it came from, so
// Expand knows which location-rewrite rule to apply.
type substitutedToken struct {
	tok           token.Token
	fromArg       bool
	paramUseStart source.Location
	paramUseEnd   source.Location
}

// substituteAndGlue walks the macro body, replacing formal-parameter
// references with their bound actual tokens, then resolves `` ` ` ``
// concatenation and `` `" `` stringification over the substituted stream
// (spec.md §4.3 step 2, performed before location rewriting).
func substituteAndGlue(body []token.Token, bound map[string][]token.Token) []substitutedToken {
	expanded := make([]substitutedToken, 0, len(body))
	for i := 0; i < len(body); i++ {
		bt := body[i]
		if bt.Kind == token.Identifier {
			if actual, ok := bound[bt.RawText]; ok {
				for _, at := range actual {
					expanded = append(expanded, substitutedToken{
						tok: at, fromArg: true,
						paramUseStart: bt.Location, paramUseEnd: bt.Location,
					})
				}
				continue
			}
		}
		expanded = append(expanded, substitutedToken{tok: bt, fromArg: false})
	}

	expanded = resolveStringification(expanded)
	expanded = resolveConcatenation(expanded)
	return expanded
}

// resolveStringification turns a `" ... `" span into one synthetic string
// literal token, concatenating the raw text of everything inside (SV's
// stringify operator; spec.md §4.3, supplemented from original_source for
// the exact backtick-quote delimiter shape).
func resolveStringification(in []substitutedToken) []substitutedToken {
	var out []substitutedToken
	for i := 0; i < len(in); i++ {
		if in[i].tok.Kind == token.Punctuation && in[i].tok.RawText == "`\"" {
			j := i + 1
			var sb strings.Builder
			for j < len(in) && !(in[j].tok.Kind == token.Punctuation && in[j].tok.RawText == "`\"") {
				sb.WriteString(in[j].tok.RawText)
				j++
			}
			loc := in[i].tok.Location
			strTok := token.New(token.StringLiteral, "\""+sb.String()+"\"", loc)
			strTok.Value.Str = sb.String()
			out = append(out, substitutedToken{tok: strTok})
			if j < len(in) {
				i = j // skip the closing `" too
			} else {
				i = j - 1
			}
			continue
		}
		out = append(out, in[i])
	}
	return out
}

// resolveConcatenation glues the raw text of the tokens on either side of
// every `` ` ` `` into one token, dropping the operator itself (spec.md
// §4.3 step 2).
func resolveConcatenation(in []substitutedToken) []substitutedToken {
	isGlue := func(st substitutedToken) bool {
		return st.tok.Kind == token.Punctuation && st.tok.RawText == "``"
	}

	out := make([]substitutedToken, 0, len(in))
	for i := 0; i < len(in); i++ {
		if !isGlue(in[i]) {
			out = append(out, in[i])
			continue
		}
		if len(out) == 0 || i+1 >= len(in) {
			continue // malformed glue at a boundary; drop it rather than crash
		}
		left := out[len(out)-1]
		right := in[i+1]
		glued := left.tok
		glued.RawText = left.tok.RawText + right.tok.RawText
		out[len(out)-1] = substitutedToken{tok: glued, fromArg: left.fromArg,
			paramUseStart: left.paramUseStart, paramUseEnd: left.paramUseEnd}
		i++ // consume the right-hand operand too
	}
	return out
}
