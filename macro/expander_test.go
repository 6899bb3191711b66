package macro

import (
	"testing"

	"svfront/diagnostics"
	"svfront/source"
	"svfront/token"
)

func tok(kind token.Kind, text string, loc source.Location) token.Token {
	return token.New(kind, text, loc)
}

func TestExpandObjectLikeMacro(t *testing.T) {
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", "`FOO", source.NoLocation)
	defLoc := source.NewLocation(buf.ID, 100)

	def := &Definition{
		Name: "FOO",
		Body: []token.Token{
			tok(token.IntLiteral, "1", defLoc),
			tok(token.Punctuation, "+", source.NewLocation(buf.ID, 101)),
			tok(token.IntLiteral, "2", source.NewLocation(buf.ID, 102)),
		},
		DefinitionLoc: defLoc,
	}

	useRange := source.NewRange(source.NewLocation(buf.ID, 0), source.NewLocation(buf.ID, 4))
	diags := diagnostics.NewBag()
	exp := Expand(mgr, diags, def, nil, useRange)

	var got []token.Token
	for exp.IsActive() {
		got = append(got, exp.Next())
	}
	if len(got) != 3 {
		t.Fatalf("expanded to %d tokens, want 3", len(got))
	}
	for _, tk := range got {
		if !mgr.IsMacroLoc(tk.Location) {
			t.Errorf("token %v should have a macro location", tk)
		}
		if mgr.GetMacroName(tk.Location) != "FOO" {
			t.Errorf("token %v should carry macro name FOO", tk)
		}
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestExpandFunctionLikeMacroSubstitution(t *testing.T) {
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", "`ADD(a,b)", source.NoLocation)
	bodyLoc := source.NewLocation(buf.ID, 50)

	def := &Definition{
		Name:           "ADD",
		IsFunctionLike: true,
		Params:         []Param{{Name: "x"}, {Name: "y"}},
		Body: []token.Token{
			tok(token.Identifier, "x", bodyLoc),
			tok(token.Punctuation, "+", source.NewLocation(buf.ID, 51)),
			tok(token.Identifier, "y", source.NewLocation(buf.ID, 52)),
		},
	}

	argSiteA := source.NewLocation(buf.ID, 5)
	argSiteB := source.NewLocation(buf.ID, 7)
	actuals := [][]token.Token{
		{tok(token.IntLiteral, "1", argSiteA)},
		{tok(token.IntLiteral, "2", argSiteB)},
	}
	useRange := source.NewRange(source.NewLocation(buf.ID, 0), source.NewLocation(buf.ID, 9))

	diags := diagnostics.NewBag()
	exp := Expand(mgr, diags, def, actuals, useRange)

	var got []token.Token
	for exp.IsActive() {
		got = append(got, exp.Next())
	}
	if len(got) != 3 {
		t.Fatalf("expanded to %d tokens, want 3", len(got))
	}
	if got[0].RawText != "1" || got[2].RawText != "2" {
		t.Fatalf("substitution failed: %+v", got)
	}
	if !mgr.IsMacroArgLoc(got[0].Location) {
		t.Errorf("substituted token should have a MacroArg location")
	}
	if mgr.GetFullyOriginalLoc(got[0].Location) != argSiteA {
		t.Errorf("GetFullyOriginalLoc mismatch for substituted arg")
	}
}

func TestExpandArityMismatch(t *testing.T) {
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", "`ADD(1)", source.NoLocation)
	def := &Definition{
		Name:           "ADD",
		IsFunctionLike: true,
		Params:         []Param{{Name: "x"}, {Name: "y"}},
	}
	useRange := source.NewRange(source.NewLocation(buf.ID, 0), source.NewLocation(buf.ID, 7))
	diags := diagnostics.NewBag()
	exp := Expand(mgr, diags, def, [][]token.Token{{tok(token.IntLiteral, "1", source.NewLocation(buf.ID, 5))}}, useRange)

	if exp.IsActive() {
		t.Errorf("expected no tokens on arity mismatch")
	}
	if !diags.HasErrors() {
		t.Errorf("expected an arity-mismatch diagnostic")
	}
}

func TestConcatenationGluesTokens(t *testing.T) {
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", "`GLUE", source.NoLocation)
	loc := func(o uint32) source.Location { return source.NewLocation(buf.ID, o) }

	def := &Definition{
		Name: "GLUE",
		Body: []token.Token{
			tok(token.Identifier, "foo", loc(10)),
			tok(token.Punctuation, "``", loc(13)),
			tok(token.Identifier, "bar", loc(15)),
		},
	}
	useRange := source.NewRange(loc(0), loc(5))
	diags := diagnostics.NewBag()
	exp := Expand(mgr, diags, def, nil, useRange)

	var got []token.Token
	for exp.IsActive() {
		got = append(got, exp.Next())
	}
	if len(got) != 1 || got[0].RawText != "foobar" {
		t.Fatalf("got %+v, want a single foobar token", got)
	}
}

func TestStringification(t *testing.T) {
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", "`STR(a)", source.NoLocation)
	loc := func(o uint32) source.Location { return source.NewLocation(buf.ID, o) }

	def := &Definition{
		Name:           "STR",
		IsFunctionLike: true,
		Params:         []Param{{Name: "x"}},
		Body: []token.Token{
			tok(token.Punctuation, "`\"", loc(10)),
			tok(token.Identifier, "x=", loc(11)),
			tok(token.Identifier, "x", loc(13)),
			tok(token.Punctuation, "`\"", loc(14)),
		},
	}
	actuals := [][]token.Token{{tok(token.IntLiteral, "5", loc(3))}}
	useRange := source.NewRange(loc(0), loc(7))
	diags := diagnostics.NewBag()
	exp := Expand(mgr, diags, def, actuals, useRange)

	var got []token.Token
	for exp.IsActive() {
		got = append(got, exp.Next())
	}
	if len(got) != 1 || got[0].Kind != token.StringLiteral {
		t.Fatalf("got %+v, want a single string literal", got)
	}
	if got[0].Value.Str != "x=5" {
		t.Errorf("stringified value = %q, want x=5", got[0].Value.Str)
	}
}

func TestTableDefineUndefResetall(t *testing.T) {
	tab := NewTable()
	tab.Define(&Definition{Name: "X"})
	if !tab.IsDefined("X") {
		t.Fatalf("expected X defined")
	}
	tab.Define(&Definition{Name: "X", IsFunctionLike: true})
	d, _ := tab.Lookup("X")
	if !d.IsFunctionLike {
		t.Errorf("expected last define to win")
	}
	tab.Undef("X")
	if tab.IsDefined("X") {
		t.Errorf("expected X undefined")
	}
	tab.Define(&Definition{Name: "Y"})
	tab.Resetall()
	if tab.IsDefined("Y") {
		t.Errorf("expected Resetall to clear all definitions")
	}
}
