package preprocess

import (
	"testing"

	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/source"
	"svfront/token"
)

func newTestPreprocessor(t *testing.T, text string) (*Preprocessor, *diagnostics.Bag) {
	t.Helper()
	mgr := source.NewManager()
	buf := mgr.AssignTextPath("t.sv", text, source.NoLocation)
	diags := diagnostics.NewBag()
	p := New(mgr, diags, lexer.V1800_2017)
	if !p.PushSource(buf) {
		t.Fatalf("PushSource failed")
	}
	return p, diags
}

func collect(p *Preprocessor) []token.Token {
	var out []token.Token
	for {
		tok := p.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

func rawTexts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.RawText
	}
	return out
}

func TestMacroExpansionCarriesLocation(t *testing.T) {
	p, diags := newTestPreprocessor(t, "`define FOO 1+2\nint x = `FOO;")
	toks := collect(p)

	got := rawTexts(toks)
	want := []string{"int", "x", "=", "1", "+", "2", ";"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, g := range got {
		if g != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	for _, idx := range []int{3, 4, 5} { // "1", "+", "2"
		if !p.mgr.IsMacroLoc(toks[idx].Location) {
			t.Errorf("token %q should have a macro location", toks[idx].RawText)
		}
		if p.mgr.GetMacroName(toks[idx].Location) != "FOO" {
			t.Errorf("token %q should carry macro name FOO", toks[idx].RawText)
		}
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestNestedConditionalElseBranch(t *testing.T) {
	src := "`define A\n" +
		"`ifdef A\n" +
		"`ifdef B\n" +
		"module m; endmodule\n" +
		"`else\n" +
		"module n; endmodule\n" +
		"`endif\n" +
		"`endif\n"
	p, diags := newTestPreprocessor(t, src)
	toks := collect(p)

	got := rawTexts(toks)
	want := []string{"module", "n", ";", "endmodule"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, g := range got {
		if g != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestElsifAfterElseDiagnoses(t *testing.T) {
	src := "`ifdef UNDEFINED\n" +
		"a\n" +
		"`else\n" +
		"b\n" +
		"`elsif UNDEFINED\n" +
		"c\n" +
		"`endif\n" +
		"tail\n"
	p, diags := newTestPreprocessor(t, src)
	toks := collect(p)

	found := false
	for _, d := range diags.Diagnostics() {
		if d.Code == diagnostics.DirectiveElseAfterElse {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an ElseAfterElse diagnostic, got %v", diags.Diagnostics())
	}

	got := rawTexts(toks)
	if len(got) == 0 || got[len(got)-1] != "tail" {
		t.Errorf("surrounding code should still tokenize, got %v", got)
	}
}

func TestMacroRedefinitionLastWins(t *testing.T) {
	p, diags := newTestPreprocessor(t, "`define X 1\n`define X 2\n`X")
	toks := collect(p)
	if len(toks) != 1 || toks[0].RawText != "2" {
		t.Fatalf("got %v, want a single token \"2\"", rawTexts(toks))
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestUndefinedIfdefEmitsNothing(t *testing.T) {
	p, diags := newTestPreprocessor(t, "`ifdef NOPE\nshould_not_appear\n`endif\n")
	toks := collect(p)
	if len(toks) != 0 {
		t.Errorf("got %v, want no tokens", rawTexts(toks))
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestFunctionLikeMacroWithDefault(t *testing.T) {
	p, diags := newTestPreprocessor(t, "`define ADD(x,y=2) x+y\n`ADD(1)")
	toks := collect(p)
	got := rawTexts(toks)
	want := []string{"1", "+", "2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, g := range got {
		if g != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
	}
}

func TestEndifWithoutIfDiagnoses(t *testing.T) {
	p, diags := newTestPreprocessor(t, "`endif\n")
	collect(p)
	if !diags.HasErrors() {
		t.Errorf("expected DirectiveEndifWithoutIf diagnostic")
	}
}
