package preprocess

import (
	"svfront/diagnostics"
	"svfront/lexer"
	"svfront/token"
)

// handleIfdef pushes a BranchFrame for `ifdef/`ifndef (spec.md §4.4):
// AnyTaken = CurrentActive = defined(NAME) XOR isIfndef, but only truly
// activates if every enclosing frame is itself active — this is what lets
// conditionals nest correctly under an already-inactive ancestor.
func (p *Preprocessor) handleIfdef(tok token.Token, isIfndef bool) {
	wasSuppressed := p.suppressed()
	nameTok := p.nextRaw(lexer.Directive)
	p.skipToEndOfDirective()

	if nameTok.Kind != token.Identifier && nameTok.Kind != token.Keyword {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveBadSyntax, tok.Location, "expected macro name after `ifdef/`ifndef"))
		p.branches = append(p.branches, BranchFrame{})
		return
	}

	defined := p.macros.IsDefined(nameTok.RawText)
	active := defined != isIfndef
	if wasSuppressed {
		active = false
	}
	p.branches = append(p.branches, BranchFrame{AnyTaken: active, CurrentActive: active})
}

func (p *Preprocessor) currentFrame() *BranchFrame {
	if len(p.branches) == 0 {
		return nil
	}
	return &p.branches[len(p.branches)-1]
}

// ancestorsActive reports whether every frame enclosing the current (i.e.
// everything but the top of the stack) is active; used to decide whether an
// `elsif/`else at this level is even eligible to activate.
func (p *Preprocessor) ancestorsActive() bool {
	for i := 0; i < len(p.branches)-1; i++ {
		if !p.branches[i].CurrentActive {
			return false
		}
	}
	return true
}

func (p *Preprocessor) handleElsif(tok token.Token) {
	frame := p.currentFrame()
	if frame == nil {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveEndifWithoutIf, tok.Location, "elsif"))
		p.skipToEndOfDirective()
		return
	}
	if frame.HasElse {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveElseAfterElse, tok.Location))
	}

	nameTok := p.nextRaw(lexer.Directive)
	p.skipToEndOfDirective()

	if frame.AnyTaken {
		frame.CurrentActive = false
		return
	}
	defined := nameTok.Kind == token.Identifier || nameTok.Kind == token.Keyword
	if defined {
		defined = p.macros.IsDefined(nameTok.RawText)
	}
	active := defined && p.ancestorsActive()
	frame.CurrentActive = active
	frame.AnyTaken = frame.AnyTaken || active
}

func (p *Preprocessor) handleElse(tok token.Token) {
	frame := p.currentFrame()
	if frame == nil {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveEndifWithoutIf, tok.Location, "else"))
		p.skipToEndOfDirective()
		return
	}
	if frame.HasElse {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveElseAfterElse, tok.Location))
	}
	p.skipToEndOfDirective()

	frame.HasElse = true
	active := !frame.AnyTaken && p.ancestorsActive()
	frame.CurrentActive = active
	frame.AnyTaken = frame.AnyTaken || active
}

func (p *Preprocessor) handleEndif(tok token.Token) {
	p.skipToEndOfDirective()
	if len(p.branches) == 0 {
		p.diags.Add(diagnostics.Errorf(diagnostics.DirectiveEndifWithoutIf, tok.Location, "endif"))
		return
	}
	p.branches = p.branches[:len(p.branches)-1]
}
