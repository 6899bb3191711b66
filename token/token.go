// Package token defines the Token and Trivia shapes shared by the lexer,
// macro expander and preprocessor (spec.md §3 "Token").
package token

import (
	"math/big"

	"svfront/source"
)

// Kind classifies a Token. The grammar proper (productions) is an external
// collaborator; this enumeration only needs to be fine enough for the
// preprocessor to dispatch on (directives, macro uses, delimiter pairs) and
// for the lexer to report literal shapes.
type Kind int

const (
	Unknown Kind = iota
	EOF
	Identifier
	SystemIdentifier // $-prefixed, e.g. $display
	EscapedIdentifier // \-prefixed
	Keyword
	Directive // backtick-introduced directive name, e.g. `define, `FOO
	IntLiteral
	RealLiteral
	StringLiteral
	TimeLiteral
	Punctuation
	EndOfDirective // synthetic token marking end-of-line in Directive mode
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Identifier:
		return "Identifier"
	case SystemIdentifier:
		return "SystemIdentifier"
	case EscapedIdentifier:
		return "EscapedIdentifier"
	case Keyword:
		return "Keyword"
	case Directive:
		return "Directive"
	case IntLiteral:
		return "IntLiteral"
	case RealLiteral:
		return "RealLiteral"
	case StringLiteral:
		return "StringLiteral"
	case TimeLiteral:
		return "TimeLiteral"
	case Punctuation:
		return "Punctuation"
	case EndOfDirective:
		return "EndOfDirective"
	default:
		return "Unknown"
	}
}

// TriviaKind classifies one piece of Trivia.
type TriviaKind int

const (
	Whitespace TriviaKind = iota
	LineComment
	BlockComment
	PragmaComment // lint-pragma-shaped comment, recognized by the go-pcre scanner
	EscapedNewline
	DirectiveTrivia // a directive consumed as part of the preceding/following token's trivia
	DisabledText    // tokens skipped inside an inactive `ifdef branch
)

// Trivia is whitespace, comments, or a consumed directive, carried alongside
// a Token but never itself visible to the grammar layer (spec.md §3).
type Trivia struct {
	Kind     TriviaKind
	RawText  string
	Location source.Location
}

// IntValue is the four-state-aware value of an integer literal (spec.md
// §4.2): bits plus an x/z mask, width, and signedness.
type IntValue struct {
	Bits      *big.Int // known 0/1 bits; x/z positions hold 0 here
	XZMask    *big.Int // 1 bits mark positions that are x or z
	ZMask     *big.Int // subset of XZMask that is z rather than x
	Width     int
	Signed    bool
	FourState bool
	Truncated bool // true if the declared width was smaller than the literal's value
}

func (v *IntValue) IsUnknown() bool {
	return v.XZMask != nil && v.XZMask.Sign() != 0
}

// Value is the carried literal payload for IntLiteral/RealLiteral/StringLiteral
// tokens. Zero value means "no parsed value" (punctuation, identifiers, etc).
type Value struct {
	Int *IntValue
	Real float64
	Str  string
}

// Token is the atomic lexical unit produced by the Lexer and consumed by the
// Preprocessor/MacroTable and, eventually, the parser (spec.md §3).
//
// Tokens are value types; ownership of any backing storage belongs to an
// arena owned by the preprocessor's caller, per spec.md §5.
type Token struct {
	Kind     Kind
	Trivia   []Trivia
	RawText  string
	Location source.Location
	Value    Value

	// HasSpace records whether any trivia (whitespace, newline or comment)
	// preceded this token; the `define parser uses it to tell a
	// function-like definition from an object-like one.
	HasSpace bool
	// AtLineStart records whether this token is the first non-trivia token
	// on its raw source line, mirroring the teacher's own line-boundary
	// tracking in lex.go and needed for the preprocessor's `# column-0 rule
	// and for skipLine-style directive recovery.
	AtLineStart bool
}

func (t Token) IsEOF() bool { return t.Kind == EOF }

func New(kind Kind, text string, loc source.Location) Token {
	return Token{Kind: kind, RawText: text, Location: loc}
}
