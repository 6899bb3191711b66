// Package diagnostics holds the structured error/warning surface shared by the
// lexer, macro expander, preprocessor and type model. Diagnostics are data, not
// strings: formatting (file/line rendering, macro backtraces) is a separate
// concern left to the caller, who has a source.Manager to query.
package diagnostics

import "svfront/source"

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Code identifies a diagnostic kind. Grouped by the error-kind families in
// spec.md §7: Lex, Directive, Include, Macro, Type.
type Code string

const (
	// Lex
	LexUnterminatedComment Code = "lex.unterminated_comment"
	LexInvalidEscape       Code = "lex.invalid_escape"
	LexMalformedLiteral    Code = "lex.malformed_literal"
	LexLiteralTruncated    Code = "lex.literal_truncated"

	// Directive
	DirectiveBadSyntax        Code = "directive.bad_syntax"
	DirectiveUnknown          Code = "directive.unknown"
	DirectiveEndifWithoutIf   Code = "directive.endif_without_if"
	DirectiveElseAfterElse    Code = "directive.else_after_else"
	DirectiveUnterminatedCond Code = "directive.unterminated_conditional"
	DirectiveExtraToken       Code = "directive.extra_token"

	// Include
	IncludeNotFound   Code = "include.not_found"
	IncludeDepthLimit Code = "include.depth_limit_exceeded"

	// Macro
	MacroUndefined          Code = "macro.undefined"
	MacroArityMismatch      Code = "macro.arity_mismatch"
	MacroIllegalRedefine    Code = "macro.illegal_redefinition"
	MacroRecursiveExpansion Code = "macro.recursive_expansion"
	MacroUnmatchedDelimiter Code = "macro.unmatched_delimiter"

	// Type
	TypePackedMemberNotIntegral Code = "type.packed_member_not_integral"
	TypeInvalidEnumBase         Code = "type.invalid_enum_base"
	TypePackedDimsOnPredefined  Code = "type.packed_dims_on_predefined"
	TypeDimensionNotConstant    Code = "type.dimension_not_constant"
	TypeCircularNetTypeAlias    Code = "type.circular_net_type_alias"
)

// Diagnostic is one recoverable or fatal condition, located and parameterized
// so a formatter can render it without re-deriving context.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Location source.Location
	Args     []any
}

func New(code Code, sev Severity, loc source.Location, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: sev, Location: loc, Args: args}
}

func Errorf(code Code, loc source.Location, args ...any) Diagnostic {
	return New(code, Error, loc, args...)
}

func Warnf(code Code, loc source.Location, args ...any) Diagnostic {
	return New(code, Warning, loc, args...)
}
