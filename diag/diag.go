// Package diag provides the uniform diagnostic representation shared by
// the lexer, parser, semantic analyzer, and interpreter.
//
// Every diagnostic carries a category, a structured code, an optional
// token, and a human-readable message formatted as
// "<Category>: <description> -> <token>", matching the one error
// format the whole pipeline speaks.
package diag

import (
	"fmt"

	"github.com/cwbudde/pasc/token"
)

// Category distinguishes which pipeline stage raised a Diagnostic.
type Category int

const (
	Lexer Category = iota
	Parser
	Semantic
	Runtime
)

func (c Category) String() string {
	switch c {
	case Lexer:
		return "Lexer error"
	case Parser:
		return "Parser error"
	case Semantic:
		return "Semantic error"
	case Runtime:
		return "Runtime error"
	default:
		return "Error"
	}
}

// Code is a structured, stable identifier for a diagnostic, independent
// of its human-readable message.
type Code string

const (
	CodeIllegalCharacter Code = "ILLEGAL_CHARACTER"
	CodeUnexpectedToken  Code = "UNEXPECTED_TOKEN"
	CodeIDNotFound       Code = "ID_NOT_FOUND"
	CodeDuplicateID      Code = "DUPLICATE_ID"
	CodeArityMismatch    Code = "ARITY_MISMATCH"
	CodeDivisionByZero   Code = "DIVISION_BY_ZERO"
	CodeDivOperandNotInt Code = "DIV_OPERAND_NOT_INTEGER"
)

// Position is the source location a Diagnostic points at; it is simply
// token.Position, reused so every stage shares one notion of "where".
type Position = token.Position

// Diagnostic is a single, non-recoverable error raised by one pipeline
// stage. TokenText is the rendering of the offending token, if any
// (empty for lexer errors, which have a position but no token).
type Diagnostic struct {
	Category  Category
	Code      Code
	Pos       Position
	TokenText string
	Detail    string
}

// Error implements the error interface with the format spec.md §7
// mandates: "<Category>: <code-description> -> <token>".
func (d *Diagnostic) Error() string {
	tok := d.TokenText
	if tok == "" {
		tok = d.Pos.String()
	}
	return fmt.Sprintf("%s: %s -> %s", d.Category, d.Detail, tok)
}

// New builds a Diagnostic.
func New(cat Category, code Code, pos Position, tokenText, detail string) *Diagnostic {
	return &Diagnostic{Category: cat, Code: code, Pos: pos, TokenText: tokenText, Detail: detail}
}
