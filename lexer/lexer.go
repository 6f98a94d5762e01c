// Package lexer turns Pascal-subset source text into a stream of
// position-bearing tokens.
//
// The lexer reads 8-bit, newline-terminated source (spec §6: no BOM
// handling, unlike the richer UTF-8-aware lexers in the surrounding
// ecosystem). Whitespace is skipped, `{...}` block comments are
// consumed without nesting, identifiers are upper-cased for keyword
// lookup while the original spelling is kept for ID tokens, and
// numeric literals become INTEGER_CONST or REAL_CONST depending on
// whether a fractional part is present.
package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cwbudde/pasc/diag"
	"github.com/cwbudde/pasc/token"
)

// Lexer is a single-use, single-threaded scanner over one source text.
// Construct a fresh Lexer per input; it is restartable only in the
// sense that a new instance can be created cheaply, not that an
// instance can be rewound.
type Lexer struct {
	input  string
	pos    int // byte offset of ch
	nextPp int // byte offset of the character after ch
	ch     byte
	line   int
	column int
}

// New creates a Lexer positioned before the first character of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.advance()
	return l
}

// advance consumes the current character and loads the next one,
// tracking line/column per spec §4.B: a newline increments the line
// counter and resets the column to 0 before the next advance.
func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.nextPp >= len(l.input) {
		l.ch = 0
		l.pos = l.nextPp
	} else {
		l.ch = l.input[l.nextPp]
		l.pos = l.nextPp
		l.nextPp++
	}
	l.column++
}

// peek returns the character after the current one without consuming
// it, or 0 at end of input.
func (l *Lexer) peek() byte {
	if l.nextPp >= len(l.input) {
		return 0
	}
	return l.input[l.nextPp]
}

// PeekRune reports the raw character that immediately follows the
// current token's text, without consuming any input. The parser uses
// this to disambiguate a procedure call from an assignment (spec §4.C
// "Disambiguation rule"; the narrow alternative to the open question
// in spec §9 about parser/lexer coupling).
func (l *Lexer) PeekRune() (rune, bool) {
	if l.ch == 0 {
		return 0, false
	}
	return rune(l.ch), true
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

func isSpace(b byte) bool {
	return unicode.IsSpace(rune(b))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlnum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) skipWhitespace() {
	for l.ch != 0 && isSpace(l.ch) {
		l.advance()
	}
}

// skipComment consumes a `{...}` block comment, including its closing
// brace. Comments do not nest: the first `}` ends it. An unterminated
// comment runs to end of input; the caller's subsequent NextToken call
// will then observe EOF.
func (l *Lexer) skipComment() {
	for l.ch != 0 && l.ch != '}' {
		l.advance()
	}
	if l.ch == '}' {
		l.advance()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isAlnum(l.ch) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() (token.Token, error) {
	pos := l.currentPos()
	start := l.pos
	for isDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
		text := l.input[start:l.pos]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, err
		}
		return token.New(token.REAL_CONST, token.RealValue(v), pos), nil
	}
	text := l.input[start:l.pos]
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, err
	}
	return token.New(token.INTEGER_CONST, token.IntValue(v), pos), nil
}

// single-character token kinds, checked after ':=' so the compound
// operator wins greedily (spec §4.B).
var singleCharTokens = map[byte]token.Type{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.MUL,
	'/': token.FLOAT_DIV,
	'(': token.LPAREN,
	')': token.RPAREN,
	';': token.SEMI,
	'.': token.DOT,
	':': token.COLON,
	',': token.COMMA,
}

// NextToken returns the next token in the stream, or a *diag.Diagnostic
// (category Lexer) if the current character cannot start any token. At
// end of input it returns an EOF token.
func (l *Lexer) NextToken() (token.Token, error) {
	for {
		l.skipWhitespace()
		if l.ch == '{' {
			l.advance()
			l.skipComment()
			continue
		}
		break
	}

	pos := l.currentPos()

	switch {
	case l.ch == 0:
		return token.New(token.EOF, token.Value{}, pos), nil

	case isAlpha(l.ch):
		text := l.readIdentifier()
		upper := strings.ToUpper(text)
		if kw, ok := token.Keywords[upper]; ok {
			return token.New(kw, token.StrValue(upper), pos), nil
		}
		return token.New(token.ID, token.StrValue(text), pos), nil

	case isDigit(l.ch):
		return l.readNumber()

	case l.ch == ':' && l.peek() == '=':
		l.advance()
		l.advance()
		return token.New(token.ASSIGN, token.StrValue(":="), pos), nil

	default:
		if typ, ok := singleCharTokens[l.ch]; ok {
			ch := l.ch
			l.advance()
			return token.New(typ, token.StrValue(string(ch)), pos), nil
		}
		ch := l.ch
		l.advance()
		return token.Token{}, diag.New(diag.Lexer, diag.CodeIllegalCharacter, pos, "",
			"unexpected character '"+string(ch)+"'")
	}
}
