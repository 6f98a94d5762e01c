// Package parser implements a one-token-lookahead recursive-descent
// parser over the grammar in spec §4.C, producing a *ast.Program.
//
// Each eat(kind) mismatch raises a Parser diagnostic (UNEXPECTED_TOKEN)
// on the current token and stops parsing immediately; there is no
// error recovery, matching spec §4 ("diagnostics halt the pipeline at
// the stage that raises them").
package parser

import (
	"github.com/cwbudde/pasc/ast"
	"github.com/cwbudde/pasc/diag"
	"github.com/cwbudde/pasc/lexer"
	"github.com/cwbudde/pasc/token"
)

// Parser holds the lexer and the single lookahead token.
type Parser struct {
	l        *lexer.Lexer
	curToken token.Token
}

// New creates a Parser and primes its lookahead token. A lexer error
// encountered while priming is returned immediately.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{l: l}
	tok, err := l.NextToken()
	if err != nil {
		return nil, err
	}
	p.curToken = tok
	return p, nil
}

func (p *Parser) advance() error {
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.curToken = tok
	return nil
}

// eat consumes the current token if it has the expected type, else
// raises UNEXPECTED_TOKEN on it.
func (p *Parser) eat(typ token.Type) (token.Token, error) {
	if p.curToken.Type != typ {
		return token.Token{}, p.unexpected()
	}
	tok := p.curToken
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) unexpected() error {
	return diag.New(diag.Parser, diag.CodeUnexpectedToken, p.curToken.Pos,
		p.curToken.String(), "unexpected token")
}

// ParseProgram parses `program := PROGRAM variable SEMI block DOT` and
// enforces the grammar-external check that EOF follows the trailing
// DOT (spec §4.C "Mandatory checks").
func (p *Parser) ParseProgram() (*ast.Program, error) {
	if _, err := p.eat(token.PROGRAM); err != nil {
		return nil, err
	}
	nameTok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMI); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.DOT); err != nil {
		return nil, err
	}
	if p.curToken.Type != token.EOF {
		return nil, p.unexpected()
	}
	return &ast.Program{NameToken: nameTok, Block: block}, nil
}

// parseBlock parses `block := declarations compound_statement`.
func (p *Parser) parseBlock() (*ast.Block, error) {
	decls, err := p.parseDeclarations()
	if err != nil {
		return nil, err
	}
	body, err := p.parseCompoundStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Declarations: decls, Body: body}, nil
}

// parseDeclarations parses `declarations := ( VAR (var_decl SEMI)+ )? procedure_decl*`,
// enforcing the at-most-one-VAR-block rule: a second VAR keyword is an
// UNEXPECTED_TOKEN error on that keyword (spec §4.C).
func (p *Parser) parseDeclarations() ([]ast.Decl, error) {
	var decls []ast.Decl

	if p.curToken.Type == token.VAR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curToken.Type != token.ID {
			return nil, p.unexpected()
		}
		for p.curToken.Type == token.ID {
			vds, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			decls = append(decls, vds...)
			if _, err := p.eat(token.SEMI); err != nil {
				return nil, err
			}
		}
	}

	for p.curToken.Type == token.PROCEDURE {
		pd, err := p.parseProcedureDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, pd)
	}

	if p.curToken.Type == token.VAR {
		// A second VAR block: UNEXPECTED_TOKEN on this keyword, even
		// though VAR is otherwise a perfectly valid token kind.
		return nil, p.unexpected()
	}

	return decls, nil
}

// parseVarDecl parses `var_decl := ID (COMMA ID)* COLON type_spec` and
// expands it into one *ast.VarDecl per identifier, preserving source
// order.
func (p *Parser) parseVarDecl() ([]ast.Decl, error) {
	var names []token.Token
	nameTok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}
	names = append(names, nameTok)
	for p.curToken.Type == token.COMMA {
		if _, err := p.eat(token.COMMA); err != nil {
			return nil, err
		}
		nameTok, err := p.eat(token.ID)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok)
	}
	if _, err := p.eat(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	decls := make([]ast.Decl, 0, len(names))
	for _, n := range names {
		decls = append(decls, &ast.VarDecl{VarToken: n, TypeRef: typ})
	}
	return decls, nil
}

// parseTypeSpec parses `type_spec := INTEGER | REAL`.
func (p *Parser) parseTypeSpec() (*ast.Type, error) {
	switch p.curToken.Type {
	case token.INTEGER:
		tok, err := p.eat(token.INTEGER)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.IntegerType, SourceToken: tok}, nil
	case token.REAL:
		tok, err := p.eat(token.REAL)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.RealType, SourceToken: tok}, nil
	default:
		return nil, p.unexpected()
	}
}

// parseProcedureDecl parses
// `procedure_decl := PROCEDURE ID (LPAREN formal_param_list RPAREN)? SEMI block SEMI`.
func (p *Parser) parseProcedureDecl() (*ast.ProcedureDecl, error) {
	if _, err := p.eat(token.PROCEDURE); err != nil {
		return nil, err
	}
	nameTok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}

	var params []*ast.Param
	if p.curToken.Type == token.LPAREN {
		if _, err := p.eat(token.LPAREN); err != nil {
			return nil, err
		}
		params, err = p.parseFormalParamList()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(token.SEMI); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ProcedureDecl{NameToken: nameTok, FormalParams: params, Block: block}, nil
}

// parseFormalParamList parses
// `formal_param_list := formal_params (SEMI formal_params)*`.
func (p *Parser) parseFormalParamList() ([]*ast.Param, error) {
	var params []*ast.Param
	group, err := p.parseFormalParams()
	if err != nil {
		return nil, err
	}
	params = append(params, group...)
	for p.curToken.Type == token.SEMI {
		if _, err := p.eat(token.SEMI); err != nil {
			return nil, err
		}
		group, err := p.parseFormalParams()
		if err != nil {
			return nil, err
		}
		params = append(params, group...)
	}
	return params, nil
}

// parseFormalParams parses `formal_params := ID (COMMA ID)* COLON type_spec`.
func (p *Parser) parseFormalParams() ([]*ast.Param, error) {
	var names []token.Token
	nameTok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}
	names = append(names, nameTok)
	for p.curToken.Type == token.COMMA {
		if _, err := p.eat(token.COMMA); err != nil {
			return nil, err
		}
		nameTok, err := p.eat(token.ID)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok)
	}
	if _, err := p.eat(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	params := make([]*ast.Param, 0, len(names))
	for _, n := range names {
		params = append(params, &ast.Param{VarToken: n, TypeRef: typ})
	}
	return params, nil
}

// parseCompoundStatement parses `compound_statement := BEGIN statement_list END`.
func (p *Parser) parseCompoundStatement() (*ast.Compound, error) {
	beginTok, err := p.eat(token.BEGIN)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementList()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.END); err != nil {
		return nil, err
	}
	return &ast.Compound{BeginToken: beginTok, Children: stmts}, nil
}

// parseStatementList parses `statement_list := statement (SEMI statement)*`.
func (p *Parser) parseStatementList() ([]ast.Stmt, error) {
	first, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmts := []ast.Stmt{first}
	for p.curToken.Type == token.SEMI {
		if _, err := p.eat(token.SEMI); err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// parseStatement parses
// `statement := compound_statement | proccall | assignment | ε`.
//
// The proccall/assignment choice is the grammar's one ambiguous point:
// both start with ID. Spec §4.C resolves it by peeking at the raw
// character immediately following the identifier; we ask the lexer for
// that character through PeekRune rather than re-lexing (spec §9
// decision 4).
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.curToken.Type {
	case token.BEGIN:
		return p.parseCompoundStatement()
	case token.ID:
		if ch, ok := p.l.PeekRune(); ok && ch == '(' {
			return p.parseProcCall()
		}
		return p.parseAssignment()
	default:
		return &ast.NoOp{EmptyToken: p.curToken}, nil
	}
}

// parseProcCall parses `proccall := ID LPAREN (expr (COMMA expr)*)? RPAREN`.
func (p *Parser) parseProcCall() (*ast.ProcedureCall, error) {
	nameTok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}
	callTok, err := p.eat(token.LPAREN)
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.curToken.Type != token.RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		for p.curToken.Type == token.COMMA {
			if _, err := p.eat(token.COMMA); err != nil {
				return nil, err
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ProcedureCall{NameToken: nameTok, ActualParams: args, CallToken: callTok}, nil
}

// parseAssignment parses `assignment := variable ASSIGN expr`.
func (p *Parser) parseAssignment() (*ast.Assign, error) {
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	assignTok, err := p.eat(token.ASSIGN)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Target: v, SourceTok: assignTok, Value: value}, nil
}

// parseVariable parses `variable := ID`.
func (p *Parser) parseVariable() (*ast.Var, error) {
	tok, err := p.eat(token.ID)
	if err != nil {
		return nil, err
	}
	return &ast.Var{Token: tok, Name: tok.Value.Str}, nil
}

// parseExpr parses `expr := term ((PLUS|MINUS) term)*`, left-associative.
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == token.PLUS || p.curToken.Type == token.MINUS {
		op := p.curToken
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parseTerm parses `term := factor ((MUL|INTEGER_DIV|FLOAT_DIV) factor)*`, left-associative.
func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == token.MUL || p.curToken.Type == token.DIV || p.curToken.Type == token.FLOAT_DIV {
		op := p.curToken
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parseFactor parses
// `factor := (PLUS|MINUS) factor | INTEGER_CONST | REAL_CONST | LPAREN expr RPAREN | variable`.
// Unary +/- recurses into factor (not term), so it binds tighter than
// any binary operator.
func (p *Parser) parseFactor() (ast.Expr, error) {
	switch p.curToken.Type {
	case token.PLUS, token.MINUS:
		op := p.curToken
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, Operand: operand}, nil
	case token.INTEGER_CONST, token.REAL_CONST:
		tok := p.curToken
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Num{Token: tok}, nil
	case token.LPAREN:
		if _, err := p.eat(token.LPAREN); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.ID:
		return p.parseVariable()
	default:
		return nil, p.unexpected()
	}
}
