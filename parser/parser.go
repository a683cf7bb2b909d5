package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/lexer"
)

// Parser converts a token stream into an AST.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

var aggregates = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// Parse parses a full query string into a Query AST.
func Parse(input string) (*ast.Query, error) {
	tokens, err := lexer.Lex(input)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}
	p := &Parser{tokens: tokens, pos: 0}
	return p.parseQuery()
}

func (p *Parser) peek() lexer.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) lexer.Token {
	if p.pos+offset >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, fmt.Errorf("expected %s, got %s (%q) at position %d", tt, tok.Type, tok.Val, tok.Pos)
	}
	return tok, nil
}

func (p *Parser) parseQuery() (*ast.Query, error) {
	q := &ast.Query{Limit: -1}

	if _, err := p.expect(lexer.TokenSelect); err != nil {
		return nil, err
	}
	fields, err := p.parseSelectList()
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	q.Select = fields

	if _, err := p.expect(lexer.TokenFrom); err != nil {
		return nil, err
	}
	src := p.advance()
	if src.Type != lexer.TokenPath && src.Type != lexer.TokenString {
		return nil, fmt.Errorf("from: expected path, got %s at position %d", src.Type, src.Pos)
	}
	q.FromPath = src.Val

	for p.peek().Type == lexer.TokenFor {
		fc, err := p.parseFor()
		if err != nil {
			return nil, fmt.Errorf("for: %w", err)
		}
		q.For = append(q.For, fc)
	}

	if p.peek().Type == lexer.TokenWhere {
		p.advance() // consume WHERE
		where, err := p.parseExpr()
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		q.Where = where
	}

	if p.peek().Type == lexer.TokenOrder {
		if err := p.parseOrderBy(q); err != nil {
			return nil, fmt.Errorf("order by: %w", err)
		}
	}

	if p.peek().Type == lexer.TokenLimit {
		p.advance() // consume LIMIT
		n, err := p.parseInt()
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		q.Limit = n
	}

	if p.peek().Type != lexer.TokenEOF {
		return nil, fmt.Errorf("unexpected token %s (%q) at position %d", p.peek().Type, p.peek().Val, p.peek().Pos)
	}
	return q, nil
}

func (p *Parser) parseSelectList() ([]ast.FieldPath, error) {
	var fields []ast.FieldPath
	for {
		f, err := p.parseSelectField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.peek().Type != lexer.TokenComma {
			return fields, nil
		}
		p.advance() // consume comma
	}
}

func (p *Parser) parseSelectField() (ast.FieldPath, error) {
	tok := p.peek()
	if tok.Type == lexer.TokenIdent && p.peekAt(1).Type == lexer.TokenLParen {
		name := strings.ToLower(tok.Val)
		if !aggregates[name] {
			return ast.FieldPath{}, fmt.Errorf("unknown function %q at position %d", tok.Val, tok.Pos)
		}
		p.advance() // consume function name
		p.advance() // consume (
		f, err := p.parseFieldPath()
		if err != nil {
			return ast.FieldPath{}, fmt.Errorf("in function %s: %w", name, err)
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return ast.FieldPath{}, fmt.Errorf("in function %s: %w", name, err)
		}
		f.Aggregate = name
		return f, nil
	}
	return p.parseFieldPath(lexer.TokenFrom)
}

// parseFieldPath reads name {"." name}. Keywords are accepted as names, so
// order.total and a bare order both parse as paths. A bare keyword listed in
// clauses is left alone because it starts the next clause there.
func (p *Parser) parseFieldPath(clauses ...lexer.TokenType) (ast.FieldPath, error) {
	first := p.peek()
	if !isName(first) || (p.peekAt(1).Type != lexer.TokenDot && slices.Contains(clauses, first.Type)) {
		return ast.FieldPath{}, fmt.Errorf("expected field name, got %s (%q) at position %d", first.Type, first.Val, first.Pos)
	}
	p.advance()

	if first.Type == lexer.TokenIdent && first.Val == ast.FileNameColumn && p.peek().Type != lexer.TokenDot {
		return ast.FileNameField(), nil
	}

	components := []string{first.Val}
	for p.peek().Type == lexer.TokenDot {
		p.advance() // consume .
		tok := p.advance()
		if !isName(tok) {
			return ast.FieldPath{}, fmt.Errorf("expected name after '.', got %s (%q) at position %d", tok.Type, tok.Val, tok.Pos)
		}
		components = append(components, tok.Val)
	}
	return ast.Path(components...), nil
}

func isName(tok lexer.Token) bool {
	return tok.Type == lexer.TokenIdent || tok.Type == lexer.TokenBacktickIdent || tok.Type.IsKeyword()
}

func (p *Parser) parseFor() (ast.ForClause, error) {
	p.advance() // consume FOR
	alias := p.advance()
	if alias.Type != lexer.TokenIdent && alias.Type != lexer.TokenBacktickIdent {
		return ast.ForClause{}, fmt.Errorf("expected alias, got %s (%q) at position %d", alias.Type, alias.Val, alias.Pos)
	}
	if _, err := p.expect(lexer.TokenIn); err != nil {
		return ast.ForClause{}, err
	}
	path, err := p.parseFieldPath()
	if err != nil {
		return ast.ForClause{}, err
	}
	if path.FileName {
		return ast.ForClause{}, fmt.Errorf("cannot iterate over %s", ast.FileNameColumn)
	}
	return ast.ForClause{Alias: alias.Val, Path: path}, nil
}

func (p *Parser) parseOrderBy(q *ast.Query) error {
	p.advance() // consume ORDER
	if _, err := p.expect(lexer.TokenBy); err != nil {
		return err
	}
	for {
		f, err := p.parseFieldPath()
		if err != nil {
			return err
		}
		desc := false
		switch p.peek().Type {
		case lexer.TokenAsc:
			p.advance()
		case lexer.TokenDesc:
			p.advance()
			desc = true
		}
		if len(q.OrderBy) == 0 {
			q.OrderDesc = desc
		}
		q.OrderBy = append(q.OrderBy, f.Column())

		if p.peek().Type != lexer.TokenComma {
			return nil
		}
		p.advance() // consume comma
	}
}

// --- Helpers ---

func (p *Parser) parseInt() (int, error) {
	tok := p.advance()
	if tok.Type != lexer.TokenInt {
		return 0, fmt.Errorf("expected integer, got %s (%q) at position %d", tok.Type, tok.Val, tok.Pos)
	}
	n, err := strconv.Atoi(tok.Val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", tok.Val, err)
	}
	return n, nil
}

// --- WHERE expressions: OR binds loosest, then AND, then NOT ---

func (p *Parser) parseExpr() (ast.WhereExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.WhereExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.WhereExpr, error) {
	switch p.peek().Type {
	case lexer.TokenNot:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Logical{Op: ast.Not, Left: operand}, nil
	case lexer.TokenLParen:
		p.advance() // consume (
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parseCondition()
}

func (p *Parser) parseCondition() (ast.WhereExpr, error) {
	field, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}

	tok := p.advance()
	if tok.Type == lexer.TokenIs {
		op := ast.OpIsNull
		if p.peek().Type == lexer.TokenNot {
			p.advance()
			op = ast.OpIsNotNull
		}
		if _, err := p.expect(lexer.TokenNull); err != nil {
			return nil, fmt.Errorf("expected NULL after IS: %w", err)
		}
		return &ast.Condition{Field: field, Op: op}, nil
	}

	op, ok := comparisonOps[tok.Type]
	if !ok {
		return nil, fmt.Errorf("expected comparison operator after %s, got %s (%q) at position %d", field, tok.Type, tok.Val, tok.Pos)
	}

	lit := p.advance()
	switch lit.Type {
	case lexer.TokenInt, lexer.TokenFloat:
		return &ast.Condition{Field: field, Op: op, Value: lit.Val, Numeric: true}, nil
	case lexer.TokenString:
		return &ast.Condition{Field: field, Op: op, Value: lit.Val}, nil
	default:
		return nil, fmt.Errorf("expected literal after %s, got %s (%q) at position %d", op, lit.Type, lit.Val, lit.Pos)
	}
}

var comparisonOps = map[lexer.TokenType]ast.ComparisonOp{
	lexer.TokenEq:  ast.OpEQ,
	lexer.TokenNeq: ast.OpNE,
	lexer.TokenLt:  ast.OpLT,
	lexer.TokenLte: ast.OpLE,
	lexer.TokenGt:  ast.OpGT,
	lexer.TokenGte: ast.OpGE,
}
