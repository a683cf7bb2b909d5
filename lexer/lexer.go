package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Structural
	TokenComma  TokenType = iota // ,
	TokenDot                     // .
	TokenLParen                  // (
	TokenRParen                  // )

	// Comparison operators
	TokenEq  // = or ==
	TokenNeq // != or <>
	TokenLt  // <
	TokenGt  // >
	TokenLte // <=
	TokenGte // >=

	// Keywords
	TokenSelect
	TokenFrom
	TokenWhere
	TokenFor
	TokenIn
	TokenOrder
	TokenBy
	TokenLimit
	TokenAsc
	TokenDesc
	TokenAnd
	TokenOr
	TokenNot
	TokenIs
	TokenNull

	// Literals
	TokenInt    // integer literal
	TokenFloat  // float literal
	TokenString // "string" or 'string'
	TokenPath   // raw source path following FROM

	// Identifiers
	TokenIdent         // element name
	TokenBacktickIdent // `element name`

	// End
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenComma: ",", TokenDot: ".", TokenLParen: "(", TokenRParen: ")",
	TokenEq: "=", TokenNeq: "!=", TokenLt: "<", TokenGt: ">", TokenLte: "<=", TokenGte: ">=",
	TokenSelect: "SELECT", TokenFrom: "FROM", TokenWhere: "WHERE", TokenFor: "FOR", TokenIn: "IN",
	TokenOrder: "ORDER", TokenBy: "BY", TokenLimit: "LIMIT", TokenAsc: "ASC", TokenDesc: "DESC",
	TokenAnd: "AND", TokenOr: "OR", TokenNot: "NOT", TokenIs: "IS", TokenNull: "NULL",
	TokenInt: "INT", TokenFloat: "FLOAT", TokenString: "STRING", TokenPath: "PATH",
	TokenIdent: "IDENT", TokenBacktickIdent: "BACKTICK_IDENT", TokenEOF: "EOF",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokenSelect && t <= TokenNull
}

// Token represents a single lexical token.
type Token struct {
	Type TokenType
	Val  string
	Pos  int // rune offset in original input
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Val, t.Pos)
}

// keywords are matched case-insensitively.
var keywords = map[string]TokenType{
	"select": TokenSelect,
	"from":   TokenFrom,
	"where":  TokenWhere,
	"for":    TokenFor,
	"in":     TokenIn,
	"order":  TokenOrder,
	"by":     TokenBy,
	"limit":  TokenLimit,
	"asc":    TokenAsc,
	"desc":   TokenDesc,
	"and":    TokenAnd,
	"or":     TokenOr,
	"not":    TokenNot,
	"is":     TokenIs,
	"null":   TokenNull,
}

// Lex tokenizes the input string into a slice of Tokens.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		ch := runes[i]

		// Skip whitespace
		if unicode.IsSpace(ch) {
			i++
			continue
		}

		// The source after FROM is a file system path, not an expression.
		if n := len(tokens); n > 0 && tokens[n-1].Type == TokenFrom && (n < 2 || tokens[n-2].Type != TokenDot) &&
			ch != '"' && ch != '\'' {
			tok, newI := lexPath(runes, i)
			tokens = append(tokens, tok)
			i = newI
			continue
		}

		pos := i
		switch ch {
		case ',':
			tokens = append(tokens, Token{TokenComma, ",", pos})
			i++
			continue
		case '.':
			tokens = append(tokens, Token{TokenDot, ".", pos})
			i++
			continue
		case '(':
			tokens = append(tokens, Token{TokenLParen, "(", pos})
			i++
			continue
		case ')':
			tokens = append(tokens, Token{TokenRParen, ")", pos})
			i++
			continue
		case '-':
			if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				tok, newI := lexNumber(runes, i)
				tokens = append(tokens, tok)
				i = newI
				continue
			}
			// Check for -- comment
			if i+1 < len(runes) && runes[i+1] == '-' {
				for i < len(runes) && runes[i] != '\n' {
					i++
				}
				continue
			}
			return nil, fmt.Errorf("unexpected character '-' at position %d", pos)
		case '=':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, Token{TokenEq, "==", pos})
				i += 2
			} else {
				tokens = append(tokens, Token{TokenEq, "=", pos})
				i++
			}
			continue
		case '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, Token{TokenNeq, "!=", pos})
				i += 2
			} else {
				return nil, fmt.Errorf("unexpected character '!' at position %d (did you mean '!='?)", pos)
			}
			continue
		case '<':
			switch {
			case i+1 < len(runes) && runes[i+1] == '=':
				tokens = append(tokens, Token{TokenLte, "<=", pos})
				i += 2
			case i+1 < len(runes) && runes[i+1] == '>':
				tokens = append(tokens, Token{TokenNeq, "<>", pos})
				i += 2
			default:
				tokens = append(tokens, Token{TokenLt, "<", pos})
				i++
			}
			continue
		case '>':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, Token{TokenGte, ">=", pos})
				i += 2
			} else {
				tokens = append(tokens, Token{TokenGt, ">", pos})
				i++
			}
			continue
		}

		// String literal
		if ch == '"' || ch == '\'' {
			tok, newI, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = newI
			continue
		}

		// Backtick identifier
		if ch == '`' {
			tok, newI, err := lexBacktick(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = newI
			continue
		}

		// Number
		if unicode.IsDigit(ch) {
			tok, newI := lexNumber(runes, i)
			tokens = append(tokens, tok)
			i = newI
			continue
		}

		// Identifier or keyword
		if isIdentStart(ch) {
			tok, newI := lexIdent(runes, i)
			tokens = append(tokens, tok)
			i = newI
			continue
		}

		return nil, fmt.Errorf("unexpected character %q at position %d", ch, pos)
	}

	tokens = append(tokens, Token{TokenEOF, "", len(runes)})
	return tokens, nil
}

func lexString(runes []rune, start int) (Token, int, error) {
	quote := runes[start]
	i := start + 1 // skip opening quote
	var sb []rune
	for i < len(runes) {
		if runes[i] == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '"', '\'', '\\':
				sb = append(sb, runes[i+1])
			case 'n':
				sb = append(sb, '\n')
			case 't':
				sb = append(sb, '\t')
			default:
				sb = append(sb, '\\', runes[i+1])
			}
			i += 2
			continue
		}
		if runes[i] == quote {
			return Token{TokenString, string(sb), start}, i + 1, nil
		}
		sb = append(sb, runes[i])
		i++
	}
	return Token{}, 0, fmt.Errorf("unterminated string starting at position %d", start)
}

func lexBacktick(runes []rune, start int) (Token, int, error) {
	i := start + 1
	var sb []rune
	for i < len(runes) {
		if runes[i] == '`' {
			return Token{TokenBacktickIdent, string(sb), start}, i + 1, nil
		}
		sb = append(sb, runes[i])
		i++
	}
	return Token{}, 0, fmt.Errorf("unterminated backtick identifier starting at position %d", start)
}

func lexNumber(runes []rune, start int) (Token, int) {
	i := start
	isFloat := false

	if i < len(runes) && runes[i] == '-' {
		i++
	}

	for i < len(runes) && unicode.IsDigit(runes[i]) {
		i++
	}

	if i+1 < len(runes) && runes[i] == '.' && unicode.IsDigit(runes[i+1]) {
		isFloat = true
		i++
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
	}

	val := string(runes[start:i])
	if isFloat {
		return Token{TokenFloat, val, start}, i
	}
	return Token{TokenInt, val, start}, i
}

// lexPath reads everything up to the next whitespace.
func lexPath(runes []rune, start int) (Token, int) {
	i := start
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	return Token{TokenPath, string(runes[start:i]), start}, i
}

func lexIdent(runes []rune, start int) (Token, int) {
	i := start
	for i < len(runes) && isIdentPart(runes[i]) {
		i++
	}
	val := string(runes[start:i])

	if tt, ok := keywords[strings.ToLower(val)]; ok {
		return Token{tt, val, start}, i
	}
	return Token{TokenIdent, val, start}, i
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// XML names may contain '-' and ':' after the first character.
func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-' || ch == ':'
}
