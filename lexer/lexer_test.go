package lexer

import (
	"testing"
)

func assertTypes(t *testing.T, tokens []Token, expected []TokenType) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %s, got %s (%q)", i, tt, tokens[i].Type, tokens[i].Val)
		}
	}
}

func TestLexBasic(t *testing.T) {
	tokens, err := Lex(`SELECT name, order.total FROM ./data/invoices LIMIT 10`)
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{
		TokenSelect, TokenIdent, TokenComma, TokenOrder, TokenDot, TokenIdent,
		TokenFrom, TokenPath, TokenLimit, TokenInt, TokenEOF,
	})
	if tokens[7].Val != "./data/invoices" {
		t.Errorf("expected path './data/invoices', got %q", tokens[7].Val)
	}
}

func TestLexWhere(t *testing.T) {
	tokens, err := Lex(`where age >= 21 and city = "NY" or not status is not null`)
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{
		TokenWhere, TokenIdent, TokenGte, TokenInt, TokenAnd, TokenIdent, TokenEq, TokenString,
		TokenOr, TokenNot, TokenIdent, TokenIs, TokenNot, TokenNull, TokenEOF,
	})
	if tokens[7].Val != "NY" {
		t.Errorf("string token value: expected 'NY', got %q", tokens[7].Val)
	}
}

func TestLexOperators(t *testing.T) {
	tokens, err := Lex(`= == != <> < <= > >=`)
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{
		TokenEq, TokenEq, TokenNeq, TokenNeq, TokenLt, TokenLte, TokenGt, TokenGte, TokenEOF,
	})
}

func TestLexQuotedFrom(t *testing.T) {
	tokens, err := Lex(`SELECT a FROM "my docs/file.xml"`)
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{TokenSelect, TokenIdent, TokenFrom, TokenString, TokenEOF})
	if tokens[3].Val != "my docs/file.xml" {
		t.Errorf("expected 'my docs/file.xml', got %q", tokens[3].Val)
	}
}

func TestLexSingleQuotes(t *testing.T) {
	tokens, err := Lex(`'it\'s'`)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Type != TokenString || tokens[0].Val != "it's" {
		t.Errorf("expected string \"it's\", got %s", tokens[0])
	}
}

func TestLexBacktick(t *testing.T) {
	tokens, err := Lex("`first name`")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Type != TokenBacktickIdent {
		t.Errorf("expected backtick ident, got %s", tokens[0].Type)
	}
	if tokens[0].Val != "first name" {
		t.Errorf("expected 'first name', got %q", tokens[0].Val)
	}
}

func TestLexNumbers(t *testing.T) {
	tokens, err := Lex("3.14 42 -7 -2.5")
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{TokenFloat, TokenInt, TokenInt, TokenFloat, TokenEOF})
	if tokens[2].Val != "-7" {
		t.Errorf("expected '-7', got %q", tokens[2].Val)
	}
}

func TestLexXMLNames(t *testing.T) {
	tokens, err := Lex("first-name ns:item _id")
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{TokenIdent, TokenIdent, TokenIdent, TokenEOF})
	if tokens[0].Val != "first-name" || tokens[1].Val != "ns:item" {
		t.Errorf("unexpected names: %v", tokens)
	}
}

func TestLexKeywordsCaseInsensitive(t *testing.T) {
	tokens, err := Lex("Select FROM x Where")
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{TokenSelect, TokenFrom, TokenPath, TokenWhere, TokenEOF})
	if !TokenWhere.IsKeyword() || TokenIdent.IsKeyword() {
		t.Error("IsKeyword misclassifies tokens")
	}
}

func TestLexComment(t *testing.T) {
	tokens, err := Lex("SELECT a -- trailing comment\nFROM b")
	if err != nil {
		t.Fatal(err)
	}
	assertTypes(t, tokens, []TokenType{TokenSelect, TokenIdent, TokenFrom, TokenPath, TokenEOF})
}

func TestLexErrors(t *testing.T) {
	for _, input := range []string{`"unterminated`, "`open", "a ! b", "a # b", "a - b"} {
		if _, err := Lex(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
