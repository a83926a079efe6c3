package minilua

import "testing"

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	out := make([]TokenType, len(toks))
	for i, tk := range toks {
		out[i] = tk.Type
	}
	return out
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	cases := []struct {
		src  string
		want []TokenType
	}{
		{"1 + 2", []TokenType{NUMBER, PLUS, NUMBER, EOF}},
		{"a..b", []TokenType{IDENT, CONCAT, IDENT, EOF}},
		{"...", []TokenType{ELLIPSIS, EOF}},
		{"a ... b", []TokenType{IDENT, ELLIPSIS, IDENT, EOF}},
		{"a.b", []TokenType{IDENT, DOT, IDENT, EOF}},
		{"x == y ~= z", []TokenType{IDENT, EQ, IDENT, NEQ, IDENT, EOF}},
		{"x <= y >= z < w > v", []TokenType{IDENT, LE, IDENT, GE, IDENT, LT, IDENT, GT, IDENT, EOF}},
		{"{}[]()", []TokenType{LBRACE, RBRACE, LBRACKET, RBRACKET, LPAREN, RPAREN, EOF}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got := tokenTypes(t, c.src)
			if len(got) != len(c.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", c.src, got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("Tokenize(%q)[%d] = %v, want %v", c.src, i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestLexerComments(t *testing.T) {
	got := tokenTypes(t, "1 -- trailing comment\n+ 2")
	want := []TokenType{NUMBER, PLUS, NUMBER, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\tc\\d\"e"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != STRING {
		t.Fatalf("got type %v, want STRING", toks[0].Type)
	}
	want := "a\nb\tc\\d\"e"
	if toks[0].Lexeme != want {
		t.Errorf("Lexeme = %q, want %q", toks[0].Lexeme, want)
	}
}

func TestLexerUnterminatedStringErrors(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if _, ok := err.(*LexError); !ok {
		t.Errorf("got %T, want *LexError", err)
	}
}

func TestLexerNumberForms(t *testing.T) {
	cases := []string{"123", "3.14", "0.5", "1e10", "1e+10", "1e-10", "2E5"}
	for _, src := range cases {
		toks, err := Tokenize(src)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", src, err)
		}
		if toks[0].Type != NUMBER || toks[0].Lexeme != src {
			t.Errorf("Tokenize(%q) = %+v, want a single NUMBER token with that lexeme", src, toks[0])
		}
	}
}

func TestLexerRejectsStrayCharacter(t *testing.T) {
	_, err := Tokenize("1 @ 2")
	if err == nil {
		t.Fatal("expected a lex error for '@'")
	}
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	toks, err := Tokenize("a\nb")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Range.Start.Row != 0 {
		t.Errorf("first token row = %d, want 0", toks[0].Range.Start.Row)
	}
	if toks[1].Range.Start.Row != 1 {
		t.Errorf("second token row = %d, want 1", toks[1].Range.Start.Row)
	}
	if toks[1].Range.Start.Column != 0 {
		t.Errorf("second token column = %d, want 0", toks[1].Range.Start.Column)
	}
}
