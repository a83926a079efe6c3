package minilua

import "testing"

func TestRequireKindPanicsOnMismatch(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for a mismatched node kind")
		}
		if _, ok := r.(*InternalInvariantError); !ok {
			t.Errorf("recovered %T, want *InternalInvariantError", r)
		}
	}()
	NewProgram(&Node{Kind: "not_a_program"})
}

func TestPrefixOfPanicsOnInvalidKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an invalid prefix node")
		}
	}()
	PrefixOf(&Node{Kind: "number"})
}

func TestStatementOfDefaultsToExpression(t *testing.T) {
	n := &Node{Kind: "number", Text: "1"}
	s := statementOf(n)
	if s.Kind() != StmtExpression {
		t.Errorf("Kind() = %v, want StmtExpression", s.Kind())
	}
	e, ok := s.AsExpression()
	if !ok {
		t.Fatal("AsExpression() should succeed for StmtExpression")
	}
	lit, ok := e.AsLiteral()
	if !ok || lit.Kind() != LiteralNumber {
		t.Errorf("expected a number literal, got %+v", e)
	}
}

func TestExpressionOfLiteralKinds(t *testing.T) {
	cases := []struct {
		kind string
		want LiteralKind
	}{
		{"nil", LiteralNil},
		{"true", LiteralBool},
		{"false", LiteralBool},
		{"number", LiteralNumber},
		{"string", LiteralString},
	}
	for _, c := range cases {
		e := ExpressionOf(&Node{Kind: c.kind})
		lit, ok := e.AsLiteral()
		if !ok {
			t.Fatalf("ExpressionOf(%q) did not produce a Literal", c.kind)
		}
		if lit.Kind() != c.want {
			t.Errorf("Kind(%q) = %v, want %v", c.kind, lit.Kind(), c.want)
		}
	}
}

func TestNarrowingAccessorsRejectWrongVariant(t *testing.T) {
	ifNode := &Node{Kind: "if_statement",
		Fields: map[string]*Node{"condition": {Kind: "true"}, "body": {Kind: "block"}}}
	s := statementOf(ifNode)

	if _, ok := s.AsWhile(); ok {
		t.Error("AsWhile() should fail for an if-statement")
	}
	if _, ok := s.AsVarDecl(); ok {
		t.Error("AsVarDecl() should fail for an if-statement")
	}
	ifs, ok := s.AsIf()
	if !ok {
		t.Fatal("AsIf() should succeed for an if-statement")
	}
	if _, has := ifs.ElseBranch(); has {
		t.Error("ElseBranch() should report false when no 'else' field is set")
	}
}
