// ast.go — typed, read-only AST view over the parse tree (spec §4.B).
//
// Each wrapper is a thin, validating facade over a *Node: constructing one
// from a node of the wrong Kind panics with InternalInvariantError, the way
// the teacher's own typed accessors (e.g. FunMeta) assume a well-formed
// S-expression shape and fail loudly rather than silently misinterpreting
// malformed input.
package minilua

// Program is the root of a parsed source.
type Program struct{ node *Node }

// NewProgram wraps a "program" node.
func NewProgram(n *Node) Program {
	requireKind(n, "program")
	return Program{node: n}
}

// Body returns the top-level statements.
func (p Program) Body() []Statement { return statementsOf(p.node.Children) }

// Range returns the node's source range.
func (p Program) Range() Range { return p.node.Range }

func requireKind(n *Node, kind string) {
	if n == nil || n.Kind != kind {
		got := "<nil>"
		if n != nil {
			got = n.Kind
		}
		panic(&InternalInvariantError{Msg: "expected " + kind + " node, got " + got})
	}
}

// StatementKind tags the variant a Statement wraps.
type StatementKind int

const (
	StmtVarDecl StatementKind = iota
	StmtLocalVarDecl
	StmtDoBlock
	StmtIf
	StmtWhile
	StmtRepeat
	StmtForRange
	StmtForIn
	StmtGoTo
	StmtBreak
	StmtLabel
	StmtFunctionDecl
	StmtFunctionCall
	StmtReturn
	StmtExpression
)

// Statement is a tagged variant over every statement production.
type Statement struct {
	node *Node
	kind StatementKind
}

func statementsOf(nodes []*Node) []Statement {
	out := make([]Statement, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, statementOf(n))
	}
	return out
}

func statementOf(n *Node) Statement {
	switch n.Kind {
	case "variable_declaration":
		return Statement{n, StmtVarDecl}
	case "local_variable_declaration":
		return Statement{n, StmtLocalVarDecl}
	case "do_statement":
		return Statement{n, StmtDoBlock}
	case "if_statement":
		return Statement{n, StmtIf}
	case "while_statement":
		return Statement{n, StmtWhile}
	case "repeat_statement":
		return Statement{n, StmtRepeat}
	case "for_numeric_statement":
		return Statement{n, StmtForRange}
	case "for_in_statement":
		return Statement{n, StmtForIn}
	case "goto_statement":
		return Statement{n, StmtGoTo}
	case "break_statement":
		return Statement{n, StmtBreak}
	case "label_statement":
		return Statement{n, StmtLabel}
	case "function_declaration":
		return Statement{n, StmtFunctionDecl}
	case "function_call_statement":
		return Statement{n, StmtFunctionCall}
	case "return_statement":
		return Statement{n, StmtReturn}
	default:
		return Statement{n, StmtExpression}
	}
}

// Kind reports which variant this Statement wraps.
func (s Statement) Kind() StatementKind { return s.kind }

// Range returns the statement's source range.
func (s Statement) Range() Range { return s.node.Range }

// AsVarDecl narrows to VarDecl; ok is false if Kind() is not a decl variant.
func (s Statement) AsVarDecl() (VarDecl, bool) {
	if s.kind != StmtVarDecl && s.kind != StmtLocalVarDecl {
		return VarDecl{}, false
	}
	return VarDecl{node: s.node, local: s.kind == StmtLocalVarDecl}, true
}

// AsIf narrows to IfStatement.
func (s Statement) AsIf() (IfStatement, bool) {
	if s.kind != StmtIf {
		return IfStatement{}, false
	}
	return IfStatement{node: s.node}, true
}

// AsWhile narrows to WhileStatement.
func (s Statement) AsWhile() (WhileStatement, bool) {
	if s.kind != StmtWhile {
		return WhileStatement{}, false
	}
	return WhileStatement{node: s.node}, true
}

// AsRepeat narrows to RepeatStatement.
func (s Statement) AsRepeat() (RepeatStatement, bool) {
	if s.kind != StmtRepeat {
		return RepeatStatement{}, false
	}
	return RepeatStatement{node: s.node}, true
}

// AsForRange narrows to ForRange.
func (s Statement) AsForRange() (ForRange, bool) {
	if s.kind != StmtForRange {
		return ForRange{}, false
	}
	return ForRange{node: s.node}, true
}

// AsForIn narrows to ForIn.
func (s Statement) AsForIn() (ForIn, bool) {
	if s.kind != StmtForIn {
		return ForIn{}, false
	}
	return ForIn{node: s.node}, true
}

// AsDoBlock narrows to DoBlock.
func (s Statement) AsDoBlock() (DoBlock, bool) {
	if s.kind != StmtDoBlock {
		return DoBlock{}, false
	}
	return DoBlock{node: s.node}, true
}

// AsFunctionDecl narrows to FunctionDeclStatement.
func (s Statement) AsFunctionDecl() (FunctionDeclStatement, bool) {
	if s.kind != StmtFunctionDecl {
		return FunctionDeclStatement{}, false
	}
	return FunctionDeclStatement{node: s.node}, true
}

// AsFunctionCall narrows to FunctionCall (statement position).
func (s Statement) AsFunctionCall() (FunctionCall, bool) {
	if s.kind != StmtFunctionCall {
		return FunctionCall{}, false
	}
	return FunctionCall{node: s.node.Children[0]}, true
}

// AsReturn narrows to the returned expression list, which the evaluator
// (spec §4.F) executes for StmtReturn statements.
func (s Statement) AsReturn() ([]Expression, bool) {
	if s.kind != StmtReturn {
		return nil, false
	}
	list := s.node.Field("exps")
	out := make([]Expression, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, ExpressionOf(c))
	}
	return out, true
}

// AsGoTo narrows to a goto's label name.
func (s Statement) AsGoTo() (string, bool) {
	if s.kind != StmtGoTo {
		return "", false
	}
	return s.node.Field("label").Text, true
}

// AsExpression narrows to an Expression statement (a bare expression used
// as a statement, outside this grammar's normal call-statement form).
func (s Statement) AsExpression() (Expression, bool) {
	if s.kind != StmtExpression {
		return Expression{}, false
	}
	return ExpressionOf(s.node), true
}

// VarDecl covers both 'local a,b = ...' and plain 'a,b = ...'.
type VarDecl struct {
	node  *Node
	local bool
}

// Local reports whether this is a 'local' declaration.
func (v VarDecl) Local() bool { return v.local }

// Names returns the left-hand-side targets.
func (v VarDecl) Names() []string {
	list := v.node.Field("names")
	out := make([]string, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, c.Text)
	}
	return out
}

// NameNodes returns the raw target nodes (identifiers, or index
// expressions for plain assignment to a table field).
func (v VarDecl) NameNodes() []*Node { return v.node.Field("names").Children }

// Exps returns the right-hand-side expressions.
func (v VarDecl) Exps() []Expression {
	list := v.node.Field("exps")
	out := make([]Expression, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, ExpressionOf(c))
	}
	return out
}

// DoBlock is a bare 'do ... end' block.
type DoBlock struct{ node *Node }

// Body returns the block's statements.
func (d DoBlock) Body() []Statement { return statementsOf(d.node.Children) }

// IfStatement is an if/elseif*/else chain.
type IfStatement struct{ node *Node }

// Condition returns the 'if' condition expression.
func (s IfStatement) Condition() Expression { return ExpressionOf(s.node.Field("condition")) }

// Body returns the 'then' block.
func (s IfStatement) Body() []Statement { return statementsOf(s.node.Field("body").Children) }

// Elseifs returns the elseif clauses in source order.
func (s IfStatement) Elseifs() []ElseifClause {
	out := make([]ElseifClause, 0, len(s.node.Children))
	for _, c := range s.node.Children {
		out = append(out, ElseifClause{node: c})
	}
	return out
}

// ElseBranch returns the else block and whether one is present.
func (s IfStatement) ElseBranch() ([]Statement, bool) {
	eb := s.node.Field("else")
	if eb == nil {
		return nil, false
	}
	return statementsOf(eb.Children), true
}

// ElseifClause is one 'elseif cond then body' clause.
type ElseifClause struct{ node *Node }

// Condition returns the clause's condition.
func (e ElseifClause) Condition() Expression { return ExpressionOf(e.node.Field("condition")) }

// Body returns the clause's statements.
func (e ElseifClause) Body() []Statement { return statementsOf(e.node.Field("body").Children) }

// WhileStatement is a 'while cond do body end' loop.
type WhileStatement struct{ node *Node }

func (s WhileStatement) Condition() Expression { return ExpressionOf(s.node.Field("condition")) }
func (s WhileStatement) Body() []Statement     { return statementsOf(s.node.Field("body").Children) }

// RepeatStatement is a 'repeat body until cond' loop.
type RepeatStatement struct{ node *Node }

func (s RepeatStatement) Body() []Statement     { return statementsOf(s.node.Field("body").Children) }
func (s RepeatStatement) Condition() Expression { return ExpressionOf(s.node.Field("condition")) }

// ForRange is a numeric 'for v=start,end[,step] do body end' loop.
type ForRange struct{ node *Node }

func (s ForRange) Var() string       { return s.node.Field("var").Text }
func (s ForRange) Start() Expression { return ExpressionOf(s.node.Field("start")) }
func (s ForRange) End() Expression   { return ExpressionOf(s.node.Field("end")) }
func (s ForRange) Step() (Expression, bool) {
	st := s.node.Field("step")
	if st == nil {
		return Expression{}, false
	}
	return ExpressionOf(st), true
}
func (s ForRange) Body() []Statement { return statementsOf(s.node.Field("body").Children) }

// ForIn is a 'for vars in exps do body end' loop.
type ForIn struct{ node *Node }

func (s ForIn) Vars() []string {
	list := s.node.Field("vars")
	out := make([]string, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, c.Text)
	}
	return out
}
func (s ForIn) Exps() []Expression {
	list := s.node.Field("exps")
	out := make([]Expression, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, ExpressionOf(c))
	}
	return out
}
func (s ForIn) Body() []Statement { return statementsOf(s.node.Field("body").Children) }

// FunctionDeclStatement is a named 'function name(...) body end'.
type FunctionDeclStatement struct{ node *Node }

func (s FunctionDeclStatement) Name() string { return s.node.Field("name").Text }

// Local reports whether this was declared 'local function name(...)',
// which binds the name in the enclosing block rather than globally.
func (s FunctionDeclStatement) Local() bool { return s.node.Field("local") != nil }
func (s FunctionDeclStatement) Params() []string {
	list := s.node.Field("params")
	out := make([]string, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, c.Text)
	}
	return out
}
func (s FunctionDeclStatement) Variadic() bool { return s.node.Text == "variadic" }
func (s FunctionDeclStatement) Body() []Statement {
	return statementsOf(s.node.Field("body").Children)
}

// ---- Expressions ----

// ExpressionKind tags the variant an Expression wraps.
type ExpressionKind int

const (
	ExprSpread ExpressionKind = iota
	ExprPrefix
	ExprFunctionDefinition
	ExprTable
	ExprBinaryOp
	ExprUnaryOp
	ExprLiteral
	ExprIdentifier
)

// Expression is a tagged variant over every expression production.
type Expression struct {
	node *Node
	kind ExpressionKind
}

// ExpressionOf builds the tagged Expression wrapper for a raw node.
func ExpressionOf(n *Node) Expression {
	switch n.Kind {
	case "spread":
		return Expression{n, ExprSpread}
	case "function_definition":
		return Expression{n, ExprFunctionDefinition}
	case "table":
		return Expression{n, ExprTable}
	case "binary_operation":
		return Expression{n, ExprBinaryOp}
	case "unary_operation":
		return Expression{n, ExprUnaryOp}
	case "number", "string", "true", "false", "nil":
		return Expression{n, ExprLiteral}
	case "identifier":
		return Expression{n, ExprIdentifier}
	default:
		// function_call, index_expression, paren_expression
		return Expression{n, ExprPrefix}
	}
}

// Kind reports which variant this Expression wraps.
func (e Expression) Kind() ExpressionKind { return e.kind }

// Range returns the expression's source range.
func (e Expression) Range() Range { return e.node.Range }

// Node exposes the underlying parse node (used by the evaluator and by
// force() to look up origins).
func (e Expression) Node() *Node { return e.node }

// AsPrefix narrows to Prefix.
func (e Expression) AsPrefix() (Prefix, bool) {
	if e.kind != ExprPrefix {
		return Prefix{}, false
	}
	return PrefixOf(e.node), true
}

// AsBinaryOp narrows to BinaryOp.
func (e Expression) AsBinaryOp() (BinaryOp, bool) {
	if e.kind != ExprBinaryOp {
		return BinaryOp{}, false
	}
	return BinaryOp{node: e.node}, true
}

// AsUnaryOp narrows to UnaryOp.
func (e Expression) AsUnaryOp() (UnaryOp, bool) {
	if e.kind != ExprUnaryOp {
		return UnaryOp{}, false
	}
	return UnaryOp{node: e.node}, true
}

// AsLiteral narrows to Literal.
func (e Expression) AsLiteral() (Literal, bool) {
	if e.kind != ExprLiteral {
		return Literal{}, false
	}
	return Literal{node: e.node}, true
}

// AsIdentifier narrows to the identifier name.
func (e Expression) AsIdentifier() (string, bool) {
	if e.kind != ExprIdentifier {
		return "", false
	}
	return e.node.Text, true
}

// AsTable narrows to Table.
func (e Expression) AsTable() (TableExpr, bool) {
	if e.kind != ExprTable {
		return TableExpr{}, false
	}
	return TableExpr{node: e.node}, true
}

// AsFunctionDefinition narrows to FunctionDefinition.
func (e Expression) AsFunctionDefinition() (FunctionDefinition, bool) {
	if e.kind != ExprFunctionDefinition {
		return FunctionDefinition{}, false
	}
	return FunctionDefinition{node: e.node}, true
}

// BinaryOp is a binary operator expression.
type BinaryOp struct{ node *Node }

func (b BinaryOp) Op() string    { return b.node.Text }
func (b BinaryOp) Lhs() Expression { return ExpressionOf(b.node.Field("lhs")) }
func (b BinaryOp) Rhs() Expression { return ExpressionOf(b.node.Field("rhs")) }

// UnaryOp is a unary operator expression.
type UnaryOp struct{ node *Node }

func (u UnaryOp) Op() string         { return u.node.Text }
func (u UnaryOp) Operand() Expression { return ExpressionOf(u.node.Field("operand")) }

// LiteralKind distinguishes the flavor of a Literal.
type LiteralKind int

const (
	LiteralNil LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralString
)

// Literal is a nil/bool/number/string literal.
type Literal struct{ node *Node }

// Kind reports the literal's flavor.
func (l Literal) Kind() LiteralKind {
	switch l.node.Kind {
	case "nil":
		return LiteralNil
	case "true", "false":
		return LiteralBool
	case "number":
		return LiteralNumber
	default:
		return LiteralString
	}
}

// Text returns the literal's raw lexeme (decoded, for strings).
func (l Literal) Text() string { return l.node.Text }

// Range returns the literal's source range (used as its value's Origin).
func (l Literal) Range() Range { return l.node.Range }

// TableExpr is a table constructor '{ ... }'.
type TableExpr struct{ node *Node }

// Fields returns the constructor's fields in source order.
func (t TableExpr) Fields() []TableField {
	out := make([]TableField, 0, len(t.node.Children))
	for _, c := range t.node.Children {
		out = append(out, TableField{node: c})
	}
	return out
}

// TableField is one entry of a table constructor, with an optional key
// (absent for array-style entries, which are assigned consecutive integer
// indices starting at 1).
type TableField struct{ node *Node }

func (f TableField) Key() (Expression, bool) {
	k := f.node.Field("key")
	if k == nil {
		return Expression{}, false
	}
	return ExpressionOf(k), true
}
func (f TableField) Value() Expression { return ExpressionOf(f.node.Field("value")) }

// FunctionDefinition is an anonymous 'function(...) body end' expression.
type FunctionDefinition struct{ node *Node }

func (f FunctionDefinition) Params() []string {
	list := f.node.Field("params")
	out := make([]string, 0, list.NamedChildCount())
	for _, c := range list.Children {
		out = append(out, c.Text)
	}
	return out
}
func (f FunctionDefinition) Variadic() bool { return f.node.Text == "variadic" }
func (f FunctionDefinition) Body() []Statement {
	return statementsOf(f.node.Field("body").Children)
}

// ---- Prefix ----

// PrefixKind tags the variant a Prefix wraps.
type PrefixKind int

const (
	PrefixSelf PrefixKind = iota
	PrefixGlobalVar
	PrefixFunctionCall
	PrefixParenthesised
	PrefixIndex
)

// Prefix is the syntactic class denoting the head of an access chain: an
// identifier, a call, an index, or a parenthesised expression.
type Prefix struct {
	node *Node
	kind PrefixKind
}

// PrefixOf builds the tagged Prefix wrapper for a raw node.
func PrefixOf(n *Node) Prefix {
	switch n.Kind {
	case "identifier":
		if n.Text == "self" {
			return Prefix{n, PrefixSelf}
		}
		return Prefix{n, PrefixGlobalVar}
	case "function_call":
		return Prefix{n, PrefixFunctionCall}
	case "paren_expression":
		return Prefix{n, PrefixParenthesised}
	case "index_expression":
		return Prefix{n, PrefixIndex}
	default:
		panic(&InternalInvariantError{Msg: "node is not a valid prefix: " + n.Kind})
	}
}

// Kind reports which variant this Prefix wraps.
func (p Prefix) Kind() PrefixKind { return p.kind }

// Range returns the prefix's source range.
func (p Prefix) Range() Range { return p.node.Range }

// Name returns the identifier name for Self/GlobalVar prefixes.
func (p Prefix) Name() string { return p.node.Text }

// AsFunctionCall narrows to FunctionCall.
func (p Prefix) AsFunctionCall() (FunctionCall, bool) {
	if p.kind != PrefixFunctionCall {
		return FunctionCall{}, false
	}
	return FunctionCall{node: p.node}, true
}

// AsParenthesised narrows to the parenthesised inner Expression.
func (p Prefix) AsParenthesised() (Expression, bool) {
	if p.kind != PrefixParenthesised {
		return Expression{}, false
	}
	return ExpressionOf(p.node.Field("inner")), true
}

// AsIndex narrows to IndexExpr.
func (p Prefix) AsIndex() (IndexExpr, bool) {
	if p.kind != PrefixIndex {
		return IndexExpr{}, false
	}
	return IndexExpr{node: p.node}, true
}

// IndexExpr is 'callee.index' or 'callee[index]'.
type IndexExpr struct{ node *Node }

func (i IndexExpr) Callee() Prefix     { return PrefixOf(i.node.Field("callee")) }
func (i IndexExpr) Index() Expression  { return ExpressionOf(i.node.Field("index")) }

// FunctionCall is 'callee(args...)' or 'callee:method(args...)'.
type FunctionCall struct{ node *Node }

// Callee returns the call target.
func (f FunctionCall) Callee() Prefix { return PrefixOf(f.node.Field("callee")) }

// Method returns the method name for a ':' call, and whether one is
// present.
func (f FunctionCall) Method() (string, bool) {
	m := f.node.Field("method")
	if m == nil {
		return "", false
	}
	return m.Text, true
}

// Args returns the call's argument expressions.
func (f FunctionCall) Args() []Expression {
	out := make([]Expression, 0, len(f.node.Children))
	for _, c := range f.node.Children {
		out = append(out, ExpressionOf(c))
	}
	return out
}

// Range returns the call's source range.
func (f FunctionCall) Range() Range { return f.node.Range }
