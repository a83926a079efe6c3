// evaluator.go — the recursive tree-walking evaluator (spec §4.F), the
// largest single component of this system. It dispatches on the typed AST
// view from ast.go, threading three things through every call: the current
// Value, a did_break/did_return signal pair used to unwind loops and
// function bodies without exceptions, and the accumulated SourceChange that
// would make the evaluated program produce a different outcome.
//
// Grounded on the teacher's interpreter_exec.go (Interpreter.Eval's switch
// over MindScript's node Kind, the same "one case per AST production"
// shape), narrowed to this spec's thirteen-odd statement/expression
// productions and carrying source_change combination the teacher has no
// equivalent of.
package minilua

import (
	"fmt"
	"strconv"
)

// parseNumberLiteral converts a lexed number token's text to a float64; the
// lexer only ever produces decimal (optionally fractional/exponent) digit
// runs, so strconv.ParseFloat always applies.
func parseNumberLiteral(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

// evalResult is the evaluator's internal per-node result (spec §4.F):
// value, a break signal, an optional return payload, and the change that
// would need to be applied to source to produce a different outcome.
type evalResult struct {
	value        Value
	didBreak     bool
	didReturn    Vallist // non-nil (possibly empty) once a return has fired
	sourceChange *SourceChange
}

func plain(v Value, c *SourceChange) evalResult { return evalResult{value: v, sourceChange: c} }

// evaluator walks the AST under a tracing configuration shared by every
// recursive call; it carries no per-call-site state of its own.
type evaluator struct {
	cfg   InterpreterConfig
	depth int
}

func (ev *evaluator) trace(format string, args ...interface{}) {
	if ev.cfg.TraceSink == nil {
		return
	}
	indent := ""
	for i := 0; i < ev.depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(ev.cfg.TraceSink, "%s%s\n", indent, fmt.Sprintf(format, args...))
}

// ---- program / block ----

func (ev *evaluator) evalProgram(p Program, env *Environment) (evalResult, error) {
	return ev.evalBlock(p.Body(), env)
}

// evalBlock runs statements sequentially, short-circuiting on the first
// break or return and combining every executed statement's source_change.
func (ev *evaluator) evalBlock(stmts []Statement, env *Environment) (evalResult, error) {
	res := evalResult{value: Nil}
	for _, s := range stmts {
		r, err := ev.evalStatement(s, env)
		if err != nil {
			return evalResult{}, err
		}
		res.sourceChange = Combine(res.sourceChange, r.sourceChange)
		res.value = r.value
		if r.didBreak {
			res.didBreak = true
			return res, nil
		}
		if r.didReturn != nil {
			res.didReturn = r.didReturn
			return res, nil
		}
	}
	return res, nil
}

func (ev *evaluator) evalStatement(s Statement, env *Environment) (evalResult, error) {
	if ev.cfg.TraceNodes {
		ev.trace("stmt %v @%d:%d", s.Kind(), s.Range().Start.Row+1, s.Range().Start.Column+1)
	}
	switch s.Kind() {
	case StmtVarDecl, StmtLocalVarDecl:
		vd, _ := s.AsVarDecl()
		return ev.evalVarDecl(vd, env)
	case StmtDoBlock:
		db, _ := s.AsDoBlock()
		child := env.EnterBlock()
		if ev.cfg.TraceEnterBlock {
			ev.trace("enter do block")
		}
		return ev.evalBlock(db.Body(), child)
	case StmtIf:
		ifs, _ := s.AsIf()
		return ev.evalIf(ifs, env)
	case StmtWhile:
		ws, _ := s.AsWhile()
		return ev.evalWhile(ws, env)
	case StmtRepeat:
		rs, _ := s.AsRepeat()
		return ev.evalRepeat(rs, env)
	case StmtForRange:
		fr, _ := s.AsForRange()
		return ev.evalForRange(fr, env)
	case StmtForIn:
		fi, _ := s.AsForIn()
		return ev.evalForIn(fi, env)
	case StmtFunctionDecl:
		fd, _ := s.AsFunctionDecl()
		return ev.evalFunctionDecl(fd, env)
	case StmtFunctionCall:
		fc, _ := s.AsFunctionCall()
		vals, change, err := ev.evalFunctionCall(fc, env)
		if err != nil {
			return evalResult{}, err
		}
		return plain(vals.Get(0), change), nil
	case StmtReturn:
		exps, _ := s.AsReturn()
		vals, change, err := ev.evalExprList(exps, env)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: vals.Get(0), didReturn: vals, sourceChange: change}, nil
	case StmtBreak:
		return evalResult{didBreak: true}, nil
	case StmtGoTo, StmtLabel:
		// Labels and arbitrary jumps are parsed (ast.go exposes AsGoTo) but
		// this evaluator, like the teacher's, never models non-local control
		// transfer beyond break/return; a reachable goto is a misuse, not a
		// silent no-op.
		return evalResult{}, &InternalInvariantError{Msg: "goto/label control transfer is not supported", Range: s.Range()}
	case StmtExpression:
		e, _ := s.AsExpression()
		v, change, err := ev.evalExpression(e, env)
		if err != nil {
			return evalResult{}, err
		}
		return plain(v, change), nil
	default:
		return evalResult{}, &InternalInvariantError{Msg: "unhandled statement kind", Range: s.Range()}
	}
}

func (ev *evaluator) evalVarDecl(vd VarDecl, env *Environment) (evalResult, error) {
	vals, change, err := ev.evalExprList(vd.Exps(), env)
	if err != nil {
		return evalResult{}, err
	}
	names := vd.NameNodes()
	for i, nameNode := range names {
		if err := ev.assign(nameNode, vals.Get(i), env, vd.Local()); err != nil {
			return evalResult{}, err
		}
	}
	return evalResult{value: Nil, sourceChange: change}, nil
}

func (ev *evaluator) assign(target *Node, v Value, env *Environment, local bool) error {
	switch target.Kind {
	case "identifier":
		if local {
			env.SetLocal(target.Text, v)
		} else {
			env.Set(target.Text, v)
		}
		return nil
	case "index_expression":
		idx := IndexExpr{node: target}
		calleeVal, _, err := ev.evalPrefix(idx.Callee(), env)
		if err != nil {
			return err
		}
		if calleeVal.Kind != KindTable {
			return &TypeError{Op: "index assignment", LhsType: calleeVal.TypeName(), Range: target.Range}
		}
		keyVal, _, err := ev.evalExpression(idx.Index(), env)
		if err != nil {
			return err
		}
		calleeVal.AsTable().Set(keyVal, v)
		return nil
	default:
		return &InternalInvariantError{Msg: "invalid assignment target: " + target.Kind, Range: target.Range}
	}
}

func (ev *evaluator) evalIf(ifs IfStatement, env *Environment) (evalResult, error) {
	var total *SourceChange

	cond, c, err := ev.evalExpression(ifs.Condition(), env)
	if err != nil {
		return evalResult{}, err
	}
	total = Combine(total, c)
	if cond.Truthy() {
		child := env.EnterBlock()
		r, err := ev.evalBlock(ifs.Body(), child)
		if err != nil {
			return evalResult{}, err
		}
		r.sourceChange = Combine(total, r.sourceChange)
		return r, nil
	}

	for _, clause := range ifs.Elseifs() {
		ccond, cc, err := ev.evalExpression(clause.Condition(), env)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, cc)
		if ccond.Truthy() {
			child := env.EnterBlock()
			r, err := ev.evalBlock(clause.Body(), child)
			if err != nil {
				return evalResult{}, err
			}
			r.sourceChange = Combine(total, r.sourceChange)
			return r, nil
		}
	}

	if elseBody, ok := ifs.ElseBranch(); ok {
		child := env.EnterBlock()
		r, err := ev.evalBlock(elseBody, child)
		if err != nil {
			return evalResult{}, err
		}
		r.sourceChange = Combine(total, r.sourceChange)
		return r, nil
	}
	return evalResult{value: Nil, sourceChange: total}, nil
}

func (ev *evaluator) evalWhile(ws WhileStatement, env *Environment) (evalResult, error) {
	var total *SourceChange
	for {
		cond, c, err := ev.evalExpression(ws.Condition(), env)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, c)
		if !cond.Truthy() {
			break
		}
		child := env.EnterBlock()
		r, err := ev.evalBlock(ws.Body(), child)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, r.sourceChange)
		if r.didReturn != nil {
			return evalResult{value: r.value, didReturn: r.didReturn, sourceChange: total}, nil
		}
		if r.didBreak {
			break
		}
	}
	return evalResult{value: Nil, sourceChange: total}, nil
}

func (ev *evaluator) evalRepeat(rs RepeatStatement, env *Environment) (evalResult, error) {
	var total *SourceChange
	for {
		child := env.EnterBlock()
		r, err := ev.evalBlock(rs.Body(), child)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, r.sourceChange)
		if r.didReturn != nil {
			return evalResult{value: r.value, didReturn: r.didReturn, sourceChange: total}, nil
		}
		if r.didBreak {
			break
		}
		// the condition sees the body's block frame (spec §4.F: repeat's
		// until-condition can reference locals declared in the body).
		cond, c, err := ev.evalExpression(rs.Condition(), child)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, c)
		if cond.Truthy() {
			break
		}
	}
	return evalResult{value: Nil, sourceChange: total}, nil
}

func (ev *evaluator) evalForRange(fr ForRange, env *Environment) (evalResult, error) {
	startV, c1, err := ev.evalExpression(fr.Start(), env)
	if err != nil {
		return evalResult{}, err
	}
	endV, c2, err := ev.evalExpression(fr.End(), env)
	if err != nil {
		return evalResult{}, err
	}
	stepV := Number(1)
	var c3 *SourceChange
	if stepExpr, ok := fr.Step(); ok {
		stepV, c3, err = ev.evalExpression(stepExpr, env)
		if err != nil {
			return evalResult{}, err
		}
	}
	total := Combine(Combine(c1, c2), c3)

	start, ok := numberOf(startV)
	if !ok {
		return evalResult{}, &TypeError{Op: "for range start", LhsType: startV.TypeName(), Range: fr.Start().Range()}
	}
	end, ok := numberOf(endV)
	if !ok {
		return evalResult{}, &TypeError{Op: "for range end", LhsType: endV.TypeName(), Range: fr.End().Range()}
	}
	step, ok := numberOf(stepV)
	if !ok || step == 0 {
		return evalResult{}, &TypeError{Op: "for range step", LhsType: stepV.TypeName(), Range: fr.Start().Range()}
	}

	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		child := env.EnterBlock()
		child.SetLocal(fr.Var(), Number(i))
		r, err := ev.evalBlock(fr.Body(), child)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, r.sourceChange)
		if r.didReturn != nil {
			return evalResult{value: r.value, didReturn: r.didReturn, sourceChange: total}, nil
		}
		if r.didBreak {
			break
		}
	}
	return evalResult{value: Nil, sourceChange: total}, nil
}

func (ev *evaluator) evalForIn(fi ForIn, env *Environment) (evalResult, error) {
	vals, total, err := ev.evalExprList(fi.Exps(), env)
	if err != nil {
		return evalResult{}, err
	}
	iterFn := vals.Get(0)
	state := vals.Get(1)
	key := vals.Get(2)
	names := fi.Vars()

	for {
		results, c, err := ev.callValue(iterFn, Vallist{state, key}, fi.Exps()[0].Range(), env)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, c)
		if len(results) == 0 || results.Get(0).Kind == KindNil {
			break
		}
		key = results.Get(0)
		child := env.EnterBlock()
		for i, name := range names {
			child.SetLocal(name, results.Get(i))
		}
		r, err := ev.evalBlock(fi.Body(), child)
		if err != nil {
			return evalResult{}, err
		}
		total = Combine(total, r.sourceChange)
		if r.didReturn != nil {
			return evalResult{value: r.value, didReturn: r.didReturn, sourceChange: total}, nil
		}
		if r.didBreak {
			break
		}
	}
	return evalResult{value: Nil, sourceChange: total}, nil
}

func (ev *evaluator) evalFunctionDecl(fd FunctionDeclStatement, env *Environment) (evalResult, error) {
	fn := &Function{
		Name:     fd.Name(),
		Params:   fd.Params(),
		Variadic: fd.Variadic(),
		Body:     fd.Body(),
		Closure:  EnvironmentAt(env.TopFrame()),
	}
	v := FunctionValue(fn)
	if fd.Local() {
		env.SetLocal(fd.Name(), v)
	} else {
		env.Set(fd.Name(), v)
	}
	return evalResult{value: Nil}, nil
}

// ---- expressions ----

// evalExprList evaluates a comma-separated expression list into a single
// Vallist: every expression but the last contributes exactly one value; the
// last, if it is a function call or a '...' spread, contributes every value
// it produces (spec §4.C's Vallist / multi-return semantics).
func (ev *evaluator) evalExprList(exps []Expression, env *Environment) (Vallist, *SourceChange, error) {
	var vals Vallist
	var change *SourceChange
	for i, e := range exps {
		if i == len(exps)-1 {
			vs, c, err := ev.evalExpressionMulti(e, env)
			if err != nil {
				return nil, nil, err
			}
			vals = append(vals, vs...)
			change = Combine(change, c)
			continue
		}
		v, c, err := ev.evalExpression(e, env)
		if err != nil {
			return nil, nil, err
		}
		vals = append(vals, v)
		change = Combine(change, c)
	}
	return vals, change, nil
}

func (ev *evaluator) evalExpressionMulti(e Expression, env *Environment) (Vallist, *SourceChange, error) {
	if e.Kind() == ExprSpread {
		va, _ := env.Varargs()
		return va, nil, nil
	}
	if p, ok := e.AsPrefix(); ok && p.Kind() == PrefixFunctionCall {
		fc, _ := p.AsFunctionCall()
		return ev.evalFunctionCall(fc, env)
	}
	v, c, err := ev.evalExpression(e, env)
	if err != nil {
		return nil, nil, err
	}
	return Vallist{v}, c, nil
}

func (ev *evaluator) evalExpression(e Expression, env *Environment) (Value, *SourceChange, error) {
	switch e.Kind() {
	case ExprLiteral:
		lit, _ := e.AsLiteral()
		return ev.evalLiteral(lit)
	case ExprIdentifier:
		name, _ := e.AsIdentifier()
		return env.Get(name), nil, nil
	case ExprBinaryOp:
		b, _ := e.AsBinaryOp()
		return ev.evalBinaryOp(b, env)
	case ExprUnaryOp:
		u, _ := e.AsUnaryOp()
		return ev.evalUnaryOp(u, env)
	case ExprTable:
		t, _ := e.AsTable()
		return ev.evalTable(t, env)
	case ExprFunctionDefinition:
		fd, _ := e.AsFunctionDefinition()
		return ev.evalFunctionDefinition(fd, env), nil, nil
	case ExprSpread:
		va, _ := env.Varargs()
		return va.Get(0), nil, nil
	case ExprPrefix:
		p, _ := e.AsPrefix()
		return ev.evalPrefix(p, env)
	default:
		return Nil, nil, &InternalInvariantError{Msg: "unhandled expression kind", Range: e.Range()}
	}
}

func (ev *evaluator) evalLiteral(l Literal) (Value, *SourceChange, error) {
	r := l.Range()
	switch l.Kind() {
	case LiteralNil:
		return Nil.WithOrigin(LiteralOrigin(r)), nil, nil
	case LiteralBool:
		return Bool(l.Text() == "true").WithOrigin(LiteralOrigin(r)), nil, nil
	case LiteralNumber:
		n, err := parseNumberLiteral(l.Text())
		if err != nil {
			return Nil, nil, &InternalInvariantError{Msg: err.Error(), Range: r}
		}
		return Number(n).WithOrigin(LiteralOrigin(r)), nil, nil
	default:
		return Str(l.Text()).WithOrigin(LiteralOrigin(r)), nil, nil
	}
}

func (ev *evaluator) evalBinaryOp(b BinaryOp, env *Environment) (Value, *SourceChange, error) {
	op := b.Op()
	resultRange := b.Lhs().Range()
	resultRange.End = b.Rhs().Range().End

	lhs, lc, err := ev.evalExpression(b.Lhs(), env)
	if err != nil {
		return Nil, nil, err
	}

	if op == "and" || op == "or" {
		var rc *SourceChange
		thunk := func() (Value, error) {
			v, c, err := ev.evalExpression(b.Rhs(), env)
			rc = c
			return v, err
		}
		var v Value
		if op == "and" {
			v, err = LogicAnd(lhs, thunk, resultRange)
		} else {
			v, err = LogicOr(lhs, thunk, resultRange)
		}
		if err != nil {
			return Nil, nil, err
		}
		return v, Combine(lc, rc), nil
	}

	rhs, rc, err := ev.evalExpression(b.Rhs(), env)
	if err != nil {
		return Nil, nil, err
	}
	change := Combine(lc, rc)

	switch op {
	case "+", "-", "*", "/", "%", "^":
		v, err := Arith(op, lhs, rhs, resultRange)
		return v, change, err
	case "..":
		v, err := Concat(lhs, rhs, resultRange)
		return v, change, err
	case "==":
		return Bool(Equals(lhs, rhs)).WithOrigin(BinaryOrigin("==", lhs.Origin, rhs.Origin, lhs, rhs, resultRange)), change, nil
	case "~=":
		return Bool(!Equals(lhs, rhs)).WithOrigin(BinaryOrigin("~=", lhs.Origin, rhs.Origin, lhs, rhs, resultRange)), change, nil
	case "<", "<=", ">", ">=":
		v, err := Relational(op, lhs, rhs, resultRange)
		return v, change, err
	case "&":
		v, err := BitAnd(lhs, rhs, resultRange)
		return v, change, err
	case "|":
		v, err := BitOr(lhs, rhs, resultRange)
		return v, change, err
	default:
		return Nil, nil, &InternalInvariantError{Msg: "unknown binary operator " + op, Range: resultRange}
	}
}

func (ev *evaluator) evalUnaryOp(u UnaryOp, env *Environment) (Value, *SourceChange, error) {
	operand, c, err := ev.evalExpression(u.Operand(), env)
	if err != nil {
		return Nil, nil, err
	}
	resultRange := u.Operand().Range()
	switch u.Op() {
	case "-":
		v, err := Negate(operand, resultRange)
		return v, c, err
	case "not":
		return Invert(operand, resultRange), c, nil
	case "#":
		v, err := Len(operand, resultRange)
		return v, c, err
	default:
		return Nil, nil, &InternalInvariantError{Msg: "unknown unary operator " + u.Op(), Range: resultRange}
	}
}

func (ev *evaluator) evalTable(t TableExpr, env *Environment) (Value, *SourceChange, error) {
	tbl := NewTable()
	var change *SourceChange
	nextIndex := 1.0
	fields := t.Fields()
	for i, f := range fields {
		if key, ok := f.Key(); ok {
			kv, kc, err := ev.evalExpression(key, env)
			if err != nil {
				return Nil, nil, err
			}
			vv, vc, err := ev.evalExpression(f.Value(), env)
			if err != nil {
				return Nil, nil, err
			}
			tbl.Set(kv, vv)
			change = Combine(change, Combine(kc, vc))
			continue
		}
		if i == len(fields)-1 {
			vs, vc, err := ev.evalExpressionMulti(f.Value(), env)
			if err != nil {
				return Nil, nil, err
			}
			change = Combine(change, vc)
			for _, v := range vs {
				tbl.Set(Number(nextIndex), v)
				nextIndex++
			}
			continue
		}
		vv, vc, err := ev.evalExpression(f.Value(), env)
		if err != nil {
			return Nil, nil, err
		}
		tbl.Set(Number(nextIndex), vv)
		nextIndex++
		change = Combine(change, vc)
	}
	return TableValue(tbl), change, nil
}

func (ev *evaluator) evalFunctionDefinition(fd FunctionDefinition, env *Environment) Value {
	fn := &Function{
		Params:   fd.Params(),
		Variadic: fd.Variadic(),
		Body:     fd.Body(),
		Closure:  EnvironmentAt(env.TopFrame()),
	}
	return FunctionValue(fn)
}

// ---- prefix / call chain ----

func (ev *evaluator) evalPrefix(p Prefix, env *Environment) (Value, *SourceChange, error) {
	switch p.Kind() {
	case PrefixSelf, PrefixGlobalVar:
		return env.Get(p.Name()), nil, nil
	case PrefixParenthesised:
		inner, _ := p.AsParenthesised()
		v, c, err := ev.evalExpression(inner, env)
		return v, c, err
	case PrefixIndex:
		idx, _ := p.AsIndex()
		calleeVal, cc, err := ev.evalPrefix(idx.Callee(), env)
		if err != nil {
			return Nil, nil, err
		}
		if calleeVal.Kind != KindTable {
			return Nil, nil, &TypeError{Op: "index", LhsType: calleeVal.TypeName(), Range: p.Range()}
		}
		keyVal, kc, err := ev.evalExpression(idx.Index(), env)
		if err != nil {
			return Nil, nil, err
		}
		return calleeVal.AsTable().Get(keyVal), Combine(cc, kc), nil
	case PrefixFunctionCall:
		fc, _ := p.AsFunctionCall()
		vals, change, err := ev.evalFunctionCall(fc, env)
		if err != nil {
			return Nil, nil, err
		}
		return vals.Get(0), change, nil
	default:
		return Nil, nil, &InternalInvariantError{Msg: "unhandled prefix kind", Range: p.Range()}
	}
}

// evalFunctionCall resolves the callee (rewriting a method call
// 'a:m(args)' to 'a.m(a, args)' per spec §4.B), evaluates arguments
// left-to-right, and invokes the resolved function.
func (ev *evaluator) evalFunctionCall(fc FunctionCall, env *Environment) (Vallist, *SourceChange, error) {
	var change *SourceChange
	var fnVal Value
	var args Vallist

	if method, ok := fc.Method(); ok {
		recv, c, err := ev.evalPrefix(fc.Callee(), env)
		if err != nil {
			return nil, nil, err
		}
		change = Combine(change, c)
		if recv.Kind == KindTable {
			fnVal = recv.AsTable().Get(Str(method))
		}
		args = append(args, recv)
		more, ac, err := ev.evalExprList(fc.Args(), env)
		if err != nil {
			return nil, nil, err
		}
		change = Combine(change, ac)
		args = append(args, more...)
	} else {
		fv, c, err := ev.evalPrefix(fc.Callee(), env)
		if err != nil {
			return nil, nil, err
		}
		change = Combine(change, c)
		fnVal = fv
		more, ac, err := ev.evalExprList(fc.Args(), env)
		if err != nil {
			return nil, nil, err
		}
		change = Combine(change, ac)
		args = more
	}

	results, cc, err := ev.callValue(fnVal, args, fc.Range(), env)
	if err != nil {
		return nil, nil, err
	}
	return results, Combine(change, cc), nil
}

// callValue invokes fn (native or user-defined) with args, used both by
// function-call expressions and by for-in's iterator protocol.
func (ev *evaluator) callValue(fn Value, args Vallist, callLoc Range, env *Environment) (Vallist, *SourceChange, error) {
	if fn.Kind != KindFunction {
		return nil, nil, &CallError{Callee: fn.TypeName(), Range: callLoc}
	}
	if ev.cfg.TraceCalls {
		name := fn.AsFunction().Name
		if name == "" {
			name = "<anonymous>"
		}
		ev.trace("call %s", name)
	}
	f := fn.AsFunction()
	if f.IsNative() {
		ctx := CallContext{
			Args: args, Env: env, CallLocation: callLoc,
			Call: func(inner Value, innerArgs Vallist) (Vallist, error) {
				vs, _, err := ev.callValue(inner, innerArgs, callLoc, env)
				return vs, err
			},
		}
		res, err := f.Native(ctx)
		if err != nil {
			return nil, nil, &CallError{Callee: f.Name, Cause: err, Range: callLoc}
		}
		return res.Values, res.SourceChange, nil
	}

	callEnv := f.Closure.EnterBlock()
	for i, p := range f.Params {
		callEnv.SetLocal(p, args.Get(i))
	}
	extra := Vallist(nil)
	if f.Variadic && len(args) > len(f.Params) {
		extra = args[len(f.Params):]
	}
	callEnv.SetVarargs(extra)

	ev.depth++
	r, err := ev.evalBlock(f.Body, callEnv)
	ev.depth--
	if err != nil {
		return nil, nil, err
	}
	if r.didBreak {
		return nil, nil, &LoopMisuseError{Range: callLoc}
	}
	if r.didReturn != nil {
		return r.didReturn, r.sourceChange, nil
	}
	return Vallist{}, r.sourceChange, nil
}
