// builtins.go — the native standard library registered into every fresh
// Environment's global frame (SPEC_FULL.md's "4.F Evaluator — supplemented"
// section). Grounded on the teacher's RegisterNative / builtin_core.go
// pattern: one Go closure per native, installed as a Function with
// Native set and Body/Params left zero, the same shape the teacher uses
// for its capability functions.
package minilua

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RegisterStandardLibrary installs print/type/tostring/tonumber/pairs/
// ipairs/table.*/assert/error/pcall into env's global frame.
func RegisterStandardLibrary(env *Environment) {
	reg := func(name string, fn func(CallContext) (CallResult, error)) {
		env.SetGlobal(name, FunctionValue(&Function{Name: name, Native: fn}))
	}

	reg("print", nativePrint)
	reg("type", nativeType)
	reg("tostring", nativeToString)
	reg("tonumber", nativeToNumber)
	reg("pairs", nativePairs)
	reg("ipairs", nativeIpairs)
	reg("assert", nativeAssert)
	reg("error", nativeError)
	reg("pcall", nativePcall)

	table := NewTable()
	table.Set(Str("insert"), FunctionValue(&Function{Name: "table.insert", Native: nativeTableInsert}))
	table.Set(Str("remove"), FunctionValue(&Function{Name: "table.remove", Native: nativeTableRemove}))
	table.Set(Str("len"), FunctionValue(&Function{Name: "table.len", Native: nativeTableLen}))
	env.SetGlobal("table", TableValue(table))
}

func nativePrint(ctx CallContext) (CallResult, error) {
	parts := make([]string, len(ctx.Args))
	for i, v := range ctx.Args {
		parts[i] = v.String()
	}
	fmt.Fprintln(os.Stdout, strings.Join(parts, "\t"))
	return CallResult{}, nil
}

func nativeType(ctx CallContext) (CallResult, error) {
	return CallResult{Values: Vallist{Str(ctx.Args.Get(0).TypeName())}}, nil
}

func nativeToString(ctx CallContext) (CallResult, error) {
	return CallResult{Values: Vallist{Str(ctx.Args.Get(0).String())}}, nil
}

func nativeToNumber(ctx CallContext) (CallResult, error) {
	v := ctx.Args.Get(0)
	if v.Kind == KindNumber {
		return CallResult{Values: Vallist{v}}, nil
	}
	if v.Kind == KindString {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64); err == nil {
			return CallResult{Values: Vallist{Number(n)}}, nil
		}
	}
	return CallResult{Values: Vallist{Nil}}, nil
}

// pairsNext backs the stateless 'next' protocol pairs() hands out.
var pairsNext = &Function{Name: "next", Native: func(ctx CallContext) (CallResult, error) {
	t := ctx.Args.Get(0)
	if t.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "pairs iteration", LhsType: t.TypeName()}
	}
	nk, nv, ok := t.AsTable().NextKey(ctx.Args.Get(1))
	if !ok {
		return CallResult{Values: Vallist{Nil}}, nil
	}
	return CallResult{Values: Vallist{nk, nv}}, nil
}}

func nativePairs(ctx CallContext) (CallResult, error) {
	t := ctx.Args.Get(0)
	if t.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "pairs", LhsType: t.TypeName()}
	}
	return CallResult{Values: Vallist{FunctionValue(pairsNext), t, Nil}}, nil
}

// ipairsNext walks the contiguous integer keys 1..n.
var ipairsNext = &Function{Name: "inext", Native: func(ctx CallContext) (CallResult, error) {
	t := ctx.Args.Get(0)
	if t.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "ipairs iteration", LhsType: t.TypeName()}
	}
	i := ctx.Args.Get(1).AsNumber() + 1
	v := t.AsTable().Get(Number(i))
	if v.Kind == KindNil {
		return CallResult{Values: Vallist{Nil}}, nil
	}
	return CallResult{Values: Vallist{Number(i), v}}, nil
}}

func nativeIpairs(ctx CallContext) (CallResult, error) {
	t := ctx.Args.Get(0)
	if t.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "ipairs", LhsType: t.TypeName()}
	}
	return CallResult{Values: Vallist{FunctionValue(ipairsNext), t, Number(0)}}, nil
}

func nativeAssert(ctx CallContext) (CallResult, error) {
	v := ctx.Args.Get(0)
	if v.Truthy() {
		return CallResult{Values: ctx.Args}, nil
	}
	msg := "assertion failed!"
	if len(ctx.Args) > 1 {
		msg = ctx.Args.Get(1).String()
	}
	return CallResult{}, fmt.Errorf("%s", msg)
}

func nativeError(ctx CallContext) (CallResult, error) {
	return CallResult{}, fmt.Errorf("%s", ctx.Args.Get(0).String())
}

// nativePcall implements the one escape hatch this spec keeps from full
// exception handling (SPEC_FULL.md's Evaluator supplement): it catches a
// runtime error raised by a called function and reports it as (false, msg)
// instead of propagating, via the Call callback the evaluator attaches to
// every CallContext.
func nativePcall(ctx CallContext) (CallResult, error) {
	if ctx.Call == nil || len(ctx.Args) == 0 {
		return CallResult{Values: Vallist{Bool(false), Str("pcall: nothing to call")}}, nil
	}
	fn := ctx.Args[0]
	args := Vallist(ctx.Args[1:])
	results, err := ctx.Call(fn, args)
	if err != nil {
		return CallResult{Values: Vallist{Bool(false), Str(err.Error())}}, nil
	}
	vals := Vallist{Bool(true)}
	vals = append(vals, results...)
	return CallResult{Values: vals}, nil
}

func nativeTableInsert(ctx CallContext) (CallResult, error) {
	tv := ctx.Args.Get(0)
	if tv.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "table.insert", LhsType: tv.TypeName()}
	}
	t := tv.AsTable()
	n := t.Len()
	if len(ctx.Args) <= 2 {
		t.Set(Number(float64(n+1)), ctx.Args.Get(1))
		return CallResult{}, nil
	}
	pos := int(ctx.Args.Get(1).AsNumber())
	value := ctx.Args.Get(2)
	for i := n + 1; i > pos; i-- {
		t.Set(Number(float64(i)), t.Get(Number(float64(i-1))))
	}
	t.Set(Number(float64(pos)), value)
	return CallResult{}, nil
}

func nativeTableRemove(ctx CallContext) (CallResult, error) {
	tv := ctx.Args.Get(0)
	if tv.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "table.remove", LhsType: tv.TypeName()}
	}
	t := tv.AsTable()
	n := t.Len()
	if n == 0 {
		return CallResult{Values: Vallist{Nil}}, nil
	}
	pos := n
	if len(ctx.Args) > 1 {
		pos = int(ctx.Args.Get(1).AsNumber())
	}
	removed := t.Get(Number(float64(pos)))
	for i := pos; i < n; i++ {
		t.Set(Number(float64(i)), t.Get(Number(float64(i+1))))
	}
	t.Set(Number(float64(n)), Nil)
	return CallResult{Values: Vallist{removed}}, nil
}

func nativeTableLen(ctx CallContext) (CallResult, error) {
	tv := ctx.Args.Get(0)
	if tv.Kind != KindTable {
		return CallResult{}, &TypeError{Op: "table.len", LhsType: tv.TypeName()}
	}
	return CallResult{Values: Vallist{Number(float64(tv.AsTable().Len()))}}, nil
}
