package minilua

import "testing"

func TestInterpreterLifecycleStates(t *testing.T) {
	it := NewInterpreter()
	if it.State() != StateEmpty {
		t.Fatalf("fresh Interpreter State() = %v, want StateEmpty", it.State())
	}
	res := it.Parse("return 1")
	if !res.OK() || it.State() != StateParsed {
		t.Fatalf("after a clean Parse, State() = %v, want StateParsed", it.State())
	}
	res = it.Parse("if true then")
	if res.OK() || it.State() != StateErrored {
		t.Fatalf("after a broken Parse, State() = %v, want StateErrored", it.State())
	}
}

func TestInterpreterEvaluateBeforeParseFails(t *testing.T) {
	it := NewInterpreter()
	_, err := it.Evaluate()
	if err == nil {
		t.Fatal("expected an error evaluating before Parse")
	}
	if _, ok := err.(*ParseFailedError); !ok {
		t.Errorf("got %T, want *ParseFailedError", err)
	}
}

func TestInterpreterEvaluateAfterErroredParseFails(t *testing.T) {
	it := NewInterpreter()
	it.Parse("if true then")
	_, err := it.Evaluate()
	if _, ok := err.(*ParseFailedError); !ok {
		t.Errorf("got %T, want *ParseFailedError", err)
	}
}

func TestInterpreterApplySourceChangesReparsesAndUpdatesSource(t *testing.T) {
	it := NewInterpreter()
	it.Parse("return 2 + 3")
	out, err := it.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	change := Force(out.Value.Origin, Number(9))
	if change == nil {
		t.Fatal("expected a non-nil SourceChange forcing 5 to become 9")
	}
	if err := it.ApplySourceChanges(change); err != nil {
		t.Fatalf("ApplySourceChanges: %v", err)
	}
	if it.SourceCode() != "return 6 + 3" {
		t.Errorf("SourceCode() after apply = %q, want %q", it.SourceCode(), "return 6 + 3")
	}
	if it.State() != StateParsed {
		t.Fatalf("State() after a valid apply = %v, want StateParsed", it.State())
	}
	out2, err := it.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate after apply: %v", err)
	}
	if out2.Value.AsNumber() != 9 {
		t.Errorf("re-evaluated result = %v, want 9", out2.Value.AsNumber())
	}
}

func TestInterpreterGlobalsAreSharedAcrossEvaluate(t *testing.T) {
	it := NewInterpreter()
	it.Parse("x = 1")
	if _, err := it.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	it.Parse("x = x + 1\nreturn x")
	out, err := it.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Value.AsNumber() != 2 {
		t.Errorf("got %v, want 2 (globals should persist across Parse/Evaluate rounds)", out.Value.AsNumber())
	}
}

func TestInterpreterHostCanRegisterExtraNatives(t *testing.T) {
	it := NewInterpreter()
	it.Globals().SetGlobal("double", FunctionValue(&Function{
		Name: "double",
		Native: func(ctx CallContext) (CallResult, error) {
			return CallResult{Values: Vallist{Number(ctx.Args.Get(0).AsNumber() * 2)}}, nil
		},
	}))
	it.Parse("return double(21)")
	out, err := it.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Value.AsNumber() != 42 {
		t.Errorf("got %v, want 42", out.Value.AsNumber())
	}
}

func TestInterpreterTraceWritesToSink(t *testing.T) {
	it := NewInterpreter()
	var buf stringWriter
	it.Trace(&buf)
	it.Parse("return 1 + 1")
	if _, err := it.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if buf.s == "" {
		t.Error("expected trace output to be written to the configured sink")
	}
}

type stringWriter struct{ s string }

func (w *stringWriter) Write(p []byte) (int, error) {
	w.s += string(p)
	return len(p), nil
}
