// interpreter.go — the embedding façade (spec §4.G / §5 external
// interfaces). This is the one type a host program touches: it owns the
// SourceBuffer and the global Environment, and walks Empty -> Parsed ->
// Errored as parse/apply/evaluate are called, the way the teacher's own
// Interpreter struct owns its Lexer/Parser/Env trio end to end.
package minilua

import "io"

// InterpreterState is the façade's lifecycle (spec §4.G).
type InterpreterState int

const (
	StateEmpty InterpreterState = iota
	StateParsed
	StateErrored
)

func (s InterpreterState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateParsed:
		return "parsed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// InterpreterConfig carries the evaluator's ambient knobs: this repo has no
// structured logger (matching the teacher, which writes diagnostics
// straight to os.Stderr rather than reach for a logging library); tracing
// here is a set of booleans plus a plain io.Writer sink, in the same spirit.
type InterpreterConfig struct {
	TraceNodes      bool
	TraceCalls      bool
	TraceEnterBlock bool
	TraceSink       io.Writer
}

// NewInterpreterConfig returns the zero-value (tracing disabled) config.
func NewInterpreterConfig() InterpreterConfig { return InterpreterConfig{} }

// EvalResult is what Interpreter.Evaluate returns to a host: the external
// counterpart of evaluator.go's richer internal evalResult, stripped of the
// break/return bookkeeping that only matters mid-walk (spec §3).
type EvalResult struct {
	Value        Value
	SourceChange *SourceChange
}

// Interpreter is the embedding surface: parse source, evaluate it, and
// apply a chosen SourceChange back to source for the next round.
type Interpreter struct {
	buf   *SourceBuffer
	env   *Environment
	state InterpreterState
	cfg   InterpreterConfig
}

// NewInterpreter constructs an Interpreter with an empty buffer and a
// global environment pre-populated with the standard library.
func NewInterpreter() *Interpreter {
	env := NewEnvironment()
	RegisterStandardLibrary(env)
	return &Interpreter{buf: NewSourceBuffer(), env: env, state: StateEmpty, cfg: NewInterpreterConfig()}
}

// Config returns the interpreter's tracing configuration.
func (it *Interpreter) Config() InterpreterConfig { return it.cfg }

// SetConfig replaces the tracing configuration.
func (it *Interpreter) SetConfig(cfg InterpreterConfig) { it.cfg = cfg }

// Trace is shorthand for enabling node+call tracing to w.
func (it *Interpreter) Trace(w io.Writer) {
	it.cfg.TraceSink = w
	it.cfg.TraceNodes = true
	it.cfg.TraceCalls = true
}

// State reports the façade's current lifecycle state.
func (it *Interpreter) State() InterpreterState { return it.state }

// SourceCode returns the most recently parsed source text.
func (it *Interpreter) SourceCode() string { return it.buf.Source() }

// Environment exposes the global environment (spec §4.G / §5 embedding
// surface — a host registers extra native functions through this before
// calling Evaluate).
func (it *Interpreter) Environment() *Environment { return it.env }

// Globals is an alias of Environment, named the way a host more naturally
// reaches for "the globals table".
func (it *Interpreter) Globals() *Environment { return it.env }

// Parse lexes and parses src, replacing any previously parsed program, and
// transitions to Parsed or Errored depending on the result.
func (it *Interpreter) Parse(src string) ParseResult {
	res := it.buf.Parse(src)
	if res.OK() {
		it.state = StateParsed
	} else {
		it.state = StateErrored
	}
	return res
}

// ApplySourceChanges flattens and applies change to the current source,
// re-parsing it (spec §3/§4.A). It is an error to apply overlapping edits.
func (it *Interpreter) ApplySourceChanges(change *SourceChange) error {
	edits := change.Flatten()
	if err := ValidateNonOverlapping(edits); err != nil {
		return err
	}
	it.buf.Apply(edits)
	if len(it.buf.Diagnostics()) == 0 {
		it.state = StateParsed
	} else {
		it.state = StateErrored
	}
	return nil
}

// Evaluate runs the parsed program to completion and returns its result
// value together with any source_change produced along the way. Evaluate
// requires a successful Parse; calling it from Empty or Errored raises
// ParseFailedError.
func (it *Interpreter) Evaluate() (EvalResult, error) {
	if it.state != StateParsed {
		return EvalResult{}, &ParseFailedError{Diagnostics: it.buf.Diagnostics()}
	}
	prog := NewProgram(it.buf.Root())
	ev := &evaluator{cfg: it.cfg}
	r, err := ev.evalProgram(prog, it.env)
	if err != nil {
		return EvalResult{}, err
	}
	if r.didBreak {
		return EvalResult{}, &LoopMisuseError{}
	}
	return EvalResult{Value: r.value, SourceChange: r.sourceChange}, nil
}
