// Command minilua is the reference host for the minilua interpreter: a
// line-edited REPL and a one-shot script/expression runner.
//
// Grounded directly on the teacher's cmd/msg/main.go: liner for line
// editing and history, a banner + ':quit' meta-command, ANSI-colored
// value/error output, and a read-probe loop that keeps prompting with a
// continuation prompt while the typed-so-far source parses as incomplete.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	minilua "github.com/tn4799/MiniLua"
)

const (
	appName     = "minilua"
	historyFile = ".minilua_history"
	promptMain  = "> "
	promptCont  = "... "
)

var banner = "MiniLua REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	expr := flag.String("e", "", "evaluate a single expression and print the result")
	trace := flag.Bool("trace", false, "trace node evaluation and calls to stderr")
	flag.Parse()

	if *expr != "" {
		os.Exit(runOnce("return "+*expr, *trace))
	}
	if flag.NArg() > 0 {
		src, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			os.Exit(1)
		}
		os.Exit(runOnce(string(src), *trace))
	}
	os.Exit(runRepl(*trace))
}

func runOnce(src string, trace bool) int {
	it := minilua.NewInterpreter()
	if trace {
		it.Trace(os.Stderr)
	}
	if res := it.Parse(src); !res.OK() {
		fmt.Fprintln(os.Stderr, red(formatDiagnostics(res, src)))
		return 1
	}
	result, err := it.Evaluate()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(minilua.WrapErrorWithSource(err, it.SourceCode()).Error()))
		return 1
	}
	if result.Value.Kind != minilua.KindNil {
		fmt.Println(green(result.Value.String()))
	}
	return 0
}

func formatDiagnostics(res minilua.ParseResult, src string) string {
	var b strings.Builder
	for _, d := range res.Errors {
		fmt.Fprintf(&b, "%d:%d: %s\n", d.Range.Start.Row+1, d.Range.Start.Column+1, d.Msg)
	}
	return strings.TrimRight(b.String(), "\n")
}

func runRepl(trace bool) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	it := minilua.NewInterpreter()
	if trace {
		it.Trace(os.Stderr)
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":help":
				fmt.Println("REPL commands:\n  :quit    Exit the REPL")
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		if res := it.Parse(code); !res.OK() {
			fmt.Fprintln(os.Stderr, red(formatDiagnostics(res, code)))
			continue
		}
		result, err := it.Evaluate()
		if err != nil {
			fmt.Fprintln(os.Stderr, red(minilua.WrapErrorWithSource(err, it.SourceCode()).Error()))
			continue
		}
		if result.Value.Kind != minilua.KindNil {
			fmt.Println(green(result.Value.String()))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe reads lines, joining them, until the buffered source
// parses without an error that looks like a truncated program (missing
// 'end'/'until'/etc. right at EOF) — the same continuation trick as the
// teacher's readByParseProbe, driven by this interpreter's Diagnostics
// instead of MindScript's IsIncomplete.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		probe := minilua.NewInterpreter()
		res := probe.Parse(src)
		if res.OK() || !looksIncomplete(res, src) {
			return src, true
		}
	}
}

// looksIncomplete reports whether every diagnostic sits right at EOF —
// this parser has no distinct "unexpected end of input" error kind, so an
// error whose range starts at the end of the buffered source is read as
// "needs another line" rather than a real syntax error.
func looksIncomplete(res minilua.ParseResult, src string) bool {
	if len(res.Errors) == 0 {
		return false
	}
	for _, d := range res.Errors {
		if d.Range.Start.Byte != len(src) {
			return false
		}
	}
	return true
}
