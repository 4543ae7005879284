// Package transform implements the five-plus-two text-level rewrite
// passes of spec §4.5: composable, single-forward-scan rewrites of
// Python source that prepare it to run under an external WebAssembly
// runtime (async wrapping, import rewriting, output capture, last-
// expression extraction, input() mocking, exception serialization).
// Each pass is specified textually because its literal output shape
// is itself part of the contract (spec §4.5): these scan source line
// by line rather than going through pkgs/parser, the same "rewrite
// source text in a single forward scan" shape as the teacher's
// expandVariablesInText (pkgs/parser/types.go).
//
// Transformation passes never fail (spec §7): every function here is
// str -> str with no error return.
package transform

import (
	"regexp"
	"strings"

	"github.com/aledsdavies/pyx/internal/stdlibset"
)

// mainFunc is the name of the synthetic wrapper function produced by
// WrapAsync, matching the runtime-side entry point the external host
// awaits.
const mainFunc = "__pyx_main__"

// WrapAsync wraps the entire source in `async def __pyx_main__():`
// with every original line indented by four spaces. Empty lines stay
// empty; an empty input produces a body of a single `    pass` line.
func WrapAsync(code string) string {
	if strings.TrimSpace(code) == "" {
		return "async def " + mainFunc + "():\n    pass"
	}
	lines := splitLines(code)
	var b strings.Builder
	b.WriteString("async def ")
	b.WriteString(mainFunc)
	b.WriteString("():\n")
	for i, line := range lines {
		if line != "" {
			b.WriteString("    ")
			b.WriteString(line)
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var bareAwaitRe = regexp.MustCompile(`\bawait\b`)
var asyncDefRe = regexp.MustCompile(`^\s*(async\s+def)\b`)

// WrapTopLevelAwait scans for a bare `await` outside any `async def`
// block, tracked by the indentation of the enclosing async-def header
// (spec §4.5). If found, the whole source is run through WrapAsync;
// otherwise it is returned unchanged. Comment and empty lines are
// skipped while scanning.
func WrapTopLevelAwait(code string) string {
	if hasTopLevelAwait(code) {
		return WrapAsync(code)
	}
	return code
}

func hasTopLevelAwait(code string) bool {
	var stack []int // indentation levels of open "async def" headers
	for _, line := range splitLines(code) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := leadingWidth(line)
		for len(stack) > 0 && indent <= stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
		}
		insideAsync := len(stack) > 0
		if !insideAsync && bareAwaitRe.MatchString(line) {
			return true
		}
		if asyncDefRe.MatchString(line) {
			stack = append(stack, indent)
		}
	}
	return false
}

var importLineRe = regexp.MustCompile(`^(\s*)(?:import\s+([A-Za-z_][A-Za-z0-9_]*)|from\s+([A-Za-z_][A-Za-z0-9_]*))`)

// RewriteImports inserts `await micropip.install("X")` immediately
// before each import of a non-stdlib top-level module X, leaving
// stdlib imports untouched and the original import line intact in
// both cases (spec §4.5, resolved Open Question: the original import
// line is kept, never stripped). A module is treated as already
// installed once per call, and also when the line directly above the
// import is already its own install header — so a second pass over
// already-rewritten code finds its own inserted header sitting right
// above the import and emits no duplicate (spec §8 round-trip law:
// rewrite_imports(rewrite_imports(x)) == rewrite_imports(x)).
func RewriteImports(code string) string {
	installed := map[string]bool{}
	lines := splitLines(code)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		m := importLineRe.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		indent, mod := m[1], m[2]
		if mod == "" {
			mod = m[3]
		}
		if mod == "" || stdlibset.Has(mod) {
			out = append(out, line)
			continue
		}
		installLine := indent + `await micropip.install("` + mod + `")`
		alreadyInstalled := installed[mod] || (len(out) > 0 && out[len(out)-1] == installLine)
		if !alreadyInstalled {
			out = append(out, installLine)
		}
		installed[mod] = true
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// CapturePrint prepends a setup block that redirects sys.stdout to an
// in-memory buffer so the host can retrieve captured output after
// execution (spec §4.5). The user's code follows verbatim.
func CapturePrint(code string) string {
	header := "import sys\n" +
		"import io\n" +
		"__pyx_stdout__ = io.StringIO()\n" +
		"__pyx_stdout_prev__ = sys.stdout\n" +
		"sys.stdout = __pyx_stdout__\n"
	return header + code
}

var statementKeywords = []string{
	"def", "class", "if", "elif", "else:", "for", "while", "try:",
	"except", "finally:", "with", "return", "raise", "import", "from",
	"pass", "break", "continue", "@",
}

// ExtractReturnValue rewrites the last meaningful line of code to
// `<indent>__pyx_result__ = <expr>` when that line is a bare
// expression rather than a statement or assignment, preserving
// leading indentation and any trailing comment (spec §4.5). Scanning
// walks backward from the end, skipping blank and comment-only lines.
func ExtractReturnValue(code string) string {
	lines := splitLines(code)
	idx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		return code
	}
	line := lines[idx]
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]

	if isStatementLine(trimmed) || isAssignmentLine(trimmed) {
		return code
	}

	expr, comment := splitTrailingComment(trimmed)
	expr = strings.TrimRight(expr, " \t")
	rewritten := indent + "__pyx_result__ = " + expr
	if comment != "" {
		rewritten += "  " + comment
	}
	lines[idx] = rewritten
	return strings.Join(lines, "\n")
}

func isStatementLine(trimmed string) bool {
	if strings.HasPrefix(trimmed, "@") {
		return true
	}
	for _, kw := range statementKeywords {
		if trimmed == kw || strings.HasPrefix(trimmed, kw+" ") ||
			strings.HasPrefix(trimmed, kw+"(") || strings.HasPrefix(trimmed, kw+":") {
			return true
		}
	}
	return false
}

// isAssignmentLine reports whether trimmed contains a top-level '='
// that is not part of ==, !=, <=, >=, and is not a `lambda` default
// parameter's '=' (which sits between `lambda` and its `:` at bracket
// depth zero). A bare lambda expression used as a value is therefore
// not mistaken for an assignment (spec §4.5 Open Question).
func isAssignmentLine(trimmed string) bool {
	depth := 0
	inLambdaParams := false
	i := 0
	for i < len(trimmed) {
		c := trimmed[i]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '=':
			prev := byte(0)
			if i > 0 {
				prev = trimmed[i-1]
			}
			next := byte(0)
			if i+1 < len(trimmed) {
				next = trimmed[i+1]
			}
			isComparison := prev == '=' || prev == '!' || prev == '<' || prev == '>' || next == '='
			if !isComparison && depth == 0 && !inLambdaParams {
				return true
			}
		case ':':
			if depth == 0 && inLambdaParams {
				inLambdaParams = false
			}
		}
		if depth == 0 && !inLambdaParams && strings.HasPrefix(trimmed[i:], "lambda") {
			boundary := i == 0 || !isIdentChar(trimmed[i-1])
			after := i + len("lambda")
			if boundary && (after >= len(trimmed) || !isIdentChar(trimmed[after])) {
				inLambdaParams = true
				i += len("lambda")
				continue
			}
		}
		i++
	}
	return false
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// splitTrailingComment splits a line into its expression and trailing
// `#...` comment, ignoring `#` characters inside quoted strings.
func splitTrailingComment(line string) (expr, comment string) {
	inStr := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inStr != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = c
		case '#':
			return line[:i], line[i:]
		}
	}
	return line, ""
}

var inputCallRe = regexp.MustCompile(`\binput\(`)

// MockInput replaces every standalone `input(` call with
// `await __pyx_input__(` so the transformed code can route prompts
// through a host-supplied async callback (spec §4.5).
func MockInput(code string) string {
	return inputCallRe.ReplaceAllString(code, "await __pyx_input__(")
}

// WrapExceptions wraps code in a top-level try/except that captures
// any escaping exception into a `__pyx_error__` dict carrying its
// type name, message, and formatted traceback (spec §4.5).
func WrapExceptions(code string) string {
	var b strings.Builder
	b.WriteString("import traceback\n")
	b.WriteString("__pyx_error__ = None\n")
	b.WriteString("try:\n")
	for _, line := range splitLines(code) {
		if line != "" {
			b.WriteString("    ")
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	b.WriteString("except Exception as __pyx_exc__:\n")
	b.WriteString("    __pyx_error__ = {'type': type(__pyx_exc__).__name__, 'message': str(__pyx_exc__), 'traceback': traceback.format_exc()}")
	return b.String()
}

// Compose runs the full pipeline in the order spec §4.5 fixes:
// rewrite_imports -> wrap_top_level_await -> capture_print ->
// extract_return_value -> wrap_exceptions -> wrap_async. MockInput is
// independent of this order (the spec lists it outside the
// composition chain) and is applied by callers that need it, at
// whatever stage suits their host runtime.
func Compose(code string) string {
	code = RewriteImports(code)
	code = WrapTopLevelAwait(code)
	code = CapturePrint(code)
	code = ExtractReturnValue(code)
	code = WrapExceptions(code)
	code = WrapAsync(code)
	return code
}

func splitLines(code string) []string {
	return strings.Split(code, "\n")
}

func leadingWidth(line string) int {
	n := 0
	for _, c := range line {
		if c == ' ' {
			n++
		} else if c == '\t' {
			n += 8 - (n % 8)
		} else {
			break
		}
	}
	return n
}
