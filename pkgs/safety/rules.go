package safety

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

func importPattern(modules ...string) *regexp.Regexp {
	alt := strings.Join(modules, "|")
	return regexp.MustCompile(`^\s*(?:import\s+(` + alt + `)\b|from\s+(` + alt + `)\b)`)
}

// builtinRules is the closed ten-rule set of spec §4.6.
var builtinRules = []Rule{
	{
		Kind:     KindDangerousImport,
		Patterns: []*regexp.Regexp{importPattern("os", "subprocess", "socket", "pty")},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("import of a dangerous module: %q", strings.TrimSpace(matched))
		},
		Severity: SeverityError,
	},
	{
		Kind: KindCodeExecution,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bexec\(`),
			regexp.MustCompile(`\beval\(`),
			regexp.MustCompile(`\bcompile\(`),
			regexp.MustCompile(`\b__import__\(`),
		},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("dynamic code execution via %s", strings.TrimSuffix(matched, "("))
		},
		Severity: SeverityError,
	},
	{
		Kind: KindFilesystemAccess,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`open\(\s*["']\/etc\/`),
			regexp.MustCompile(`open\(\s*["']\/proc\/`),
			regexp.MustCompile(`open\(\s*["']\/[^"']*["']\s*,\s*["'][wa][^"']*["']`),
		},
		MessageFn: func(kind, matched string) string {
			return "filesystem access outside the sandboxed working directory"
		},
		Severity: SeverityError,
	},
	{
		Kind:     KindNetworkAccess,
		Patterns: []*regexp.Regexp{importPattern("urllib", "http\\.client", "requests", "ftplib")},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("network access import: %q", strings.TrimSpace(matched))
		},
		Severity: SeverityError,
	},
	{
		Kind: KindDangerousAttribute,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`__builtins__`),
			regexp.MustCompile(`__globals__`),
			regexp.MustCompile(`__code__`),
			regexp.MustCompile(`__subclasses__`),
			regexp.MustCompile(`__mro__`),
		},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("access to dunder attribute %s, a common sandbox-escape vector", matched)
		},
		Severity: SeverityError,
	},
	{
		Kind:     KindSerializationDanger,
		Patterns: []*regexp.Regexp{importPattern("pickle", "cPickle", "marshal", "shelve")},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("insecure deserialization import: %q", strings.TrimSpace(matched))
		},
		Severity: SeverityError,
	},
	{
		Kind:     KindFFIDanger,
		Patterns: []*regexp.Regexp{importPattern("ctypes", "cffi")},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("foreign-function interface import: %q", strings.TrimSpace(matched))
		},
		Severity: SeverityError,
	},
	{
		Kind: KindInfiniteLoop,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`while\s+True\s*:`),
			regexp.MustCompile(`while\s+1\s*:`),
		},
		MessageFn: func(kind, matched string) string {
			return "unconditional loop with no break in the source"
		},
		Severity: SeverityWarning,
		SkipIf: func(source string) bool {
			return regexp.MustCompile(`\bbreak\b`).MatchString(source)
		},
	},
	{
		Kind:      KindResourceExhaustion,
		Match:     matchResourceExhaustion,
		MessageFn: func(kind, matched string) string { return "allocation or iteration count large enough to exhaust memory/CPU: " + matched },
		Severity:  SeverityError,
	},
	{
		Kind: KindCommandInjection,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`os\.popen\(`),
			regexp.MustCompile(`shell\s*=\s*True`),
			regexp.MustCompile(`os\.system\(`),
		},
		MessageFn: func(kind, matched string) string {
			return fmt.Sprintf("shell-injection shape: %s", matched)
		},
		Severity: SeverityError,
	},
}

var (
	rangePowRe  = regexp.MustCompile(`range\(\s*(\d+)\s*\*\*\s*(\d+)`)
	mulPowRe    = regexp.MustCompile(`\*\s*\(?\s*(\d+)\s*\*\*\s*(\d+)\s*\)?`)
	nestedMulRe = regexp.MustCompile(`\*\s*10000\b`)
)

// matchResourceExhaustion flags range(10**N) for N>=7, range(2**N) for
// N>=30, any `* (B**N)` reaching the same magnitude, and a
// nested-list-multiply-10000 shape (`[...] * 10000` appearing twice on
// one line, e.g. `[[0] * 10000] * 10000`) (spec §4.6).
func matchResourceExhaustion(line string) (bool, string) {
	if m := rangePowRe.FindStringSubmatch(line); m != nil {
		base, _ := strconv.Atoi(m[1])
		exp, _ := strconv.Atoi(m[2])
		threshold := 1e7
		if base == 2 {
			threshold = 1 << 30
		}
		if magnitude(base, exp) >= threshold {
			return true, m[0]
		}
	}
	if m := mulPowRe.FindStringSubmatch(line); m != nil {
		base, _ := strconv.Atoi(m[1])
		exp, _ := strconv.Atoi(m[2])
		if magnitude(base, exp) >= 1e7 {
			return true, m[0]
		}
	}
	if matches := nestedMulRe.FindAllString(line, -1); len(matches) >= 2 {
		return true, strings.Join(matches, " ... ")
	}
	return false, ""
}

func magnitude(base, exp int) float64 {
	if base <= 0 || exp <= 0 || exp > 1024 {
		return 0
	}
	v := 1.0
	for i := 0; i < exp; i++ {
		v *= float64(base)
		if v >= 1e18 {
			return v
		}
	}
	return v
}
