// Package safety implements the rule-driven safety analyzer of spec
// §4.6: a line-scoped regex scan over raw Python source producing a
// SafetyReport of Violations. Rules are declarative (pattern(s) +
// message + kind + severity + optional skip predicate) and the set is
// exposed as data a caller can extend (spec §4.6 "Extensibility"),
// grounded on the teacher's typed-constant error-kind idiom
// (pkgs/errors/errors.go's ErrInputRead, ErrCommandNotFound, ...)
// adapted into the ten closed Violation kinds, with rule-scan
// structured similarly to pkgs/parser/token.go's
// ValidatePatternSequence: a scan over input producing a list of
// structured errors.
//
// The analyzer never fails (spec §7): Analyze always returns a
// Report, even for empty input.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Severity is the closed severity set a Violation carries.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// The closed set of violation kinds from spec §4.6.
const (
	KindDangerousImport     = "dangerous_import"
	KindCodeExecution       = "code_execution"
	KindFilesystemAccess    = "filesystem_access"
	KindNetworkAccess       = "network_access"
	KindDangerousAttribute  = "dangerous_attribute"
	KindSerializationDanger = "serialization_danger"
	KindFFIDanger           = "ffi_danger"
	KindInfiniteLoop        = "infinite_loop"
	KindResourceExhaustion  = "resource_exhaustion"
	KindCommandInjection    = "command_injection"
)

// Violation is a single rule match, matching the interop JSON shape
// of spec §6: {"type", "message", "line"?, "severity"}.
type Violation struct {
	Kind     string   `json:"type"`
	Message  string   `json:"message"`
	Line     *int     `json:"line,omitempty"`
	Severity Severity `json:"severity"`
}

// Report is the top-level Analyze result (spec §6): safe iff
// Violations is empty.
type Report struct {
	Safe       bool        `json:"safe"`
	Violations []Violation `json:"violations"`
}

// Rule is a single declarative safety check: one or more regex
// patterns scanned line by line, a message builder, a severity, and
// an optional whole-source skip predicate (spec §4.6's
// "{kind, patterns[], message_fn(match), severity, skip_if?}").
// Rules whose detection needs more than a literal regex (the
// threshold arithmetic resource_exhaustion requires) set Match
// instead of Patterns; exactly one of the two is consulted.
type Rule struct {
	Kind       string
	Patterns   []*regexp.Regexp
	Match      func(line string) (bool, string)
	MessageFn  func(kind, matched string) string
	Severity   Severity
	SkipIf     func(source string) bool
}

func (r Rule) matchLine(line string) (bool, string) {
	if r.Match != nil {
		return r.Match(line)
	}
	for _, pat := range r.Patterns {
		sub := pat.FindStringSubmatch(line)
		if sub == nil {
			continue
		}
		for _, g := range sub[1:] {
			if g != "" {
				return true, g
			}
		}
		return true, sub[0]
	}
	return false, ""
}

// RuleSet is an ordered, extensible collection of Rules. Analyze
// applies every rule to every line in declaration order (spec §4.6:
// "order within the output list is not guaranteed beyond rule-group
// stability").
type RuleSet struct {
	rules []Rule
}

// DefaultRules returns the closed ten-rule set of spec §4.6, ready to
// Analyze or Extend.
func DefaultRules() *RuleSet {
	return &RuleSet{rules: append([]Rule(nil), builtinRules...)}
}

// Extend appends newRules to the set, after checking every new rule's
// Kind for a near-collision against already-registered kinds using
// fuzzy string distance (spec §4.6 Extensibility): an exact duplicate
// kind is rejected outright, and a kind that is merely a near-miss
// (a likely typo of an existing one) is rejected with the closest
// existing kind named, rather than silently shadowing or diverging
// from it.
func (rs *RuleSet) Extend(newRules []Rule) error {
	existing := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		existing[i] = r.Kind
	}
	for _, nr := range newRules {
		if nr.Kind == "" {
			return fmt.Errorf("safety: rule has empty kind")
		}
		for _, k := range existing {
			if k == nr.Kind {
				return fmt.Errorf("safety: kind %q is already registered", nr.Kind)
			}
		}
		if ranks := fuzzy.RankFindFold(nr.Kind, existing); len(ranks) > 0 {
			best := ranks[0]
			for _, r := range ranks[1:] {
				if r.Distance < best.Distance {
					best = r
				}
			}
			if best.Distance > 0 && best.Distance <= 2 {
				return fmt.Errorf("safety: kind %q is too close to existing kind %q (did you mean that one?)", nr.Kind, best.Target)
			}
		}
		existing = append(existing, nr.Kind)
	}
	rs.rules = append(rs.rules, newRules...)
	return nil
}

// Analyze scans source line by line against every registered rule and
// returns the resulting Report. Lines are 1-based, counting
// \n-terminated lines (spec §4.6).
func (rs *RuleSet) Analyze(source string) Report {
	var violations []Violation
	lines := strings.Split(source, "\n")
	for _, rule := range rs.rules {
		if rule.SkipIf != nil && rule.SkipIf(source) {
			continue
		}
		for i, line := range lines {
			ok, matched := rule.matchLine(line)
			if !ok {
				continue
			}
			lineNo := i + 1
			violations = append(violations, Violation{
				Kind:     rule.Kind,
				Message:  rule.MessageFn(rule.Kind, matched),
				Line:     &lineNo,
				Severity: rule.Severity,
			})
		}
	}
	return Report{Safe: len(violations) == 0, Violations: violations}
}

// Analyze runs the default ten-rule set against source (spec §6:
// analyze(source: str) -> SafetyReport).
func Analyze(source string) Report {
	return DefaultRules().Analyze(source)
}
