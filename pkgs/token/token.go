// Package token defines the lexical token kinds produced by pkgs/lexer
// and consumed by pkgs/parser.
package token

import "fmt"

// Kind identifies the category of a Token.
type Kind int

const (
	Name Kind = iota
	Number
	String
	Op
	Newline
	Indent
	Dedent
	EndOfInput
	NewlineLogical
	Comment
	Error
)

var kindNames = [...]string{
	Name:           "Name",
	Number:         "Number",
	String:         "String",
	Op:             "Op",
	Newline:        "Newline",
	Indent:         "Indent",
	Dedent:         "Dedent",
	EndOfInput:     "EndOfInput",
	NewlineLogical: "NewlineLogical",
	Comment:        "Comment",
	Error:          "Error",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position is a 1-based line/column pair.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is the ephemeral unit produced by the tokenizer; only the
// parser observes these.
type Token struct {
	Kind   Kind
	Lexeme string
	Start  Position
	End    Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Start)
}

// StringPrefix classifies the prefix combination on a String lexeme,
// used by the parser to decide whether to run the f-string sub-parser
// and whether escapes are raw.
type StringPrefix struct {
	Raw       bool
	Bytes     bool
	Formatted bool
	Triple    bool
}

// ParsePrefix inspects the lexeme's quote-opening prefix letters
// (already isolated by the lexer) and reports their meaning.
func ParsePrefix(prefix string) StringPrefix {
	var sp StringPrefix
	for _, c := range prefix {
		switch c {
		case 'r', 'R':
			sp.Raw = true
		case 'b', 'B':
			sp.Bytes = true
		case 'f', 'F':
			sp.Formatted = true
		case 'u', 'U':
			// no-op marker prefix, kept for completeness
		}
	}
	return sp
}
