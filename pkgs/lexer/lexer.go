// Package lexer implements the Python 3.12 tokenizer described in
// spec §4.2: a UTF-8 source string in, a stream of token.Token out,
// terminated by token.EndOfInput. The tokenizer is purely synchronous
// and holds no shared state between instances (spec §5).
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aledsdavies/pyx/pkgs/pyxerrors"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// ASCII classification tables, following the teacher's fast-lookup
// idiom (pkgs/lexer/lexer.go's isWhitespace/isLetter/isDigit arrays).
var (
	isDigitASCII     [128]bool
	isIdentStartASCII [128]bool
	isIdentPartASCII [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isDigitASCII[i] = '0' <= ch && ch <= '9'
		isIdentStartASCII[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPartASCII[i] = isIdentStartASCII[i] || isDigitASCII[i]
	}
}

// Lexer tokenizes Python source with rune-based scanning and an
// explicit indentation stack.
type Lexer struct {
	src string

	pos     int // byte offset of ch
	readPos int // byte offset of the rune after ch
	ch      rune
	line    int
	col     int // 1-based column of ch

	indent       *indentState
	bracketDepth int
	atLineStart  bool
	pending      []token.Token
}

// New creates a tokenizer over src.
func New(src string) *Lexer {
	l := &Lexer{
		src:         src,
		line:        1,
		col:         0,
		indent:      newIndentState(),
		atLineStart: true,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.src) {
		l.pos = l.readPos
		l.ch = 0
		l.col++
		return
	}
	r, w := utf8.DecodeRuneInString(l.src[l.readPos:])
	l.pos = l.readPos
	l.readPos += w
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.ch = r
}

// peekChar returns the rune after l.ch without consuming anything.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.readPos:])
	return r
}

func (l *Lexer) peekCharAt(byteOffset int) rune {
	if byteOffset >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[byteOffset:])
	return r
}

func (l *Lexer) here() token.Position {
	return token.Position{Line: l.line, Col: l.col}
}

// Tokenize runs the tokenizer to completion and returns every token
// including the terminal EndOfInput, or the first error encountered.
// There is no error recovery (spec §4.2, §7): the first failure
// aborts.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EndOfInput {
			return out, nil
		}
	}
}

// NextToken returns the next token in the stream.
func (l *Lexer) NextToken() (token.Token, error) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}

	for l.atLineStart && l.bracketDepth == 0 {
		consumedBlankLine, err := l.handleLineStart()
		if err != nil {
			return token.Token{}, err
		}
		if !consumedBlankLine {
			break
		}
	}
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}

	return l.scan()
}

// handleLineStart measures the indentation of the current physical
// line. If the line is blank or comment-only it is consumed entirely
// and handleLineStart reports true so the caller loops to the next
// line, generating no tokens (spec §4.2: "skip blank lines and
// comment-only lines"). Otherwise it enqueues zero or more
// Indent/Dedent tokens into l.pending, based on the new width versus
// the indent stack, and returns false.
func (l *Lexer) handleLineStart() (bool, error) {
	start := l.here()
	width := 0
	for {
		switch l.ch {
		case ' ':
			width++
			l.readChar()
			continue
		case '\t':
			width = tabWidth(width)
			l.readChar()
			continue
		case '\f':
			width = 0
			l.readChar()
			continue
		}
		break
	}

	switch {
	case l.ch == 0:
		// EOF: emit remaining Dedents, then let scan() produce EndOfInput.
		for l.indent.depth() > 0 {
			l.pending = append(l.pending, token.Token{Kind: token.Dedent, Start: l.here(), End: l.here()})
			l.indent.pop()
		}
		l.atLineStart = false
		return false, nil
	case l.ch == '\n':
		l.readChar()
		return true, nil
	case l.ch == '#':
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return true, nil
	}

	l.atLineStart = false
	switch {
	case width > l.indent.top():
		l.indent.push(width)
		l.pending = append(l.pending, token.Token{Kind: token.Indent, Start: start, End: l.here()})
	case width < l.indent.top():
		for width < l.indent.top() {
			l.indent.pop()
			l.pending = append(l.pending, token.Token{Kind: token.Dedent, Start: start, End: l.here()})
		}
		if width != l.indent.top() {
			return false, pyxerrors.NewIndentation(l.src, "unindent does not match any outer indentation level", start)
		}
	}
	return false, nil
}

// scan produces the next real (non-Indent/Dedent) token, skipping
// intra-line whitespace and line continuations first.
func (l *Lexer) scan() (token.Token, error) {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\f':
			l.readChar()
			continue
		case l.ch == '\\' && (l.peekChar() == '\n' || (l.peekChar() == '\r' && l.peekCharAt(l.readPos+1) == '\n')):
			l.readChar() // consume backslash
			if l.ch == '\r' {
				l.readChar()
			}
			l.readChar() // consume newline
			continue
		case l.ch == '\r':
			l.readChar()
			continue
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}

	start := l.here()

	if l.ch == 0 {
		return token.Token{Kind: token.EndOfInput, Start: start, End: start}, nil
	}

	if l.ch == '\n' {
		l.readChar()
		if l.bracketDepth > 0 {
			return l.scan()
		}
		l.atLineStart = true
		return token.Token{Kind: token.Newline, Lexeme: "\n", Start: start, End: l.here()}, nil
	}

	if isIdentStartRune(l.ch) {
		return l.readNameOrString(start)
	}
	if isDigitRune(l.ch) || (l.ch == '.' && isDigitRune(l.peekChar())) {
		return l.readNumber(start)
	}
	if l.ch == '"' || l.ch == '\'' {
		return l.readString(start, "")
	}

	return l.readOperator(start)
}

func isIdentStartRune(r rune) bool {
	if r < 128 {
		return isIdentStartASCII[r]
	}
	return unicode.IsLetter(r)
}

func isIdentPartRune(r rune) bool {
	if r < 128 {
		return isIdentPartASCII[r]
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigitRune(r rune) bool {
	return r < 128 && isDigitASCII[r]
}

// readNameOrString scans an identifier, then reclassifies it as a
// string prefix (r, b, u, f and their combinations, case-insensitive,
// in either order) if immediately followed by a quote.
func (l *Lexer) readNameOrString(start token.Position) (token.Token, error) {
	startByte := l.pos
	for isIdentPartRune(l.ch) {
		l.readChar()
	}
	name := l.src[startByte:l.pos]

	if (l.ch == '"' || l.ch == '\'') && len(name) <= 2 && isStringPrefix(name) {
		return l.readString(start, name)
	}

	return token.Token{Kind: token.Name, Lexeme: name, Start: start, End: l.here()}, nil
}

func isStringPrefix(s string) bool {
	if s == "" {
		return false
	}
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20 // lowercase
		if c != 'r' && c != 'b' && c != 'u' && c != 'f' {
			return false
		}
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	if len(s) == 2 {
		// Only r+b or r+f combinations (in either order) are valid.
		lower := strings.ToLower(s)
		valid := map[string]bool{"rb": true, "br": true, "rf": true, "fr": true}
		return valid[lower]
	}
	return true
}

// readString scans a (possibly prefixed, possibly triple-quoted)
// string literal. Escapes are not decoded (spec §4.2); the raw
// lexeme, prefix and quotes included, is retained verbatim.
func (l *Lexer) readString(start token.Position, prefix string) (token.Token, error) {
	startByte := l.pos - len(prefix)
	quote := l.ch
	formatted := strings.ContainsAny(prefix, "fF")

	l.readChar() // consume opening quote
	triple := false
	if l.ch == quote && l.peekChar() == quote {
		triple = true
		l.readChar()
		l.readChar()
	}

	braceDepth := 0
	for {
		switch {
		case l.ch == 0:
			return token.Token{}, pyxerrors.NewUnterminatedString(l.src, start, triple)
		case l.ch == '\n' && !triple:
			return token.Token{}, pyxerrors.NewUnterminatedString(l.src, start, false)
		case l.ch == '\\':
			l.readChar()
			if l.ch != 0 {
				l.readChar()
			}
			continue
		case formatted && l.ch == '{':
			if l.peekChar() == '{' {
				l.readChar()
				l.readChar()
				continue
			}
			braceDepth++
			l.readChar()
			continue
		case formatted && l.ch == '}':
			if braceDepth == 0 && l.peekChar() == '}' {
				l.readChar()
				l.readChar()
				continue
			}
			if braceDepth > 0 {
				braceDepth--
			}
			l.readChar()
			continue
		case l.ch == quote && braceDepth == 0:
			if triple {
				if l.peekChar() == quote && l.peekCharAt(l.readPos+utf8.RuneLen(quote)) == quote {
					l.readChar()
					l.readChar()
					l.readChar()
					lexeme := l.src[startByte:l.pos]
					return token.Token{Kind: token.String, Lexeme: lexeme, Start: start, End: l.here()}, nil
				}
				l.readChar()
				continue
			}
			l.readChar()
			lexeme := l.src[startByte:l.pos]
			return token.Token{Kind: token.String, Lexeme: lexeme, Start: start, End: l.here()}, nil
		default:
			l.readChar()
		}
	}
}

// readNumber scans an integer, float, or imaginary literal, with the
// "integer followed by .method is number-then-dot" heuristic from
// spec §4.2.
func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	startByte := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		l.consumeHexDigits()
	} else if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		l.consumeRunWhile(func(r rune) bool { return (r >= '0' && r <= '7') || r == '_' })
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		l.consumeRunWhile(func(r rune) bool { return r == '0' || r == '1' || r == '_' })
	} else {
		if l.ch == '.' {
			l.readChar()
			l.consumeDecimalDigits()
		} else {
			l.consumeDecimalDigits()
			if l.ch == '.' {
				if isIdentStartRune(l.peekChar()) {
					// "5.method" stays a number-then-dot; don't
					// consume the dot when an attribute access
					// follows (spec §4.2).
				} else {
					l.readChar()
					l.consumeDecimalDigits()
				}
			}
			if l.ch == 'e' || l.ch == 'E' {
				savedPos, savedRead, savedCh, savedLine, savedCol := l.pos, l.readPos, l.ch, l.line, l.col
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				if isDigitRune(l.ch) {
					l.consumeDecimalDigits()
				} else {
					l.pos, l.readPos, l.ch, l.line, l.col = savedPos, savedRead, savedCh, savedLine, savedCol
				}
			}
		}
	}

	if l.ch == 'j' || l.ch == 'J' {
		l.readChar()
	}

	lexeme := l.src[startByte:l.pos]
	return token.Token{Kind: token.Number, Lexeme: lexeme, Start: start, End: l.here()}, nil
}

func (l *Lexer) consumeDecimalDigits() {
	l.consumeRunWhile(func(r rune) bool { return isDigitRune(r) || r == '_' })
}

func (l *Lexer) consumeHexDigits() {
	l.consumeRunWhile(func(r rune) bool {
		return isDigitRune(r) || r == '_' ||
			(r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	})
}

func (l *Lexer) consumeRunWhile(pred func(rune) bool) {
	for pred(l.ch) {
		l.readChar()
	}
}

// operators in longest-match order, per spec §4.2.
var threeCharOps = []string{"**=", "//=", ">>=", "<<=", "..."}
var twoCharOps = []string{
	"==", "!=", "<=", ">=", "<<", ">>", "**", "//", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=", ":=",
}
var oneCharOps = ".,:;()[]{}+-*/%&|^~<>=@!?"

func (l *Lexer) readOperator(start token.Position) (token.Token, error) {
	remaining := l.src[l.pos:]
	for _, op := range threeCharOps {
		if strings.HasPrefix(remaining, op) {
			for range op {
				l.readChar()
			}
			return token.Token{Kind: token.Op, Lexeme: op, Start: start, End: l.here()}, nil
		}
	}
	for _, op := range twoCharOps {
		if strings.HasPrefix(remaining, op) {
			for range op {
				l.readChar()
			}
			return token.Token{Kind: token.Op, Lexeme: op, Start: start, End: l.here()}, nil
		}
	}
	if l.ch < 128 && strings.ContainsRune(oneCharOps, l.ch) {
		op := string(l.ch)
		switch op {
		case "(", "[", "{":
			l.bracketDepth++
		case ")", "]", "}":
			if l.bracketDepth > 0 {
				l.bracketDepth--
			}
		}
		l.readChar()
		return token.Token{Kind: token.Op, Lexeme: op, Start: start, End: l.here()}, nil
	}

	bad := string(l.ch)
	l.readChar()
	return token.Token{}, pyxerrors.NewSyntax(l.src, fmt.Sprintf("invalid character %q", bad), start)
}
