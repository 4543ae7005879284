package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// parseNumberLiteral converts a Number token's raw lexeme (underscores,
// base prefixes, exponents, and imaginary `j` suffix all intact) into
// the int64/float64/complex128 payload Constant.Value carries.
func parseNumberLiteral(lexeme string) (any, error) {
	clean := strings.ReplaceAll(lexeme, "_", "")

	imaginary := false
	if strings.HasSuffix(clean, "j") || strings.HasSuffix(clean, "J") {
		imaginary = true
		clean = clean[:len(clean)-1]
	}

	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		n, err := strconv.ParseInt(clean[2:], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hex literal %q: %w", lexeme, err)
		}
		return finishNumber(n, imaginary), nil
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		n, err := strconv.ParseInt(clean[2:], 8, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid octal literal %q: %w", lexeme, err)
		}
		return finishNumber(n, imaginary), nil
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		n, err := strconv.ParseInt(clean[2:], 2, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid binary literal %q: %w", lexeme, err)
		}
		return finishNumber(n, imaginary), nil
	}

	if strings.ContainsAny(clean, ".eE") {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q: %w", lexeme, err)
		}
		if imaginary {
			return complex(0, f), nil
		}
		return f, nil
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(clean, 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid integer literal %q: %w", lexeme, err)
		}
		if imaginary {
			return complex(0, f), nil
		}
		return f, nil
	}
	return finishNumber(n, imaginary), nil
}

func finishNumber(n int64, imaginary bool) any {
	if imaginary {
		return complex(0, float64(n))
	}
	return n
}

// ---------------------------------------------------------------------
// String and f-string literals
// ---------------------------------------------------------------------

// parseStringRun consumes one or more adjacent String tokens (Python's
// implicit literal concatenation) and merges them into a single
// Constant or, if any member is an f-string, a single JoinedStr.
func (p *Parser) parseStringRun() (ast.Expr, error) {
	var parts []ast.Expr
	anyFString := false
	isBytes := false
	first := true

	for p.at(token.String) {
		t := p.advance()
		prefix, body, _ := splitStringToken(t.Lexeme)
		sp := token.ParsePrefix(prefix)
		if first {
			isBytes = sp.Bytes
			first = false
		}
		if sp.Formatted {
			anyFString = true
			fparts, err := parseFStringBody(body, sp.Raw)
			if err != nil {
				return nil, err
			}
			parts = append(parts, fparts...)
		} else {
			parts = append(parts, &ast.Constant{Value: decodeEscapes(body, sp.Raw)})
		}
	}

	if !anyFString {
		var sb strings.Builder
		for _, part := range parts {
			sb.WriteString(part.(*ast.Constant).Value.(string))
		}
		if isBytes {
			return &ast.Constant{Value: ast.Bytes{Value: sb.String()}}, nil
		}
		return &ast.Constant{Value: sb.String()}, nil
	}
	return &ast.JoinedStr{Values: mergeJoinedParts(parts)}, nil
}

// mergeJoinedParts collapses consecutive literal-string Constants (as
// produced across adjacent string tokens, or around a FormattedValue)
// into one, leaving FormattedValue entries untouched.
func mergeJoinedParts(parts []ast.Expr) []ast.Expr {
	var out []ast.Expr
	var pending strings.Builder
	havePending := false
	flush := func() {
		if havePending {
			out = append(out, &ast.Constant{Value: pending.String()})
			pending.Reset()
			havePending = false
		}
	}
	for _, part := range parts {
		if c, ok := part.(*ast.Constant); ok {
			if s, ok2 := c.Value.(string); ok2 {
				pending.WriteString(s)
				havePending = true
				continue
			}
		}
		flush()
		out = append(out, part)
	}
	flush()
	return out
}

// splitStringToken isolates a string token's prefix letters, quote
// body, and whether it was triple-quoted.
func splitStringToken(lexeme string) (prefix, body string, triple bool) {
	i := 0
	for i < len(lexeme) && lexeme[i] != '\'' && lexeme[i] != '"' {
		i++
	}
	prefix = lexeme[:i]
	quote := lexeme[i]
	rest := lexeme[i:]
	if len(rest) >= 6 && rest[1] == quote && rest[2] == quote {
		return prefix, rest[3 : len(rest)-3], true
	}
	return prefix, rest[1 : len(rest)-1], false
}

// decodeEscapes interprets backslash escapes in a non-raw string body:
// the common single-letter escapes, \xHH, \uXXXX, \UXXXXXXXX, and a
// trailing-backslash line continuation. An unrecognized escape is kept
// literally, matching CPython's lenient behavior.
func decodeEscapes(s string, raw bool) string {
	if raw {
		return s
	}
	var b strings.Builder
	n := len(s)
	for i := 0; i < n; {
		c := s[i]
		if c != '\\' || i+1 >= n {
			b.WriteByte(c)
			i++
			continue
		}
		next := s[i+1]
		switch next {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		case '\'':
			b.WriteByte('\'')
			i += 2
		case '"':
			b.WriteByte('"')
			i += 2
		case 'a':
			b.WriteByte(7)
			i += 2
		case 'b':
			b.WriteByte(8)
			i += 2
		case 'f':
			b.WriteByte(12)
			i += 2
		case 'v':
			b.WriteByte(11)
			i += 2
		case '0':
			b.WriteByte(0)
			i += 2
		case '\n':
			i += 2
		case 'x':
			if i+3 < n {
				if v, err := strconv.ParseInt(s[i+2:i+4], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 4
					continue
				}
			}
			b.WriteByte(c)
			i++
		case 'u':
			if i+5 < n {
				if v, err := strconv.ParseInt(s[i+2:i+6], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 6
					continue
				}
			}
			b.WriteByte(c)
			i++
		case 'U':
			if i+9 < n {
				if v, err := strconv.ParseInt(s[i+2:i+10], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 10
					continue
				}
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
			i += 2
		}
	}
	return b.String()
}

// parseFStringBody walks an f-string's inner text (quotes and prefix
// already stripped) producing alternating Constant literal chunks and
// FormattedValue entries (spec §4.3 F-strings). It is also used,
// recursively, to parse a format-spec's own text, which may itself
// embed `{...}` substitutions.
func parseFStringBody(text string, raw bool) ([]ast.Expr, error) {
	var out []ast.Expr
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, &ast.Constant{Value: decodeEscapes(lit.String(), raw)})
			lit.Reset()
		}
	}

	n := len(text)
	for i := 0; i < n; {
		c := text[i]
		switch {
		case c == '{' && i+1 < n && text[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < n && text[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			flush()
			fv, consumed, err := parseFormattedValue(text[i:])
			if err != nil {
				return nil, err
			}
			out = append(out, fv)
			i += consumed
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return out, nil
}

func isConversionChar(c byte) bool {
	return c == 's' || c == 'r' || c == 'a'
}

// parseFormattedValue parses one `{expr[!conv][:spec]}` run starting
// at rest[0] == '{', returning the node and the number of bytes of
// rest it consumed.
func parseFormattedValue(rest string) (ast.Expr, int, error) {
	inner := rest[1:]
	end, marker, err := scanExprEnd(inner)
	if err != nil {
		return nil, 0, err
	}
	exprText := inner[:end]
	idx := end
	conversion := -1

	if marker == '!' {
		conversion = int(inner[idx+1])
		idx += 2
		if idx < len(inner) && inner[idx] == ':' {
			marker = ':'
		}
	}

	var formatSpec ast.Expr
	if marker == ':' {
		if idx < len(inner) && inner[idx] == ':' {
			idx++
		}
		specStart := idx
		depth := 0
		for idx < len(inner) {
			c := inner[idx]
			if c == '{' {
				depth++
			} else if c == '}' {
				if depth == 0 {
					break
				}
				depth--
			}
			idx++
		}
		specParts, err := parseFStringBody(inner[specStart:idx], false)
		if err != nil {
			return nil, 0, err
		}
		formatSpec = &ast.JoinedStr{Values: specParts}
	}

	if idx >= len(inner) || inner[idx] != '}' {
		return nil, 0, fmt.Errorf("unterminated formatted value in f-string")
	}
	idx++

	exprNode, err := ParseExpression(strings.TrimSpace(exprText))
	if err != nil {
		return nil, 0, err
	}
	return &ast.FormattedValue{Value: exprNode, Conversion: conversion, FormatSpec: formatSpec}, 1 + idx, nil
}

// scanExprEnd finds the first depth-0 '!', ':', or '}' in s (an
// f-string expression body), skipping over nested brackets and quoted
// strings so slices and dict/set literals inside the expression don't
// trip false terminators.
func scanExprEnd(s string) (end int, marker byte, err error) {
	depth := 0
	n := len(s)
	for i := 0; i < n; {
		c := s[i]
		switch c {
		case '(', '[', '{':
			depth++
			i++
		case ')', ']', '}':
			if depth == 0 {
				if c == '}' {
					return i, '}', nil
				}
				return 0, 0, fmt.Errorf("unbalanced bracket in f-string expression")
			}
			depth--
			i++
		case '\'', '"':
			quote := c
			i++
			for i < n && s[i] != quote {
				if s[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				i++
			}
			i++
		case '!':
			if depth == 0 && i+1 < n && isConversionChar(s[i+1]) && i+2 < n && (s[i+2] == '}' || s[i+2] == ':') {
				return i, '!', nil
			}
			i++
		case ':':
			if depth == 0 {
				return i, ':', nil
			}
			i++
		default:
			i++
		}
	}
	return 0, 0, fmt.Errorf("unterminated f-string expression")
}
