// Package parser provides the tokenizer shared by the idTech4 text formats.
package parser

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnexpectedEOF is wrapped by the ParseError returned when input runs out.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// ParseError describes a failure to match the expected token stream.
type ParseError struct {
	Msg   string // What went wrong
	Token string // Offending token (empty at end of input)
	Line  int    // 1-based source line of the token
	Err   error  // Optional cause
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s (token %q)", e.Line, e.Msg, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// keptDelims are returned as single-character tokens.
const keptDelims = "{}()"

// DefTokenizer splits def-style text into tokens. Whitespace separates tokens,
// braces and parentheses are tokens of their own, double-quoted strings are a
// single token and // and /* */ comments are skipped.
type DefTokenizer struct {
	data    []byte
	pos     int
	line    int
	tokLine int
}

// NewDefTokenizer creates a tokenizer over data.
func NewDefTokenizer(data []byte) *DefTokenizer {
	return &DefTokenizer{data: data, line: 1, tokLine: 1}
}

// Line returns the line of the most recently returned token.
func (t *DefTokenizer) Line() int {
	return t.tokLine
}

// HasMoreTokens reports whether another token is available.
func (t *DefTokenizer) HasMoreTokens() bool {
	t.skipSpace()
	return t.pos < len(t.data)
}

// NextToken returns the next token.
func (t *DefTokenizer) NextToken() (string, error) {
	t.skipSpace()
	t.tokLine = t.line
	if t.pos >= len(t.data) {
		return "", &ParseError{Msg: "no more tokens", Line: t.line, Err: ErrUnexpectedEOF}
	}

	c := t.data[t.pos]
	switch {
	case isKeptDelim(c):
		t.pos++
		return string(c), nil
	case c == '"':
		return t.readQuoted()
	}

	start := t.pos
	for t.pos < len(t.data) {
		c = t.data[t.pos]
		if isSpace(c) || isKeptDelim(c) || c == '"' || t.atComment() {
			break
		}
		t.pos++
	}
	return string(t.data[start:t.pos]), nil
}

// AssertNextToken consumes the next token and fails unless it equals literal.
func (t *DefTokenizer) AssertNextToken(literal string) error {
	tok, err := t.NextToken()
	if err != nil {
		return &ParseError{Msg: fmt.Sprintf("expected %q", literal), Line: t.tokLine, Err: err}
	}
	if tok != literal {
		return &ParseError{Msg: fmt.Sprintf("expected %q", literal), Token: tok, Line: t.tokLine}
	}
	return nil
}

// Remaining returns the number of unread bytes. Every token left in the input
// takes at least one of them.
func (t *DefTokenizer) Remaining() int {
	return len(t.data) - t.pos
}

// SkipTokens discards n tokens.
func (t *DefTokenizer) SkipTokens(n int) error {
	for i := 0; i < n; i++ {
		if _, err := t.NextToken(); err != nil {
			return err
		}
	}
	return nil
}

// NextInt parses the next token as a signed 32-bit integer.
func (t *DefTokenizer) NextInt() (int, error) {
	tok, err := t.NextToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, &ParseError{Msg: "malformed integer", Token: tok, Line: t.tokLine, Err: err}
	}
	return int(v), nil
}

// NextSize parses the next token as a non-negative integer.
func (t *DefTokenizer) NextSize() (int, error) {
	tok, err := t.NextToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 31)
	if err != nil {
		return 0, &ParseError{Msg: "malformed count", Token: tok, Line: t.tokLine, Err: err}
	}
	return int(v), nil
}

// NextUint parses the next token as an unsigned 32-bit integer.
func (t *DefTokenizer) NextUint() (uint32, error) {
	tok, err := t.NextToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, &ParseError{Msg: "malformed unsigned integer", Token: tok, Line: t.tokLine, Err: err}
	}
	return uint32(v), nil
}

// NextFloat parses the next token as a float.
func (t *DefTokenizer) NextFloat() (float32, error) {
	tok, err := t.NextToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, &ParseError{Msg: "malformed number", Token: tok, Line: t.tokLine, Err: err}
	}
	return float32(v), nil
}

// Errorf builds a ParseError positioned at the last token. cause may be nil.
func (t *DefTokenizer) Errorf(cause error, token string, format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Token: token, Line: t.tokLine, Err: cause}
}

// readQuoted reads a quoted string starting at the opening quote. A closing
// quote followed by a backslash continues the string at the next quote.
func (t *DefTokenizer) readQuoted() (string, error) {
	var buf []byte
	t.pos++ // opening quote

	for {
		for t.pos < len(t.data) && t.data[t.pos] != '"' {
			c := t.data[t.pos]
			if c == '\n' {
				t.line++
			}
			if c == '\\' && t.pos+1 < len(t.data) {
				t.pos++
				switch e := t.data[t.pos]; e {
				case 'n':
					buf = append(buf, '\n')
				case 't':
					buf = append(buf, '\t')
				case '"':
					buf = append(buf, '"')
				default:
					buf = append(buf, '\\', e)
				}
				t.pos++
				continue
			}
			buf = append(buf, c)
			t.pos++
		}
		if t.pos >= len(t.data) {
			return "", &ParseError{Msg: "unterminated string", Line: t.tokLine, Err: ErrUnexpectedEOF}
		}
		t.pos++ // closing quote

		// "a" \ "b" continues the constant
		save, saveLine := t.pos, t.line
		t.skipWhitespace()
		if t.pos >= len(t.data) || t.data[t.pos] != '\\' {
			t.pos, t.line = save, saveLine
			return string(buf), nil
		}
		t.pos++
		t.skipWhitespace()
		if t.pos >= len(t.data) || t.data[t.pos] != '"' {
			return "", &ParseError{Msg: "could not find opening double quote after backslash", Line: t.line}
		}
		t.pos++
	}
}

// skipSpace skips whitespace and comments.
func (t *DefTokenizer) skipSpace() {
	for t.pos < len(t.data) {
		t.skipWhitespace()
		if !t.atComment() {
			return
		}
		if t.data[t.pos+1] == '/' {
			for t.pos < len(t.data) && t.data[t.pos] != '\n' {
				t.pos++
			}
			continue
		}
		t.pos += 2
		for t.pos < len(t.data) {
			if t.data[t.pos] == '*' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '/' {
				t.pos += 2
				break
			}
			if t.data[t.pos] == '\n' {
				t.line++
			}
			t.pos++
		}
	}
}

func (t *DefTokenizer) skipWhitespace() {
	for t.pos < len(t.data) && isSpace(t.data[t.pos]) {
		if t.data[t.pos] == '\n' {
			t.line++
		}
		t.pos++
	}
}

func (t *DefTokenizer) atComment() bool {
	if t.pos+1 >= len(t.data) || t.data[t.pos] != '/' {
		return false
	}
	next := t.data[t.pos+1]
	return next == '/' || next == '*'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isKeptDelim(c byte) bool {
	for i := 0; i < len(keptDelims); i++ {
		if keptDelims[i] == c {
			return true
		}
	}
	return false
}
