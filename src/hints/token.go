package hints

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokEq
	tokNeq
	tokGT
	tokLT
	tokGTE
	tokLTE
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokDot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// lex tokenizes an expression. Tokens carry their byte offset so parse and
// validation errors can point at the offending spot.
func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '.':
			toks = append(toks, token{tokDot, ".", i})
			i++
		case c == '=':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokEq, "==", i})
				i += 2
			} else {
				return nil, &ParseError{Pos: i, Msg: "unexpected '='; did you mean '=='?"}
			}
		case c == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokNeq, "!=", i})
				i += 2
			} else {
				toks = append(toks, token{tokNot, "!", i})
				i++
			}
		case c == '>':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokGTE, ">=", i})
				i += 2
			} else {
				toks = append(toks, token{tokGT, ">", i})
				i++
			}
		case c == '<':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokLTE, "<=", i})
				i += 2
			} else {
				toks = append(toks, token{tokLT, "<", i})
				i++
			}
		case c == '&':
			if i+1 < len(input) && input[i+1] == '&' {
				toks = append(toks, token{tokAnd, "&&", i})
				i += 2
			} else {
				return nil, &ParseError{Pos: i, Msg: "unexpected '&'; did you mean '&&'?"}
			}
		case c == '|':
			if i+1 < len(input) && input[i+1] == '|' {
				toks = append(toks, token{tokOr, "||", i})
				i += 2
			} else {
				return nil, &ParseError{Pos: i, Msg: "unexpected '|'; did you mean '||'?"}
			}
		case c == '"':
			tok, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isDigit(c) || (c == '-' && i+1 < len(input) && isDigit(input[i+1])):
			tok, next, err := lexNumber(input, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, input[start:i], start})
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(input)})
	return toks, nil
}

// lexString consumes a double-quoted literal starting at input[start]. The
// returned token text is the unescaped contents.
func lexString(input string, start int) (token, int, error) {
	var out []byte
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case '"':
			return token{tokString, string(out), start}, i + 1, nil
		case '\\':
			if i+1 >= len(input) {
				return token{}, 0, &ParseError{Pos: i, Msg: "unterminated escape sequence"}
			}
			next := input[i+1]
			if next != '"' && next != '\\' {
				return token{}, 0, &ParseError{Pos: i, Msg: fmt.Sprintf("unsupported escape sequence \\%c", next)}
			}
			out = append(out, next)
			i += 2
		default:
			out = append(out, c)
			i++
		}
	}
	return token{}, 0, &ParseError{Pos: start, Msg: "unterminated string literal"}
}

func lexNumber(input string, start int) (token, int, error) {
	i := start
	if input[i] == '-' {
		i++
	}
	for i < len(input) && isDigit(input[i]) {
		i++
	}
	if i < len(input) && input[i] == '.' {
		i++
		if i >= len(input) || !isDigit(input[i]) {
			return token{}, 0, &ParseError{Pos: start, Msg: "malformed number literal"}
		}
		for i < len(input) && isDigit(input[i]) {
			i++
		}
	}
	return token{tokNumber, input[start:i], start}, i, nil
}
