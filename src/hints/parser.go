package hints

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recursive descent with precedence ! > && > ||. Comparison operands are
// primaries, so comparisons do not chain.

type parser struct {
	toks []token
	i    int
}

func parse(input string) (node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, want string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		got := tok.text
		if tok.kind == tokEOF {
			got = "end of expression"
		} else {
			got = fmt.Sprintf("%q", got)
		}
		return token{}, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("expected %s, found %s", want, got)}
	}
	return p.next(), nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		tok := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: "||", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		tok := p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: "&&", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind == tokNot {
		tok := p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notNode{pos: tok.pos, x: x}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenKind]string{
	tokEq:  "==",
	tokNeq: "!=",
	tokGT:  ">",
	tokLT:  "<",
	tokGTE: ">=",
	tokLTE: "<=",
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOps[p.peek().kind]
	if !ok {
		return left, nil
	}
	tok := p.next()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{pos: tok.pos, op: op, l: left, r: right}, nil
}

func (p *parser) parsePrimary() (node, error) {
	var n node
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.next()
		d, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("malformed number %q", tok.text)}
		}
		n = &literalNode{pos: tok.pos, val: numberValue(d)}
	case tokString:
		p.next()
		n = &literalNode{pos: tok.pos, val: stringValue(tok.text)}
	case tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		n = inner
	case tokIdent:
		p.next()
		switch tok.text {
		case "true":
			n = &literalNode{pos: tok.pos, val: boolValue(true)}
		case "false":
			n = &literalNode{pos: tok.pos, val: boolValue(false)}
		default:
			if p.peek().kind == tokLParen {
				call, err := p.parseCall(tok)
				if err != nil {
					return nil, err
				}
				n = call
			} else {
				n = &fieldNode{pos: tok.pos, name: tok.text}
			}
		}
	case tokEOF:
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return p.parsePostfix(n)
}

func (p *parser) parseCall(name token) (node, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	arg, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return &callNode{pos: name.pos, name: name.text, arg: arg}, nil
}

// parsePostfix handles the .contains(...) method call suffix.
func (p *parser) parsePostfix(n node) (node, error) {
	for p.peek().kind == tokDot {
		dot := p.next()
		method, err := p.expect(tokIdent, "method name")
		if err != nil {
			return nil, err
		}
		if method.text != "contains" {
			return nil, &ParseError{Pos: method.pos, Msg: fmt.Sprintf("unknown method %q; only contains is supported", method.text)}
		}
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		n = &containsNode{pos: dot.pos, target: n, arg: arg}
	}
	return n, nil
}
