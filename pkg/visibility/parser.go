package visibility

import (
	"fmt"
	"strings"
)

type nodeKind uint8

const (
	nodeLabel nodeKind = iota
	nodeAnd
	nodeOr
)

// node is one vertex of the parsed AND/OR tree.
type node struct {
	kind     nodeKind
	label    string
	children []*node
}

func (n *node) eval(auths Authorizations) bool {
	switch n.kind {
	case nodeLabel:
		return auths.Contains(n.label)
	case nodeAnd:
		for _, c := range n.children {
			if !c.eval(auths) {
				return false
			}
		}
		return true
	case nodeOr:
		for _, c := range n.children {
			if c.eval(auths) {
				return true
			}
		}
		return false
	}
	return false
}

func (n *node) collectLabels(out []string) []string {
	if n.kind == nodeLabel {
		return append(out, n.label)
	}
	for _, c := range n.children {
		out = c.collectLabels(out)
	}
	return out
}

// ParseError reports a malformed visibility expression.
type ParseError struct {
	Expression string
	Pos        int
	Msg        string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid visibility %q at position %d: %s", e.Expression, e.Pos, e.Msg)
}

type parser struct {
	s   string
	pos int
}

// parse returns nil for an empty expression.
func parse(expr string) (*node, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	p := &parser{s: expr}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return nil, p.errorf("unexpected %q", p.s[p.pos])
	}
	return n, nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Expression: p.s, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) parseExpr() (*node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	children := []*node{first}
	var op byte
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] == ')' {
			break
		}
		c := p.s[p.pos]
		if c != '&' && c != '|' {
			return nil, p.errorf("expected '&' or '|', found %q", c)
		}
		if op != 0 && c != op {
			return nil, p.errorf("cannot mix '&' and '|' without parentheses")
		}
		op = c
		p.pos++
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	kind := nodeAnd
	if op == '|' {
		kind = nodeOr
	}
	return &node{kind: kind, children: children}, nil
}

func (p *parser) parseTerm() (*node, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, p.errorf("expected label")
	}
	switch c := p.s[p.pos]; {
	case c == '(':
		p.pos++
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return n, nil
	case c == '"':
		return p.parseQuoted()
	case isLabelChar(c):
		start := p.pos
		for p.pos < len(p.s) && isLabelChar(p.s[p.pos]) {
			p.pos++
		}
		return &node{kind: nodeLabel, label: p.s[start:p.pos]}, nil
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) parseQuoted() (*node, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.s) || (p.s[p.pos+1] != '"' && p.s[p.pos+1] != '\\') {
				return nil, p.errorf("invalid escape sequence")
			}
			b.WriteByte(p.s[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			if b.Len() == 0 {
				p.pos = start
				return nil, p.errorf("empty quoted label")
			}
			return &node{kind: nodeLabel, label: b.String()}, nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return nil, p.errorf("unterminated quoted label")
}

func isLabelChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == ':', c == '.', c == '/':
		return true
	}
	return false
}
