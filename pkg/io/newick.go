package io

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/tree"
)

// ReadNewick parses every ';'-terminated tree in r. Node names are kept,
// branch lengths and bracketed comments are ignored. Names may be quoted
// with single quotes, with '' standing for a literal quote. Sequences are
// left empty; attach them with [tree.Annotate].
func ReadNewick(r io.Reader) ([]*tree.Node, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	p := &newickParser{src: string(data)}
	var out []*tree.Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}
		t, err := p.parseTree()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, herrors.New(herrors.ErrCodeInvalidFormat, "newick: no trees")
	}
	return out, nil
}

// ImportNewick reads every tree of a Newick file.
func ImportNewick(path string) ([]*tree.Node, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	trees, err := ReadNewick(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trees, nil
}

type newickParser struct {
	src string
	pos int
}

func (p *newickParser) errorf(format string, args ...any) error {
	return herrors.New(herrors.ErrCodeInvalidFormat, "newick offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *newickParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *newickParser) parseTree() (*tree.Node, error) {
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.peek() != ';' {
		return nil, p.errorf("expected ';'")
	}
	p.pos++
	return n, nil
}

func (p *newickParser) parseNode() (*tree.Node, error) {
	n := &tree.Node{}
	if p.peek() == '(' {
		p.pos++
		for {
			c, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case ')':
				p.pos++
			default:
				return nil, p.errorf("expected ',' or ')'")
			}
			break
		}
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	n.Name = name
	if p.peek() == ':' {
		p.pos++
		p.skipSpace()
		for p.pos < len(p.src) && !strings.ContainsRune(",);[ \t\r\n", rune(p.src[p.pos])) {
			p.pos++
		}
	}
	if n.IsLeaf() {
		if n.Name == "" {
			return nil, p.errorf("leaf without a name")
		}
		if err := herrors.ValidateLeafName(n.Name); err != nil {
			return nil, fmt.Errorf("newick offset %d: %w", p.pos, err)
		}
	}
	return n, nil
}

func (p *newickParser) parseName() (string, error) {
	if p.peek() == '\'' {
		p.pos++
		var b strings.Builder
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			p.pos++
			if c != '\'' {
				b.WriteByte(c)
				continue
			}
			if p.pos < len(p.src) && p.src[p.pos] == '\'' {
				b.WriteByte('\'')
				p.pos++
				continue
			}
			return b.String(), nil
		}
		return "", p.errorf("unterminated quoted name")
	}
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("(),:;[ \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.ReplaceAll(p.src[start:p.pos], "_", " "), nil
}

// WriteNewick writes t in Newick format, terminated by ";\n". Only leaf names
// are written; names that need it are quoted.
func WriteNewick(t *tree.Node, w io.Writer) error {
	var b strings.Builder
	writeNewick(&b, t)
	b.WriteString(";\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func writeNewick(b *strings.Builder, n *tree.Node) {
	if n.IsLeaf() {
		b.WriteString(quoteName(n.Name))
		return
	}
	b.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNewick(b, c)
	}
	b.WriteByte(')')
}

func quoteName(name string) string {
	if !strings.ContainsAny(name, "(),:;[]' \t_") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
