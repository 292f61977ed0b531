// Package newick reads and writes Newick trees and implements the gene-tree
// filters used before species-tree inference.
package newick

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tnewick "github.com/TuftsBCB/io/newick"
)

// Node is a tree vertex. Internal nodes may carry a Name, which is usually a
// support value written by the inference program.
type Node struct {
	Name      string
	Length    float64
	HasLength bool
	Children  []*Node
	Parent    *Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Support returns the numeric label of an internal node.
func (n *Node) Support() (float64, bool) {
	if n.IsLeaf() || n.Name == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(n.Name, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Leaves returns the leaf nodes below n in left-to-right order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(x *Node) {
		if x.IsLeaf() {
			out = append(out, x)
		}
	})
	return out
}

// Walk visits n and its descendants in preorder.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// SyntaxError reports where a Newick string stopped making sense.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("newick: %s at offset %d", e.Msg, e.Offset)
}

type parser struct {
	s   string
	pos int
}

// Parse reads a single tree. The trailing semicolon is optional. Plain trees
// are read with the TuftsBCB Newick reader. Trees with quoted labels or
// [comments], which that reader does not handle, and input it rejects are
// read by the local parser, which reports failures as a *SyntaxError.
func Parse(s string) (*Node, error) {
	if !strings.ContainsAny(s, "'[") {
		if n, err := readPlain(s); err == nil {
			return n, nil
		}
	}
	return parseLocal(s)
}

// readPlain reads s with the TuftsBCB reader and checks the result against a
// lexical pass over s, which also recovers whether each branch length was
// written at all.
func readPlain(s string) (*Node, error) {
	text := strings.Join(strings.Fields(s), "")
	if text == "" {
		return nil, errors.New("empty tree")
	}
	if i := strings.IndexByte(text, ';'); i >= 0 && i != len(text)-1 {
		return nil, errors.New("text after ';'")
	}
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	t, err := tnewick.NewReader(strings.NewReader(text)).ReadTree()
	if err != nil {
		return nil, err
	}
	root := &Node{Name: t.Label, Length: readerLength(t.Length)}
	for _, c := range t.Children {
		root.Children = append(root.Children, fromReader(c, root))
	}
	marks := scanMarks(text)
	i := 0
	if !applyMarks(root, marks, &i) || i != len(marks) {
		return nil, errors.New("tree does not match input")
	}
	return root, nil
}

func fromReader(src tnewick.Tree, parent *Node) *Node {
	n := &Node{Name: src.Label, Length: readerLength(src.Length), Parent: parent}
	for _, c := range src.Children {
		n.Children = append(n.Children, fromReader(c, n))
	}
	return n
}

// readerLength returns the reader's branch length, or 0 when none was given.
func readerLength(l *float64) float64 {
	if l == nil {
		return 0
	}
	return *l
}

// mark is the label and length presence of one node as written.
type mark struct {
	label     string
	hasLength bool
}

// scanMarks lists the nodes of a plain Newick string in postorder: every
// ',' ')' or ';' closes exactly one node, whose label and length are the
// text since the previous delimiter.
func scanMarks(text string) []mark {
	var out []mark
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			start = i + 1
		case ',', ')', ';':
			label, _, has := strings.Cut(text[start:i], ":")
			out = append(out, mark{label: label, hasLength: has})
			start = i + 1
		}
	}
	return out
}

func applyMarks(n *Node, marks []mark, i *int) bool {
	for _, c := range n.Children {
		if !applyMarks(c, marks, i) {
			return false
		}
	}
	if *i >= len(marks) || marks[*i].label != n.Name {
		return false
	}
	n.HasLength = marks[*i].hasLength
	if !n.HasLength {
		n.Length = 0
	}
	*i++
	return true
}

func parseLocal(s string) (*Node, error) {
	p := &parser{s: s}
	p.skip()
	if p.pos >= len(p.s) {
		return nil, &SyntaxError{Offset: 0, Msg: "empty tree"}
	}
	root, err := p.node(nil)
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos < len(p.s) && p.s[p.pos] == ';' {
		p.pos++
		p.skip()
	}
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected %q after tree", p.s[p.pos])
	}
	return root, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// skip consumes whitespace and [bracketed] comments.
func (p *parser) skip() {
	for p.pos < len(p.s) {
		switch c := p.s[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.s[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.s)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *parser) node(parent *Node) (*Node, error) {
	n := &Node{Parent: parent}
	p.skip()
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		for {
			c, err := p.node(n)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
			p.skip()
			if p.pos >= len(p.s) {
				return nil, p.errorf("unclosed '('")
			}
			if p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.s[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, p.errorf("expected ',' or ')', got %q", p.s[p.pos])
		}
	}
	p.skip()
	name, err := p.label()
	if err != nil {
		return nil, err
	}
	n.Name = name
	p.skip()
	if p.pos < len(p.s) && p.s[p.pos] == ':' {
		p.pos++
		p.skip()
		start := p.pos
		for p.pos < len(p.s) && !strings.ContainsRune(",);[ \t\r\n", rune(p.s[p.pos])) {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
		if err != nil {
			return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("bad branch length %q", p.s[start:p.pos])}
		}
		n.Length, n.HasLength = v, true
	}
	return n, nil
}

func (p *parser) label() (string, error) {
	if p.pos < len(p.s) && p.s[p.pos] == '\'' {
		p.pos++
		var b strings.Builder
		for p.pos < len(p.s) {
			c := p.s[p.pos]
			if c == '\'' {
				if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
					b.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				return b.String(), nil
			}
			b.WriteByte(c)
			p.pos++
		}
		return "", p.errorf("unterminated quoted label")
	}
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune("(),:;[ \t\r\n'", rune(p.s[p.pos])) {
		p.pos++
	}
	return p.s[start:p.pos], nil
}

// Format writes n as a Newick string terminated by ';'. Branch lengths use
// prec decimal places, or the shortest exact form when prec < 0.
func Format(n *Node, prec int) string {
	var b strings.Builder
	write(&b, n, prec)
	b.WriteByte(';')
	return b.String()
}

func write(b *strings.Builder, n *Node, prec int) {
	if !n.IsLeaf() {
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			write(b, c, prec)
		}
		b.WriteByte(')')
	}
	b.WriteString(quote(n.Name))
	if n.HasLength {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(n.Length, 'f', prec, 64))
	}
}

func quote(name string) string {
	if !strings.ContainsAny(name, "(),:;[]' \t") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Entry is one line of a tree file. Tree is nil when Err is set.
type Entry struct {
	Line int
	Text string
	Tree *Node
	Err  error
}

// ReadTrees parses one tree per non-empty line. Parse failures are reported
// per entry so callers can skip them; only read errors are returned.
func ReadTrees(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	var out []Entry
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		t, err := Parse(text)
		out = append(out, Entry{Line: line, Text: text, Tree: t, Err: err})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
