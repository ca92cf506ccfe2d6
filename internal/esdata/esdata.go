// Package esdata reads and writes the Endless Sky data file format: one node
// per line, tokens separated by whitespace, nesting expressed by leading
// indentation, "#" comments and "..." or `...` quoting.
package esdata

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Node is one line of a data file and the lines nested under it.
type Node struct {
	Tokens   []string
	Children []*Node
}

// NewNode creates a detached node.
func NewNode(tokens ...string) *Node {
	return &Node{Tokens: tokens}
}

// Key returns the first token, or "" for an empty node.
func (n *Node) Key() string {
	if len(n.Tokens) == 0 {
		return ""
	}
	return n.Tokens[0]
}

// Value returns token i, or "" if the node is shorter.
func (n *Node) Value(i int) string {
	if i < 0 || i >= len(n.Tokens) {
		return ""
	}
	return n.Tokens[i]
}

// Add appends a child built from tokens and returns it.
func (n *Node) Add(tokens ...string) *Node {
	child := NewNode(tokens...)
	n.Children = append(n.Children, child)
	return child
}

// Child returns the first direct child whose key matches.
func (n *Node) Child(key string) *Node {
	for _, c := range n.Children {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	out := &Node{Tokens: append([]string(nil), n.Tokens...)}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// Parse reads every root node of a document.
func Parse(text string) []*Node {
	var roots []*Node
	type frame struct {
		depth int
		node  *Node
	}
	var stack []frame

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		depth := 0
		for depth < len(line) && (line[depth] == '\t' || line[depth] == ' ') {
			depth++
		}
		tokens := tokenize(line[depth:])
		if len(tokens) == 0 {
			continue
		}

		node := NewNode(tokens...)
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, frame{depth: depth, node: node})
	}
	return roots
}

func tokenize(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) || s[i] == '#' {
			break
		}
		if q := s[i]; q == '"' || q == '`' {
			end := strings.IndexByte(s[i+1:], q)
			if end < 0 {
				tokens = append(tokens, s[i+1:])
				break
			}
			tokens = append(tokens, s[i+1:i+1+end])
			i += end + 2
			continue
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		tokens = append(tokens, s[start:i])
	}
	return tokens
}

// Write serializes nodes with tab indentation.
func Write(w io.Writer, nodes []*Node) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if err := writeNode(bw, n, 0); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String serializes nodes to a string with no trailing newline.
func String(nodes []*Node) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = Write(&sb, nodes)
	return strings.TrimRight(sb.String(), "\n")
}

func writeNode(w *bufio.Writer, n *Node, depth int) error {
	if len(n.Tokens) == 0 {
		return nil
	}
	parts := make([]string, len(n.Tokens))
	for i, tok := range n.Tokens {
		parts[i] = Quote(tok)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("\t", depth), strings.Join(parts, " ")); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Quote returns tok in the form the game reads back as a single token.
func Quote(tok string) string {
	if tok != "" && !strings.ContainsAny(tok, " \t\"`#") {
		return tok
	}
	if strings.Contains(tok, `"`) {
		return "`" + tok + "`"
	}
	return `"` + tok + `"`
}
