package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
	rawNode
)

// node is a prefix-preserving XML tree. WordprocessingML relies on exact
// prefixes ("w:", "r:", "mc:Ignorable" lists), so names are kept as written.
type node struct {
	kind     nodeKind
	name     string
	attrs    []attr
	children []*node
	parent   *node
	text     string
}

type attr struct {
	name  string
	value string
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parseXML reads a whole part into a tree rooted at a synthetic element with
// an empty name, which holds the prolog and the document element.
func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{kind: elementNode}
	cur := root
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &node{kind: elementNode, name: qualified(t.Name), parent: cur}
			for _, a := range t.Attr {
				el.attrs = append(el.attrs, attr{name: qualified(a.Name), value: a.Value})
			}
			cur.children = append(cur.children, el)
			cur = el
		case xml.EndElement:
			if cur == root || cur.name != qualified(t.Name) {
				return nil, fmt.Errorf("unexpected end element </%s>", qualified(t.Name))
			}
			cur = cur.parent
		case xml.CharData:
			cur.children = append(cur.children, &node{kind: textNode, text: string(t), parent: cur})
		case xml.ProcInst:
			raw := "<?" + t.Target
			if len(t.Inst) > 0 {
				raw += " " + string(t.Inst)
			}
			cur.children = append(cur.children, &node{kind: rawNode, text: raw + "?>", parent: cur})
		case xml.Comment:
			cur.children = append(cur.children, &node{kind: rawNode, text: "<!--" + string(t) + "-->", parent: cur})
		case xml.Directive:
			cur.children = append(cur.children, &node{kind: rawNode, text: "<!" + string(t) + ">", parent: cur})
		}
	}
	if cur != root {
		return nil, fmt.Errorf("unclosed element <%s>", cur.name)
	}
	if root.firstElement() == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// parseFragment parses markup whose elements become children of parent.
func parseFragment(markup string, parent *node) ([]*node, error) {
	tree, err := parseXML([]byte(markup))
	if err != nil {
		return nil, err
	}
	var out []*node
	for _, c := range tree.children {
		if c.kind == elementNode {
			c.parent = parent
			out = append(out, c)
		}
	}
	return out, nil
}

func (n *node) bytes() []byte {
	var b bytes.Buffer
	n.write(&b)
	return b.Bytes()
}

func (n *node) write(b *bytes.Buffer) {
	switch n.kind {
	case textNode:
		_ = xml.EscapeText(b, []byte(n.text))
		return
	case rawNode:
		b.WriteString(n.text)
		return
	}
	if n.name == "" {
		for _, c := range n.children {
			c.write(b)
		}
		return
	}
	b.WriteByte('<')
	b.WriteString(n.name)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		_ = xml.EscapeText(b, []byte(a.value))
		b.WriteByte('"')
	}
	if len(n.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range n.children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(n.name)
	b.WriteByte('>')
}

func (n *node) firstElement() *node {
	for _, c := range n.children {
		if c.kind == elementNode {
			return c
		}
	}
	return nil
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.kind == elementNode && c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

func (n *node) setAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, attr{name: name, value: value})
}

// findAll returns every descendant element named name, in document order.
func (n *node) findAll(name string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if c.kind != elementNode {
				continue
			}
			if c.name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// innerText concatenates the character data directly below n.
func (n *node) innerText() string {
	var b strings.Builder
	for _, c := range n.children {
		if c.kind == textNode {
			b.WriteString(c.text)
		}
	}
	return b.String()
}

func (n *node) setText(s string) {
	n.children = []*node{{kind: textNode, text: s, parent: n}}
}

func (n *node) remove(child *node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *node) insertAt(i int, child *node) {
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

func (n *node) appendChild(child *node) {
	child.parent = n
	n.children = append(n.children, child)
}
