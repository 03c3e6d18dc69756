// Package tree holds a mutable XML-like document as an arena of nodes.
// Nodes are addressed by Handle; a parent is found by lookup, never stored.
package tree

import "strings"

type Handle int32

const Nil Handle = -1

type Attr struct {
	Name  string
	Value string
}

// A node with an empty name is a run of character data that follows an element
// in mixed content, as in the " world" of <text>hello <b>big</b> world</text>.
type node struct {
	name     string
	attrs    []Attr
	children []Handle
	text     string
}

type Tree struct {
	nodes []node
	Root  Handle
	// Doctype is the raw <!DOCTYPE ...> directive, if any, without the angle brackets.
	Doctype string
}

// Copy returns an independent deep copy; handles stay valid in the copy.
func (t *Tree) Copy() *Tree {
	res := &Tree{Root: t.Root, Doctype: t.Doctype, nodes: make([]node, len(t.nodes))}
	for i, n := range t.nodes {
		res.nodes[i] = node{
			name:     n.name,
			text:     n.text,
			attrs:    append([]Attr(nil), n.attrs...),
			children: append([]Handle(nil), n.children...),
		}
	}
	return res
}

func (t *Tree) valid(h Handle) bool {
	return h >= 0 && int(h) < len(t.nodes)
}

// NewNode creates a detached node.
func (t *Tree) NewNode(name string) Handle {
	t.nodes = append(t.nodes, node{name: name})
	return Handle(len(t.nodes) - 1)
}

// NewTextNode creates a detached <name>text</name> node.
func (t *Tree) NewTextNode(name string, text string) Handle {
	h := t.NewNode(name)
	t.nodes[h].text = text
	return h
}

func (t *Tree) Name(h Handle) string {
	if !t.valid(h) {
		return ""
	}
	return t.nodes[h].name
}

func (t *Tree) Attr(h Handle, name string) (string, bool) {
	if !t.valid(h) {
		return "", false
	}
	for _, a := range t.nodes[h].attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (t *Tree) SetAttr(h Handle, name string, value string) {
	n := &t.nodes[h]
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// Text is the character data before the first child element. Later runs of
// mixed content are unnamed children.
func (t *Tree) Text(h Handle) string {
	if !t.valid(h) {
		return ""
	}
	return t.nodes[h].text
}

func (t *Tree) SetText(h Handle, text string) {
	t.nodes[h].text = text
}

func (t *Tree) Children(h Handle) []Handle {
	if !t.valid(h) {
		return nil
	}
	return append([]Handle(nil), t.nodes[h].children...)
}

func (t *Tree) ChildrenNamed(h Handle, name string) []Handle {
	if !t.valid(h) {
		return nil
	}
	var res []Handle
	for _, c := range t.nodes[h].children {
		if t.nodes[c].name == name {
			res = append(res, c)
		}
	}
	return res
}

// FirstChild returns Nil when there is no child with that name.
func (t *Tree) FirstChild(h Handle, name string) Handle {
	if !t.valid(h) {
		return Nil
	}
	for _, c := range t.nodes[h].children {
		if t.nodes[c].name == name {
			return c
		}
	}
	return Nil
}

// Find follows a path of child names, e.g. Find(part, "Instrument", "longName").
func (t *Tree) Find(h Handle, path ...string) Handle {
	for _, name := range path {
		h = t.FirstChild(h, name)
		if h == Nil {
			return Nil
		}
	}
	return h
}

// ChildText returns the trimmed text of the first child with the given name.
func (t *Tree) ChildText(h Handle, name string) (string, bool) {
	c := t.FirstChild(h, name)
	if c == Nil {
		return "", false
	}
	return strings.TrimSpace(t.nodes[c].text), true
}

// SetChildText sets the text of the first child with that name, appending one if needed.
func (t *Tree) SetChildText(h Handle, name string, text string) Handle {
	c := t.FirstChild(h, name)
	if c == Nil {
		c = t.NewNode(name)
		t.Append(h, c)
	}
	t.nodes[c].text = text
	return c
}

// Descendants lists every node below h (depth first) whose name matches.
func (t *Tree) Descendants(h Handle, name string) []Handle {
	var res []Handle
	var walk func(Handle)
	walk = func(n Handle) {
		for _, c := range t.nodes[n].children {
			if t.nodes[c].name == name {
				res = append(res, c)
			}
			walk(c)
		}
	}
	if t.valid(h) {
		walk(h)
	}
	return res
}

func (t *Tree) Append(parent Handle, child Handle) {
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// InsertAt splices child into parent's children at index (clamped to the ends).
func (t *Tree) InsertAt(parent Handle, index int, child Handle) {
	kids := t.nodes[parent].children
	if index < 0 {
		index = 0
	}
	if index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, Nil)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	t.nodes[parent].children = kids
}

// InsertAfter places child right after sibling, or at the end if sibling is not a child.
func (t *Tree) InsertAfter(parent Handle, sibling Handle, child Handle) {
	i := t.IndexOf(parent, sibling)
	if i < 0 {
		t.Append(parent, child)
		return
	}
	t.InsertAt(parent, i+1, child)
}

func (t *Tree) IndexOf(parent Handle, child Handle) int {
	for i, c := range t.nodes[parent].children {
		if c == child {
			return i
		}
	}
	return -1
}

func (t *Tree) Remove(parent Handle, child Handle) bool {
	i := t.IndexOf(parent, child)
	if i < 0 {
		return false
	}
	kids := t.nodes[parent].children
	t.nodes[parent].children = append(kids[:i], kids[i+1:]...)
	return true
}

func (t *Tree) SetChildren(parent Handle, children []Handle) {
	t.nodes[parent].children = append([]Handle(nil), children...)
}

// Parent scans the arena from the root; Nil for the root and detached nodes.
func (t *Tree) Parent(h Handle) Handle {
	var found Handle = Nil
	var walk func(Handle) bool
	walk = func(n Handle) bool {
		for _, c := range t.nodes[n].children {
			if c == h {
				found = n
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	if t.valid(t.Root) {
		walk(t.Root)
	}
	return found
}

// Clone deep-copies h into a new detached subtree.
func (t *Tree) Clone(h Handle) Handle {
	src := t.nodes[h]
	res := t.NewNode(src.name)
	t.nodes[res].text = src.text
	t.nodes[res].attrs = append([]Attr(nil), src.attrs...)
	for _, c := range src.children {
		t.Append(res, t.Clone(c))
	}
	return res
}
