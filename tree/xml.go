package tree

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Decode reads an XML document. Prefixes are kept as written ("xml:lang").
// Whitespace-only character data is dropped; comments and processing
// instructions other than the declaration are not kept.
func Decode(r io.Reader) (*Tree, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	t := &Tree{Root: Nil}
	var stack []Handle
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tree: decode: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			h := t.NewNode(qualified(tok.Name))
			for _, a := range tok.Attr {
				t.nodes[h].attrs = append(t.nodes[h].attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if t.Root != Nil {
					return nil, errors.New("tree: decode: more than one root element")
				}
				t.Root = h
			} else {
				t.Append(stack[len(stack)-1], h)
			}
			stack = append(stack, h)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("tree: decode: unexpected </%s>", qualified(tok.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 || strings.TrimSpace(string(tok)) == "" {
				continue
			}
			top := stack[len(stack)-1]
			if kids := t.nodes[top].children; len(kids) > 0 {
				if last := kids[len(kids)-1]; t.nodes[last].name == "" {
					t.nodes[last].text += string(tok)
				} else {
					t.Append(top, t.NewTextNode("", string(tok)))
				}
				continue
			}
			t.nodes[top].text += string(tok)
		case xml.Directive:
			if len(stack) == 0 {
				t.Doctype = string(tok)
			}
		}
	}
	if t.Root == Nil {
		return nil, errors.New("tree: decode: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("tree: decode: unclosed <%s>", t.Name(stack[len(stack)-1]))
	}
	return t, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Encode writes the document as UTF-8 with two space indentation.
func Encode(w io.Writer, t *Tree) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xml.Header)
	if t.Doctype != "" {
		bw.WriteString("<!" + t.Doctype + ">\n")
	}
	if err := t.encodeNode(bw, t.Root, 0, false); err != nil {
		return err
	}
	return bw.Flush()
}

func (t *Tree) mixed(h Handle) bool {
	for _, c := range t.nodes[h].children {
		if t.nodes[c].name == "" {
			return true
		}
	}
	return false
}

// encodeNode indents element-only content. Inside mixed content nothing is
// added, so text runs and elements come out in their original order.
func (t *Tree) encodeNode(w *bufio.Writer, h Handle, depth int, inline bool) error {
	n := t.nodes[h]
	if n.name == "" {
		return xml.EscapeText(w, []byte(n.text))
	}
	indent, newline := strings.Repeat("  ", depth), "\n"
	if inline {
		indent, newline = "", ""
	}
	w.WriteString(indent + "<" + n.name)
	for _, a := range n.attrs {
		w.WriteString(" " + a.Name + `="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteString(`"`)
	}
	if len(n.children) == 0 && n.text == "" {
		w.WriteString("/>" + newline)
		return nil
	}
	w.WriteString(">")
	if err := xml.EscapeText(w, []byte(n.text)); err != nil {
		return err
	}
	if len(n.children) > 0 {
		mixed := inline || n.text != "" || t.mixed(h)
		if !mixed {
			w.WriteString("\n")
		}
		for _, c := range n.children {
			if err := t.encodeNode(w, c, depth+1, mixed); err != nil {
				return err
			}
		}
		if !mixed {
			w.WriteString(indent)
		}
	}
	_, err := w.WriteString("</" + n.name + ">" + newline)
	return err
}
