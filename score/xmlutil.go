package score

import (
	"strconv"
	"strings"

	"github.com/jsphweid/choirscore/tree"
)

// innerText joins the text of h and all of its descendants, e.g. for "<text><b>A</b></text>".
func innerText(t *tree.Tree, h tree.Handle) string {
	if h == tree.Nil {
		return ""
	}
	var sb strings.Builder
	var walk func(tree.Handle)
	walk = func(n tree.Handle) {
		sb.WriteString(t.Text(n))
		for _, c := range t.Children(n) {
			walk(c)
		}
	}
	walk(h)
	return strings.TrimSpace(sb.String())
}

func setPlainText(t *tree.Tree, parent tree.Handle, name string, text string) {
	c := t.SetChildText(parent, name, text)
	t.SetChildren(c, nil)
}

func childInt(t *tree.Tree, h tree.Handle, name string) (int, error) {
	s, _ := t.ChildText(h, name)
	return strconv.Atoi(s)
}

func childFloat(t *tree.Tree, h tree.Handle, name string) (float64, error) {
	s, _ := t.ChildText(h, name)
	return strconv.ParseFloat(s, 64)
}

// maxNumericID reads the trailing digits of each staff id ("3", "P12").
func maxNumericID(staffs []*Staff) int {
	res := 0
	for _, s := range staffs {
		if n, ok := trailingNumber(s.ID); ok && n > res {
			res = n
		}
	}
	return res
}

func trailingNumber(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(id[i:])
	return n, err == nil
}
