// Package extract derives a new part from two voices: the base voice everywhere,
// overridden by the variation voice wherever the variation has content.
package extract

import (
	"golang.org/x/exp/slices"

	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/score"
)

type item struct {
	e    score.Element
	base bool
	// the matching end marker of a base tuplet start
	end *score.Element
}

// tuplet is a base tuplet being written. It is closed around variation content
// and reopened before its next surviving member.
type tuplet struct {
	start score.Element
	end   *score.Element
	open  bool
}

func overlapsAny(e score.Element, others []score.Element) bool {
	for _, o := range others {
		if e.Overlaps(o) {
			return true
		}
	}
	return false
}

// Overlay returns base with every element that overlaps a variation element
// removed, plus the variation elements, ordered by position. Pinned base
// elements are always kept. At equal positions tuplet ends come first, then the
// original order with base elements before variation elements.
//
// Base tuplet markers are rewritten so that the surviving members of a tuplet stay
// inside it while variation content between them does not.
func Overlay(base []score.Element, variation []score.Element) []score.Element {
	var items []item
	var starts []int
	for _, e := range base {
		switch {
		case e.Kind == score.KindTupletStart:
			starts = append(starts, len(items))
		case e.Kind == score.KindTupletEnd:
			if n := len(starts); n > 0 {
				end := e
				items[starts[n-1]].end = &end
				starts = starts[:n-1]
			}
		case !e.Pinned && overlapsAny(e, variation):
			continue
		}
		items = append(items, item{e: e, base: true})
	}
	for _, e := range variation {
		if !e.Pinned {
			items = append(items, item{e: e})
		}
	}
	slices.SortStableFunc(items, func(a, b item) bool {
		if c, ok := a.e.Position.Cmp(b.e.Position); ok && c != 0 {
			return c < 0
		}
		return a.e.Kind == score.KindTupletEnd && b.e.Kind != score.KindTupletEnd
	})

	var res []score.Element
	var open []*tuplet
	reached := rational.Zero
	for _, it := range items {
		e := it.e
		switch {
		case it.base && e.Kind == score.KindTupletStart:
			open = append(open, &tuplet{start: e, end: it.end})
		case it.base && e.Kind == score.KindTupletEnd:
			n := len(open)
			if n == 0 {
				res = append(res, e)
				continue
			}
			if open[n-1].open {
				res = append(res, e)
			}
			open = open[:n-1]
		case it.base:
			for _, tp := range open {
				if !tp.open {
					start := tp.start
					start.Position = e.Position
					res = append(res, start)
					tp.open = true
				}
			}
			res = append(res, e)
			reached = rational.Max(reached, e.End())
		default:
			if e.Kind == score.KindTupletStart || !e.Nominal.IsZero() {
				for i := len(open) - 1; i >= 0; i-- {
					if tp := open[i]; tp.open && tp.end != nil {
						end := *tp.end
						end.Position = reached
						res = append(res, end)
						tp.open = false
					}
				}
			}
			res = append(res, e)
		}
	}
	return res
}
