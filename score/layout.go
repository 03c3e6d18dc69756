package score

import (
	"fmt"

	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
)

// step is either a cursor move (PositionAdvance) or an element.
type step struct {
	advance   rational.Rational
	isAdvance bool
	element   Element
}

func advanceStep(r rational.Rational) step {
	return step{advance: r, isAdvance: true}
}

func elementStep(e Element) step {
	return step{element: e}
}

// layout assigns positions and durations. The cursor starts at 0 and the tuplet
// stack at [1]; advances and durations are scaled by the top of the stack.
// It returns the elements and the furthest position reached.
func (d *Document) layout(steps []step, where string) ([]Element, rational.Rational) {
	pos := rational.Zero
	furthest := rational.Zero
	stack := []rational.Rational{rational.One}
	last := rational.Zero
	var res []Element
	for _, s := range steps {
		top := stack[len(stack)-1]
		if s.isAdvance {
			pos = pos.Add(s.advance.Mul(top))
			furthest = rational.Max(furthest, pos)
			continue
		}
		e := s.element
		if e.Malformed || !e.Nominal.IsFinite() {
			e.Nominal = rational.Zero
		}
		switch e.Kind {
		case KindTupletStart:
			e.Position = pos
			stack = append(stack, top.Mul(e.Ratio))
		case KindTupletEnd:
			e.Position = pos
			if len(stack) == 1 {
				d.report(model.UnbalancedTuplet, fmt.Sprintf("%s: tuplet end without start", where))
			} else {
				stack = stack[:len(stack)-1]
			}
		default:
			e.Duration = e.Nominal.Mul(top)
			if e.Simultaneous {
				e.Position = last
			} else {
				e.Position = pos
				pos = pos.Add(e.Duration)
				if e.Sounding() {
					last = e.Position
				}
			}
		}
		furthest = rational.Max(furthest, rational.Max(pos, e.End()))
		res = append(res, e)
	}
	if len(stack) > 1 {
		d.report(model.UnbalancedTuplet, fmt.Sprintf("%s: %d tuplet(s) left open", where, len(stack)-1))
	}
	return res, furthest
}

// voiceWriter receives the re-emitted content of one voice.
type voiceWriter interface {
	advance(delta rational.Rational, scale rational.Rational)
	element(e Element)
}

// emitVoice writes elems (sorted by position) so that laying the result out again
// reproduces their positions. It returns the cursor after the last element.
func emitVoice(elems []Element, start rational.Rational, w voiceWriter) rational.Rational {
	cursor := start
	stack := []rational.Rational{rational.One}
	for _, e := range elems {
		top := stack[len(stack)-1]
		if !e.Simultaneous && !e.Position.Equal(cursor) {
			w.advance(e.Position.Sub(cursor), top)
			cursor = e.Position
		}
		w.element(e)
		switch e.Kind {
		case KindTupletStart:
			stack = append(stack, top.Mul(e.Ratio))
		case KindTupletEnd:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			if !e.Simultaneous {
				cursor = cursor.Add(e.Nominal.Mul(top))
			}
		}
	}
	return cursor
}
