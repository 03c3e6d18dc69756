package score

import (
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/tree"
)

type Kind int

const (
	KindOther Kind = iota
	KindNote
	KindRest
	KindTempo
	KindRehearsalMark
	KindBreath
	KindFermataStart
	KindFermataEnd
	KindTupletStart
	KindTupletEnd
	KindTimeSignature
	KindRepeatStart
	KindRepeatEnd
	KindLabel
	KindJump
)

var kindNames = [...]string{
	"other", "note", "rest", "tempo", "rehearsal-mark", "breath", "fermata-start",
	"fermata-end", "tuplet-start", "tuplet-end", "time-signature", "repeat-start",
	"repeat-end", "label", "jump",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Jump struct {
	Target     string
	PlayUntil  string
	ContinueAt string
}

// Element is one child of a voice with its resolved position in the measure.
// Positions and durations are fractions of a whole note.
type Element struct {
	Kind  Kind
	Node  tree.Handle
	Voice int

	Position rational.Rational
	Duration rational.Rational
	// Nominal is the written duration before tuplet scaling.
	Nominal rational.Rational

	// Simultaneous elements share the position of the previous note (chord members).
	Simultaneous bool
	// Pinned elements carry measure structure (clef, key, time, barlines) and survive overlays.
	Pinned    bool
	Malformed bool

	// Tempo in beats per second. Any element with Tempo > 0 changes the tempo.
	Tempo   float64
	Text    string
	Pause   float64
	Stretch float64
	// Ratio of a tuplet start, normal/actual.
	Ratio   rational.Rational
	TimeSig rational.Rational
	Count   int
	Jump    Jump
}

func (e Element) End() rational.Rational {
	return e.Position.Add(e.Duration)
}

// Overlaps uses half-open intervals. A zero-length element only overlaps another
// zero-length element at the same position.
func (e Element) Overlaps(o Element) bool {
	if e.Duration.IsZero() || o.Duration.IsZero() {
		return e.Duration.IsZero() && o.Duration.IsZero() && e.Position.Equal(o.Position)
	}
	return e.Position.Less(o.End()) && o.Position.Less(e.End())
}

func (e Element) Sounding() bool {
	return e.Kind == KindNote || e.Kind == KindRest
}
