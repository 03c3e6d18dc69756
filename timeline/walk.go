package timeline

import (
	"github.com/jsphweid/choirscore/constants"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/score"
)

type Options struct {
	// beats (quarter notes) per second until the score sets one
	DefaultTempo float64
}

func DefaultOptions() Options {
	return Options{DefaultTempo: constants.DefaultTempo}
}

// anchor is the last point where time and position were pinned together.
type anchor struct {
	time     float64
	position rational.Rational
}

func seconds(wholeNotes rational.Rational, tempo float64) float64 {
	return 4 * wholeNotes.Float64() / tempo
}

// Walk converts measure visits to wall-clock time and emits a marker for every
// rehearsal mark found in the first voice.
func Walk(visits []*score.Measure, opts Options) []model.ChapterMarker {
	res, _ := walk(visits, opts)
	return res
}

func walk(visits []*score.Measure, opts Options) ([]model.ChapterMarker, float64) {
	tempo := opts.DefaultTempo
	if tempo <= 0 {
		tempo = constants.DefaultTempo
	}
	timeSig := rational.New(constants.DefaultTimeSigNumerator, constants.DefaultTimeSigDenominator)
	measureStart := 0.0
	var res []model.ChapterMarker

	for _, m := range visits {
		if !m.TimeSig.IsZero() {
			timeSig = m.TimeSig
		}
		length := timeSig
		if !m.LenOverride.IsZero() {
			length = m.LenOverride
		}
		at := anchor{time: measureStart, position: rational.Zero}
		extra := 0.0
		// a fermata only stretches the next sounding element in its own measure
		stretch := 0.0

		var elems []score.Element
		if v := m.Voice(0); v != nil {
			elems = v.Elements
		}
		for _, e := range elems {
			if e.Kind == score.KindFermataStart {
				stretch = e.Stretch
			} else if stretch > 0 && e.Sounding() && !e.Nominal.IsZero() {
				extra += (stretch - 1) * seconds(e.Nominal, tempo)
				stretch = 0
			}
			since := seconds(e.Position.Sub(at.position), tempo)
			if e.Tempo > 0 {
				at = anchor{time: at.time + since + extra, position: e.Position}
				since, extra = 0, 0
				tempo = e.Tempo
			}
			switch e.Kind {
			case score.KindRehearsalMark:
				res = append(res, model.ChapterMarker{Mark: e.Text, Time: at.time + since + extra})
			case score.KindBreath:
				extra += e.Pause
			}
		}
		measureStart = at.time + seconds(length.Sub(at.position), tempo) + extra
	}
	return res, measureStart
}
