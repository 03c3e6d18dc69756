package timeline

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"github.com/jsphweid/choirscore/logging"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
)

// inRepeat is the open repeat bracket; nil means idle.
type inRepeat struct {
	anchor    int
	count     int
	iteration int
}

// inJump is the running jump; nil means idle.
type inJump struct {
	playUntil  int
	continueAt int
}

type diagnostics struct {
	log  *logging.Logger
	errs []error
}

func (d *diagnostics) report(kind ftag.Kind, msg string) {
	d.log.Warnf("%s: %s", kind, msg)
	d.errs = append(d.errs, fault.New(msg, ftag.With(kind)))
}

// FlattenRepeats unrolls repeat brackets into a sequence of measure visits.
// One bracket is open at a time; a repeat start inside an open bracket replaces it.
// A repeat end without an open bracket replays from the measure after the last
// completed bracket.
func FlattenRepeats(measures []*score.Measure, log *logging.Logger) ([]*score.Measure, []error) {
	diag := &diagnostics{log: log}
	var res []*score.Measure
	var open *inRepeat
	resume := 0
	for i := 0; i < len(measures); {
		m := measures[i]
		if m.RepeatStart && (open == nil || open.anchor != i) {
			if open != nil {
				diag.report(model.AmbiguousRepeatNesting,
					fmt.Sprintf("measure %d opens a repeat inside the one opened at measure %d", i+1, open.anchor+1))
			}
			open = &inRepeat{anchor: i, iteration: 1}
		}
		res = append(res, m)
		if m.RepeatEnd > 0 {
			if open == nil {
				open = &inRepeat{anchor: resume, iteration: 1}
			}
			open.count = m.RepeatEnd
			if open.iteration < open.count {
				open.iteration++
				i = open.anchor
				continue
			}
			open = nil
			resume = i + 1
		}
		i++
	}
	return res, diag.errs
}

func labelIndex(visits []*score.Measure) map[string]int {
	labels := map[string]int{}
	for i, m := range visits {
		for _, l := range m.Labels {
			if _, ok := labels[l]; !ok {
				labels[l] = i
			}
		}
	}
	if _, ok := labels["start"]; !ok {
		labels["start"] = 0
	}
	if _, ok := labels["end"]; !ok && len(visits) > 0 {
		labels["end"] = len(visits) - 1
	}
	return labels
}

// FlattenJumps follows jump directives over already repeat-flattened visits.
// Each jump fires once, however often repeats revisit its measure: playback moves
// to the target label and plays through the play-until label's measure, then moves
// to continue-at. Both default to the measure after the jump.
func FlattenJumps(visits []*score.Measure, log *logging.Logger) ([]*score.Measure, []error) {
	diag := &diagnostics{log: log}
	labels := labelIndex(visits)
	fired := map[*score.Measure]bool{}
	var res []*score.Measure
	var run *inJump
	for pc := 0; pc < len(visits); {
		m := visits[pc]
		res = append(res, m)
		if run != nil && pc+1 >= run.playUntil {
			pc, run = run.continueAt, nil
			continue
		}
		if run == nil && len(m.Jumps) > 0 && !fired[m] {
			fired[m] = true
			j := m.Jumps[0]
			target, ok := labels[j.Target]
			if !ok {
				diag.report(model.UnknownJumpTarget, fmt.Sprintf("jump in visit %d to unknown label %q", pc+1, j.Target))
				pc++
				continue
			}
			run = &inJump{playUntil: pc + 1, continueAt: pc + 1}
			if j.PlayUntil != "" {
				if idx, ok := labels[j.PlayUntil]; ok {
					run.playUntil = idx + 1
				} else {
					diag.report(model.UnknownJumpTarget, fmt.Sprintf("jump in visit %d plays until unknown label %q", pc+1, j.PlayUntil))
				}
			}
			if j.ContinueAt != "" {
				if idx, ok := labels[j.ContinueAt]; ok {
					run.continueAt = idx
				} else {
					diag.report(model.UnknownJumpTarget, fmt.Sprintf("jump in visit %d continues at unknown label %q", pc+1, j.ContinueAt))
				}
			}
			pc = target
			continue
		}
		pc++
	}
	return res, diag.errs
}
