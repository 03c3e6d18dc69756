// Package timeline turns a score into chapter markers: repeats and jumps are
// unrolled into measure visits, which are then walked with the running tempo.
package timeline

import (
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
)

type Result struct {
	Markers     []model.ChapterMarker
	Visits      []*score.Measure
	Diagnostics []error
}

// ChapterMarkers reads the main staff of doc. A document without staffs is an error.
func ChapterMarkers(doc *score.Document, opts Options) (*Result, error) {
	staff, err := doc.MainStaff()
	if err != nil {
		return nil, err
	}
	log := doc.Logger()
	visits, repeatDiags := FlattenRepeats(staff.Measures, log)
	visits, jumpDiags := FlattenJumps(visits, log)
	res := &Result{
		Markers: Walk(visits, opts),
		Visits:  visits,
	}
	res.Diagnostics = append(res.Diagnostics, repeatDiags...)
	res.Diagnostics = append(res.Diagnostics, jumpDiags...)
	log.Infof("timeline: %d measures, %d visits, %d markers", len(staff.Measures), len(visits), len(res.Markers))
	return res, nil
}

// Duration is the total playing time of the visits in seconds.
func Duration(visits []*score.Measure, opts Options) float64 {
	_, end := walk(visits, opts)
	return end
}
