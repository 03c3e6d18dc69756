package score

import (
	"fmt"

	"github.com/jsphweid/choirscore/model"
)

// ExtractRange keeps measures first..last (1-based, inclusive) on every staff.
// Clef, key, time and tempo in force before first are carried into the new first measure.
func (d *Document) ExtractRange(first int, last int) error {
	if len(d.Staffs) == 0 {
		return model.Fail(model.MissingStaff, "document has no staff", "The score contains no staff")
	}
	for _, s := range d.Staffs {
		if first < 1 || last < first || last > len(s.Measures) {
			return model.Fail(model.InvalidRange,
				fmt.Sprintf("range %d..%d outside staff %s with %d measures", first, last, s.ID, len(s.Measures)),
				fmt.Sprintf("Measures %d to %d do not exist in this score", first, last))
		}
	}
	for _, s := range d.Staffs {
		d.impl.extractRange(d, s, first, last)
	}
	return d.Reload()
}

// PrepareMix gives solo the solo volume and every other part the accompaniment
// volume, and flattens all dynamics to one velocity.
func (d *Document) PrepareMix(solo *Part, soloVolume float64, accompaniment float64, velocity int) {
	for _, p := range d.Parts {
		if p.Node == solo.Node {
			d.SetPartVolume(p, soloVolume)
		} else {
			d.SetPartVolume(p, accompaniment)
		}
	}
	d.ReduceDynamics(velocity)
}
