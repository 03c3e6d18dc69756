package extract

import (
	"fmt"

	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
	"github.com/jsphweid/choirscore/tree"
)

// Request describes one extraction. Voices are 0-based.
type Request struct {
	Base           *score.Part
	BaseVoice      int
	Variation      *score.Part
	VariationVoice int
	// Cut removes the variation voice from the variation part afterwards.
	Cut  bool
	Name model.PartName
}

func (r Request) String() string {
	return fmt.Sprintf("%q voice %d + %q voice %d -> %q (cut: %v)",
		r.Base.Name, r.BaseVoice+1, r.Variation.Name, r.VariationVoice+1, r.Name.Long, r.Cut)
}

func voiceElements(m *score.Measure, voice int) []score.Element {
	v := m.Voice(voice)
	if v == nil {
		return nil
	}
	return v.Elements
}

// baseElements is the base voice, plus the measure structure from voice 0 when
// the base voice is another one.
func baseElements(m *score.Measure, voice int) []score.Element {
	if voice == 0 {
		return voiceElements(m, 0)
	}
	var res []score.Element
	for _, e := range voiceElements(m, 0) {
		if e.Pinned {
			res = append(res, e)
		}
	}
	return append(res, voiceElements(m, voice)...)
}

// Variation inserts a new part right after req.Base holding the merged voice.
// When the variation part has no such voice nothing changes and the returned
// part is nil. A measure count mismatch fails before the document is touched.
func Variation(doc *score.Document, req Request) (*score.Part, error) {
	log := doc.Logger()
	baseStaff := doc.StaffOf(req.Base)
	if baseStaff == nil {
		return nil, model.Fail(model.MissingStaff,
			fmt.Sprintf("base part %q has no staff", partName(req.Base)),
			"The base part has no staff")
	}
	varStaff := doc.StaffOf(req.Variation)
	if varStaff == nil {
		return nil, model.Fail(model.MissingStaff,
			fmt.Sprintf("variation part %q has no staff", partName(req.Variation)),
			"The variation part has no staff")
	}
	if varStaff.VoiceCount() <= req.VariationVoice {
		log.Infof("skipping %s: no such voice", req)
		return nil, nil
	}
	if len(baseStaff.Measures) != len(varStaff.Measures) {
		return nil, model.Fail(model.StructuralMismatch,
			fmt.Sprintf("base part %q has %d measures, variation part %q has %d",
				req.Base.Name, len(baseStaff.Measures), req.Variation.Name, len(varStaff.Measures)),
			"The base and variation parts have a different number of measures")
	}

	baseMeasures := baseStaff.Measures
	varMeasures := varStaff.Measures
	merged := make([][]score.Element, len(baseMeasures))
	for i := range baseMeasures {
		merged[i] = Overlay(baseElements(baseMeasures[i], req.BaseVoice), voiceElements(varMeasures[i], req.VariationVoice))
	}

	index := doc.PartIndex(req.Base)
	created, err := doc.DuplicatePart(req.Base)
	if err != nil {
		return nil, err
	}
	doc.SetPartName(created, req.Name)
	newStaff := doc.StaffOf(created)
	if newStaff == nil || len(newStaff.Measures) != len(baseMeasures) {
		return nil, model.Fail(model.StructuralMismatch, "duplicated staff does not match its base", "Could not copy the base part")
	}
	targets := make([]tree.Handle, len(newStaff.Measures))
	voices := make([][][]score.Element, len(merged))
	for i, m := range newStaff.Measures {
		targets[i] = m.Node
		voices[i] = [][]score.Element{merged[i]}
	}
	doc.RewriteMeasures(targets, baseMeasures, voices, true)
	if req.Cut {
		for _, m := range varMeasures {
			doc.RemoveVoice(m, req.VariationVoice)
		}
	}
	if err := doc.Reload(); err != nil {
		return nil, err
	}
	log.Infof("extracted %s", req)
	return doc.Parts[index+1], nil
}

func partName(p *score.Part) string {
	if p == nil {
		return ""
	}
	return p.Name
}
