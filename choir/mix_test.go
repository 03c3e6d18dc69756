package choir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/choir"
	st "github.com/jsphweid/choirscore/score/scoretest"
)

func TestMixes(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MuseScore(
		st.Part{Name: "Sopraan", Measures: []string{st.Measure(st.Dynamic("pp", 33) + st.Chord("whole"))}},
		st.Part{Name: "Piano", Measures: []string{st.Measure(st.Chord("whole"))}},
		st.Part{Name: "Alt", Measures: []string{st.Measure(st.Chord("whole"))}},
	))

	mixes, err := choir.Mixes(doc, nil, choir.MixSettings{SoloVolume: 1, AccompanimentVolume: 0.33, Velocity: 80})
	require.NoError(t, err)
	require.Len(t, mixes, 2)
	assert.Equal("Sopraan", mixes[0].Part)
	assert.Equal("Alt", mixes[1].Part)

	alt := mixes[1].Doc
	assert.InDelta(0.33, alt.Parts[0].Volume, 0.01)
	assert.InDelta(0.33, alt.Parts[1].Volume, 0.01)
	assert.InDelta(1.0, alt.Parts[2].Volume, 0.01)

	dyn := mixes[0].Doc.Staffs[0].Measures[0].Voice(0).Elements[0].Node
	v, _ := mixes[0].Doc.Tree.ChildText(dyn, "velocity")
	assert.Equal("80", v)

	// the source document is untouched
	assert.InDelta(100.0/127, doc.Parts[0].Volume, 1e-9)
	v, _ = doc.Tree.ChildText(doc.Staffs[0].Measures[0].Voice(0).Elements[0].Node, "velocity")
	assert.Equal("33", v)
}
