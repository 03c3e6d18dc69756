package choir_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/choir"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
	st "github.com/jsphweid/choirscore/score/scoretest"
)

func divisi(name string) st.Part {
	return st.Part{Name: name, Measures: []string{
		st.Measure(st.Chord("whole"), st.Chord("whole")),
		st.Measure(st.Chord("whole")),
	}}
}

func single(name string) st.Part {
	return st.Part{Name: name, Measures: []string{
		st.Measure(st.Chord("whole")),
		st.Measure(st.Chord("whole")),
	}}
}

func names(doc *score.Document) []string {
	var res []string
	for _, p := range doc.Parts {
		res = append(res, p.Name)
	}
	return res
}

func voiceCounts(doc *score.Document) []int {
	var res []int
	for _, p := range doc.Parts {
		res = append(res, doc.StaffOf(p).VoiceCount())
	}
	return res
}

func TestVariationsMezzosAndBaritones(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MuseScore(divisi("Sopraan"), divisi("Alt"), single("Tenor"), divisi("Bas")))

	c := choir.New(doc, nil, nil)
	require.NoError(t, c.Variations())
	assert.Empty(c.Diagnostics)
	assert.Equal([]string{
		"Sopraan", "Mezzo-Sopraan", "Alt", "Mezzo-Alt", "Tenor", "Bari-Tenor", "Bas", "Bari-Bas",
	}, names(doc))
	assert.Equal([]int{1, 1, 1, 1, 1, 1, 1, 1}, voiceCounts(doc))
	assert.Equal("B.T.", doc.Parts[5].ShortName)
	for i, p := range doc.Parts {
		assert.Equal([]string{strconv.Itoa(i + 1)}, p.StaffIDs)
	}
}

func TestVariationsUpperDivisiOnly(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MuseScore(divisi("Soprano"), single("Alto")))

	c := choir.New(doc, nil, map[choir.Role]model.PartName{
		choir.MezzoSoprano: {Long: "Mezzo 1", Short: "M1"},
	})
	require.NoError(t, c.ExtractMezzos(doc.Parts[0], doc.Parts[1]))
	assert.Equal([]string{"Soprano", "Mezzo 1", "Alto", "Mezzo-Alt"}, names(doc))
	assert.Equal("M1", doc.Parts[1].ShortName)
	// the soprano divisi feeds both mezzo parts and is cut afterwards
	assert.Equal([]int{1, 1, 1, 1}, voiceCounts(doc))
}

func TestVariationsLowerDivisiOnly(t *testing.T) {
	doc := st.Load(t, st.MuseScore(single("Tenor"), divisi("Bass")))

	c := choir.New(doc, nil, nil)
	require.NoError(t, c.ExtractBaritones(doc.Parts[0], doc.Parts[1]))
	assert.Equal(t, []string{"Tenor", "Bari-Tenor", "Bass", "Bari-Bas"}, names(doc))
	assert.Equal(t, []int{1, 1, 1, 1}, voiceCounts(doc))
}

func TestVariationsSplitWomen(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MuseScore(divisi("Vrouwen"), single("Mannen")))

	c := choir.New(doc, nil, nil)
	require.NoError(t, c.Variations())
	assert.Empty(c.Diagnostics)
	assert.Equal([]string{"Sopraan", "Alt", "Mannen"}, names(doc))
	assert.Equal("S.", doc.Parts[0].ShortName)
	assert.Equal([]int{1, 1, 1}, voiceCounts(doc))
}

func TestVariationsMissingParts(t *testing.T) {
	doc := st.Load(t, st.MuseScore(single("Piano")))

	c := choir.New(doc, nil, nil)
	require.NoError(t, c.Variations())
	require.Len(t, c.Diagnostics, 2)
	for _, err := range c.Diagnostics {
		assert.Equal(t, model.MissingNamedPart, model.KindOf(err))
	}
	assert.Equal(t, []string{"Piano"}, names(doc))
}

func TestVariationsMusicXML(t *testing.T) {
	doc := st.Load(t, st.MusicXML(st.Part{Name: "Mannen", Measures: []string{
		st.Attributes(1, 4, 4) + st.Note(4, 1) + st.Backup(4) + st.Note(4, 2),
	}}))

	c := choir.New(doc, nil, nil)
	require.NoError(t, c.Variations())
	assert.Equal(t, []string{"Tenor", "Bas"}, names(doc))
	assert.Equal(t, "P2", doc.Parts[1].ID)
	assert.Equal(t, []int{1, 1}, voiceCounts(doc))
}
