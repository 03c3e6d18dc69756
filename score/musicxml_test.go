package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/score"
	st "github.com/jsphweid/choirscore/score/scoretest"
	"github.com/jsphweid/choirscore/tree"
)

func divisiMeasure() string {
	return st.Attributes(2, 4, 4) + st.Rehearsal("A") + st.SoundTempo(90) +
		st.Note(4, 1) + st.Note(2, 1) + st.ChordNote(2, 1) + st.Note(2, 1) +
		st.Backup(8) + st.NoteRest(4, 2) + st.Note(4, 2)
}

func TestMusicXMLLayout(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(st.Part{Name: "Sopraan", Measures: []string{
		divisiMeasure(),
		st.RepeatBarline("left", "forward", 0) + st.Note(8, 1) + st.RepeatBarline("right", "backward", 3),
	}}))
	assert.Equal(score.MusicXML, doc.Dialect)
	require.Len(t, doc.Staffs, 1)
	m := doc.Staffs[0].Measures[0]
	assert.Equal("1", m.Number)
	assert.Equal(2, m.Divisions)
	assert.Equal(r(1, 1), m.Length)
	require.Len(t, m.Voices, 2)

	v0 := m.Voice(0).Elements
	assert.Equal([]score.Kind{
		score.KindTimeSignature, score.KindRehearsalMark, score.KindTempo,
		score.KindNote, score.KindNote, score.KindNote, score.KindNote,
	}, kinds(v0))
	assert.Equal([]rational.Rational{r(0, 1), r(0, 1), r(0, 1), r(0, 1), r(1, 2), r(1, 2), r(3, 4)}, positions(v0))
	assert.Equal("A", v0[1].Text)
	assert.Equal(1.5, v0[2].Tempo)
	assert.True(v0[5].Simultaneous)
	assert.Equal(r(1, 4), v0[5].Duration)

	v1 := m.Voice(1).Elements
	assert.Equal([]score.Kind{score.KindRest, score.KindNote}, kinds(v1))
	assert.Equal([]rational.Rational{r(0, 1), r(1, 2)}, positions(v1))
	assert.Equal(2, doc.Staffs[0].VoiceCount())

	m2 := doc.Staffs[0].Measures[1]
	assert.True(m2.RepeatStart)
	assert.Equal(3, m2.RepeatEnd)
	assert.Equal(r(1, 1), m2.Voice(0).Elements[1].Duration)
}

func TestMusicXMLPartMetadata(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(st.Part{Name: "Tenor/Bas", Measures: []string{st.Note(4, 1)}}))
	p := doc.Parts[0]
	assert.Equal("P1", p.ID)
	assert.Equal("Tenor/Bas", p.Name)
	assert.Equal("T.B.", p.ShortName)
	assert.Equal(0.8, p.Volume)

	doc.SetPartName(p, model.PartName{Long: "Tenor", Short: "T."})
	doc.SetPartVolume(p, 0.33)
	require.NoError(t, doc.Reload())
	p = doc.Parts[0]
	assert.Equal("Tenor", p.Name)
	assert.Equal("Tenor", p.LongName)
	assert.Equal("T.", p.ShortName)
	assert.InDelta(0.33, p.Volume, 1e-9)
}

func TestMusicXMLDuplicatePartRenumbers(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(
		st.Part{Name: "Sopraan", Measures: []string{divisiMeasure()}},
		st.Part{Name: "Alt", Measures: []string{st.Attributes(2, 4, 4) + st.Note(8, 1)}},
	))
	cp, err := doc.DuplicatePart(doc.Parts[0])
	require.NoError(t, err)
	require.Len(t, doc.Parts, 3)
	assert.Equal("P2", cp.ID)
	assert.Equal("Sopraan", cp.Name)
	assert.Equal("P3", doc.Parts[2].ID)
	assert.Equal("Alt", doc.Parts[2].Name)

	ids := []string{}
	for _, s := range doc.Staffs {
		ids = append(ids, s.ID)
	}
	assert.Equal([]string{"P1", "P2", "P3"}, ids)

	si := doc.Tree.FirstChild(doc.Parts[2].Node, "score-instrument")
	id, _ := doc.Tree.Attr(si, "id")
	assert.Equal("P3-I1", id)
	si = doc.Tree.FirstChild(cp.Node, "score-instrument")
	id, _ = doc.Tree.Attr(si, "id")
	assert.Equal("P2-I1", id)
	assert.Len(doc.StaffOf(doc.Parts[2]).Measures[0].Voices, 1)
}

func TestMusicXMLDuplicatePartRetagsNoteInstruments(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(
		st.Part{Name: "Sopraan", Measures: []string{st.Attributes(1, 4, 4) + st.InstrumentNote(1, 4, 1)}},
		st.Part{Name: "Alt", Measures: []string{st.Attributes(1, 4, 4) + st.InstrumentNote(2, 4, 1)}},
	))
	_, err := doc.DuplicatePart(doc.Parts[0])
	require.NoError(t, err)

	var got []string
	for _, s := range doc.Staffs {
		in := doc.Tree.Find(s.Measures[0].Node, "note", "instrument")
		require.NotEqual(t, tree.Nil, in)
		id, _ := doc.Tree.Attr(in, "id")
		got = append(got, s.ID+":"+id)
	}
	assert.Equal([]string{"P1:P1-I1", "P2:P2-I1", "P3:P3-I1"}, got)
}

func TestMusicXMLRewriteAndRemoveVoice(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(st.Part{Name: "Sopraan", Measures: []string{divisiMeasure()}}))
	m := doc.Staffs[0].Measures[0]

	// the attributes plus the second voice, written as voice 1
	elems := append([]score.Element{m.Voice(0).Elements[0]}, m.Voice(1).Elements...)
	doc.RewriteMeasure(m.Node, m, [][]score.Element{elems}, true)
	require.NoError(t, doc.Reload())
	m = doc.Staffs[0].Measures[0]
	require.Len(t, m.Voices, 1)
	assert.Equal([]rational.Rational{r(0, 1), r(0, 1), r(1, 2)}, positions(m.Voice(0).Elements))
	v, _ := doc.Tree.ChildText(m.Voice(0).Elements[2].Node, "voice")
	assert.Equal("1", v)
	assert.Empty(doc.Tree.ChildrenNamed(m.Node, "backup"))

	doc = st.Load(t, st.MusicXML(st.Part{Name: "Sopraan", Measures: []string{divisiMeasure()}}))
	m = doc.Staffs[0].Measures[0]
	doc.RemoveVoice(m, 1)
	require.NoError(t, doc.Reload())
	m = doc.Staffs[0].Measures[0]
	assert.Len(m.Voices, 1)
	assert.Len(m.Voice(0).Elements, 7)
	assert.Equal(r(3, 4), m.Voice(0).Elements[6].Position)
}

func TestMusicXMLRewriteRescalesDivisions(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(
		st.Part{Name: "Sopraan", Measures: []string{st.Attributes(1, 4, 4) + st.Note(4, 1)}},
		st.Part{Name: "Alt", Measures: []string{st.Attributes(4, 4, 4) + st.Note(8, 1) + st.Note(8, 1)}},
	))
	target := doc.Staffs[0].Measures[0]
	var elems []score.Element
	elems = append(elems, target.Voice(0).Elements[0])
	elems = append(elems, doc.Staffs[1].Measures[0].Voice(0).Elements[1:]...)
	doc.RewriteMeasure(target.Node, target, [][]score.Element{elems}, true)
	require.NoError(t, doc.Reload())

	notes := doc.Tree.ChildrenNamed(doc.Staffs[0].Measures[0].Node, "note")
	require.Len(t, notes, 2)
	d, _ := doc.Tree.ChildText(notes[0], "duration")
	assert.Equal("2", d)
	assert.Equal(r(1, 2), doc.Staffs[0].Measures[0].Voice(0).Elements[2].Position)
}

func TestMusicXMLDynamicsAndRange(t *testing.T) {
	assert := assert.New(t)
	doc := st.Load(t, st.MusicXML(st.Part{Name: "Sopraan", Measures: []string{
		`<print new-system="yes"/>` + st.Attributes(2, 3, 4) + st.SoundTempo(60) + st.DynamicDirection("p", 54) + st.Note(6, 1),
		`<direction><direction-type><dynamics><f/></dynamics></direction-type></direction>` + st.Note(6, 1),
		st.Note(6, 1),
	}}))
	doc.ReduceDynamics(80)
	for _, snd := range doc.Tree.Descendants(doc.Tree.Root, "sound") {
		if v, ok := doc.Tree.Attr(snd, "dynamics"); ok {
			assert.Equal("80", v)
		}
	}
	assert.Len(doc.Tree.Descendants(doc.Tree.Root, "sound"), 3)

	require.NoError(t, doc.ExtractRange(2, 3))
	ms := doc.Staffs[0].Measures
	require.Len(t, ms, 2)
	assert.Equal("1", ms[0].Number)
	assert.Equal("2", ms[1].Number)
	assert.Equal(2, ms[0].Divisions)
	assert.Equal(r(3, 4), ms[0].Length)
	assert.Equal(r(3, 4), ms[0].Voice(0).Elements[len(ms[0].Voice(0).Elements)-1].Duration)

	children := doc.Tree.Children(ms[0].Node)
	assert.Equal("print", doc.Tree.Name(children[0]))
	assert.Equal("attributes", doc.Tree.Name(children[1]))
	assert.Equal("direction", doc.Tree.Name(children[2]))
	var tempo float64
	for _, e := range ms[0].Voice(0).Elements {
		if e.Tempo > 0 {
			tempo = e.Tempo
		}
	}
	assert.Equal(1.0, tempo)
}
