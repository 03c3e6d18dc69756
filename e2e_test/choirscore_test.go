//go:build e2e
// +build e2e

package e2e_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/cmd"
	"github.com/jsphweid/choirscore/file"
	"github.com/jsphweid/choirscore/midi"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
	st "github.com/jsphweid/choirscore/score/scoretest"
)

func writeScore(t *testing.T, name string, xml string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o644))
	return path
}

func load(t *testing.T, path string) *score.Document {
	f, err := file.Load(path)
	require.NoError(t, err)
	doc, err := score.Load(f.Tree, nil)
	require.NoError(t, err)
	return doc
}

func partNames(doc *score.Document) []string {
	var res []string
	for _, p := range doc.Parts {
		res = append(res, p.Name)
	}
	return res
}

func TestChaptersE2E(t *testing.T) {
	assert := assert.New(t)
	path := writeScore(t, "song.mscx", st.MuseScore(st.Part{Name: "Sopraan", Measures: []string{
		st.Measure(st.Rest("half") + st.Mark("A") + st.Rest("half")),
		st.Measure(st.Mark("B") + st.MeasureRest("4/4")),
	}}))

	require.NoError(t, cmd.Run("chapters", path, "--midi"))

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "song-chapters.json"))
	require.NoError(t, err)
	var markers []model.ChapterMarker
	require.NoError(t, json.Unmarshal(data, &markers))
	assert.Equal([]model.ChapterMarker{{Mark: "A", Time: 1}, {Mark: "B", Time: 2}}, markers)

	s, err := midi.ReadMidiFile(filepath.Join(filepath.Dir(path), "song-chapters.mid"))
	require.NoError(t, err)
	fromMidi, err := midi.ReadMarkers(s)
	require.NoError(t, err)
	require.Len(t, fromMidi, 2)
	assert.InDelta(2.0, fromMidi[1].Time, 1e-3)
}

func TestVariationsE2E(t *testing.T) {
	path := writeScore(t, "song.mscx", st.MuseScore(
		st.Part{Name: "Sopraan", Measures: []string{st.Measure(st.Chord("whole"), st.Chord("whole"))}},
		st.Part{Name: "Alt", Measures: []string{st.Measure(st.Chord("whole"))}},
	))
	out := filepath.Join(filepath.Dir(path), "split.mscx")

	require.NoError(t, cmd.Run("variations", path, "-o", out))

	doc := load(t, out)
	assert.Equal(t, []string{"Sopraan", "Mezzo-Sopraan", "Alt", "Mezzo-Alt"}, partNames(doc))
	assert.Equal(t, []string{"Sopraan", "Alt"}, partNames(load(t, path)))
}

func TestVariationE2E(t *testing.T) {
	path := writeScore(t, "song.musicxml", st.MusicXML(st.Part{Name: "Tenor/Bas", Measures: []string{
		st.Attributes(1, 4, 4) + st.Note(4, 1) + st.Backup(4) + st.Note(4, 2),
	}}))

	require.NoError(t, cmd.Run("variation", path, "P1", "1", "tenor/bas", "2", "Bas", "--cut"))

	doc := load(t, filepath.Join(filepath.Dir(path), "song-variation.musicxml"))
	assert.Equal(t, []string{"Tenor/Bas", "Bas"}, partNames(doc))
	assert.Equal(t, 1, doc.StaffOf(doc.Parts[0]).VoiceCount())
}

func TestVariationUnknownPartE2E(t *testing.T) {
	path := writeScore(t, "song.mscx", st.MuseScore(st.Part{Name: "Sopraan", Measures: []string{st.Measure(st.Chord("whole"))}}))
	err := cmd.Run("variation", path, "Sopraan", "1", "Alt", "2", "Mezzo-Alt")
	require.Error(t, err)
	assert.Equal(t, model.MissingNamedPart, model.KindOf(err))
}

func TestMixE2E(t *testing.T) {
	path := writeScore(t, "song.mscx", st.MuseScore(
		st.Part{Name: "Sopraan", Measures: []string{st.Measure(st.Chord("whole"))}},
		st.Part{Name: "Piano", Measures: []string{st.Measure(st.Chord("whole"))}},
	))

	require.NoError(t, cmd.Run("mix", path))

	doc := load(t, filepath.Join(filepath.Dir(path), "song-Sopraan.mscx"))
	assert.InDelta(t, 1.0, doc.Parts[0].Volume, 0.01)
	assert.InDelta(t, 0.33, doc.Parts[1].Volume, 0.01)
	_, err := os.Stat(filepath.Join(filepath.Dir(path), "song-Piano.mscx"))
	assert.True(t, os.IsNotExist(err))
}

func TestRangeE2E(t *testing.T) {
	path := writeScore(t, "song.mscx", st.MuseScore(st.Part{Name: "Sopraan", Measures: []string{
		st.Measure(st.Chord("whole")),
		st.Measure(st.Chord("half") + st.Chord("half")),
		st.Measure(st.Chord("whole")),
	}}))

	require.NoError(t, cmd.Run("range", path, "2", "3"))

	doc := load(t, filepath.Join(filepath.Dir(path), "song-2-3.mscx"))
	require.Len(t, doc.Staffs[0].Measures, 2)
	assert.Len(t, doc.Staffs[0].Measures[0].Voice(0).Elements, 2)

	assert.Error(t, cmd.Run("range", path, "3", "9"))
}
