package midi

import (
	"bytes"
	"path/filepath"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/model"
)

func TestMarkersRoundTrip(t *testing.T) {
	assert := assert.New(t)
	in := []model.ChapterMarker{
		{Mark: "B", Time: 9.5},
		{Mark: "A", Time: 2},
		{Mark: "C", Time: 11.75},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMarkers(&buf, in))

	path := filepath.Join(t.TempDir(), "song-chapters.mid")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	s, err := ReadMidiFile(path)
	require.NoError(t, err)

	out, err := ReadMarkers(s)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal("A", out[0].Mark)
	assert.Equal("B", out[1].Mark)
	assert.Equal("C", out[2].Mark)
	assert.InDelta(2.0, out[0].Time, 1e-3)
	assert.InDelta(9.5, out[1].Time, 1e-3)
	assert.InDelta(11.75, out[2].Time, 1e-3)
}

func TestReadMidiFileMissing(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "nope.mid"))
	assert.Error(t, err)
}

func TestReadGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a midi file")))
	assert.Error(t, err)
}
