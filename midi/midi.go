package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"

	"github.com/jsphweid/choirscore/constants"
	"github.com/jsphweid/choirscore/model"
)

// markers are written against a fixed tempo so ticks map linearly to seconds
const markerTempo = 120.0

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("midi: read %s: %w", filepath, err)
	}
	return Read(bytes.NewReader(dat))
}

func Read(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			s, e = nil, errors.New(r)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("midi: parse: %w", err)
	}
	return res, nil
}

func byTime(a, b model.ChapterMarker) bool {
	return a.Time < b.Time
}

func secondsToTicks(seconds float64) uint32 {
	return uint32(math.Round(seconds * markerTempo / 60 * constants.MidiResolution))
}

// WriteMarkers writes a single track SMF with one marker meta event per chapter.
func WriteMarkers(w io.Writer, markers []model.ChapterMarker) error {
	sorted := append([]model.ChapterMarker(nil), markers...)
	slices.SortStableFunc(sorted, byTime)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.MidiResolution)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("chapters"))
	tr.Add(0, smf.MetaTempo(markerTempo))
	var last uint32
	for _, m := range sorted {
		at := secondsToTicks(math.Max(m.Time, 0))
		tr.Add(at-last, smf.MetaMarker(m.Mark))
		last = at
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("midi: add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midi: write: %w", err)
	}
	return nil
}

// ReadMarkers collects marker meta events of all tracks, following tempo changes.
func ReadMarkers(s *smf.SMF) ([]model.ChapterMarker, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("midi: only metric time formats are supported")
	}
	resolution := float64(mt)
	var res []model.ChapterMarker
	for _, track := range s.Tracks {
		bpm := 120.0
		seconds := 0.0
		for _, ev := range track {
			seconds += float64(ev.Delta) / resolution * 60 / bpm
			var text string
			var tempo float64
			switch {
			case ev.Message.GetMetaTempo(&tempo):
				if tempo > 0 {
					bpm = tempo
				}
			case ev.Message.GetMetaMarker(&text):
				res = append(res, model.ChapterMarker{Mark: text, Time: seconds})
			}
		}
	}
	slices.SortStableFunc(res, byTime)
	return res, nil
}
