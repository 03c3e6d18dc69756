package cmd

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/file"
	"github.com/jsphweid/choirscore/midi"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/timeline"
	"github.com/jsphweid/choirscore/util"
)

var withMidi bool

func init() {
	chaptersCmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON output (default <input>-chapters.json)")
	chaptersCmd.Flags().BoolVar(&withMidi, "midi", false, "also write the markers as a MIDI file")
	rootCmd.AddCommand(chaptersCmd)
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <score>",
	Short: "Computes chapter markers from rehearsal marks",
	Long: `Computes the playback time of every rehearsal mark, following repeats,
jumps, tempo changes, fermatas and breaths, and writes them as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return chapters(args[0], output(util.WithSuffix(args[0], "-chapters", ".json")), withMidi)
	},
}

func chapters(input string, out string, writeMidi bool) error {
	_, doc, err := open(input)
	if err != nil {
		return err
	}
	res, err := timeline.ChapterMarkers(doc, timeline.Options{DefaultTempo: cfg.Timeline.DefaultTempo})
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		logger.Debugf("%s: %v", input, d)
	}
	markers := res.Markers
	if markers == nil {
		markers = []model.ChapterMarker{}
	}
	data, err := json.MarshalIndent(markers, "", "  ")
	if err != nil {
		return err
	}
	if err := file.WriteAtomic(out, append(data, '\n')); err != nil {
		return err
	}
	logger.Infof("wrote %d chapter markers to %s", len(markers), out)

	if writeMidi {
		var buf bytes.Buffer
		if err := midi.WriteMarkers(&buf, markers); err != nil {
			return err
		}
		midiPath := util.WithSuffix(out, "", ".mid")
		if err := file.WriteAtomic(midiPath, buf.Bytes()); err != nil {
			return err
		}
		logger.Infof("wrote %s", midiPath)
	}
	return nil
}
