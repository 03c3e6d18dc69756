package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/util"
)

var watchDelay time.Duration

func init() {
	watchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON output (default <input>-chapters.json)")
	watchCmd.Flags().BoolVar(&withMidi, "midi", false, "also write the markers as a MIDI file")
	watchCmd.Flags().DurationVar(&watchDelay, "delay", 500*time.Millisecond, "quiet time before recomputing")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <score>",
	Short: "Recomputes chapter markers whenever the score is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		input := args[0]
		return watch(ctx, input, output(util.WithSuffix(input, "-chapters", ".json")))
	},
}

// exclusive lets one call of fn run at a time. Debounced calls fire on timer
// goroutines and would otherwise write the same output concurrently.
func exclusive(fn func()) func() {
	var mu sync.Mutex
	return func() {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
}

func watch(ctx context.Context, input string, out string) error {
	input, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	run := exclusive(func() {
		if err := chapters(input, out, withMidi); err != nil {
			logger.Errorf("%v", err)
		}
	})
	run()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// editors often replace the file, so the directory is watched
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return err
	}
	logger.Infof("watching %s", input)

	debounced := debounce.New(watchDelay)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debugf("watcher event: %s", event)
			debounced(run)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher: %v", err)
		}
	}
}
