package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/choir"
	"github.com/jsphweid/choirscore/config"
	"github.com/jsphweid/choirscore/file"
	"github.com/jsphweid/choirscore/logging"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
)

var (
	verbose    bool
	configPath string
	outputPath string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "choirscore",
	Short: "Choir tools for MuseScore and MusicXML scores",
	Long: `choirscore splits divisi choir parts into separate parts, prepares
practice mixes and computes chapter markers from rehearsal marks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.New(os.Stderr, level)
		if err := config.LoadEnv(); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $CHOIRSCORE_CONFIG)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// Run executes the command line args, for tests.
func Run(args ...string) error {
	verbose, configPath, outputPath = false, "", ""
	withMidi, cut, shortName = false, false, ""
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

func open(path string) (*file.Score, *score.Document, error) {
	f, err := file.Load(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := score.Load(f.Tree, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, d := range doc.Diagnostics {
		logger.Debugf("%s: %v", path, d)
	}
	return f, doc, nil
}

func roles() *choir.Roles {
	res := choir.DefaultRoles()
	for role, spellings := range cfg.Roles {
		res.Add(choir.Role(role), spellings...)
	}
	return res
}

func partNames() map[choir.Role]model.PartName {
	res := map[choir.Role]model.PartName{}
	for role, name := range cfg.PartNames {
		res[choir.Role(role)] = name
	}
	return res
}

// findPart matches a part id, or a part name ignoring case.
func findPart(doc *score.Document, query string) (*score.Part, error) {
	p := doc.FindPart(func(p *score.Part) bool {
		return p.ID == query || strings.EqualFold(p.Name, query) || strings.EqualFold(p.LongName, query)
	})
	if p == nil {
		var known []string
		for _, q := range doc.Parts {
			known = append(known, fmt.Sprintf("%q", q.Name))
		}
		return nil, model.Fail(model.MissingNamedPart,
			fmt.Sprintf("no part %q, parts are %s", query, strings.Join(known, ", ")),
			fmt.Sprintf("There is no part named %q", query))
	}
	return p, nil
}

func output(def string) string {
	if outputPath != "" {
		return outputPath
	}
	return def
}
