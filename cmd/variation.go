package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/extract"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/util"
)

var (
	cut       bool
	shortName string
)

func init() {
	variationCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output score (default <input>-variation)")
	variationCmd.Flags().BoolVar(&cut, "cut", false, "remove the variation voice from its part")
	variationCmd.Flags().StringVar(&shortName, "short", "", "short name of the new part (default: the capitals of the name)")
	rootCmd.AddCommand(variationCmd)
}

var variationCmd = &cobra.Command{
	Use:   "variation <score> <base part> <base voice> <variation part> <variation voice> <new part name>",
	Short: "Extracts one voice onto a copy of a part",
	Long: `Adds a part after the base part that plays the base voice, except where the
variation voice has notes. Parts are given by name or id, voices count from 1.`,
	Args: cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseVoice, err := voiceArg(args[2])
		if err != nil {
			return err
		}
		variationVoice, err := voiceArg(args[4])
		if err != nil {
			return err
		}
		f, doc, err := open(args[0])
		if err != nil {
			return err
		}
		base, err := findPart(doc, args[1])
		if err != nil {
			return err
		}
		variation, err := findPart(doc, args[3])
		if err != nil {
			return err
		}
		created, err := extract.Variation(doc, extract.Request{
			Base:           base,
			BaseVoice:      baseVoice,
			Variation:      variation,
			VariationVoice: variationVoice,
			Cut:            cut,
			Name:           model.PartName{Long: args[5], Short: shortName},
		})
		if err != nil {
			return err
		}
		if created == nil {
			logger.Warnf("%q has no voice %d, nothing to do", variation.Name, variationVoice+1)
		}
		out := output(util.WithSuffix(args[0], "-variation", ""))
		if err := f.Save(out); err != nil {
			return err
		}
		logger.Infof("wrote %s", out)
		return nil
	},
}

func voiceArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("voice must be a number from 1, got %q", s)
	}
	return n - 1, nil
}
