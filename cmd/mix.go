package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/choir"
	"github.com/jsphweid/choirscore/util"
)

func init() {
	rootCmd.AddCommand(mixCmd)
}

var mixCmd = &cobra.Command{
	Use:   "mix <score>",
	Short: "Writes one practice score per choir part",
	Long: `For every choir part writes <score>-<part> where that part is at solo volume,
all other parts at accompaniment volume and all dynamics at one velocity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		f, doc, err := open(input)
		if err != nil {
			return err
		}
		mixes, err := choir.Mixes(doc, roles(), choir.MixSettings{
			SoloVolume:          cfg.Mix.SoloVolume,
			AccompanimentVolume: cfg.Mix.AccompanimentVolume,
			Velocity:            cfg.Mix.Velocity,
		})
		if err != nil {
			return err
		}
		if len(mixes) == 0 {
			logger.Warnf("%s has no choir parts", input)
		}
		for _, m := range mixes {
			out := util.WithSuffix(input, "-"+util.SanitizeFileName(m.Part), "")
			if err := f.With(m.Doc.Tree).Save(out); err != nil {
				return err
			}
			logger.Infof("wrote %s", out)
		}
		return nil
	},
}
