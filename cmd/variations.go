package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/choir"
	"github.com/jsphweid/choirscore/util"
)

func init() {
	variationsCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output score (default <input>-variations)")
	rootCmd.AddCommand(variationsCmd)
}

var variationsCmd = &cobra.Command{
	Use:   "variations <score>",
	Short: "Splits divisi choir parts",
	Long: `Derives Mezzo-Sopraan/Mezzo-Alt and Bari-Tenor/Bari-Bas parts from the second
voices of the soprano, alto, tenor and bass parts, or splits combined women
and men parts into two parts each.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		f, doc, err := open(input)
		if err != nil {
			return err
		}
		c := choir.New(doc, roles(), partNames())
		if err := c.Variations(); err != nil {
			return err
		}
		out := output(util.WithSuffix(input, "-variations", ""))
		if err := f.Save(out); err != nil {
			return err
		}
		logger.Infof("wrote %s with %d parts", out, len(doc.Parts))
		return nil
	},
}
