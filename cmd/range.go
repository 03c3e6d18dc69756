package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/choirscore/util"
)

func init() {
	rangeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output score (default <input>-<first>-<last>)")
	rootCmd.AddCommand(rangeCmd)
}

var rangeCmd = &cobra.Command{
	Use:   "range <score> <first measure> <last measure>",
	Short: "Keeps a range of measures",
	Long:  `Keeps measures first to last (counting from 1, inclusive) on every staff.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("first measure: %w", err)
		}
		last, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("last measure: %w", err)
		}
		f, doc, err := open(args[0])
		if err != nil {
			return err
		}
		if err := doc.ExtractRange(first, last); err != nil {
			return err
		}
		out := output(util.WithSuffix(args[0], fmt.Sprintf("-%d-%d", first, last), ""))
		if err := f.Save(out); err != nil {
			return err
		}
		logger.Infof("wrote %s", out)
		return nil
	},
}
