package cmd

import (
	"log/slog"

	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build [source.json] [output.db]",
	Short: "Convert a JSON design document to the SQLite layout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := scene.LoadJSON(args[0])
		if err != nil {
			return err
		}
		if err := scene.SaveSQLite(reg, args[1]); err != nil {
			return err
		}
		logger.Info("document built",
			slog.String("source", args[0]),
			slog.String("output", args[1]),
			slog.Int("nodes", reg.Len()))
		return nil
	},
}
