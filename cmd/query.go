package cmd

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <jsonpath>",
	Short: "Run a JSONPath query against a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Document.Path == "" {
			return fmt.Errorf("no document given: set --doc or document.path in config")
		}
		raw, err := os.ReadFile(cfg.Document.Path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		doc, err := oj.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse document json: %w", err)
		}
		x, err := jp.ParseString(args[0])
		if err != nil {
			return fmt.Errorf("invalid jsonpath '%s': %w", args[0], err)
		}
		for _, result := range x.Get(doc) {
			cmd.Println(oj.JSON(result, &oj.Options{Indent: 2, Sort: true}))
		}
		return nil
	},
}
