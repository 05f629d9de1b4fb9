package cmd

import (
	"fmt"

	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/config"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/keyline-tools/keyline/internal/stops"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var (
	resolveKind    string
	resolveSelect  string
	resolveNodes   string
	resolveNewOnly bool
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveKind, "kind", "k", "", "Annotation kind (keystop, label, heading, misc)")
	resolveCmd.Flags().StringVarP(&resolveSelect, "select", "s", "", "Comma-separated selected node ids")
	resolveCmd.Flags().StringVarP(&resolveNodes, "nodes", "n", "", "Comma-separated explicit node ids (overrides the working set)")
	resolveCmd.Flags().BoolVar(&resolveNewOnly, "new-only", false, "Print only newly qualifying nodes")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Compute the authoritative ordered annotation list for a selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := api.Kind(resolveKind)
		if resolveKind == "" {
			kind = api.Kind(cfg.Annotation.DefaultKind)
		}
		if !kind.Valid() {
			return fmt.Errorf("unknown annotation kind %q", resolveKind)
		}

		reg, err := loadDocument()
		if err != nil {
			return err
		}
		selection := resolveSelection(reg, resolveSelect)
		explicit := resolveSelection(reg, resolveNodes)

		result := stops.NewResolver(reg).OrderedStopNodes(kind, selection, resolveNewOnly, explicit)
		printNodes(cmd, result)
		return nil
	},
}

// printNodes writes a node list in the configured output format.
func printNodes(cmd *cobra.Command, nodes []*scene.Node) {
	if cfg.App.Format == config.FormatJSON {
		out := make([]map[string]any, 0, len(nodes))
		for i, n := range nodes {
			out = append(out, map[string]any{
				"position": i + 1,
				"id":       n.ID,
				"name":     n.Name,
				"type":     n.Type.String(),
			})
		}
		cmd.Println(oj.JSON(out, &oj.Options{Indent: 2, Sort: true}))
		return
	}
	for i, n := range nodes {
		cmd.Printf("%d. %s  %s (%s)\n", i+1, n.ID, n.Name, n.Type)
	}
}
