package cmd

import (
	"fmt"

	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/keyline-tools/keyline/internal/stops"
	"github.com/spf13/cobra"
)

var framesKind string

func init() {
	framesCmd.Flags().StringVarP(&framesKind, "kind", "k", "", "Annotation kind (keystop, label, heading, misc)")
	rootCmd.AddCommand(framesCmd)
}

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List each top frame's recorded annotations that still resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := api.Kind(framesKind)
		if framesKind == "" {
			kind = api.Kind(cfg.Annotation.DefaultKind)
		}
		if !kind.Valid() {
			return fmt.Errorf("unknown annotation kind %q", framesKind)
		}

		reg, err := loadDocument()
		if err != nil {
			return err
		}
		resolver := stops.NewResolver(reg)
		for _, page := range reg.Pages() {
			for _, child := range reg.ChildNodes(page) {
				if child.Type != scene.TypeFrame {
					continue
				}
				// Read-only listing: never reset stored lists here.
				nodes := resolver.FrameAnnotatedNodes(kind, child, false)
				cmd.Printf("%s  %s (%d %s annotations)\n", child.ID, child.Name, len(nodes), kind)
				printNodes(cmd, nodes)
			}
		}
		return nil
	},
}
