package cmd

import (
	"fmt"

	"github.com/keyline-tools/keyline/internal/links"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(traceCmd)
}

var traceCmd = &cobra.Command{
	Use:   "trace <marker-id>",
	Short: "Resolve an annotation marker back to the design node it annotates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadDocument()
		if err != nil {
			return err
		}
		marker := reg.Lookup(args[0])
		if marker == nil {
			return fmt.Errorf("marker %q not found in document", args[0])
		}
		page := reg.PageOf(marker)
		if page == nil {
			return fmt.Errorf("marker %q belongs to no page", args[0])
		}

		resolver := links.NewResolver(reg)
		target := resolver.DesignNodeFromAnnotation(page, marker)
		if target == nil {
			cmd.Println("no live design node: the link is stale or the target was deleted")
			return nil
		}
		cmd.Printf("%s  %s (%s)\n", target.ID, target.Name, target.Type)
		if instance := resolver.ParentInstance(target); instance != nil {
			cmd.Printf("instance: %s  %s\n", instance.ID, instance.Name)
		}
		if comp := resolver.TopComponent(target); comp != nil {
			cmd.Printf("component: %s  %s\n", comp.ID, comp.Name)
		}
		return nil
	},
}
