package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/keyline-tools/keyline/internal/config"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/spf13/cobra"
)

var (
	configPath string
	docPath    string
	format     string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	rootCmd.PersistentFlags().StringVarP(&docPath, "doc", "d", "", "Path to the design document (.json or .db)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format: text or json")
}

var rootCmd = &cobra.Command{
	Use:   "keyline",
	Short: "Keyline: annotation crawling and ordering for design documents",
	Long: `Keyline walks a design document's scene tree, reconciles previously
applied annotation lists against the live tree, and computes the
authoritative ordered list of nodes to annotate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				path = filepath.Join(home, ".keyline", "config.yaml")
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if format != "" {
			cfg.App.Format = format
			if err := cfg.App.Validate(); err != nil {
				return err
			}
		}
		if docPath != "" {
			cfg.Document.Path = docPath
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel.Level,
		}))
		return nil
	},
}

// loadDocument opens the configured document, choosing the backend by
// extension: .db/.sqlite is the SQLite layout, everything else is JSON.
func loadDocument() (*scene.Registry, error) {
	path := cfg.Document.Path
	if path == "" {
		return nil, fmt.Errorf("no document given: set --doc or document.path in config")
	}
	var (
		reg *scene.Registry
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		reg, err = scene.LoadSQLite(path)
	default:
		reg, err = scene.LoadJSON(path)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("document loaded", slog.String("path", path), slog.Int("nodes", reg.Len()))
	return reg, nil
}

// resolveSelection maps comma-separated ids to live nodes, skipping ids that
// no longer resolve.
func resolveSelection(reg *scene.Registry, csv string) []*scene.Node {
	if csv == "" {
		return nil
	}
	var out []*scene.Node
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if n := reg.Lookup(id); n != nil {
			out = append(out, n)
		} else {
			logger.Warn("selection id not found", slog.String("id", id))
		}
	}
	return out
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
