// Package commands implements the avroschema CLI.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isabella232/hydrator-plugins/config"
)

// RootCmd creates the root command for the avroschema CLI.
func RootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "avroschema",
		Short: "Normalize avro schemas and convert avro records",
		Long: `avroschema rewrites avro schemas into the pipeline's internal schema
representation (named-type references inlined, map keys made explicit) and
converts JSON-encoded generic records against the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			setLogger(cfg.Logging.Level)
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

func setLogger(level string) {
	lvl := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
