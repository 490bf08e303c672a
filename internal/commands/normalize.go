package commands

import (
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/isabella232/hydrator-plugins/avro"
)

// NormalizeCmd converts a raw avro schema file into the internal schema and
// prints its JSON rendering.
func NormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <schema.json>",
		Short: "Rewrite an avro schema into the internal schema representation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := avro.NewNormalizer().Normalize(raw)
			if err != nil {
				return err
			}
			slog.Debug("schema normalized", "source", args[0])
			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
