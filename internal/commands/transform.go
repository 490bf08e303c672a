package commands

import (
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/isabella232/hydrator-plugins/avro"
	"github.com/isabella232/hydrator-plugins/record"
)

// TransformCmd converts one JSON-encoded generic record against an avro
// schema and prints the resulting structured record.
func TransformCmd() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "transform <record.json>",
		Short: "Convert a JSON-encoded avro record into a structured record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())

			schemaText := []byte(cfg.Schema)
			if schemaPath != "" {
				raw, err := os.ReadFile(schemaPath)
				if err != nil {
					return err
				}
				schemaText = raw
			}
			if len(schemaText) == 0 {
				return fmt.Errorf("no schema: pass --schema or set schema in the config file")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var values map[string]any
			if err := json.Unmarshal(data, &values); err != nil {
				return fmt.Errorf("record is not a JSON object: %w", err)
			}
			rec := avro.NewRecord(schemaText, values)

			t := avro.NewTransformer(avro.TransformerOpt{
				SkipDatetimeValidation: !cfg.Validation.Datetime,
			})
			out, err := transformRecord(t, rec, cfg.SkipField)
			if err != nil {
				return err
			}
			slog.Debug("record transformed", "source", args[0])

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "path to the avro schema (overrides the config file)")

	return cmd
}

// transformRecord applies the configured skip-field flow: the named field
// bypasses conversion and is injected verbatim, the way the pipeline injects
// source-derived columns.
func transformRecord(t *avro.Transformer, rec avro.GenericRecord, skipField string) (*record.StructuredRecord, error) {
	s, err := t.Normalizer().Normalize(rec.SchemaJSON())
	if err != nil {
		return nil, err
	}
	if skipField == "" || s.Field(skipField) == nil {
		return t.TransformWithSchema(rec, s)
	}
	b, err := t.TransformSkipping(rec, s, skipField)
	if err != nil {
		return nil, err
	}
	if err := b.Set(skipField, rec.Get(skipField)); err != nil {
		return nil, err
	}
	return b.Build()
}
