package cli

import (
	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [entity]",
	Short: "Show the target schema contract",
	Long: `Prints the versioned field table each entity is normalised against.
The same table drives the index mappings and the query translator, so
what this command shows is exactly what can be queried.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	schemas := domain.AllSchemas()
	if len(args) == 1 {
		entity, err := domain.ParseEntityType(args[0])
		if err != nil {
			return err
		}
		schema, err := domain.SchemaFor(entity)
		if err != nil {
			return err
		}
		schemas = []domain.Schema{schema}
	}

	cmd.Printf("Schema version %d\n", domain.SchemaVersion)
	for _, schema := range schemas {
		cmd.Printf("\n[%s] (key: %s)\n", schema.Entity, schema.KeyField)
		for _, field := range schema.Fields {
			if field.Origin != field.Name {
				cmd.Printf("  %-18s %-8s (from %q)\n", field.Name, field.Type, field.Origin)
				continue
			}
			cmd.Printf("  %-18s %-8s\n", field.Name, field.Type)
		}
	}
	return nil
}
