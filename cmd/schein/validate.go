package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/programme-lv/schein/criteria"
	"github.com/spf13/cobra"
)

func newValidateCmd(registry *criteria.Registry) *cobra.Command {
	var kind string
	var payload string
	var payloadFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a criteria payload and print it with defaults filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(payload)
			if payloadFile != "" {
				content, err := os.ReadFile(payloadFile)
				if err != nil {
					return fmt.Errorf("error reading payload file: %w", err)
				}
				raw = content
			}

			c, fields, err := registry.Validate(criteria.Kind(kind), json.RawMessage(raw))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(fields) > 0 {
				table := tablewriter.NewTable(out)
				table.Header("Field", "Problem")
				for _, f := range fields {
					path := f.Path
					if path == "" {
						path = "(payload)"
					}
					_ = table.Append(path, f.Message)
				}
				if err := table.Render(); err != nil {
					return err
				}
				return fmt.Errorf("%s payload is invalid", kind)
			}

			normalized, err := criteria.Normalize(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", okText("valid"), normalized)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Criteria identifier (required)")
	cmd.Flags().StringVarP(&payload, "payload", "p", "{}", "JSON payload")
	cmd.Flags().StringVarP(&payloadFile, "payload-file", "f", "", "Read the JSON payload from a file")
	cmd.MarkFlagRequired("kind")
	return cmd
}
