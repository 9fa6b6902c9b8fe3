package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/programme-lv/schein/criteria"
	"github.com/spf13/cobra"
)

func newKindsCmd(registry *criteria.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List criteria kinds and their default payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewTable(cmd.OutOrStdout())
			table.Header("Identifier", "Name", "Default payload")
			for _, b := range registry.Kinds() {
				payload, err := criteria.Normalize(b.New())
				if err != nil {
					return err
				}
				_ = table.Append(string(b.Kind), b.Name, string(payload))
			}
			return table.Render()
		},
	}
}
