package main

import (
	"encoding/json"
	"fmt"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/validation"
	"github.com/spf13/cobra"
)

func newColorsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "colors",
		Short: "List the named highlight colors for rect blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := diagram.ColorNames()

			if asJSON {
				colors := make(map[string]string, len(names))
				for _, name := range names {
					colors[name] = diagram.ColorOf(name).String()
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(colors)
			}

			fmt.Fprintln(a.stdout, StyleTitle.Render("Highlight colors"))
			for _, name := range names {
				c := diagram.ColorOf(name)
				fmt.Fprintf(a.stdout, "  %s %-7s %s\n", swatch(c), name, StyleDim.Render(c.String()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print colors as a JSON object")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for sequence documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.stdout, validation.DocumentSchemaJSON)
			return err
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the seqdiag version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, version)
		},
	}
}
