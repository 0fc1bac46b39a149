package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newResolveCmd is the resolve-only subcommand: print the three resolved
// root addresses without running the full walk.
func newResolveCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved object-array, name-pool addresses and engine version without dumping",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDriver(cfg)
			if err != nil {
				return err
			}
			targets, err := d.Resolve()
			if err != nil {
				return err
			}
			fmt.Printf("object-array: %s\n", targets.ObjectArray)
			fmt.Printf("name-pool:    %s\n", targets.NamePool)
			fmt.Printf("version:      %s\n", targets.Version)
			return nil
		},
	}
}
