package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDumpCmd(cfg *config) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Walk the object graph and emit a reflection snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDriver(cfg)
			if err != nil {
				return err
			}
			snap, err := d.Dump()
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("meatloaf: creating %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("meatloaf: encoding snapshot: %w", err)
			}
			fmt.Fprintf(os.Stderr, "meatloaf: wrote %d entries\n", len(snap.Paths()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write JSON to this file instead of stdout")
	return cmd
}
