package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trumank/meatloaf/internal/remote"
)

func newReadCmd(cfg *config) *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "read <addr>",
		Short: "Read and hex-dump a chunk of remote memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDriver(cfg)
			if err != nil {
				return err
			}
			var addr uint64
			if _, err := fmt.Sscanf(args[0], "0x%x", &addr); err != nil {
				if _, err := fmt.Sscanf(args[0], "%d", &addr); err != nil {
					return fmt.Errorf("meatloaf: invalid address %q", args[0])
				}
			}
			b, err := d.Read(remote.Addr(addr), length)
			if err != nil {
				return err
			}
			for i := 0; i < len(b); i += 16 {
				end := i + 16
				if end > len(b) {
					end = len(b)
				}
				fmt.Printf("%08x  % x\n", addr+uint64(i), b[i:end])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", 64, "number of bytes to read")
	return cmd
}
