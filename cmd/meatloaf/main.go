package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// config collects the persistent flags every subcommand needs to build a
// Driver: the resolved targets a dump needs, plus the choice between the
// two MemoryReader implementations (a live process or a captured dump
// file).
type config struct {
	pid         int
	dumpFile    string
	mapFile     string
	objectArray uint64
	namePool    uint64
	versionStr  string
	override    string
}

func main() {
	cfg := &config{}
	root := &cobra.Command{
		Use:   "meatloaf",
		Short: "Extract a reflection snapshot from a running or captured engine process",
	}
	root.PersistentFlags().IntVar(&cfg.pid, "pid", 0, "attach to a live process by PID")
	root.PersistentFlags().StringVar(&cfg.dumpFile, "dump-file", "", "read from a captured memory image instead of a live process")
	root.PersistentFlags().StringVar(&cfg.mapFile, "map", "", "segment map for --dump-file: lines of \"min max fileoff\" in hex")
	root.PersistentFlags().Uint64Var(&cfg.objectArray, "object-array", 0, "GUObjectArray address (hex accepted via 0x prefix)")
	root.PersistentFlags().Uint64Var(&cfg.namePool, "name-pool", 0, "name pool base address (hex accepted via 0x prefix)")
	root.PersistentFlags().StringVar(&cfg.versionStr, "engine-version", "4.27.2", "engine version tag (major.minor.patch) to select the layout registry entry")
	root.PersistentFlags().StringVar(&cfg.override, "version-override", "", "force this engine version's layout regardless of what the resolver reports (major.minor.patch)")

	root.AddCommand(newDumpCmd(cfg))
	root.AddCommand(newResolveCmd(cfg))
	root.AddCommand(newReadCmd(cfg))
	root.AddCommand(newReplCmd(cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
