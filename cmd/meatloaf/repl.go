package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/trumank/meatloaf/snapshot"
)

// newReplCmd is the interactive snapshot browser that wires
// chzyer/readline in: dump once, then cd/ls/print over the result.
// Grounded on ogle's REPL (an interactive debugger shell over
// a running process) in idiom, not in code — this module has no example of
// readline actually wired up, so the command loop below follows
// chzyer/readline's own documented NewEx/Readline usage directly.
func newReplCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Dump the snapshot once, then browse it interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDriver(cfg)
			if err != nil {
				return err
			}
			snap, err := d.Dump()
			if err != nil {
				return err
			}
			return runRepl(snap)
		},
	}
}

func runRepl(snap *snapshot.Snapshot) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: "meatloaf> "})
	if err != nil {
		return fmt.Errorf("meatloaf: starting repl: %w", err)
	}
	defer rl.Close()

	cwd := ""
	for {
		rl.SetPrompt(promptFor(cwd))
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return fmt.Errorf("meatloaf: repl: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "pwd":
			fmt.Println(displayPath(cwd))
		case "ls":
			target := cwd
			if len(fields) > 1 {
				target = resolvePath(cwd, fields[1])
			}
			for _, p := range children(snap, target) {
				fmt.Println(p)
			}
		case "cd":
			if len(fields) < 2 {
				cwd = ""
				continue
			}
			target := resolvePath(cwd, fields[1])
			if target != "" {
				if _, ok := snap.Entries[target]; !ok {
					fmt.Printf("no such entry: %s\n", target)
					continue
				}
			}
			cwd = target
		case "print":
			target := cwd
			if len(fields) > 1 {
				target = resolvePath(cwd, fields[1])
			}
			entry, ok := snap.Entries[target]
			if !ok {
				fmt.Printf("no such entry: %s\n", target)
				continue
			}
			b, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println(string(b))
		default:
			fmt.Printf("unknown command %q (try ls, cd, print, pwd, quit)\n", fields[0])
		}
	}
}

func promptFor(cwd string) string {
	return fmt.Sprintf("%s> ", displayPath(cwd))
}

func displayPath(cwd string) string {
	if cwd == "" {
		return "/"
	}
	return cwd
}

// resolvePath interprets arg relative to cwd: ".." goes to cwd's parent;
// any other arg, with or without a leading "/", is taken as a full
// qualified path, since qualified paths aren't simple path segments and a
// bare child name is not resolved against cwd.
func resolvePath(cwd, arg string) string {
	if arg == ".." {
		if idx := strings.LastIndexAny(cwd, ".:"); idx >= 0 {
			return cwd[:idx]
		}
		return ""
	}
	if strings.HasPrefix(arg, "/") {
		return arg
	}
	return arg
}

// children returns path's children, sorted, or the top-level roots (every
// entry with no Outer) when path is "".
func children(snap *snapshot.Snapshot, path string) []string {
	if path == "" {
		var roots []string
		for p, e := range snap.Entries {
			if objectOf(e).Outer == "" {
				roots = append(roots, p)
			}
		}
		sort.Strings(roots)
		return roots
	}
	entry, ok := snap.Entries[path]
	if !ok {
		return nil
	}
	return objectOf(entry).Children
}

// objectOf returns whichever variant's embedded Object carries outer and
// children info, regardless of entry kind.
func objectOf(e snapshot.Entry) snapshot.Object {
	switch e.Kind {
	case snapshot.KindClass:
		return e.Class.Object
	case snapshot.KindScriptStruct:
		return e.ScriptStruct.Object
	case snapshot.KindFunction:
		return e.Function.Object
	case snapshot.KindEnum:
		return e.Enum.Object
	case snapshot.KindPackage:
		return e.Package.Object
	case snapshot.KindObject:
		return *e.Object
	}
	return snapshot.Object{}
}
