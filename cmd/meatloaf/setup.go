package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/internal/resolver"
)

// parseVersion parses "major.minor.patch" into an EngineVersion.
func parseVersion(s string) (layout.EngineVersion, error) {
	var v layout.EngineVersion
	_, err := fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	if err != nil {
		return layout.EngineVersion{}, fmt.Errorf("meatloaf: invalid engine version %q: %w", s, err)
	}
	return v, nil
}

// parseMapFile reads a segment map for a captured-image dump: one
// "min max fileoff" triple per line, all hex, blank lines and "#" comments
// ignored.
func parseMapFile(path string) ([]core.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meatloaf: opening segment map %s: %w", path, err)
	}
	defer f.Close()

	var segments []core.Segment
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var min, max, off uint64
		if _, err := fmt.Sscanf(line, "%x %x %x", &min, &max, &off); err != nil {
			return nil, fmt.Errorf("meatloaf: parsing segment map line %q: %w", line, err)
		}
		segments = append(segments, core.Segment{
			Min:     remote.Addr(min),
			Max:     remote.Addr(max),
			FileOff: int64(off),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meatloaf: reading segment map %s: %w", path, err)
	}
	return segments, nil
}

// buildReader opens the MemoryReader cfg names: a live process via --pid,
// or a captured image via --dump-file plus --map.
func buildReader(cfg *config) (core.MemoryReader, error) {
	switch {
	case cfg.pid != 0:
		r, err := core.AttachProcess(cfg.pid)
		if err != nil {
			return nil, fmt.Errorf("meatloaf: attaching to pid %d: %w", cfg.pid, err)
		}
		return r, nil
	case cfg.dumpFile != "":
		if cfg.mapFile == "" {
			return nil, fmt.Errorf("meatloaf: --dump-file requires --map")
		}
		segments, err := parseMapFile(cfg.mapFile)
		if err != nil {
			return nil, err
		}
		r, err := core.OpenDumpFile(cfg.dumpFile, segments)
		if err != nil {
			return nil, fmt.Errorf("meatloaf: opening dump file %s: %w", cfg.dumpFile, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("meatloaf: one of --pid or --dump-file is required")
	}
}

// buildDriver wires a MemoryReader, a Static resolver built from cfg's
// address/version flags, and the default LayoutRegistry into a Driver.
func buildDriver(cfg *config) (*Driver, error) {
	reader, err := buildReader(cfg)
	if err != nil {
		return nil, err
	}
	version, err := parseVersion(cfg.versionStr)
	if err != nil {
		return nil, err
	}
	res := resolver.Static{Targets: resolver.Targets{
		ObjectArray: remote.Addr(cfg.objectArray),
		NamePool:    remote.Addr(cfg.namePool),
		Version:     version,
	}}

	opts := Options{}
	if cfg.override != "" {
		ov, err := parseVersion(cfg.override)
		if err != nil {
			return nil, err
		}
		opts.VersionOverride = &ov
	}

	return New(reader, res, layout.NewDefaultRegistry(), opts), nil
}
