package core

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"
)

// segment is one contiguous virtual-address range backed by a region of a
// captured image file. Mirrors gocore's Mapping, trimmed to what a flat
// full-process dump needs: no permission bits, no copy-on-write bookkeeping.
type segment struct {
	min, max Address
	data     []byte // mmap'd contents, length == max-min
}

// DumpFileReader is a MemoryReader over a captured memory-image file: a
// single flat file plus a list of (virtual range -> file offset) segments,
// as a Resolver-adjacent tool would produce when snapshotting a target.
// Grounded on internal/core/process.Core's mmap-then-trim approach, minus
// the ELF PT_LOAD/PT_NOTE parsing (that belongs to the out-of-scope image
// parser, not this core).
type DumpFileReader struct {
	f        *os.File
	segments []segment // sorted by min, non-overlapping
}

// Segment describes one virtual range present in the dump file.
type Segment struct {
	Min, Max Address
	FileOff  int64
}

// OpenDumpFile mmaps path and indexes it according to segments.
func OpenDumpFile(path string, segments []Segment) (*DumpFileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("core: open dump file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("core: stat dump file: %w", err)
	}

	r := &DumpFileReader{f: f}
	for _, s := range segments {
		size := s.Max.Sub(s.Min)
		if size <= 0 {
			continue
		}
		if s.FileOff+size > st.Size() {
			f.Close()
			return nil, fmt.Errorf("core: segment [%s,%s) extends past end of file", s.Min, s.Max)
		}
		data, err := unix.Mmap(int(f.Fd()), s.FileOff, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("core: mmap segment [%s,%s): %w", s.Min, s.Max, err)
		}
		r.segments = append(r.segments, segment{min: s.Min, max: s.Max, data: data})
	}
	sort.Slice(r.segments, func(i, j int) bool { return r.segments[i].min < r.segments[j].min })
	return r, nil
}

// Close unmaps all segments and closes the backing file.
func (r *DumpFileReader) Close() error {
	for _, s := range r.segments {
		unix.Munmap(s.data)
	}
	return r.f.Close()
}

func (r *DumpFileReader) find(addr Address) *segment {
	i := sort.Search(len(r.segments), func(i int) bool { return r.segments[i].max > addr })
	if i < len(r.segments) && r.segments[i].min <= addr {
		return &r.segments[i]
	}
	return nil
}

// ReadMemory implements MemoryReader, reading across segment boundaries if
// necessary but failing if any part of the requested range is unmapped.
func (r *DumpFileReader) ReadMemory(addr Address, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	a := addr
	remaining := length
	for remaining > 0 {
		s := r.find(a)
		if s == nil {
			return nil, fmt.Errorf("core: %w: %s", ErrInvalidAddress, a)
		}
		avail := int(s.max.Sub(a))
		n := remaining
		if n > avail {
			n = avail
		}
		off := int(a.Sub(s.min))
		out = append(out, s.data[off:off+n]...)
		a = a.Add(int64(n))
		remaining -= n
	}
	return out, nil
}
