// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package core

import (
	"fmt"
	"runtime"
	"syscall"
)

// ProcessReader is a MemoryReader backed by a live, ptrace-attached process.
// All ptrace syscalls must come from the single OS thread that attached, so
// every call is funneled through a dedicated goroutine locked to its thread
// with runtime.LockOSThread, the same pattern program/server's ptraceRun uses
// around syscall.PtraceCont/PtracePeekText/PtraceGetRegs.
type ProcessReader struct {
	pid int
	fc  chan func() error
	ec  chan error
}

func ptraceRun(fc chan func() error, ec chan error) {
	runtime.LockOSThread()
	for f := range fc {
		ec <- f()
	}
}

// AttachProcess ptrace-attaches to the given pid and waits for it to stop.
func AttachProcess(pid int) (*ProcessReader, error) {
	fc := make(chan func() error)
	ec := make(chan error)
	go ptraceRun(fc, ec)

	r := &ProcessReader{pid: pid, fc: fc, ec: ec}
	if err := r.do(func() error { return syscall.PtraceAttach(pid) }); err != nil {
		close(fc)
		return nil, fmt.Errorf("core: ptrace attach %d: %w", pid, err)
	}
	err := r.do(func() error {
		var ws syscall.WaitStatus
		_, err := syscall.Wait4(pid, &ws, 0, nil)
		return err
	})
	if err != nil {
		close(fc)
		return nil, fmt.Errorf("core: wait4 %d: %w", pid, err)
	}
	return r, nil
}

func (r *ProcessReader) do(f func() error) error {
	r.fc <- f
	return <-r.ec
}

// Detach releases the ptrace attachment, letting the target resume normally.
func (r *ProcessReader) Detach() error {
	defer close(r.fc)
	if err := r.do(func() error { return syscall.PtraceDetach(r.pid) }); err != nil {
		return fmt.Errorf("core: ptrace detach %d: %w", r.pid, err)
	}
	return nil
}

// ReadMemory implements MemoryReader by peeking the target's address space.
func (r *ProcessReader) ReadMemory(addr Address, length int) ([]byte, error) {
	buf := make([]byte, length)
	var n int
	err := r.do(func() error {
		var perr error
		n, perr = syscall.PtracePeekData(r.pid, uintptr(addr), buf)
		return perr
	})
	if err != nil {
		return nil, fmt.Errorf("core: peek at %s: %w: %v", addr, ErrInvalidAddress, err)
	}
	if n != length {
		return nil, fmt.Errorf("core: peek at %s wanted %d got %d: %w", addr, length, n, ErrShortRead)
	}
	return buf, nil
}
