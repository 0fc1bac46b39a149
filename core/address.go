// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core provides the read-only address-space abstraction the
// reflection walker is built on: a MemoryReader capability, a page-caching
// wrapper around it, and two concrete MemoryReader implementations (a
// ptrace-attached live process and an mmap-backed captured image).
//
// Nothing in this package is engine-specific. The engine's object graph is
// decoded by internal/remote, internal/containers and internal/reflect on
// top of the bytes this package returns.
package core

import "fmt"

// Address is an integer identifying a byte in the target's address space.
// Address 0 denotes null; it is never a valid object location.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Add returns the address n bytes beyond a. n may be negative.
func (a Address) Add(n int64) Address {
	return Address(int64(a) + n)
}

// Sub returns a-b, in bytes.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool {
	return a == 0
}

// AlignDown rounds a down to a multiple of n, which must be a power of two.
func (a Address) AlignDown(n int64) Address {
	return Address(uint64(a) &^ uint64(n-1))
}
