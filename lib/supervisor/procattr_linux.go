// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr puts the child in its own process group so Stop can
// signal the whole tree. Pdeathsig is a Linux-only safety net: if the
// shell dies unexpectedly, the kernel sends SIGTERM to the child.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: unix.SIGTERM,
	}
}

// terminate sends SIGTERM to the child's process group.
func terminate(pid int) error {
	return unix.Kill(-pid, unix.SIGTERM)
}
