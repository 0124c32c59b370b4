// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix && !linux

package supervisor

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr puts the child in its own process group so Stop can
// signal the whole tree. Pdeathsig is not available outside Linux.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// terminate sends SIGTERM to the child's process group.
func terminate(pid int) error {
	return unix.Kill(-pid, unix.SIGTERM)
}
