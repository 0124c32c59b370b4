// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package supervisor

import (
	"os"
	"syscall"
)

// sysProcAttr returns no special attributes on platforms without
// process groups.
func sysProcAttr() *syscall.SysProcAttr { return nil }

// terminate kills the child directly; there is no process group to
// signal on this platform.
func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
