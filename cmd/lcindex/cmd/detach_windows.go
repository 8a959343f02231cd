//go:build windows

package cmd

import "syscall"

// detachedProcAttr has no session-detach equivalent wired on Windows yet;
// the child still runs but stays attached to the parent's process group.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}
