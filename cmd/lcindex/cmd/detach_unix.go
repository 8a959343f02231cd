//go:build !windows

package cmd

import "syscall"

// detachedProcAttr starts the background indexing child in its own session
// so it survives the parent CLI process exiting (no controlling terminal
// to receive SIGHUP).
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
