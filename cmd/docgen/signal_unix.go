//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals start a graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
