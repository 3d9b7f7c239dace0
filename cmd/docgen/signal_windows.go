//go:build windows

package main

import "os"

// shutdownSignals start a graceful shutdown. Windows only delivers Ctrl+C.
var shutdownSignals = []os.Signal{os.Interrupt}
