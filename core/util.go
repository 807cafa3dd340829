//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demux miscellaneous utilities.
//
package core

import (
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
)

// Version is stamped at build time via -ldflags.
var __VERSION__ string = "noversion"

func GetVersion() string {
	return __VERSION__
}

// Return path relative to the executable's directory.
func RelPath(p string) string {
	folder, _ := filepath.Abs(filepath.Dir(os.Args[0]))
	return path.Join(folder, p)
}

func MkdirAll(p string) error {
	return os.MkdirAll(p, 0755)
}

var exitHandlerRegistered = false

// SetupSignalHandlers makes SIGINT, SIGTERM and SIGHUP exit cleanly so that
// deferred cleanup (scratch removal, log flush) still runs.
func SetupSignalHandlers() {
	if exitHandlerRegistered {
		return
	}
	exitHandlerRegistered = true
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigchan
		Println("Caught signal %v. Exiting.", sig)
		os.Exit(1)
	}()
}
