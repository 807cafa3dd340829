//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demux logging.
//
package core

import (
	"fmt"
	"io"
	"os"
	"time"
)

const TIMEFMT = "2006-01-02 15:04:05"

type Logger struct {
	stdoutWriter io.Writer
	fileWriter   io.Writer
}

var ENABLE_LOGGING = true
var LOGGER *Logger = nil

func Timestamp() string {
	return time.Now().Format(TIMEFMT)
}

func log(msg string) {
	if LOGGER == nil {
		LOGGER = &Logger{io.Writer(os.Stdout), nil}
	}
	if ENABLE_LOGGING {
		LOGGER.stdoutWriter.Write([]byte(msg))
	}
	if LOGGER.fileWriter != nil {
		LOGGER.fileWriter.Write([]byte(msg))
	}
}

// Log to the bare console with no component or timestamp.
func Print(format string, v ...interface{}) {
	log(fmt.Sprintf(format, v...))
}

func Println(format string, v ...interface{}) {
	Print(format+"\n", v...)
}

// Log a timestamped message to the console.
func LogInfo(component string, format string, v ...interface{}) {
	log(fmt.Sprintf("%s [%s] %s\n", Timestamp(), component, fmt.Sprintf(format, v...)))
}

// Log a timestamped message and an error to the console.
func LogError(err error, component string, format string, v ...interface{}) {
	log(fmt.Sprintf("%s [%s] %s\n          %s\n", Timestamp(), component,
		fmt.Sprintf(format, v...), err.Error()))
}

// Also write the log to the given file from now on.
func LogTee(filename string) {
	if LOGGER == nil {
		LOGGER = &Logger{io.Writer(os.Stdout), nil}
	}
	if LOGGER.fileWriter == nil {
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			LogError(err, "logtee", "Could not open log file %s.", filename)
			return
		}
		LOGGER.fileWriter = f
	}
}
