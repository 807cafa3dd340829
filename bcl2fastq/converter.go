//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// bcl2fastq invocation.
//
// The converter binary is a black box: all BCL decoding, demultiplexing and
// FASTQ generation happens inside it. This package only builds its command
// line, runs it, and records what was run.
//
package bcl2fastq

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/pkg/errors"
)

const DEFAULT_EXECUTABLE = "bcl2fastq"

// ToolsUsed is the provenance manifest uploaded next to the conversion
// outputs: which tool ran, and the exact command lines.
type ToolsUsed struct {
	Name     string   `json:"name"`
	Version  string   `json:"version,omitempty"`
	Commands []string `json:"commands"`
}

func (self *ToolsUsed) WriteFile(path string) error {
	bytes, err := json.MarshalIndent(self, "", "    ")
	if err != nil {
		return errors.Wrap(err, "bcl2fastq: could not marshal tools-used manifest")
	}
	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return errors.Wrapf(err, "bcl2fastq: could not write %s", path)
	}
	return nil
}

type Converter struct {
	Executable string
	ToolsUsed  *ToolsUsed
}

func NewConverter(executable string) *Converter {
	self := &Converter{}
	if executable == "" {
		executable = DEFAULT_EXECUTABLE
	}
	self.Executable = executable
	self.ToolsUsed = &ToolsUsed{
		Name:     "Bcl to Fastq Conversion and Demultiplexing",
		Commands: []string{},
	}
	return self
}

// Version asks the converter binary for its version string. Failures are
// not fatal; the manifest just omits the version.
func (self *Converter) Version(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, self.Executable, "--version").CombinedOutput()
	if err != nil {
		core.LogError(err, "bcl2fastq", "Could not get converter version.")
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "bcl2fastq") {
			return strings.TrimSpace(line)
		}
	}
	return strings.TrimSpace(string(out))
}

// Run invokes the converter with the given options and flags. The full
// command line is appended to the tools-used manifest before execution.
// On a non-zero exit, stdout and stderr are folded into the error.
func (self *Converter) Run(ctx context.Context, options map[string]string, flags []string) error {
	argv := Argv(options, flags)
	cmdline := self.Executable + " " + strings.Join(argv, " ")
	core.LogInfo("bcl2fastq", "Running converter: %s", cmdline)
	self.ToolsUsed.Commands = append(self.ToolsUsed.Commands, cmdline)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, self.Executable, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "bcl2fastq: command %q failed.\nstdout: %s\nstderr: %s",
			cmdline, strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()))
	}
	return nil
}
