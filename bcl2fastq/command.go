//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// bcl2fastq command construction.
//
package bcl2fastq

import (
	"sort"
	"strings"
)

// Option and flag names use underscores, matching the job input keys;
// they are converted to dashes when rendered to a command line.
//
// Valued options: barcode_mismatches, tiles, use_bases_mask, sample_sheet,
// output_dir, runfolder_dir. Boolean flags: create_fastq_for_index_reads,
// ignore_missing_bcls, ignore_missing_filter, ignore_missing_positions,
// with_failed_reads.

// Argv renders options and flags into an argument vector for the converter.
// Options are emitted in sorted key order so the recorded command line is
// stable across runs.
func Argv(options map[string]string, flags []string) []string {
	argv := []string{}

	keys := []string{}
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		argv = append(argv, "--"+dashed(key), options[key])
	}

	for _, flag := range flags {
		argv = append(argv, "--"+dashed(flag))
	}
	return argv
}

func dashed(key string) string {
	return strings.Replace(key, "_", "-", -1)
}
