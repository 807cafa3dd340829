//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demux command line lane converter.
//
// Converts one flowcell lane of Illumina BCL files to demultiplexed fastqs:
// downloads the lane data and run metadata archives, derives the sample
// sheet and bases mask from the barcode list, runs bcl2fastq, and uploads
// the fastqs, reports and provenance manifest back to the object store.
//
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/StanfordBioinformatics/scgpm-demux/job"
	"github.com/StanfordBioinformatics/scgpm-demux/ledger"
	"github.com/StanfordBioinformatics/scgpm-demux/stage"
	"github.com/docopt/docopt-go"
)

func main() {
	core.SetupSignalHandlers()

	//=========================================================================
	// Commandline argument and environment variables.
	//=========================================================================
	doc := `DEMUX: SCGPM BCL to FASTQ lane converter.

Usage:
    demux <inputs.json>
    demux -h | --help | --version

Options:
    -h --help   Show this message.
    --version   Show version.`
	version := core.GetVersion()
	opts, _ := docopt.Parse(doc, nil, true, version, false)

	env := core.EnvRequire([][]string{
		{"DEMUX_WORK_PATH", "path/to/scratch"},
		{"DEMUX_LOG_PATH", "path/to/logs"},
		{"DEMUX_S3_REGION", "us-west-2"},
	}, true)

	core.LogTee(path.Join(env["DEMUX_LOG_PATH"],
		"demux-"+time.Now().Format("20060102150405")+".log"))

	inputsPath := opts["<inputs.json>"].(string)
	inputs, err := job.ParseInputsFile(inputsPath)
	if err != nil {
		core.LogError(err, "demux", "Could not parse job inputs.")
		os.Exit(1)
	}

	workDir := path.Join(env["DEMUX_WORK_PATH"],
		fmt.Sprintf("%s-L%d", inputs.RunName, inputs.LaneIndex))
	if err := core.MkdirAll(workDir); err != nil {
		core.LogError(err, "demux", "Could not create work directory %s.", workDir)
		os.Exit(1)
	}

	// An optional ledger records the conversion locally.
	var db *ledger.DatabaseManager
	if dbPath := os.Getenv("DEMUX_DB_PATH"); len(dbPath) > 0 {
		if db, err = ledger.NewDatabaseManager("sqlite3", dbPath); err == nil {
			err = db.Open()
		}
		if err == nil {
			err = db.CreateTables()
		}
		if err != nil {
			core.LogError(err, "demux", "Could not open ledger; continuing without one.")
			db = nil
		}
	}

	store := stage.NewStore(inputs.Bucket, env["DEMUX_S3_REGION"],
		os.Getenv("DEMUX_S3_ENDPOINT"))

	result, err := job.NewJob(inputs, store, db, workDir).Run(context.Background())
	if err != nil {
		core.LogError(err, "demux", "Conversion failed.")
		os.Exit(1)
	}

	// Print the output manifest for the calling workflow.
	bytes, _ := json.MarshalIndent(result, "", "    ")
	core.Println("%s", string(bytes))
}
