//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demuxd daemon.
//
// Watches sequencer run folders, notifies when runs complete, and converts
// lanes on request. A local sqlite ledger records every conversion.
//
package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/StanfordBioinformatics/scgpm-demux/job"
	"github.com/StanfordBioinformatics/scgpm-demux/ledger"
	"github.com/StanfordBioinformatics/scgpm-demux/mail"
	"github.com/StanfordBioinformatics/scgpm-demux/stage"
	"github.com/docopt/docopt-go"
)

// Notify by mail when sequencing runs complete.
func runNotifierLoop(pool *SequencerPool, mailer *mail.Mailer) {
	go func() {
		for {
			runQueue := pool.CopyAndClearRunQueue()

			fcids := []string{}
			for _, notice := range runQueue {
				fcids = append(fcids, notice.Run.Fcid)
			}
			if len(fcids) > 0 {
				mailer.Sendmail(
					[]string{},
					fmt.Sprintf("Sequencing runs complete! (%s)", strings.Join(fcids, ", ")),
					fmt.Sprintf("Sequencing runs %s are done.\n\nSubmit lane conversion jobs to http://%s/api/invoke.",
						strings.Join(fcids, ", "), mailer.InstanceName),
				)
			}

			// Wait a bit.
			time.Sleep(time.Minute * time.Duration(1))
		}
	}()
}

func main() {
	core.SetupSignalHandlers()

	//=========================================================================
	// Commandline argument and environment variables.
	//=========================================================================
	doc := `DEMUXD: SCGPM sequencing run watcher and lane converter.

Usage:
    demuxd [options]
    demuxd -h | --help | --version

Options:
    --debug     Keep notification mail internal.

    -h --help   Show this message.
    --version   Show version.`
	version := core.GetVersion()
	opts, _ := docopt.Parse(doc, nil, true, version, false)
	core.Println("DEMUXD - %s\n", version)
	core.LogInfo("cmdline", strings.Join(os.Args, " "))

	debug := opts["--debug"].(bool)

	env := core.EnvRequire([][]string{
		{"DEMUXD_PORT", ">2000"},
		{"DEMUXD_INSTANCE_NAME", "displayed_in_notifications"},
		{"DEMUXD_SEQUENCERS", "miseq001;hiseq001"},
		{"DEMUXD_SEQUENCERS_PATH", "path/to/sequencers"},
		{"DEMUXD_CACHE_PATH", "path/to/demuxd/cache"},
		{"DEMUXD_LOG_PATH", "path/to/demuxd/logs"},
		{"DEMUXD_DB_PATH", "path/to/demuxd/ledger.db"},
		{"DEMUXD_WORK_PATH", "path/to/scratch"},
		{"DEMUXD_S3_REGION", "us-west-2"},
		{"DEMUXD_EMAIL_HOST", "smtp.server.local"},
		{"DEMUXD_EMAIL_SENDER", "email@address.com"},
		{"DEMUXD_EMAIL_RECIPIENT", "email@address.com"},
	}, true)

	core.LogTee(path.Join(env["DEMUXD_LOG_PATH"], time.Now().Format("20060102150405")+".log"))

	uiport := env["DEMUXD_PORT"]
	instanceName := env["DEMUXD_INSTANCE_NAME"]
	seqcerNames := strings.Split(env["DEMUXD_SEQUENCERS"], ";")
	seqrunsPath := env["DEMUXD_SEQUENCERS_PATH"]
	cachePath := env["DEMUXD_CACHE_PATH"]
	dbPath := env["DEMUXD_DB_PATH"]
	workPath := env["DEMUXD_WORK_PATH"]
	region := env["DEMUXD_S3_REGION"]
	endpoint := os.Getenv("DEMUXD_S3_ENDPOINT")

	//=========================================================================
	// Setup mailer.
	//=========================================================================
	mailer := mail.NewMailer(instanceName, env["DEMUXD_EMAIL_HOST"],
		env["DEMUXD_EMAIL_SENDER"], env["DEMUXD_EMAIL_RECIPIENT"], debug)

	//=========================================================================
	// Setup conversion ledger.
	//=========================================================================
	db, err := ledger.NewDatabaseManager("sqlite3", dbPath)
	if err != nil {
		core.LogError(err, "demuxd", "Could not configure ledger.")
		os.Exit(1)
	}
	if err := db.Open(); err != nil {
		core.LogError(err, "demuxd", "Could not open ledger.")
		os.Exit(1)
	}
	if err := db.CreateTables(); err != nil {
		core.LogError(err, "demuxd", "Could not create ledger tables.")
		os.Exit(1)
	}

	//=========================================================================
	// Setup SequencerPool, add sequencers, and load run cache.
	//=========================================================================
	pool := NewSequencerPool(seqrunsPath, cachePath)
	for _, seqcerName := range seqcerNames {
		pool.Add(seqcerName)
	}
	pool.LoadCache()

	//=========================================================================
	// Start daemon loops.
	//=========================================================================
	pool.GoInventoryLoop()
	runNotifierLoop(pool, mailer)

	// Invoke runs one lane conversion end to end and mails the outcome.
	invoke := func(inputs *job.Inputs) {
		if done, err := db.HasConversion(inputs.RunName, inputs.LaneIndex); err == nil && done {
			core.LogInfo("demuxd", "Lane %d of %s already converted; skipping.",
				inputs.LaneIndex, inputs.RunName)
			return
		}

		workDir := path.Join(workPath, fmt.Sprintf("%s-L%d", inputs.RunName, inputs.LaneIndex))
		if err := core.MkdirAll(workDir); err != nil {
			core.LogError(err, "demuxd", "Could not create work directory %s.", workDir)
			return
		}

		store := stage.NewStore(inputs.Bucket, region, endpoint)
		result, err := job.NewJob(inputs, store, db, workDir).Run(context.Background())
		if err != nil {
			core.LogError(err, "demuxd", "Conversion of %s lane %d failed.",
				inputs.RunName, inputs.LaneIndex)
			mailer.Sendmail([]string{},
				fmt.Sprintf("Lane conversion FAILED (%s L%d)", inputs.RunName, inputs.LaneIndex),
				err.Error())
			return
		}
		core.LogInfo("demuxd", "Conversion of %s lane %d complete: %d fastqs.",
			inputs.RunName, inputs.LaneIndex, len(result.FastqKeys))
		mailer.Sendmail([]string{},
			fmt.Sprintf("Lane conversion complete (%s L%d)", inputs.RunName, inputs.LaneIndex),
			fmt.Sprintf("Uploaded %d fastq files to s3://%s/%s.",
				len(result.FastqKeys), inputs.Bucket, inputs.ProjectFolder))
	}

	//=========================================================================
	// Start web server.
	//=========================================================================
	runWebServer(uiport, instanceName, version, pool, db, invoke)
}
