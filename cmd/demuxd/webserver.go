//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demuxd webserver.
//
package main

import (
	"encoding/json"
	"net/http"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/StanfordBioinformatics/scgpm-demux/job"
	"github.com/StanfordBioinformatics/scgpm-demux/ledger"
	"github.com/go-martini/martini"
	"github.com/martini-contrib/binding"
	"github.com/martini-contrib/gzip"
)

const CONVERSION_HISTORY_LIMIT = 100

// Render JSON from data.
func makeJSON(data interface{}) string {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err.Error()
	}
	return string(bytes)
}

// Forms
type FcidForm struct {
	Fcid string `form:"fcid" json:"fcid" binding:"required"`
}

func runWebServer(uiport string, instanceName string, version string,
	pool *SequencerPool, db *ledger.DatabaseManager, invoke func(*job.Inputs)) {

	m := martini.New()
	r := martini.NewRouter()
	m.Use(martini.Recovery())
	m.Use(martini.Logger())
	m.MapTo(r, (*martini.Routes)(nil))
	m.Action(r.Handle)

	app := &martini.ClassicMartini{Martini: m, Router: r}
	app.Use(gzip.All())

	// Instance identity.
	app.Get("/api/info", func() string {
		return makeJSON(map[string]string{
			"instance": instanceName,
			"version":  version,
		})
	})

	// Current sequencer run inventory.
	app.Get("/api/runs", func() string {
		return makeJSON(pool.Runs())
	})

	// One run by flowcell id.
	app.Post("/api/get-run", binding.Bind(FcidForm{}), func(body FcidForm) string {
		run := pool.Find(body.Fcid)
		if run == nil {
			return makeJSON(map[string]string{"error": "Unknown flowcell " + body.Fcid})
		}
		return makeJSON(run)
	})

	// Recorded conversion history.
	app.Get("/api/conversions", func() (int, string) {
		conversions, err := db.GetConversions(CONVERSION_HISTORY_LIMIT)
		if err != nil {
			return http.StatusInternalServerError, makeJSON(map[string]string{"error": err.Error()})
		}
		return http.StatusOK, makeJSON(conversions)
	})

	// Manually invoke a lane conversion. The request body is a job input
	// document; the conversion runs asynchronously.
	app.Post("/api/invoke", func(req *http.Request) (int, string) {
		jsonDef := map[string]interface{}{}
		if err := json.NewDecoder(req.Body).Decode(&jsonDef); err != nil {
			return http.StatusBadRequest, makeJSON(map[string]string{"error": err.Error()})
		}
		inputs, err := job.ParseInputs(jsonDef)
		if err != nil {
			return http.StatusBadRequest, makeJSON(map[string]string{"error": err.Error()})
		}
		go invoke(inputs)
		return http.StatusOK, makeJSON(map[string]string{
			"status": "enqueued",
			"run":    inputs.RunName,
		})
	})

	if err := http.ListenAndServe(":"+uiport, app); err != nil {
		core.LogError(err, "webserv", "ListenAndServe failed.")
	}
}
