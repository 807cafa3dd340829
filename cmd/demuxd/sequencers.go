//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demuxd sequencer inventory.
//
package main

import (
	"encoding/json"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/StanfordBioinformatics/scgpm-demux/runinfo"
)

const RUN_TOUCH_TIMEOUT = 1         // 1 hour
const RUN_INACTIVE_TIMEOUT = 2 * 24 // 2 days

type Run struct {
	*runinfo.RunFolder
	SeqcerName   string              `json:"seqcerName"`
	Platform     string              `json:"platform"`
	StartTime    string              `json:"startTime"`
	CompleteTime string              `json:"completeTime"`
	TouchTime    string              `json:"touchTime"`
	State        string              `json:"state"`
	RunInfoXml   *runinfo.XMLRunInfo `json:"runinfoxml"`
}

type SequencerNotification struct {
	Run *Run
}

type Sequencer struct {
	pool *SequencerPool
	name string
	path string
}

func NewSequencer(pool *SequencerPool, name string) *Sequencer {
	self := &Sequencer{}
	self.pool = pool
	self.name = name
	self.path = path.Join(self.pool.path, self.name)
	return self
}

// Parse the folder name into info fields and get various file mod times.
func (self *Sequencer) getFolderInfo(fname string, runchan chan *Run) (int, error) {
	folder, err := runinfo.ParseRunFolder(path.Join(self.path, fname))
	if err != nil {
		return 0, err
	}

	run := Run{
		RunFolder:  folder,
		SeqcerName: self.name,
		Platform:   runinfo.Platform(folder.Path),
	}

	go func(run *Run) {
		startTime := getFileModTime(path.Join(run.Path, "Config", "RTAStart.bat"))
		completeTime := getFileModTime(path.Join(run.Path, "RTAComplete.txt"))
		touchTime := getFileModTime(path.Join(run.Path, "InterOp", "ExtractionMetricsOut.bin"))

		if startTime.IsZero() {
			startTime, _ = time.Parse("2006-01-02", run.Fdate)
		}

		run.State = "failed"
		if !completeTime.IsZero() {
			run.State = "complete"
		} else if touchTime.IsZero() && time.Since(startTime) < time.Hour*RUN_INACTIVE_TIMEOUT {
			run.State = "running"
		} else if !touchTime.IsZero() && time.Since(touchTime) < time.Hour*RUN_TOUCH_TIMEOUT {
			run.State = "running"
		}
		if !startTime.IsZero() {
			run.StartTime = startTime.Format(core.TIMEFMT)
		}
		if !completeTime.IsZero() {
			run.CompleteTime = completeTime.Format(core.TIMEFMT)
		}
		if !touchTime.IsZero() {
			run.TouchTime = touchTime.Format(core.TIMEFMT)
		}

		if xmlRunInfo, err := runinfo.Parse(path.Join(run.Path, "RunInfo.xml")); err == nil {
			run.RunInfoXml = xmlRunInfo
		}
		runchan <- run
	}(&run)
	return 1, nil
}

// Return last modification time or zero.
func getFileModTime(p string) time.Time {
	info, err := os.Stat(p)
	if err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

type SequencerPool struct {
	path          string
	cachePath     string
	seqcers       []*Sequencer
	runList       []*Run
	runTable      map[string]*Run
	folderCache   map[string]*Run
	runQueue      []*SequencerNotification
	runQueueMutex *sync.Mutex
}

func NewSequencerPool(p string, cachePath string) *SequencerPool {
	self := &SequencerPool{}
	self.path = p
	self.cachePath = path.Join(cachePath, "sequencers")
	self.seqcers = []*Sequencer{}
	self.runList = []*Run{}
	self.runTable = map[string]*Run{}
	self.folderCache = map[string]*Run{}
	self.runQueue = []*SequencerNotification{}
	self.runQueueMutex = &sync.Mutex{}
	return self
}

// Add a named sequencer to the pool.
func (self *SequencerPool) Add(name string) {
	self.seqcers = append(self.seqcers, NewSequencer(self, name))
	core.LogInfo("seqpool", "Add sequencer %s.", name)
}

// Find a run in the pool by flowcell id.
func (self *SequencerPool) Find(fcid string) *Run {
	return self.runTable[fcid]
}

// Runs returns the current inventory, newest first.
func (self *SequencerPool) Runs() []*Run {
	return self.runList
}

func (self *SequencerPool) CopyAndClearRunQueue() []*SequencerNotification {
	self.runQueueMutex.Lock()
	runQueue := make([]*SequencerNotification, len(self.runQueue))
	copy(runQueue, self.runQueue)
	self.runQueue = []*SequencerNotification{}
	self.runQueueMutex.Unlock()
	return runQueue
}

// Try to pre-populate cache from on-disk JSON.
func (self *SequencerPool) LoadCache() {
	bytes, err := os.ReadFile(self.cachePath)
	if err != nil {
		core.LogError(err, "seqpool", "Could not read cache file %s.", self.cachePath)
		return
	}
	if err := json.Unmarshal(bytes, &self.folderCache); err != nil {
		core.LogError(err, "seqpool", "Could not parse JSON in cache file %s.", self.cachePath)
		return
	}

	self.indexCache()
	core.LogInfo("seqpool", "%d runs loaded from cache.", len(self.runList))
}

// Sort the runList from newest to oldest.
// Index runs by flowcell id to support Find() method.
func (self *SequencerPool) indexCache() {
	self.runList = []*Run{}
	for _, run := range self.folderCache {
		self.runList = append(self.runList, run)
		self.runTable[run.Fcid] = run
	}
	sort.Sort(ByRevFdate(self.runList))
}

// Start an infinite inventory loop.
func (self *SequencerPool) GoInventoryLoop() {
	go func() {
		for {
			self.inventorySequencers()

			// Wait for a bit.
			time.Sleep(time.Minute * time.Duration(1))
		}
	}()
}

// Inventory all runs concurrently.
func (self *SequencerPool) inventorySequencers() {
	oldRunCount := len(self.runList)

	// Count number of runs that are complete,
	// so we can queue conversion for newly completed runs.
	oldCompleted := map[string]bool{}
	for _, run := range self.runList {
		if run.State == "complete" {
			oldCompleted[run.Fcid] = true
		}
	}

	runchan := make(chan *Run)
	count := 0

	// Iterate over folders under each sequencer.
	for _, seqcer := range self.seqcers {
		entries, _ := os.ReadDir(seqcer.path)
		for _, entry := range entries {
			fname := entry.Name()
			if _, err := runinfo.ParseRunFolder(fname); err != nil {
				continue
			}
			// Skip folders already cached as complete.
			if run, ok := self.folderCache[fname]; ok {
				if run.State == "complete" {
					continue
				}
			}

			// Hit the filesystem for details.
			num, _ := seqcer.getFolderInfo(fname, runchan)
			count += num
		}
	}

	// Wait for all the getFolderInfo calls to complete.
	for i := 0; i < count; i++ {
		run := <-runchan
		self.folderCache[run.Fname] = run
	}

	self.indexCache()

	// Queue newly completed runs for notification.
	for _, run := range self.runList {
		if run.State == "complete" {
			if _, ok := oldCompleted[run.Fcid]; !ok {
				self.runQueueMutex.Lock()
				self.runQueue = append(self.runQueue, &SequencerNotification{run})
				self.runQueueMutex.Unlock()
			}
		}
	}

	// Update the on-disk cache.
	bytes, _ := json.MarshalIndent(self.folderCache, "", "    ")
	os.WriteFile(self.cachePath, bytes, 0644)

	// Note if total number of runs increased.
	if len(self.runList) > oldRunCount {
		core.LogInfo("seqpool", "%d new runs written to cache. %d total.",
			len(self.runList)-oldRunCount, len(self.runList))
	}
}

// Sorting support for SequencerPool.runList
type ByRevFdate []*Run

func (a ByRevFdate) Len() int      { return len(a) }
func (a ByRevFdate) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a ByRevFdate) Less(i, j int) bool {
	if a[i].Fdate == a[j].Fdate {
		return a[i].Num > a[j].Num
	}
	return a[i].Fdate > a[j].Fdate
}
