//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Lane conversion job orchestration.
//
package job

import (
	"context"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/StanfordBioinformatics/scgpm-demux/bcl2fastq"
	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/StanfordBioinformatics/scgpm-demux/ledger"
	"github.com/StanfordBioinformatics/scgpm-demux/runinfo"
	"github.com/StanfordBioinformatics/scgpm-demux/samplesheet"
	"github.com/StanfordBioinformatics/scgpm-demux/stage"
	"github.com/pkg/errors"
)

const LOCAL_OUTPUT = "output"
const TOOLS_USED_FILENAME = "bcl2fastq_tools_used.json"

// Result lists the object store keys of everything the job uploaded.
type Result struct {
	FlowcellId     string   `json:"flowcell_id"`
	BasesMask      string   `json:"bases_mask"`
	FastqKeys      []string `json:"fastqs"`
	SampleSheetKey string   `json:"sample_sheet,omitempty"`
	LaneHTMLKey    string   `json:"lane_html,omitempty"`
	ToolsUsedKey   string   `json:"tools_used"`
}

type Job struct {
	inputs    *Inputs
	store     *stage.Store
	db        *ledger.DatabaseManager
	workDir   string
	outputDir string
	converter *bcl2fastq.Converter
}

// NewJob prepares a conversion job rooted at workDir. db may be nil when no
// ledger is kept (one-shot command line runs).
func NewJob(inputs *Inputs, store *stage.Store, db *ledger.DatabaseManager, workDir string) *Job {
	self := &Job{}
	self.inputs = inputs
	self.store = store
	self.db = db
	self.workDir = workDir
	self.outputDir = path.Join(workDir, LOCAL_OUTPUT)
	self.converter = bcl2fastq.NewConverter("")
	return self
}

// Run executes the full conversion and records the outcome in the ledger.
func (self *Job) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result, err := self.run(ctx)

	if self.db != nil {
		state := "complete"
		fastqCount := 0
		flowcellId := ""
		basesMask := ""
		if err != nil {
			state = "failed"
		} else {
			fastqCount = len(result.FastqKeys)
			flowcellId = result.FlowcellId
			basesMask = result.BasesMask
		}
		conversion := &ledger.Conversion{
			RunName:     self.inputs.RunName,
			LaneIndex:   self.inputs.LaneIndex,
			FlowcellId:  flowcellId,
			LibraryName: self.inputs.LibraryName,
			BasesMask:   basesMask,
			SampleSheet: self.sheetFilename(),
			FastqCount:  fastqCount,
			State:       state,
			Started:     started,
			Finished:    time.Now(),
		}
		if dberr := self.db.InsertConversion(conversion); dberr != nil {
			core.LogError(dberr, "job", "Could not record conversion in ledger.")
		}
	}
	return result, err
}

func (self *Job) sheetFilename() string {
	return samplesheet.NewSampleSheet(self.inputs.RunName, self.inputs.LaneIndex, nil).Filename()
}

func (self *Job) run(ctx context.Context) (*Result, error) {
	inputs := self.inputs

	// Stage the lane data and run metadata archives.
	core.LogInfo("job", "Downloading lane data archive %s.", inputs.LaneDataTar)
	laneTar, err := self.store.Download(ctx, inputs.LaneDataTar, self.workDir)
	if err != nil {
		return nil, err
	}
	if err := stage.Untar(laneTar, self.workDir); err != nil {
		return nil, err
	}

	core.LogInfo("job", "Downloading run metadata archive %s.", inputs.MetadataTar)
	metadataTar, err := self.store.Download(ctx, inputs.MetadataTar, self.workDir)
	if err != nil {
		return nil, err
	}
	if err := stage.Untar(metadataTar, self.workDir); err != nil {
		return nil, err
	}

	// Parse the run's read layout.
	runInfo, err := runinfo.Parse(path.Join(self.workDir, "RunInfo.xml"))
	if err != nil {
		return nil, err
	}
	flowcellId := runInfo.FlowcellID()
	if flowcellId == "" {
		return nil, errors.New("job: could not parse flowcell ID from RunInfo.xml")
	}

	// Build the sample sheet and bases mask when barcodes were provided.
	// Without barcodes the converter runs undemultiplexed.
	barcodes := []*samplesheet.Barcode{}
	options := map[string]string{}
	for key, value := range inputs.Options {
		options[key] = value
	}

	var sheetPath string
	if inputs.HasBarcodes() {
		core.LogInfo("job", "Downloading barcode list %s.", inputs.BarcodesKey)
		barcodesPath, err := self.store.Download(ctx, inputs.BarcodesKey, self.workDir)
		if err != nil {
			return nil, err
		}
		if barcodes, err = samplesheet.ParseBarcodeFile(barcodesPath); err != nil {
			return nil, err
		}

		core.LogInfo("job", "Creating sample sheet for %d barcodes.", len(barcodes))
		sheet := samplesheet.NewSampleSheet(inputs.RunName, inputs.LaneIndex, barcodes)
		if sheetPath, err = sheet.Write(self.workDir); err != nil {
			return nil, err
		}
		options["sample_sheet"] = sheetPath

		if _, found := options["use_bases_mask"]; !found {
			i7len, i5len, err := samplesheet.IndexLengths(barcodes)
			if err != nil {
				return nil, err
			}
			mask, err := samplesheet.DeriveBasesMask(runInfo, i7len, i5len)
			if err != nil {
				return nil, err
			}
			core.LogInfo("job", "Inferred bases mask %s.", mask)
			options["use_bases_mask"] = mask
		}
	} else {
		core.LogInfo("job", "No barcodes associated with this lane; skipping sample sheet.")
	}

	// Run the converter.
	options["runfolder_dir"] = self.workDir
	options["output_dir"] = self.outputDir
	if version := self.converter.Version(ctx); version != "" {
		self.converter.ToolsUsed.Version = version
	}
	core.LogInfo("job", "Converting BCL files to fastqs.")
	if err := self.converter.Run(ctx, options, inputs.Flags); err != nil {
		return nil, err
	}

	// Assemble the property set shared by all uploaded files.
	properties := inputs.SampleProperties()
	for key, value := range options {
		properties[key] = value
	}
	for _, flag := range inputs.Flags {
		properties[flag] = "true"
	}
	properties["flowcell_id"] = flowcellId
	properties["trunc_flowcell_id"] = runinfo.TruncateFlowcellID(flowcellId)
	properties["library_name"] = bcl2fastq.FormatLibraryName(inputs.LibraryName)

	result := &Result{
		FlowcellId: flowcellId,
		BasesMask:  options["use_bases_mask"],
		FastqKeys:  []string{},
	}

	// Upload fastqs under their canonical SCGPM names.
	fastqs, err := bcl2fastq.FindFastqs(self.outputDir)
	if err != nil {
		return nil, err
	}
	if len(fastqs) == 0 {
		return nil, errors.New("job: converter produced no fastq files")
	}
	core.LogInfo("job", "Uploading %d fastq files.", len(fastqs))

	objects := []*stage.Object{}
	for _, fastq := range fastqs {
		info, err := bcl2fastq.ParseFastqName(fastq)
		if err != nil {
			return nil, err
		}
		fastqProperties := copyProperties(properties)
		fastqProperties["barcode"] = info.Barcode
		fastqProperties["read_index"] = strconv.Itoa(info.ReadIndex)

		name := bcl2fastq.ScgpmFastqName(properties["library_name"],
			properties["trunc_flowcell_id"], inputs.LaneIndex, info)
		key := path.Join(inputs.ProjectFolder, "fastqs", name)
		objects = append(objects, &stage.Object{
			Key:        key,
			LocalPath:  fastq,
			Properties: fastqProperties,
			Tags:       inputs.Tags,
		})
		result.FastqKeys = append(result.FastqKeys, key)
	}
	if err := self.store.UploadAll(ctx, objects); err != nil {
		return nil, err
	}

	// Upload the accessory files: sample sheet, lane report, provenance.
	if sheetPath != "" {
		sheetProperties := copyProperties(properties)
		sheetProperties["file_type"] = "sample_sheet"
		result.SampleSheetKey = path.Join(inputs.ProjectFolder, "miscellany", path.Base(sheetPath))
		if err := self.store.Upload(ctx, &stage.Object{
			Key:        result.SampleSheetKey,
			LocalPath:  sheetPath,
			Properties: sheetProperties,
		}); err != nil {
			return nil, err
		}
	}

	laneHTML := bcl2fastq.LaneHTMLPath(self.outputDir, flowcellId)
	if _, err := os.Stat(laneHTML); err == nil {
		htmlProperties := copyProperties(properties)
		htmlProperties["file_type"] = "lane_html"
		result.LaneHTMLKey = path.Join(inputs.ProjectFolder, "miscellany",
			bcl2fastq.LaneHTMLName(inputs.RunName, inputs.LaneIndex))
		if err := self.store.Upload(ctx, &stage.Object{
			Key:        result.LaneHTMLKey,
			LocalPath:  laneHTML,
			Properties: htmlProperties,
			Tags:       inputs.Tags,
		}); err != nil {
			return nil, err
		}
	} else {
		core.LogInfo("job", "No lane.html report found; skipping report upload.")
	}

	toolsUsedPath := path.Join(self.workDir, TOOLS_USED_FILENAME)
	if err := self.converter.ToolsUsed.WriteFile(toolsUsedPath); err != nil {
		return nil, err
	}
	toolsProperties := copyProperties(properties)
	toolsProperties["file_type"] = "tools_used"
	result.ToolsUsedKey = path.Join(inputs.ProjectFolder, "miscellany", TOOLS_USED_FILENAME)
	if err := self.store.Upload(ctx, &stage.Object{
		Key:        result.ToolsUsedKey,
		LocalPath:  toolsUsedPath,
		Properties: toolsProperties,
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func copyProperties(properties map[string]string) map[string]string {
	copied := map[string]string{}
	for key, value := range properties {
		copied[key] = value
	}
	return copied
}
