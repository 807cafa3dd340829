//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// bcl2fastq sample sheet generation.
//
package samplesheet

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/pkg/errors"
)

// SampleSheet is the CSV configuration consumed by bcl2fastq for
// demultiplexing one lane. It is regenerated for every conversion and never
// persisted beyond the job.
type SampleSheet struct {
	RunName   string
	LaneIndex int
	Barcodes  []*Barcode
}

func NewSampleSheet(runName string, laneIndex int, barcodes []*Barcode) *SampleSheet {
	self := &SampleSheet{}
	self.RunName = runName
	self.LaneIndex = laneIndex
	self.Barcodes = barcodes
	return self
}

func (self *SampleSheet) Filename() string {
	return fmt.Sprintf("%s-L%d-samplesheet.csv", self.RunName, self.LaneIndex)
}

// Render produces the sheet contents: a [Data] section with one row per
// sample. The index2 column is left empty for single-index barcodes.
func (self *SampleSheet) Render() []byte {
	var buf bytes.Buffer
	buf.WriteString("[Data]\n")
	buf.WriteString("Lane,Sample_ID,index,index2\n")
	for _, barcode := range self.Barcodes {
		if barcode.IsDual() {
			fmt.Fprintf(&buf, "%d,%s,%s,%s\n", self.LaneIndex, barcode.SampleId, barcode.I7, barcode.I5)
		} else {
			fmt.Fprintf(&buf, "%d,%s,%s,\n", self.LaneIndex, barcode.SampleId, barcode.I7)
		}
	}
	return buf.Bytes()
}

// Write renders the sheet into dir and returns its path.
func (self *SampleSheet) Write(dir string) (string, error) {
	sheetPath := path.Join(dir, self.Filename())
	if err := os.WriteFile(sheetPath, self.Render(), 0644); err != nil {
		return "", errors.Wrapf(err, "samplesheet: could not write %s", sheetPath)
	}
	return sheetPath, nil
}
