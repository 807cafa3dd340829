//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Illumina RunInfo.xml parsing.
//
package runinfo

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type XMLFlowcellLayout struct {
	XMLName      xml.Name `xml:"FlowcellLayout"`
	LaneCount    int      `xml:"LaneCount,attr"`
	SurfaceCount int      `xml:"SurfaceCount,attr"`
	SwathCount   int      `xml:"SwathCount,attr"`
	TileCount    int      `xml:"TileCount,attr"`
}

type XMLRead struct {
	XMLName       xml.Name `xml:"Read"`
	Number        int      `xml:"Number,attr"`
	NumCycles     int      `xml:"NumCycles,attr"`
	IsIndexedRead string   `xml:"IsIndexedRead,attr"`
}

type XMLReads struct {
	XMLName xml.Name  `xml:"Reads"`
	Reads   []XMLRead `xml:"Read"`
}

type XMLRun struct {
	XMLName        xml.Name `xml:"Run"`
	Id             string   `xml:"Id,attr"`
	Number         int      `xml:"Number,attr"`
	Flowcell       string
	Instrument     string
	Date           string
	Reads          XMLReads          `xml:"Reads"`
	FlowcellLayout XMLFlowcellLayout `xml:"FlowcellLayout"`
}

type XMLRunInfo struct {
	XMLName xml.Name `xml:"RunInfo"`
	Run     XMLRun   `xml:"Run"`
}

func (self *XMLRead) IsIndexed() bool {
	return strings.ToUpper(self.IsIndexedRead) == "Y"
}

// Parse reads and decodes a RunInfo.xml file.
func Parse(path string) (*XMLRunInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "runinfo: could not open %s", path)
	}
	defer file.Close()

	var xmlRunInfo XMLRunInfo
	if err := xml.NewDecoder(file).Decode(&xmlRunInfo); err != nil {
		return nil, errors.Wrapf(err, "runinfo: could not parse %s", path)
	}
	return &xmlRunInfo, nil
}

func (self *XMLRunInfo) FlowcellID() string {
	return self.Run.Flowcell
}

// NumCycles returns the total cycle count across all reads.
func (self *XMLRunInfo) NumCycles() int {
	numCycles := 0
	for _, read := range self.Run.Reads.Reads {
		numCycles += read.NumCycles
	}
	return numCycles
}

// Reads returns all reads sorted by read number, as stored.
func (self *XMLRunInfo) ReadList() []XMLRead {
	return self.Run.Reads.Reads
}

// IndexReads returns only the index (barcode) reads.
func (self *XMLRunInfo) IndexReads() []XMLRead {
	indexed := []XMLRead{}
	for _, read := range self.Run.Reads.Reads {
		if read.IsIndexed() {
			indexed = append(indexed, read)
		}
	}
	return indexed
}

// TruncateFlowcellID reduces a flowcell ID to the 5 characters relevant
// for identification. Some flowcell IDs are weirdly formatted:
//
//	HFNKGBBXX       => HFNKG
//	000000000-AMG8G => AMG8G
func TruncateFlowcellID(flowcellId string) string {
	elements := strings.Split(flowcellId, "-")
	id := elements[len(elements)-1]
	if len(id) > 5 {
		id = id[:5]
	}
	return id
}
