//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Converter output discovery and naming.
//
package bcl2fastq

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var readPattern = regexp.MustCompile(`^R(\d)$`)
var libraryNamePattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FastqInfo is the metadata bcl2fastq encodes into an output filename.
type FastqInfo struct {
	Barcode   string
	ReadIndex int
}

// FindFastqs recursively finds all fastq files under root, sorted.
func FindFastqs(root string) ([]string, error) {
	matches := []string{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".fastq.gz") {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bcl2fastq: could not search %s for fastqs", root)
	}
	sort.Strings(matches)
	return matches, nil
}

// ParseFastqName extracts the barcode and read index from a bcl2fastq
// output filename. Underscore-separated fields distinguish the layouts:
//
//	dual barcode:   TCTCGCGC_TCAGAGCC_S47_L001_R2_001.fastq.gz (6 fields)
//	single barcode: TCAGAGCC_S47_L001_R2_001.fastq.gz          (5 fields)
//	no barcode:     Undetermined_S1_L001_R1_001.fastq.gz       (5 fields)
func ParseFastqName(fastqPath string) (*FastqInfo, error) {
	filename := path.Base(fastqPath)
	elements := strings.Split(filename, "_")

	var barcode, read string
	switch len(elements) {
	case 6:
		barcode = elements[0] + "-" + elements[1]
		read = elements[4]
	case 5:
		barcode = elements[0]
		read = elements[3]
	default:
		return nil, errors.Errorf("bcl2fastq: fastq filename has unusual number of elements: %s", filename)
	}

	match := readPattern.FindStringSubmatch(read)
	if match == nil {
		return nil, errors.Errorf("bcl2fastq: could not determine read index of %s", filename)
	}
	readIndex, _ := strconv.Atoi(match[1])

	return &FastqInfo{Barcode: barcode, ReadIndex: readIndex}, nil
}

// FormatLibraryName strips the "rcvd <date>" artifact of SCGPM library
// naming and squashes every non-alphanumeric run to a dash.
func FormatLibraryName(libraryName string) string {
	elements := strings.SplitN(libraryName, "rcvd", 2)
	stripped := strings.TrimRight(elements[0], " \t")
	return libraryNamePattern.ReplaceAllString(stripped, "-")
}

// ScgpmFastqName builds the canonical SCGPM name for an uploaded fastq:
// SCGPM_<library>_<fcid5>_L<lane>_<barcode>_R<read>.fastq.gz
func ScgpmFastqName(libraryName string, truncFlowcellId string, laneIndex int, info *FastqInfo) string {
	return fmt.Sprintf("SCGPM_%s_%s_L%d_%s_R%d.fastq.gz",
		libraryName, truncFlowcellId, laneIndex, info.Barcode, info.ReadIndex)
}

// LaneHTMLPath is where the converter leaves the per-lane summary report.
func LaneHTMLPath(outputDir string, flowcellId string) string {
	return path.Join(outputDir, "Reports", "html", flowcellId, "all", "all", "all", "lane.html")
}

// LaneHTMLName is the name the report is uploaded under.
func LaneHTMLName(runName string, laneIndex int) string {
	return fmt.Sprintf("%s_L%d.lane.html", runName, laneIndex)
}
