//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Bases mask derivation.
//
// The bases mask tells bcl2fastq how to interpret each sequencing cycle:
// y cycles are sample reads, I cycles are index reads used for
// demultiplexing, and n cycles are ignored.
//
package samplesheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/StanfordBioinformatics/scgpm-demux/runinfo"
	"github.com/pkg/errors"
)

// DeriveBasesMask computes the --use-bases-mask value from the run's read
// layout and the barcode index lengths. Each non-index read contributes
// y<NumCycles>. Each index read contributes I<len> for the cycles covered by
// the barcode and n<rest> for any extra cycles the instrument sequenced.
// With zero-length indexes (no barcodes) the entire index read is masked out.
func DeriveBasesMask(ri *runinfo.XMLRunInfo, i7len int, i5len int) (string, error) {
	maskElements := map[int]string{}

	for _, read := range ri.ReadList() {
		if !read.IsIndexed() {
			maskElements[read.Number] = fmt.Sprintf("y%d", read.NumCycles)
			continue
		}

		// RunInfo index read numbers are 2 and 3 on a dual-index run;
		// they correspond to the i7 and i5 index lengths respectively.
		indexLength := i7len
		if read.Number > 2 {
			indexLength = i5len
		}

		if read.NumCycles < indexLength {
			return "", errors.Errorf(
				"samplesheet: index length %d is longer than read %d (%d cycles)",
				indexLength, read.Number, read.NumCycles)
		}

		indexMask := ""
		if indexLength > 0 {
			indexMask = fmt.Sprintf("I%d", indexLength)
		}
		nMask := ""
		if rest := read.NumCycles - indexLength; rest > 0 {
			nMask = fmt.Sprintf("n%d", rest)
		}
		maskElements[read.Number] = indexMask + nMask
	}

	numbers := []int{}
	for number := range maskElements {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	sortedElements := []string{}
	for _, number := range numbers {
		sortedElements = append(sortedElements, maskElements[number])
	}
	return strings.Join(sortedElements, ","), nil
}
