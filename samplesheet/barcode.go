//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Demultiplexing barcode list parsing.
//
package samplesheet

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Barcode is one line of a barcode list: an i7 index, an optional i5 index
// joined with a dash, and an optional sample name.
//
//	ATCGG       SampleA
//	GCTCA-TTAGC SampleB
type Barcode struct {
	Seq      string
	I7       string
	I5       string
	SampleId string
}

func (self *Barcode) IsDual() bool {
	return len(self.I5) > 0
}

// ParseBarcodes reads a barcode list with one barcode per line, where the
// barcode is the first whitespace-separated value and the optional sample
// name is the second. Sample names default to the barcode sequence itself.
func ParseBarcodes(r io.Reader) ([]*Barcode, error) {
	barcodes := []*Barcode{}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		elements := strings.Fields(scanner.Text())
		if len(elements) == 0 {
			continue
		}

		seq := strings.ToUpper(elements[0])
		indexes := strings.Split(seq, "-")
		if len(indexes) > 2 {
			return nil, errors.Errorf("samplesheet: barcode %s has more than two indexes", seq)
		}
		if seen[seq] {
			return nil, errors.Errorf("samplesheet: duplicate barcode %s", seq)
		}
		seen[seq] = true

		barcode := &Barcode{Seq: seq, I7: indexes[0]}
		if len(indexes) == 2 {
			barcode.I5 = indexes[1]
		}
		if len(elements) >= 2 {
			barcode.SampleId = elements[1]
		} else {
			barcode.SampleId = seq
		}
		barcodes = append(barcodes, barcode)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "samplesheet: could not read barcode list")
	}
	return barcodes, nil
}

// ParseBarcodeFile is ParseBarcodes on a local file.
func ParseBarcodeFile(path string) ([]*Barcode, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "samplesheet: could not open %s", path)
	}
	defer file.Close()
	return ParseBarcodes(file)
}

// IndexLengths returns the i7 and i5 index lengths shared by all barcodes.
// All barcodes in a lane must agree on both lengths; a mix is fatal because
// a single bases mask has to describe every sample.
func IndexLengths(barcodes []*Barcode) (int, int, error) {
	if len(barcodes) == 0 {
		return 0, 0, nil
	}
	i7len := len(barcodes[0].I7)
	i5len := len(barcodes[0].I5)
	for _, barcode := range barcodes[1:] {
		if len(barcode.I7) != i7len || len(barcode.I5) != i5len {
			return 0, 0, errors.Errorf(
				"samplesheet: inconsistent index lengths: %s has (%d,%d), expected (%d,%d)",
				barcode.Seq, len(barcode.I7), len(barcode.I5), i7len, i5len)
		}
	}
	return i7len, i5len, nil
}
