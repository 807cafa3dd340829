//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Illumina run folder name parsing and platform detection.
//
package runinfo

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	SEQ_MISEQ      = "miseq"
	SEQ_NEXTSEQ    = "nextseq"
	SEQ_HISEQ_2500 = "hiseq2500"
	SEQ_HISEQ_4000 = "hiseq4000"
	SEQ_XTEN       = "hiseqX"
	SEQ_UNKNOWN    = "unknown"
)

// Run folder names look like 160318_D00547_0652_BHKNNGBCXX (HiSeq and
// NextSeq) or 160316_M00308_0356_000000000-AN5A6 (MiSeq).
var miseqFolderPattern = regexp.MustCompile(`^(\d{6})_(\w+)_(\d+)_[0]{9}-([A-Z0-9]{5})$`)
var hiseqFolderPattern = regexp.MustCompile(`^(\d{6})_([\w-]+)_(\d+)_[AB]*([A-Z0-9]{9})$`)

type RunFolder struct {
	Path    string `json:"path"`
	Fname   string `json:"-"`
	Fdate   string `json:"fdate"`
	InstrId string `json:"instrId"`
	Num     int    `json:"num"`
	Fcid    string `json:"fcid"`
}

// ParseRunFolder extracts date, instrument, run number and flowcell ID from
// an Illumina run folder path.
func ParseRunFolder(p string) (*RunFolder, error) {
	fname := path.Base(p)
	parts := miseqFolderPattern.FindStringSubmatch(fname)
	if parts == nil {
		parts = hiseqFolderPattern.FindStringSubmatch(fname)
	}
	if parts == nil {
		return nil, errors.Errorf("runinfo: unrecognized run folder name %s", fname)
	}
	num, err := strconv.Atoi(parts[3])
	if err != nil {
		return nil, errors.Wrapf(err, "runinfo: bad run number in %s", fname)
	}
	return &RunFolder{
		Path:    p,
		Fname:   fname,
		Fdate:   fmt.Sprintf("20%s-%s-%s", parts[1][0:2], parts[1][2:4], parts[1][4:6]),
		InstrId: parts[2],
		Num:     num,
		Fcid:    parts[4],
	}, nil
}

// Platform guesses the sequencer model from the instrument ID embedded in
// the run folder name.
func Platform(runPath string) string {
	folder, err := ParseRunFolder(runPath)
	if err != nil {
		return SEQ_UNKNOWN
	}
	instr := folder.InstrId
	switch {
	case strings.HasPrefix(instr, "M"):
		return SEQ_MISEQ
	case strings.HasPrefix(instr, "NB"):
		return SEQ_NEXTSEQ
	case strings.HasPrefix(instr, "ST-K"):
		return SEQ_HISEQ_4000
	case strings.HasPrefix(instr, "ST-E"):
		return SEQ_XTEN
	case strings.HasPrefix(instr, "D") || strings.HasPrefix(instr, "H"):
		return SEQ_HISEQ_2500
	}
	return SEQ_UNKNOWN
}
